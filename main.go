package main

import (
	"flag"
	"log"
	"os"

	"github.com/decker502/construct/pkg/app"
	"github.com/decker502/construct/pkg/embedded"
	"github.com/decker502/construct/pkg/scenes"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	// 命令行参数
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	configPath = flag.String("config", app.DefaultConfigPath, "调参文件路径")
	blueprint  = flag.String("blueprint", app.DefaultBlueprint, "蓝图名称或蓝图文件路径")
	seed       = flag.Int64("seed", 0, "打散部件的随机种子（0 = 随机）")
	noAudio    = flag.Bool("no-audio", false, "禁用音效")
	noSave     = flag.Bool("no-save", false, "布局只保存在内存中")
	mute       = flag.Bool("mute", false, "启动时静音（游戏中按 M 切换）")
	volume     = flag.Float64("volume", 0, "音效音量 0~1（0 = 默认）")
)

func main() {
	flag.Parse()

	embedded.Init(dataFS)

	game, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		ConfigPath: *configPath,
		Blueprint:  *blueprint,
		Seed:       *seed,
		NoAudio:    *noAudio,
		NoSave:     *noSave,
		Muted:      *mute,
		Volume:     *volume,
	})
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("初始化失败: %v", err)
	}

	ebiten.SetWindowSize(scenes.ScreenWidth, scenes.ScreenHeight)
	ebiten.SetWindowTitle("Construct - 组装演示")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
