// Package app 提供组装演示应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来：加载调参与蓝图、打开布局存档、
// 初始化音频并创建场景。main.go 只负责解析命令行参数并调用 NewApp()。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/decker502/construct/pkg/config"
	"github.com/decker502/construct/pkg/embedded"
	"github.com/decker502/construct/pkg/game"
	"github.com/decker502/construct/pkg/scenes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// AppName gdata 存档使用的应用名
const AppName = "construct"

// 默认资源路径
const (
	DefaultConfigPath   = "data/assembly.yaml"
	DefaultBlueprintDir = "data/blueprints"
	DefaultBlueprint    = "tower"
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 调参文件路径（磁盘路径或嵌入的 data/ 路径）
	ConfigPath string
	// Blueprint 蓝图名称（data/blueprints 下的文件名）或蓝图文件路径
	Blueprint string
	// Seed 打散部件的随机种子，0 表示使用当前时间
	Seed int64
	// NoAudio 不初始化音频
	NoAudio bool
	// Muted 启动时静音（M 键切换）
	Muted bool
	// Volume 音效音量（0.0 ~ 1.0），0 表示使用默认值
	Volume float64
	// NoSave 不打开磁盘存档，布局只保存在内存中
	NoSave bool
}

// App 是应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	audioManager *game.AudioManager // NoAudio 时为 nil
	verbose      bool

	// 可切换的蓝图列表（Tab 键循环）
	blueprints     []string
	blueprintIndex int
}

// NewApp 创建并初始化应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	if cfg.ConfigPath == "" {
		cfg.ConfigPath = DefaultConfigPath
	}
	if cfg.Blueprint == "" {
		cfg.Blueprint = DefaultBlueprint
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	assemblyConfig, err := LoadAssemblyConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("调参加载失败: %w", err)
	}
	log.Printf("[Config] 加载调参: %s", cfg.ConfigPath)

	// 布局存档
	var store *game.LayoutStore
	if cfg.NoSave {
		store = game.NewLayoutStore(nil)
	} else {
		store = game.OpenLayoutStore(AppName)
	}
	log.Printf("[App] Layout store persistent=%v", store.IsPersistent())

	// 音频
	var audioManager *game.AudioManager
	if !cfg.NoAudio {
		audioManager = game.NewAudioManager(audio.NewContext(game.AudioSampleRate))
		if cfg.Volume > 0 {
			audioManager.SetVolume(cfg.Volume)
		}
		audioManager.SetMuted(cfg.Muted)
		log.Printf("[App] AudioManager initialized (volume=%.2f, muted=%v)", audioManager.GetVolume(), audioManager.IsMuted())
	}

	// 场景管理器
	sceneManager := game.NewSceneManager()
	sceneManager.SetSceneFactory(func(blueprint string) (game.Scene, error) {
		bp, err := LoadBlueprint(blueprint)
		if err != nil {
			return nil, err
		}
		return scenes.NewAssemblyScene(assemblyConfig, bp, store, audioManager, cfg.Seed)
	})

	if !sceneManager.LoadBlueprint(cfg.Blueprint) {
		return nil, fmt.Errorf("蓝图加载失败: %s", cfg.Blueprint)
	}

	app := &App{
		sceneManager: sceneManager,
		audioManager: audioManager,
		verbose:      cfg.Verbose,
		blueprints:   ListBlueprints(),
	}
	for i, name := range app.blueprints {
		if name == cfg.Blueprint {
			app.blueprintIndex = i
		}
	}
	return app, nil
}

// LoadAssemblyConfig 读取并校验调参
func LoadAssemblyConfig(configPath string) (*config.AssemblyConfig, error) {
	data, err := embedded.ReadResource(configPath)
	if err != nil {
		return nil, err
	}
	return config.ParseAssemblyConfig(data)
}

// LoadBlueprint 按名称或路径读取蓝图
//
// 不含路径分隔符和扩展名的名称解析为 data/blueprints/<name>.yaml。
func LoadBlueprint(nameOrPath string) (*config.BlueprintConfig, error) {
	p := nameOrPath
	if !strings.ContainsAny(p, "/\\") && path.Ext(p) == "" {
		p = path.Join(DefaultBlueprintDir, p+".yaml")
	}
	data, err := embedded.ReadResource(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprint %s: %w", p, err)
	}
	return config.ParseBlueprintConfig(data)
}

// ListBlueprints 列出嵌入的蓝图名称
func ListBlueprints() []string {
	matches, err := embedded.Glob(DefaultBlueprintDir + "/*.yaml")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".yaml"))
	}
	return names
}

// Update 更新逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}

	// M 切换静音
	if inpututil.IsKeyJustPressed(ebiten.KeyM) && a.audioManager != nil {
		a.audioManager.SetMuted(!a.audioManager.IsMuted())
		log.Printf("[App] Audio muted=%v", a.audioManager.IsMuted())
	}

	// Tab 切换蓝图
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(a.blueprints) > 1 {
		next := (a.blueprintIndex + 1) % len(a.blueprints)
		if a.sceneManager.LoadBlueprint(a.blueprints[next]) {
			a.blueprintIndex = next
		}
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.sceneManager.Update(deltaTime)
	return nil
}

// Draw 绘制画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return scenes.ScreenWidth, scenes.ScreenHeight
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
