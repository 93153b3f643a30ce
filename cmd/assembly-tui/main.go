// assembly-tui 在终端中运行组装演示
//
// 使用方法:
//
//	go run ./cmd/assembly-tui -blueprint data/blueprints/tower.yaml
//
// 按键: a 激活，b 切换组装/中断，r 重新打散，s 保存布局，q 或 Esc 退出。
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/decker502/construct/pkg/components"
	"github.com/decker502/construct/pkg/config"
	"github.com/decker502/construct/pkg/ecs"
	"github.com/decker502/construct/pkg/game"
	"github.com/decker502/construct/pkg/modules"
	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	tickInterval = 16 * time.Millisecond // ~60 FPS
	maxTickStep  = 0.1                   // 终端卡顿后单帧最多推进 0.1 秒
)

var (
	configPath    = flag.String("config", "data/assembly.yaml", "调参文件路径")
	blueprintPath = flag.String("blueprint", "data/blueprints/tower.yaml", "蓝图文件路径")
	seed          = flag.Int64("seed", 0, "打散部件的随机种子（0 = 随机）")
	logPath       = flag.String("log", "", "日志文件路径（为空则不输出日志）")
	mute          = flag.Bool("mute", false, "禁用音效")
)

type tui struct {
	screen tcell.Screen
	module *modules.AssemblyModule

	message   string
	audioInit bool
	quit      bool
}

func main() {
	flag.Parse()

	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.LoadAssemblyConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	bp, err := config.LoadBlueprintConfig(*blueprintPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load blueprint: %v\n", err)
		os.Exit(1)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	t := &tui{}
	module, err := modules.NewAssemblyModule(cfg, bp, game.OpenLayoutStore("construct"), *seed, modules.AssemblyCallbacks{
		OnPieceInstalled: func(ecs.EntityID) { t.playTone(880, 40*time.Millisecond) },
		OnStateChanged: func(_, to components.AssemblyState) {
			if to == components.AssemblyBuildComplete {
				t.playTone(523.25, 300*time.Millisecond)
			}
		},
		OnDismantled: func() { t.message = "Assembly finished, press r to scatter again" },
		OnLayoutSaved: func(layout *config.Layout) {
			t.message = fmt.Sprintf("Layout saved (revision %s)", layout.Revision)
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build assembly: %v\n", err)
		os.Exit(1)
	}
	t.module = module

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	t.screen = screen

	if !*mute {
		if err := t.initAudio(); err != nil {
			// 没有声卡也能运行
			log.Printf("[TUI] Audio initialization failed: %v", err)
		}
	}

	defer t.cleanup()
	t.run()
}

func (t *tui) initAudio() error {
	sampleRate := beep.SampleRate(44100)
	err := speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	if err == nil {
		t.audioInit = true
	}
	return err
}

func (t *tui) playTone(freq float64, d time.Duration) {
	if !t.audioInit {
		return
	}
	sampleRate := beep.SampleRate(44100)
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(d), sine))
}

func (t *tui) cleanup() {
	if t.audioInit {
		speaker.Close()
	}
	t.screen.Fini()
}

func (t *tui) run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- t.screen.PollEvent()
		}
	}()

	last := time.Now()
	for !t.quit {
		select {
		case ev := <-eventChan:
			t.handleInput(ev)

		case now := <-ticker.C:
			dt := min(now.Sub(last).Seconds(), maxTickStep)
			last = now
			t.module.Update(dt)
			t.draw()
		}
	}
}

func (t *tui) handleInput(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			t.quit = true
			return
		}
		if ev.Key() != tcell.KeyRune {
			return
		}
		switch ev.Rune() {
		case 'q':
			t.quit = true
		case 'a':
			t.module.Activate()
		case 'b':
			t.module.ToggleBuild()
		case 'r':
			if err := t.module.Restart(); err != nil {
				t.message = err.Error()
			} else {
				t.message = "Scattered"
			}
		case 's':
			if _, err := t.module.SaveLayout(); err != nil {
				t.message = "Save failed: " + err.Error()
			}
		}

	case *tcell.EventResize:
		t.screen.Sync()
	}
}

func (t *tui) draw() {
	t.screen.Clear()
	width, height := t.screen.Size()
	view := newSideView(width, height)
	em := t.module.EntityManager()

	// 地面
	floor := t.module.Floor()
	floorStyle := tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	fx0 := max(view.column(-floor.HalfWidth), 0)
	fx1 := min(view.column(floor.HalfWidth), width)
	for x := fx0; x < fx1; x++ {
		t.screen.SetContent(x, view.floorRow, '▀', nil, floorStyle)
	}

	// 方块
	for _, id := range backToFront(em) {
		tr, _ := ecs.GetComponent[*components.TransformComponent](em, id)
		box, _ := ecs.GetComponent[*components.RenderBoxComponent](em, id)
		rect := view.boxRect(tr, box.Size).clip(width, view.floorRow)
		if rect.empty() {
			continue
		}
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(box.Color.R), int32(box.Color.G), int32(box.Color.B)))
		for y := rect.y0; y < rect.y1; y++ {
			for x := rect.x0; x < rect.x1; x++ {
				t.screen.SetContent(x, y, '█', nil, style)
			}
		}
	}

	t.drawStatus(width, height)
	t.screen.Show()
}

func (t *tui) drawStatus(width, height int) {
	state := "Dismantled"
	if st, ok := t.module.State(); ok {
		state = st.String()
	}
	building := ""
	if t.module.IsBuilding() {
		building = " [building]"
	}

	lines := []string{
		fmt.Sprintf("%s  state: %s%s  remaining: %d", t.module.Blueprint().Name, state, building, t.module.RemainingPieces()),
		"a activate  b build/interrupt  r scatter  s save  q quit",
	}
	if t.message != "" {
		lines[1] += "  | " + t.message
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, line := range lines {
		y := height - len(lines) + i
		if i == 0 {
			y = 0
		}
		for x, r := range []rune(line) {
			if x >= width {
				break
			}
			t.screen.SetContent(x, y, r, nil, style)
		}
	}
}
