package scenes

import (
	"fmt"
	"image/color"
	"log"

	"github.com/decker502/construct/pkg/components"
	"github.com/decker502/construct/pkg/config"
	"github.com/decker502/construct/pkg/ecs"
	"github.com/decker502/construct/pkg/game"
	"github.com/decker502/construct/pkg/modules"
	"github.com/decker502/construct/pkg/systems"
	"github.com/decker502/construct/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// 画面常量
const (
	ScreenWidth  = 960
	ScreenHeight = 640

	isoScale = 40.0
)

var (
	backgroundColor = color.RGBA{R: 32, G: 36, B: 48, A: 255}
	floorColor      = color.RGBA{R: 70, G: 92, B: 70, A: 255}
)

// InputState 一帧内的输入命令
type InputState struct {
	Activate      bool // A 按下
	BuildPressed  bool // B 按下
	BuildReleased bool // B 抬起
	Restart       bool // R 按下
	Save          bool // S 按下
}

// readInput 从 ebiten 读取本帧输入
//
// 鼠标左键或触摸按住即组装：按下时同时激活并开始组装，松开即中断。
func readInput() InputState {
	in := InputState{
		Activate:      inpututil.IsKeyJustPressed(ebiten.KeyA),
		BuildPressed:  inpututil.IsKeyJustPressed(ebiten.KeyB),
		BuildReleased: inpututil.IsKeyJustReleased(ebiten.KeyB),
		Restart:       inpututil.IsKeyJustPressed(ebiten.KeyR),
		Save:          inpututil.IsKeyJustPressed(ebiten.KeyS),
	}

	pointer := utils.ReadPointer()
	if pointer.JustPressed {
		in.Activate = true
		in.BuildPressed = true
	}
	if pointer.JustReleased {
		in.BuildReleased = true
	}
	return in
}

// AssemblyScene 组装演示场景
//
// 按住 B 组装，松开即中断；A 激活待机跳跃；R 重新打散；S 保存布局。
type AssemblyScene struct {
	module       *modules.AssemblyModule
	renderSystem *systems.BoxRenderSystem
	audioManager *game.AudioManager // 可为 nil

	// 最近一条提示（保存结果等）
	message string
	// 已安装部件计数（本轮）
	installed int

	readInput func() InputState
}

// NewAssemblyScene 创建组装场景
//
// 参数:
//   - cfg: 组装调参
//   - bp: 蓝图
//   - store: 布局存档，可为 nil
//   - am: 音频管理器，可为 nil
//   - seed: 随机种子
//
// 返回:
//   - *AssemblyScene: 场景实例
//   - error: 蓝图无法搭建时返回错误
func NewAssemblyScene(
	cfg *config.AssemblyConfig,
	bp *config.BlueprintConfig,
	store *game.LayoutStore,
	am *game.AudioManager,
	seed int64,
) (*AssemblyScene, error) {
	scene := &AssemblyScene{
		audioManager: am,
		readInput:    readInput,
	}

	module, err := modules.NewAssemblyModule(cfg, bp, store, seed, modules.AssemblyCallbacks{
		OnPieceInstalled: scene.onPieceInstalled,
		OnStateChanged:   scene.onStateChanged,
		OnDismantled: func() {
			scene.message = "Assembly finished"
		},
		OnLayoutSaved: func(layout *config.Layout) {
			scene.message = fmt.Sprintf("Layout saved (%d pieces)", len(layout.Pieces))
		},
	})
	if err != nil {
		return nil, err
	}
	scene.module = module

	scene.renderSystem = systems.NewBoxRenderSystem(module.EntityManager(), systems.IsoCamera{
		OriginX: ScreenWidth / 2,
		OriginY: ScreenHeight * 0.6,
		Scale:   isoScale,
	})

	log.Printf("[AssemblyScene] Scene created for blueprint %q", bp.Name)
	return scene, nil
}

// Update 处理输入并推进组装模块
func (s *AssemblyScene) Update(deltaTime float64) {
	s.ApplyInput(s.readInput())
	s.module.Update(deltaTime)
}

// ApplyInput 把一帧输入转换为模块命令
func (s *AssemblyScene) ApplyInput(in InputState) {
	if in.Restart {
		if err := s.module.Restart(); err != nil {
			log.Printf("[AssemblyScene] Restart failed: %v", err)
			s.message = err.Error()
			return
		}
		s.renderSystem.SetEntityManager(s.module.EntityManager())
		s.installed = 0
		s.message = "Scattered"
		return
	}

	if in.Activate {
		s.module.Activate()
	}
	if in.BuildPressed {
		s.module.Build(true)
	}
	if in.BuildReleased {
		s.module.Build(false)
	}

	if in.Save {
		if _, err := s.module.SaveLayout(); err != nil {
			log.Printf("[AssemblyScene] Save layout failed: %v", err)
			s.message = "Save failed: " + err.Error()
		}
	}
}

// Draw 绘制地面、方块和状态信息
func (s *AssemblyScene) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	s.renderSystem.DrawFloor(screen, s.module.Floor(), floorColor)
	s.renderSystem.Draw(screen)
	ebitenutil.DebugPrint(screen, s.statusText())
}

// statusText HUD 文本
func (s *AssemblyScene) statusText() string {
	state := "Dismantled"
	if st, ok := s.module.State(); ok {
		state = st.String()
	}
	text := fmt.Sprintf(
		"%s  state: %s  remaining: %d  installed: %d\n%s",
		s.module.Blueprint().Name, state, s.module.RemainingPieces(), s.installed, controlsHint(),
	)
	if s.message != "" {
		text += "\n" + s.message
	}
	return text
}

// controlsHint 按平台返回操作提示
func controlsHint() string {
	if utils.IsMobile() {
		return "Hold the screen to build, release to interrupt"
	}
	return "[A] activate  [B]/mouse hold to build  [R] scatter  [S] save layout  [M] mute  [Tab] next blueprint"
}

func (s *AssemblyScene) onPieceInstalled(ecs.EntityID) {
	s.installed++
	s.playSound(game.SoundPieceInstalled)
}

func (s *AssemblyScene) onStateChanged(from, to components.AssemblyState) {
	switch to {
	case components.AssemblyBuildComplete:
		s.playSound(game.SoundBuildComplete)
	case components.AssemblyBuildInterrupted:
		s.playSound(game.SoundInterrupted)
	}
}

func (s *AssemblyScene) playSound(id string) {
	if s.audioManager != nil {
		s.audioManager.PlaySound(id)
	}
}

// Module 返回组装模块
func (s *AssemblyScene) Module() *modules.AssemblyModule {
	return s.module
}
