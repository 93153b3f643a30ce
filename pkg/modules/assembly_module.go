package modules

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/decker502/construct/pkg/authoring"
	"github.com/decker502/construct/pkg/components"
	"github.com/decker502/construct/pkg/config"
	"github.com/decker502/construct/pkg/ecs"
	"github.com/decker502/construct/pkg/entities"
	"github.com/decker502/construct/pkg/game"
	"github.com/decker502/construct/pkg/systems"
)

// AssemblyModule 组装演示模块
// 封装一个组装体从创建到拆除的全部运行期逻辑，包括：
//   - 按蓝图创建锚点与部件，应用已保存的布局并打散
//   - 每帧按固定顺序推进 调度器 -> 组装状态机 -> 物理 -> 部件守护
//   - 对外暴露 Activate / Build / Restart / SaveLayout 命令
//
// 模块不依赖任何渲染库，ebiten 场景和终端前端共用同一实现。
type AssemblyModule struct {
	// ECS 框架
	entityManager *ecs.EntityManager

	// 系统（模块拥有）
	scheduler      *game.TimerScheduler
	physicsSystem  *systems.PhysicsSystem
	guardSystem    *systems.PieceGuardSystem
	assemblySystem *systems.AssemblySystem

	// 组装体锚点
	anchor ecs.EntityID

	// 外部依赖
	cfg         *config.AssemblyConfig
	blueprint   *config.BlueprintConfig
	layoutStore *game.LayoutStore // 可为 nil
	rng         *rand.Rand

	callbacks AssemblyCallbacks

	// 当前是否处于组装中（Build(true) 已下达且未撤销）
	building bool
}

// AssemblyCallbacks 组装模块回调函数集合
// 全部可选，传 nil 表示不关心
type AssemblyCallbacks struct {
	OnPieceInstalled func(piece ecs.EntityID)                // 部件安装完成
	OnStateChanged   func(from, to components.AssemblyState) // 状态切换
	OnDismantled     func()                                  // 控制器拆除（演示结束）
	OnLayoutSaved    func(layout *config.Layout)             // 布局保存成功
}

// NewAssemblyModule 创建组装模块并立即按蓝图搭建场景
//
// 参数:
//   - cfg: 组装调参
//   - bp: 蓝图
//   - store: 布局存档，可为 nil
//   - seed: 打散部件使用的随机种子
//   - callbacks: 回调函数集合
//
// 返回:
//   - *AssemblyModule: 新创建的模块实例
//   - error: 蓝图无法搭建时返回错误
func NewAssemblyModule(
	cfg *config.AssemblyConfig,
	bp *config.BlueprintConfig,
	store *game.LayoutStore,
	seed int64,
	callbacks AssemblyCallbacks,
) (*AssemblyModule, error) {
	if cfg == nil || bp == nil {
		return nil, fmt.Errorf("assembly config and blueprint are required")
	}

	module := &AssemblyModule{
		cfg:         cfg,
		blueprint:   bp,
		layoutStore: store,
		rng:         rand.New(rand.NewSource(seed)),
		callbacks:   callbacks,
	}

	if err := module.Restart(); err != nil {
		return nil, err
	}
	return module, nil
}

// Restart 丢弃当前世界，按蓝图重新搭建并打散部件
//
// 配置了 ActiveOnPlay 时搭建完成后立即激活。
func (m *AssemblyModule) Restart() error {
	em := ecs.NewEntityManager()
	scheduler := game.NewTimerScheduler()
	physics := systems.NewPhysicsSystem(em, systems.FloorBounds{
		HalfWidth: m.blueprint.Floor.HalfWidth,
		HalfDepth: m.blueprint.Floor.HalfDepth,
	})
	guard := systems.NewPieceGuardSystem(em, physics)
	assembly := systems.NewAssemblySystem(em, scheduler)

	anchor, err := entities.BuildFromBlueprint(em, m.cfg, m.blueprint)
	if err != nil {
		return fmt.Errorf("failed to build assembly %q: %w", m.blueprint.Name, err)
	}

	m.entityManager = em
	m.scheduler = scheduler
	m.physicsSystem = physics
	m.guardSystem = guard
	m.assemblySystem = assembly
	m.anchor = anchor
	m.building = false
	m.wireCallbacks()

	m.applySavedLayout()

	if err := authoring.RandomizePositions(em, anchor, m.cfg.RandomPosRadius, m.rng); err != nil {
		return err
	}

	log.Printf("[AssemblyModule] Assembly %q ready (anchor=%d)", m.blueprint.Name, anchor)

	if m.cfg.ActiveOnPlay {
		m.Activate()
	}
	return nil
}

// wireCallbacks 把系统回调转发给外部
func (m *AssemblyModule) wireCallbacks() {
	m.assemblySystem.SetPieceInstalledCallback(func(_, piece ecs.EntityID) {
		if m.callbacks.OnPieceInstalled != nil {
			m.callbacks.OnPieceInstalled(piece)
		}
	})
	m.assemblySystem.SetStateChangedCallback(func(_ ecs.EntityID, from, to components.AssemblyState) {
		if m.callbacks.OnStateChanged != nil {
			m.callbacks.OnStateChanged(from, to)
		}
	})
	m.assemblySystem.SetDismantledCallback(func(ecs.EntityID) {
		m.building = false
		if m.callbacks.OnDismantled != nil {
			m.callbacks.OnDismantled()
		}
	})
}

// applySavedLayout 存档中有同名布局时覆盖部件目标位姿
func (m *AssemblyModule) applySavedLayout() {
	if m.layoutStore == nil {
		return
	}
	layout, err := m.layoutStore.Load(m.blueprint.Name)
	if err != nil {
		log.Printf("[AssemblyModule] Warning: failed to load layout: %v", err)
		return
	}
	if layout == nil {
		return
	}
	if err := authoring.ApplyLayout(m.entityManager, m.anchor, layout); err != nil {
		log.Printf("[AssemblyModule] Warning: saved layout ignored: %v", err)
		return
	}
	// 先放到新的目标位姿，打散从成品形态出发
	if err := authoring.ReturnToTargets(m.entityManager, m.anchor); err != nil {
		log.Printf("[AssemblyModule] Warning: %v", err)
	}
}

// Update 推进一帧
//
// 顺序固定：定时回调 -> 组装状态机 -> 物理 -> 部件守护 -> 清理实体
func (m *AssemblyModule) Update(deltaTime float64) {
	m.scheduler.Update(deltaTime)
	m.assemblySystem.Update(deltaTime)
	m.physicsSystem.Update(deltaTime)
	m.guardSystem.Update(deltaTime)
	m.entityManager.RemoveMarkedEntities()
}

// Activate 开始待机跳跃
func (m *AssemblyModule) Activate() bool {
	return m.assemblySystem.Activate(m.anchor)
}

// Build 开始或中断组装
func (m *AssemblyModule) Build(enable bool) bool {
	if !m.assemblySystem.Build(m.anchor, enable) {
		return false
	}
	m.building = enable
	return true
}

// ToggleBuild 在组装与中断之间切换（终端前端没有按键抬起事件）
func (m *AssemblyModule) ToggleBuild() bool {
	return m.Build(!m.building)
}

// IsBuilding 当前是否处于组装中
func (m *AssemblyModule) IsBuilding() bool {
	return m.building
}

// SaveLayout 采集当前部件目标位姿并写入存档
//
// 返回:
//   - *config.Layout: 保存的布局
//   - error: 没有存档、部件已全部安装或写入失败时返回错误
func (m *AssemblyModule) SaveLayout() (*config.Layout, error) {
	if m.layoutStore == nil {
		return nil, fmt.Errorf("no layout store configured")
	}
	layout, err := authoring.CaptureLayout(m.entityManager, m.anchor, m.blueprint.Name)
	if err != nil {
		return nil, err
	}
	if len(layout.Pieces) != len(m.blueprint.Blocks) {
		return nil, fmt.Errorf("only %d of %d pieces still carry a target", len(layout.Pieces), len(m.blueprint.Blocks))
	}
	if err := m.layoutStore.Save(layout); err != nil {
		return nil, err
	}
	if m.callbacks.OnLayoutSaved != nil {
		m.callbacks.OnLayoutSaved(layout)
	}
	return layout, nil
}

// State 返回组装状态，控制器已拆除时第二个返回值为 false
func (m *AssemblyModule) State() (components.AssemblyState, bool) {
	return m.assemblySystem.State(m.anchor)
}

// RemainingPieces 尚未安装的部件数量
func (m *AssemblyModule) RemainingPieces() int {
	comp, ok := ecs.GetComponent[*components.AssemblyComponent](m.entityManager, m.anchor)
	if !ok {
		return 0
	}
	return len(comp.Pieces)
}

// EntityManager 返回当前世界的实体管理器（Restart 后会变化）
func (m *AssemblyModule) EntityManager() *ecs.EntityManager {
	return m.entityManager
}

// Anchor 返回锚点实体
func (m *AssemblyModule) Anchor() ecs.EntityID {
	return m.anchor
}

// Floor 返回地面范围
func (m *AssemblyModule) Floor() systems.FloorBounds {
	return m.physicsSystem.Floor()
}

// Blueprint 返回蓝图
func (m *AssemblyModule) Blueprint() *config.BlueprintConfig {
	return m.blueprint
}
