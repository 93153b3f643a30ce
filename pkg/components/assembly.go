package components

import (
	"github.com/decker502/construct/pkg/ecs"
	"github.com/decker502/construct/pkg/game"
	"github.com/go-gl/mathgl/mgl64"
)

// AssemblyState 组装状态机的状态
//
// 状态值只用于区分，不表达任何先后顺序；转换条件通过具名谓词判断。
type AssemblyState int

const (
	AssemblyInactive         AssemblyState = iota // 未激活（初始状态）
	AssemblyDelay                                 // 等待定时回调
	AssemblyPieceJump                             // 待机跳跃：对游标处部件施加冲量
	AssemblyStartBuild                            // 选中首个部件，切换为运动学
	AssemblyMoveActivePiece                       // 将首个部件移向目标位置
	AssemblyPieceInstalled                        // 首个部件到位，固定并移出列表
	AssemblyBuildInterrupted                      // 组装被中断，恢复物理并重新待机
	AssemblyBuildComplete                         // 全部部件安装完毕
	AssemblyFinalJump                             // 成品整体跳跃
)

var assemblyStateNames = map[AssemblyState]string{
	AssemblyInactive:         "Inactive",
	AssemblyDelay:            "Delay",
	AssemblyPieceJump:        "PieceJump",
	AssemblyStartBuild:       "StartBuild",
	AssemblyMoveActivePiece:  "MoveActivePiece",
	AssemblyPieceInstalled:   "PieceInstalled",
	AssemblyBuildInterrupted: "BuildInterrupted",
	AssemblyBuildComplete:    "BuildComplete",
	AssemblyFinalJump:        "FinalJump",
}

// String 实现 fmt.Stringer
func (s AssemblyState) String() string {
	if name, ok := assemblyStateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// 最终跳跃的阶段计数：上升段 2，回落段 3。
// 移动速度与计数成正比，回落段因此比上升段快 1.5 倍。
const (
	FinalPhaseNone   = 0
	FinalPhaseRise   = 2
	FinalPhaseReturn = 3
)

// AssemblyComponent 组装控制器组件
//
// 挂在组装体的锚点实体上。Pieces 是尚未安装的部件（发现顺序），
// 组装阶段活动部件永远是 Pieces[0]；Members 是锚点下的全部子实体，
// 最终跳跃时随锚点一起平移。
type AssemblyComponent struct {
	State AssemblyState

	Pieces  []ecs.EntityID // 待安装部件，只通过 TakeFront 缩短
	Members []ecs.EntityID // 全部子实体（含已安装部件）

	// 待机跳跃游标，-1 表示下一次推进从 0 开始
	JumpCursor int
	// 最终跳跃阶段计数（FinalPhaseNone/Rise/Return）
	FinalPhaseCounter int

	// 调参（来自 AssemblyConfig）
	JumpForce       float64
	JumpDelay       float64
	StartBuildSpeed float64
	MaxBuildSpeed   float64
	SpeedRampRate   float64
	UseFinalJump    bool

	// 当前组装速度，一次组装过程内单调不减，中断后回到 StartBuildSpeed
	CurrentBuildSpeed float64

	// 最终跳跃的两个端点
	RestPosition mgl64.Vec3
	ApexPosition mgl64.Vec3

	// 待执行的延迟回调
	PendingTimer game.TimerHandle
}

// ActivePiece 返回当前活动部件（Pieces[0]）
func (a *AssemblyComponent) ActivePiece() (ecs.EntityID, bool) {
	if len(a.Pieces) == 0 {
		return ecs.InvalidEntity, false
	}
	return a.Pieces[0], true
}

// TakeFront 移除并返回列表首个部件
func (a *AssemblyComponent) TakeFront() (ecs.EntityID, bool) {
	id, ok := a.ActivePiece()
	if !ok {
		return ecs.InvalidEntity, false
	}
	a.Pieces = a.Pieces[1:]
	return id, true
}

// IsFinishing 是否处于最终跳跃流程（FinalJump 或其间的 Delay）
func (a *AssemblyComponent) IsFinishing() bool {
	return a.State == AssemblyFinalJump ||
		(a.State == AssemblyDelay && a.FinalPhaseCounter != FinalPhaseNone)
}

// AcceptsBuildCommands Build(true/false) 是否生效
func (a *AssemblyComponent) AcceptsBuildCommands() bool {
	switch a.State {
	case AssemblyInactive, AssemblyBuildComplete:
		return false
	}
	return !a.IsFinishing()
}

// CanResumeJumping 推进游标时是否允许重新进入 PieceJump
//
// 只在空闲/待机或刚被中断时允许，不能打断进行中的组装。
func (a *AssemblyComponent) CanResumeJumping() bool {
	if a.IsFinishing() {
		return false
	}
	switch a.State {
	case AssemblyInactive, AssemblyDelay, AssemblyPieceJump, AssemblyBuildInterrupted:
		return true
	}
	return false
}
