package systems

import (
	"log"
	"math"

	"github.com/decker502/construct/pkg/components"
	"github.com/decker502/construct/pkg/ecs"
	"github.com/decker502/construct/pkg/game"
	"github.com/go-gl/mathgl/mgl64"
)

// 组装流程常量
const (
	// ArrivalTolerance 到位判定：剩余距离 <= deltaTime * ArrivalTolerance 时直接吸附
	ArrivalTolerance = 3.0

	// JumpBiasDistance 部件离锚点超过此距离时，跳跃方向偏向锚点
	JumpBiasDistance = 1.0

	// JumpBiasWeight 偏向锚点的方向权重（向上分量为 1）
	JumpBiasWeight = 4.0

	// fallbackFinalJumpSpeed 起始速度为 0 时最终跳跃使用的基础速度
	fallbackFinalJumpSpeed = 1.0
)

var worldUp = mgl64.Vec3{0, 1, 0}

// AssemblySystem 组装状态机
//
// 每个 tick 根据 AssemblyComponent.State 分派到对应处理函数：
//
//	PieceJump        -> Delay（定时推进游标后回到 PieceJump）
//	StartBuild       -> MoveActivePiece
//	MoveActivePiece  -> PieceInstalled
//	PieceInstalled   -> StartBuild / BuildComplete
//	BuildInterrupted -> PieceJump
//	BuildComplete    -> FinalJump / 拆除
//	FinalJump        -> Delay -> FinalJump（回落）-> Delay -> 拆除
//
// 外部只通过 Activate / Build 驱动。延迟回调由 TimerScheduler 在同一 tick 线程上执行。
type AssemblySystem struct {
	em        *ecs.EntityManager
	scheduler *game.TimerScheduler

	onPieceInstalled func(anchor, piece ecs.EntityID)
	onStateChanged   func(anchor ecs.EntityID, from, to components.AssemblyState)
	onDismantled     func(anchor ecs.EntityID)
}

// NewAssemblySystem 创建组装系统
//
// 参数:
//   - em: 实体管理器
//   - scheduler: 帧时钟调度器（跳跃间隔、最终跳跃停顿）
func NewAssemblySystem(em *ecs.EntityManager, scheduler *game.TimerScheduler) *AssemblySystem {
	return &AssemblySystem{
		em:        em,
		scheduler: scheduler,
	}
}

// SetPieceInstalledCallback 部件安装完成时回调
func (s *AssemblySystem) SetPieceInstalledCallback(callback func(anchor, piece ecs.EntityID)) {
	s.onPieceInstalled = callback
}

// SetStateChangedCallback 状态切换时回调
func (s *AssemblySystem) SetStateChangedCallback(callback func(anchor ecs.EntityID, from, to components.AssemblyState)) {
	s.onStateChanged = callback
}

// SetDismantledCallback 控制器拆除时回调
func (s *AssemblySystem) SetDismantledCallback(callback func(anchor ecs.EntityID)) {
	s.onDismantled = callback
}

// State 返回组装体当前状态
//
// 返回:
//   - components.AssemblyState: 当前状态
//   - bool: 锚点上没有 AssemblyComponent（未创建或已拆除）时为 false
func (s *AssemblySystem) State(anchor ecs.EntityID) (components.AssemblyState, bool) {
	comp, ok := ecs.GetComponent[*components.AssemblyComponent](s.em, anchor)
	if !ok {
		return components.AssemblyInactive, false
	}
	return comp.State, true
}

// Activate 开始待机跳跃
//
// 仅在 Inactive 状态下生效：打开所有部件的重力并启动跳跃循环。
//
// 返回:
//   - bool: 是否生效
func (s *AssemblySystem) Activate(anchor ecs.EntityID) bool {
	comp, ok := ecs.GetComponent[*components.AssemblyComponent](s.em, anchor)
	if !ok || comp.State != components.AssemblyInactive {
		return false
	}

	for _, piece := range comp.Pieces {
		if rb, ok := ecs.GetComponent[*components.RigidBodyComponent](s.em, piece); ok {
			rb.UseGravity = true
		}
	}

	log.Printf("[AssemblySystem] Anchor %d activated with %d pieces", anchor, len(comp.Pieces))
	comp.JumpCursor = -1
	s.advanceJumpCursor(anchor)
	return true
}

// Build 开始（true）或中断（false）组装
//
// Inactive、BuildComplete 以及最终跳跃期间忽略。这是唯一的中断入口：
// 会取消尚未触发的跳跃回调；中断时立即复位速度和首个部件的物理，
// 游标归零和恢复跳跃由下一个 tick 的 BuildInterrupted 处理。
//
// 返回:
//   - bool: 是否生效
func (s *AssemblySystem) Build(anchor ecs.EntityID, enable bool) bool {
	comp, ok := ecs.GetComponent[*components.AssemblyComponent](s.em, anchor)
	if !ok || !comp.AcceptsBuildCommands() {
		return false
	}

	s.cancelPendingTimer(comp)
	if enable {
		s.setState(anchor, comp, components.AssemblyStartBuild)
	} else {
		// 立即复位：同一帧内紧跟的 Build(true) 会覆盖 BuildInterrupted 状态
		s.resetInterruptedRun(comp)
		s.setState(anchor, comp, components.AssemblyBuildInterrupted)
	}
	return true
}

// Update 推进所有组装体的状态机
//
// 参数:
//   - deltaTime: 自上一帧以来经过的时间（秒）
func (s *AssemblySystem) Update(deltaTime float64) {
	anchors := ecs.GetEntitiesWith1[*components.AssemblyComponent](s.em)
	for _, anchor := range anchors {
		comp, ok := ecs.GetComponent[*components.AssemblyComponent](s.em, anchor)
		if !ok {
			continue
		}

		switch comp.State {
		case components.AssemblyPieceJump:
			s.updatePieceJump(anchor, comp)
		case components.AssemblyStartBuild:
			s.updateStartBuild(anchor, comp)
		case components.AssemblyMoveActivePiece:
			s.updateMoveActivePiece(anchor, comp, deltaTime)
		case components.AssemblyPieceInstalled:
			s.updatePieceInstalled(anchor, comp)
		case components.AssemblyBuildInterrupted:
			s.updateBuildInterrupted(anchor, comp)
		case components.AssemblyBuildComplete:
			s.updateBuildComplete(anchor, comp)
		case components.AssemblyFinalJump:
			s.updateFinalJump(anchor, comp, deltaTime)
		}
	}
}

// updatePieceJump 给游标处的部件一个向上的冲量，离锚点较远时偏向锚点
func (s *AssemblySystem) updatePieceJump(anchor ecs.EntityID, comp *components.AssemblyComponent) {
	if len(comp.Pieces) == 0 {
		// 没有部件可跳，停在 Delay 等待 Build
		s.setState(anchor, comp, components.AssemblyDelay)
		return
	}
	if comp.JumpCursor < 0 || comp.JumpCursor >= len(comp.Pieces) {
		comp.JumpCursor = 0
	}

	piece := comp.Pieces[comp.JumpCursor]
	rb, okRB := ecs.GetComponent[*components.RigidBodyComponent](s.em, piece)
	tr, okTR := ecs.GetComponent[*components.TransformComponent](s.em, piece)
	anchorTR, okAnchor := ecs.GetComponent[*components.TransformComponent](s.em, anchor)

	if okRB && okTR && okAnchor {
		dir := worldUp
		toAnchor := anchorTR.Position.Sub(tr.Position)
		if toAnchor.Len() > JumpBiasDistance {
			dir = dir.Add(toAnchor.Normalize().Mul(JumpBiasWeight))
		}
		rb.ApplyImpulse(dir.Normalize().Mul(comp.JumpForce))
	}

	s.setState(anchor, comp, components.AssemblyDelay)
	comp.PendingTimer = s.scheduler.After(comp.JumpDelay, func() {
		s.advanceJumpCursor(anchor)
	})
}

// advanceJumpCursor 游标前进一位（越界回到 0）
//
// 只有空闲/待机或刚被中断时才重新进入 PieceJump，不会打断进行中的组装。
func (s *AssemblySystem) advanceJumpCursor(anchor ecs.EntityID) {
	comp, ok := ecs.GetComponent[*components.AssemblyComponent](s.em, anchor)
	if !ok {
		return
	}
	comp.PendingTimer = game.NoTimer

	comp.JumpCursor++
	if comp.JumpCursor >= len(comp.Pieces) {
		comp.JumpCursor = 0
	}

	if comp.CanResumeJumping() {
		s.setState(anchor, comp, components.AssemblyPieceJump)
	}
}

// updateStartBuild 选中首个部件：关闭碰撞体和重力，切换为运动学
func (s *AssemblySystem) updateStartBuild(anchor ecs.EntityID, comp *components.AssemblyComponent) {
	piece, ok := comp.ActivePiece()
	if !ok {
		s.setState(anchor, comp, components.AssemblyBuildComplete)
		return
	}

	s.setPiecePhysics(piece, false, false, true)
	s.setState(anchor, comp, components.AssemblyMoveActivePiece)
}

// updateMoveActivePiece 以当前速度把首个部件移向目标位置，速度随时间增长
func (s *AssemblySystem) updateMoveActivePiece(anchor ecs.EntityID, comp *components.AssemblyComponent, deltaTime float64) {
	piece, ok := comp.ActivePiece()
	if !ok {
		s.setState(anchor, comp, components.AssemblyBuildComplete)
		return
	}

	tr, okTR := ecs.GetComponent[*components.TransformComponent](s.em, piece)
	pc, okPC := ecs.GetComponent[*components.PieceComponent](s.em, piece)
	if !okTR || !okPC {
		// 部件状态已丢失，按已到位处理，保证列表继续收缩
		log.Printf("[AssemblySystem] Warning: active piece %d has no transform/piece component", piece)
		s.setState(anchor, comp, components.AssemblyPieceInstalled)
		return
	}
	if rb, ok := ecs.GetComponent[*components.RigidBodyComponent](s.em, piece); ok {
		rb.Velocity = mgl64.Vec3{}
	}

	toTarget := pc.TargetPosition.Sub(tr.Position)
	dist := toTarget.Len()
	step := comp.CurrentBuildSpeed * deltaTime

	if dist <= step || dist <= deltaTime*ArrivalTolerance {
		tr.Position = pc.TargetPosition
		tr.Rotation = pc.TargetRotation
		s.setState(anchor, comp, components.AssemblyPieceInstalled)
	} else if step > 0 {
		t := step / dist
		tr.Position = tr.Position.Add(toTarget.Mul(t))
		tr.Rotation = slerpShortest(tr.Rotation, pc.TargetRotation, t)
	}

	if comp.CurrentBuildSpeed < comp.MaxBuildSpeed {
		comp.CurrentBuildSpeed = math.Min(comp.CurrentBuildSpeed+deltaTime*comp.SpeedRampRate, comp.MaxBuildSpeed)
	}
}

// updatePieceInstalled 固定首个部件并将其移出列表，随后销毁部件组件
func (s *AssemblySystem) updatePieceInstalled(anchor ecs.EntityID, comp *components.AssemblyComponent) {
	piece, ok := comp.ActivePiece()
	if !ok {
		s.setState(anchor, comp, components.AssemblyBuildComplete)
		return
	}

	s.setPiecePhysics(piece, true, false, true)
	comp.TakeFront()
	ecs.RemoveComponent[*components.PieceComponent](s.em, piece)

	log.Printf("[AssemblySystem] Anchor %d: piece %d installed, %d remaining", anchor, piece, len(comp.Pieces))
	if s.onPieceInstalled != nil {
		s.onPieceInstalled(anchor, piece)
	}

	if len(comp.Pieces) > 0 {
		s.setState(anchor, comp, components.AssemblyStartBuild)
	} else {
		s.setState(anchor, comp, components.AssemblyBuildComplete)
	}
}

// updateBuildInterrupted 速度复位，首个部件恢复完整物理，重新开始待机跳跃
func (s *AssemblySystem) updateBuildInterrupted(anchor ecs.EntityID, comp *components.AssemblyComponent) {
	s.resetInterruptedRun(comp)
	comp.JumpCursor = 0
	s.setState(anchor, comp, components.AssemblyPieceJump)
}

// resetInterruptedRun 速度回到起始值，首个部件恢复完整物理（碰撞、重力、非运动学）
func (s *AssemblySystem) resetInterruptedRun(comp *components.AssemblyComponent) {
	comp.CurrentBuildSpeed = comp.StartBuildSpeed
	if piece, ok := comp.ActivePiece(); ok {
		s.setPiecePhysics(piece, true, true, false)
	}
}

// updateBuildComplete 进入最终跳跃，或直接拆除控制器
func (s *AssemblySystem) updateBuildComplete(anchor ecs.EntityID, comp *components.AssemblyComponent) {
	if !comp.UseFinalJump {
		s.dismantle(anchor, comp)
		return
	}

	comp.FinalPhaseCounter = components.FinalPhaseRise
	s.setState(anchor, comp, components.AssemblyFinalJump)
}

// updateFinalJump 成品整体移向最高点（回落段移回原位），到达后停顿 JumpDelay
func (s *AssemblySystem) updateFinalJump(anchor ecs.EntityID, comp *components.AssemblyComponent, deltaTime float64) {
	anchorTR, ok := ecs.GetComponent[*components.TransformComponent](s.em, anchor)
	if !ok {
		s.dismantle(anchor, comp)
		return
	}

	target := comp.RestPosition
	if comp.FinalPhaseCounter == components.FinalPhaseRise {
		target = comp.ApexPosition
	}

	base := comp.StartBuildSpeed
	if base <= 0 {
		base = fallbackFinalJumpSpeed
	}
	rate := deltaTime * base * float64(comp.FinalPhaseCounter)

	toTarget := target.Sub(anchorTR.Position)
	if rate < 1 && toTarget.Len() > rate {
		s.translateAssembly(comp, anchorTR, toTarget.Mul(rate))
		return
	}

	s.translateAssembly(comp, anchorTR, toTarget)
	s.setState(anchor, comp, components.AssemblyDelay)
	comp.PendingTimer = s.scheduler.After(comp.JumpDelay, func() {
		s.finishFinalLeg(anchor)
	})
}

// finishFinalLeg 最终跳跃每段停顿结束：上升段之后回落，回落段之后拆除
func (s *AssemblySystem) finishFinalLeg(anchor ecs.EntityID) {
	comp, ok := ecs.GetComponent[*components.AssemblyComponent](s.em, anchor)
	if !ok {
		return
	}
	comp.PendingTimer = game.NoTimer

	if comp.FinalPhaseCounter == components.FinalPhaseRise {
		comp.FinalPhaseCounter = components.FinalPhaseReturn
		s.setState(anchor, comp, components.AssemblyFinalJump)
		return
	}
	s.dismantle(anchor, comp)
}

// translateAssembly 锚点与全部成员一起平移
func (s *AssemblySystem) translateAssembly(
	comp *components.AssemblyComponent,
	anchorTR *components.TransformComponent,
	delta mgl64.Vec3,
) {
	anchorTR.Position = anchorTR.Position.Add(delta)
	for _, member := range comp.Members {
		if tr, ok := ecs.GetComponent[*components.TransformComponent](s.em, member); ok {
			tr.Position = tr.Position.Add(delta)
		}
	}
}

// dismantle 组装结束：销毁残留的部件组件，关闭锚点碰撞体，移除控制器
func (s *AssemblySystem) dismantle(anchor ecs.EntityID, comp *components.AssemblyComponent) {
	s.cancelPendingTimer(comp)

	for _, member := range comp.Members {
		ecs.RemoveComponent[*components.PieceComponent](s.em, member)
	}
	if col, ok := ecs.GetComponent[*components.ColliderComponent](s.em, anchor); ok {
		col.Enabled = false
	}

	if comp.State != components.AssemblyBuildComplete {
		s.setState(anchor, comp, components.AssemblyBuildComplete)
	}
	comp.FinalPhaseCounter = components.FinalPhaseNone
	ecs.RemoveComponent[*components.AssemblyComponent](s.em, anchor)

	log.Printf("[AssemblySystem] Anchor %d dismantled", anchor)
	if s.onDismantled != nil {
		s.onDismantled(anchor)
	}
}

// setPiecePhysics 设置部件的碰撞体、重力和运动学开关
func (s *AssemblySystem) setPiecePhysics(piece ecs.EntityID, colliderEnabled, useGravity, isKinematic bool) {
	if col, ok := ecs.GetComponent[*components.ColliderComponent](s.em, piece); ok {
		col.Enabled = colliderEnabled
	}
	if rb, ok := ecs.GetComponent[*components.RigidBodyComponent](s.em, piece); ok {
		rb.IsKinematic = isKinematic
		rb.UseGravity = useGravity
	}
}

func (s *AssemblySystem) cancelPendingTimer(comp *components.AssemblyComponent) {
	if comp.PendingTimer != game.NoTimer {
		s.scheduler.Cancel(comp.PendingTimer)
		comp.PendingTimer = game.NoTimer
	}
}

func (s *AssemblySystem) setState(anchor ecs.EntityID, comp *components.AssemblyComponent, next components.AssemblyState) {
	prev := comp.State
	comp.State = next
	if prev == next {
		return
	}
	log.Printf("[AssemblySystem] Anchor %d: %s -> %s", anchor, prev, next)
	if s.onStateChanged != nil {
		s.onStateChanged(anchor, prev, next)
	}
}

// slerpShortest 沿最短弧插值
func slerpShortest(from, to mgl64.Quat, t float64) mgl64.Quat {
	if from.Dot(to) < 0 {
		to = to.Scale(-1)
	}
	return mgl64.QuatSlerp(from, to, t)
}
