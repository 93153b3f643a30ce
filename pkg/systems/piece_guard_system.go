package systems

import (
	"log"

	"github.com/decker502/construct/pkg/components"
	"github.com/decker502/construct/pkg/ecs"
	"github.com/go-gl/mathgl/mgl64"
)

// PieceLeaveRadius 部件离目标位置超过此距离即视为离开组装区域
const PieceLeaveRadius = 100.0

// PieceGuardSystem 部件自我修正
//
// 每个物理步检查一次：部件被冲量或碰撞甩出组装区域，
// 或者掉进禁区（ZoneTagForbidden）时，清零速度并送回目标位置。
// 与组装状态机无关，只要实体还带着 PieceComponent 就生效。
type PieceGuardSystem struct {
	em *ecs.EntityManager
}

// NewPieceGuardSystem 创建部件守护系统，并订阅物理系统的触发区域回调
func NewPieceGuardSystem(em *ecs.EntityManager, physics *PhysicsSystem) *PieceGuardSystem {
	s := &PieceGuardSystem{em: em}
	if physics != nil {
		physics.AddTriggerListener(s.onTriggerEnter)
	}
	return s
}

// Update 检查所有部件是否离开组装区域
func (s *PieceGuardSystem) Update(deltaTime float64) {
	pieces := ecs.GetEntitiesWith2[*components.PieceComponent, *components.TransformComponent](s.em)
	for _, id := range pieces {
		piece, _ := ecs.GetComponent[*components.PieceComponent](s.em, id)
		tr, _ := ecs.GetComponent[*components.TransformComponent](s.em, id)

		if tr.Position.Sub(piece.TargetPosition).Len() > PieceLeaveRadius {
			log.Printf("[PieceGuardSystem] Piece %d left the assembly volume, returning to target", id)
			s.returnToTarget(id, piece, tr)
		}
	}
}

// onTriggerEnter 部件进入禁区时送回目标位置
func (s *PieceGuardSystem) onTriggerEnter(body, zone ecs.EntityID, tag string) {
	if tag != components.ZoneTagForbidden {
		return
	}
	piece, ok := ecs.GetComponent[*components.PieceComponent](s.em, body)
	if !ok {
		return
	}
	tr, ok := ecs.GetComponent[*components.TransformComponent](s.em, body)
	if !ok {
		return
	}

	log.Printf("[PieceGuardSystem] Piece %d entered forbidden zone %d, returning to target", body, zone)
	s.returnToTarget(body, piece, tr)
}

func (s *PieceGuardSystem) returnToTarget(id ecs.EntityID, piece *components.PieceComponent, tr *components.TransformComponent) {
	if rb, ok := ecs.GetComponent[*components.RigidBodyComponent](s.em, id); ok {
		rb.Velocity = mgl64.Vec3{}
	}
	tr.Position = piece.TargetPosition
}
