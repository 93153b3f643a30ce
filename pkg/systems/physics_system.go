package systems

import (
	"github.com/decker502/construct/pkg/components"
	"github.com/decker502/construct/pkg/ecs"
	"github.com/go-gl/mathgl/mgl64"
)

// 物理常量
const (
	// DefaultGravity 重力加速度（单位/秒²）
	DefaultGravity = -9.81

	// restSpeed 落地后竖直速度低于此值即视为静止，避免无限微弹
	restSpeed = 0.05

	// floorSnapDepth 穿透地面超过此深度不再回弹（已经从地面边缘掉下去了）
	floorSnapDepth = 1.0
)

// TriggerListener 碰撞体进入触发区域时的回调
//
// 参数:
//   - body: 进入区域的刚体实体
//   - zone: 区域实体
//   - tag: 区域标签
type TriggerListener func(body, zone ecs.EntityID, tag string)

// FloorBounds 地面范围（以原点为中心的矩形，位于 Y 平面上）
type FloorBounds struct {
	HalfWidth float64
	HalfDepth float64
	Y         float64
}

// Contains 判断 XZ 坐标是否在地面范围内
func (f FloorBounds) Contains(x, z float64) bool {
	return x >= -f.HalfWidth && x <= f.HalfWidth && z >= -f.HalfDepth && z <= f.HalfDepth
}

type bodyZonePair struct {
	body ecs.EntityID
	zone ecs.EntityID
}

// PhysicsSystem 简化的刚体模拟
//
// 只提供组装流程需要的能力：重力积分、冲量、地面接触与触发区域检测。
// 运动学刚体不被积分，位置完全由脚本写入。部件之间不做碰撞。
type PhysicsSystem struct {
	em      *ecs.EntityManager
	gravity mgl64.Vec3
	floor   FloorBounds

	listeners []TriggerListener
	// 上一帧已在区域内的 (刚体, 区域) 组合，只在进入时回调
	inside map[bodyZonePair]bool
}

// NewPhysicsSystem 创建物理系统
//
// 参数:
//   - em: 实体管理器
//   - floor: 地面范围
//
// 返回:
//   - *PhysicsSystem: 物理系统实例
func NewPhysicsSystem(em *ecs.EntityManager, floor FloorBounds) *PhysicsSystem {
	return &PhysicsSystem{
		em:      em,
		gravity: mgl64.Vec3{0, DefaultGravity, 0},
		floor:   floor,
		inside:  make(map[bodyZonePair]bool),
	}
}

// SetGravity 设置重力加速度
func (ps *PhysicsSystem) SetGravity(g mgl64.Vec3) {
	ps.gravity = g
}

// Floor 返回地面范围
func (ps *PhysicsSystem) Floor() FloorBounds {
	return ps.floor
}

// AddTriggerListener 注册触发区域回调
func (ps *PhysicsSystem) AddTriggerListener(listener TriggerListener) {
	ps.listeners = append(ps.listeners, listener)
}

// Update 积分所有动态刚体并检测触发区域
//
// 参数:
//   - deltaTime: 自上一帧以来经过的时间（秒）
func (ps *PhysicsSystem) Update(deltaTime float64) {
	bodies := ecs.GetEntitiesWith2[*components.RigidBodyComponent, *components.TransformComponent](ps.em)

	for _, id := range bodies {
		rb, tr, _ := ecs.GetComponents2[*components.RigidBodyComponent, *components.TransformComponent](ps.em, id)
		if rb.IsKinematic {
			continue
		}

		if rb.UseGravity {
			rb.Velocity = rb.Velocity.Add(ps.gravity.Mul(deltaTime))
		}
		tr.Position = tr.Position.Add(rb.Velocity.Mul(deltaTime))

		col, ok := ecs.GetComponent[*components.ColliderComponent](ps.em, id)
		if ok && col.Enabled {
			ps.resolveFloorContact(tr, rb, col)
		}
	}

	ps.detectTriggers(bodies)
}

// resolveFloorContact 处理与地面的接触：回弹 + 摩擦
func (ps *PhysicsSystem) resolveFloorContact(
	tr *components.TransformComponent,
	rb *components.RigidBodyComponent,
	col *components.ColliderComponent,
) {
	pos := tr.Position
	if !ps.floor.Contains(pos.X(), pos.Z()) {
		return
	}

	bottom := pos.Y() - col.HalfExtents.Y()
	if bottom >= ps.floor.Y || bottom < ps.floor.Y-floorSnapDepth {
		return
	}

	tr.Position = mgl64.Vec3{pos.X(), ps.floor.Y + col.HalfExtents.Y(), pos.Z()}

	v := rb.Velocity
	vy := v.Y()
	if vy < 0 {
		vy = -vy * rb.Bounciness
	}
	if vy < restSpeed {
		vy = 0
	}
	keep := 1 - rb.Friction
	rb.Velocity = mgl64.Vec3{v.X() * keep, vy, v.Z() * keep}
}

// detectTriggers 检测碰撞体进入触发区域
func (ps *PhysicsSystem) detectTriggers(bodies []ecs.EntityID) {
	zones := ecs.GetEntitiesWith1[*components.ZoneComponent](ps.em)
	if len(zones) == 0 {
		return
	}

	stillInside := make(map[bodyZonePair]bool, len(ps.inside))

	for _, id := range bodies {
		col, ok := ecs.GetComponent[*components.ColliderComponent](ps.em, id)
		if !ok || !col.Enabled {
			continue
		}
		tr, _ := ecs.GetComponent[*components.TransformComponent](ps.em, id)
		min, max := col.Bounds(tr.Position)

		for _, zoneID := range zones {
			zone, _ := ecs.GetComponent[*components.ZoneComponent](ps.em, zoneID)
			if !zone.Overlaps(min, max) {
				continue
			}

			pair := bodyZonePair{body: id, zone: zoneID}
			stillInside[pair] = true
			if ps.inside[pair] {
				continue
			}
			for _, listener := range ps.listeners {
				listener(id, zoneID, zone.Tag)
			}
		}
	}

	ps.inside = stillInside
}
