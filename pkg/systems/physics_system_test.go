package systems

import (
	"math"
	"testing"

	"github.com/decker502/construct/pkg/components"
	"github.com/decker502/construct/pkg/ecs"
	"github.com/go-gl/mathgl/mgl64"
)

const testDT = 1.0 / 60.0

var testFloor = FloorBounds{HalfWidth: 10, HalfDepth: 10}

// newTestBody 创建一个 1x1x1 的动态刚体
func newTestBody(em *ecs.EntityManager, pos mgl64.Vec3, gravity bool) ecs.EntityID {
	id := em.CreateEntity()
	ecs.AddComponent(em, id, components.NewTransformComponent(pos))
	rb := components.NewRigidBodyComponent(1)
	rb.UseGravity = gravity
	ecs.AddComponent(em, id, rb)
	ecs.AddComponent(em, id, &components.ColliderComponent{Enabled: true, HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}})
	return id
}

func bodyOf(em *ecs.EntityManager, id ecs.EntityID) (*components.TransformComponent, *components.RigidBodyComponent) {
	tr, _ := ecs.GetComponent[*components.TransformComponent](em, id)
	rb, _ := ecs.GetComponent[*components.RigidBodyComponent](em, id)
	return tr, rb
}

// TestPhysicsGravityIntegration 测试重力积分
func TestPhysicsGravityIntegration(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewPhysicsSystem(em, testFloor)
	falling := newTestBody(em, mgl64.Vec3{0, 5, 0}, true)
	floating := newTestBody(em, mgl64.Vec3{2, 5, 0}, false)

	ps.Update(0.1)

	tr, rb := bodyOf(em, falling)
	if math.Abs(rb.Velocity.Y()-DefaultGravity*0.1) > 1e-12 {
		t.Errorf("velocity after one step = %v, want %v", rb.Velocity.Y(), DefaultGravity*0.1)
	}
	if wantY := 5 + DefaultGravity*0.1*0.1; math.Abs(tr.Position.Y()-wantY) > 1e-12 {
		t.Errorf("position after one step = %v, want %v", tr.Position.Y(), wantY)
	}

	tr, rb = bodyOf(em, floating)
	if tr.Position.Y() != 5 || rb.Velocity.Len() != 0 {
		t.Errorf("body without gravity moved: pos=%v vel=%v", tr.Position, rb.Velocity)
	}
}

// TestPhysicsSkipsKinematic 测试运动学刚体不被积分
func TestPhysicsSkipsKinematic(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewPhysicsSystem(em, testFloor)
	id := newTestBody(em, mgl64.Vec3{0, 5, 0}, true)
	tr, rb := bodyOf(em, id)
	rb.IsKinematic = true
	rb.Velocity = mgl64.Vec3{1, 0, 0}

	ps.Update(1)

	if tr.Position != (mgl64.Vec3{0, 5, 0}) {
		t.Errorf("kinematic body moved to %v", tr.Position)
	}
}

// TestPhysicsFloorContact 测试落地回弹与摩擦
func TestPhysicsFloorContact(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewPhysicsSystem(em, testFloor)
	ps.SetGravity(mgl64.Vec3{})
	id := newTestBody(em, mgl64.Vec3{0, 0.55, 0}, true)
	tr, rb := bodyOf(em, id)
	rb.Velocity = mgl64.Vec3{2, -3, 0}

	ps.Update(0.05)

	if tr.Position.Y() != 0.5 {
		t.Errorf("body should rest on the floor at y=0.5, got %v", tr.Position.Y())
	}
	if want := 3 * rb.Bounciness; math.Abs(rb.Velocity.Y()-want) > 1e-12 {
		t.Errorf("bounce velocity = %v, want %v", rb.Velocity.Y(), want)
	}
	if want := 2 * (1 - rb.Friction); math.Abs(rb.Velocity.X()-want) > 1e-12 {
		t.Errorf("horizontal velocity after friction = %v, want %v", rb.Velocity.X(), want)
	}
}

// TestPhysicsSettles 测试反复弹跳后最终静止在地面上
func TestPhysicsSettles(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewPhysicsSystem(em, testFloor)
	id := newTestBody(em, mgl64.Vec3{0, 3, 0}, true)

	for i := 0; i < 600; i++ {
		ps.Update(testDT)
	}

	tr, rb := bodyOf(em, id)
	if math.Abs(tr.Position.Y()-0.5) > 0.05 {
		t.Errorf("body did not settle on the floor: y=%v", tr.Position.Y())
	}
	if math.Abs(rb.Velocity.Y()) > 0.2 {
		t.Errorf("body still bouncing: vy=%v", rb.Velocity.Y())
	}
}

// TestPhysicsFallsOffEdge 测试地面范围外不接触
func TestPhysicsFallsOffEdge(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewPhysicsSystem(em, testFloor)
	id := newTestBody(em, mgl64.Vec3{20, 0.5, 0}, true)

	for i := 0; i < 60; i++ {
		ps.Update(testDT)
	}

	tr, _ := bodyOf(em, id)
	if tr.Position.Y() >= 0 {
		t.Errorf("body outside the floor should fall, y=%v", tr.Position.Y())
	}
}

// TestPhysicsDisabledColliderPassesThroughFloor 测试禁用碰撞体后穿过地面
func TestPhysicsDisabledColliderPassesThroughFloor(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewPhysicsSystem(em, testFloor)
	id := newTestBody(em, mgl64.Vec3{0, 0.55, 0}, true)
	col, _ := ecs.GetComponent[*components.ColliderComponent](em, id)
	col.Enabled = false

	for i := 0; i < 30; i++ {
		ps.Update(testDT)
	}

	tr, _ := bodyOf(em, id)
	if tr.Position.Y() >= 0.5 {
		t.Errorf("body with disabled collider should fall through, y=%v", tr.Position.Y())
	}
}

// TestPhysicsTriggerEnterOnce 测试触发区域只在进入时回调
func TestPhysicsTriggerEnterOnce(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewPhysicsSystem(em, testFloor)
	ps.SetGravity(mgl64.Vec3{})

	zone := em.CreateEntity()
	ecs.AddComponent(em, zone, &components.ZoneComponent{
		Tag: "test",
		Min: mgl64.Vec3{4, -1, -1},
		Max: mgl64.Vec3{6, 1, 1},
	})

	id := newTestBody(em, mgl64.Vec3{0, 0.5, 0}, false)
	tr, _ := bodyOf(em, id)

	var hits []string
	ps.AddTriggerListener(func(body, z ecs.EntityID, tag string) {
		if body != id || z != zone {
			t.Errorf("unexpected trigger pair (%d, %d)", body, z)
		}
		hits = append(hits, tag)
	})

	ps.Update(testDT)
	if len(hits) != 0 {
		t.Fatalf("trigger fired outside the zone: %v", hits)
	}

	tr.Position = mgl64.Vec3{5, 0.5, 0}
	ps.Update(testDT)
	ps.Update(testDT)
	if len(hits) != 1 || hits[0] != "test" {
		t.Fatalf("expected exactly one enter event, got %v", hits)
	}

	// 离开后再次进入
	tr.Position = mgl64.Vec3{0, 0.5, 0}
	ps.Update(testDT)
	tr.Position = mgl64.Vec3{5, 0.5, 0}
	ps.Update(testDT)
	if len(hits) != 2 {
		t.Errorf("re-entering should fire again, got %d events", len(hits))
	}
}

// TestFloorBoundsContains 测试地面范围判断
func TestFloorBoundsContains(t *testing.T) {
	f := FloorBounds{HalfWidth: 2, HalfDepth: 1}
	tests := []struct {
		x, z float64
		want bool
	}{
		{0, 0, true},
		{2, 1, true},
		{-2, -1, true},
		{2.01, 0, false},
		{0, -1.01, false},
	}
	for _, tt := range tests {
		if got := f.Contains(tt.x, tt.z); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.z, got, tt.want)
		}
	}
}
