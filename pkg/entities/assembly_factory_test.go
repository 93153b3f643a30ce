package entities

import (
	"testing"

	"github.com/decker502/construct/pkg/components"
	"github.com/decker502/construct/pkg/config"
	"github.com/decker502/construct/pkg/ecs"
	"github.com/decker502/construct/pkg/game"
	"github.com/go-gl/mathgl/mgl64"
)

// TestNewAssemblyEntity 测试锚点实体的组件与调参
func TestNewAssemblyEntity(t *testing.T) {
	em := ecs.NewEntityManager()
	cfg := config.DefaultAssemblyConfig()
	pos := mgl64.Vec3{1, 0, 2}

	anchor, err := NewAssemblyEntity(em, cfg, pos, mgl64.Vec3{2, 1, 2})
	if err != nil {
		t.Fatalf("NewAssemblyEntity failed: %v", err)
	}

	comp, ok := ecs.GetComponent[*components.AssemblyComponent](em, anchor)
	if !ok {
		t.Fatal("anchor should have an AssemblyComponent")
	}
	if comp.State != components.AssemblyInactive {
		t.Errorf("State = %s, want Inactive", comp.State)
	}
	if comp.JumpCursor != -1 || comp.PendingTimer != game.NoTimer {
		t.Errorf("JumpCursor=%d PendingTimer=%d, want -1/NoTimer", comp.JumpCursor, comp.PendingTimer)
	}
	if comp.CurrentBuildSpeed != cfg.StartBuildSpeed || comp.MaxBuildSpeed != cfg.MaxBuildSpeed() {
		t.Errorf("speeds = %v/%v, want %v/%v", comp.CurrentBuildSpeed, comp.MaxBuildSpeed, cfg.StartBuildSpeed, cfg.MaxBuildSpeed())
	}
	if comp.RestPosition != pos {
		t.Errorf("RestPosition = %v, want %v", comp.RestPosition, pos)
	}
	if want := pos.Add(mgl64.Vec3{0, cfg.FinalJumpHeight, 0}); !comp.ApexPosition.ApproxEqualThreshold(want, 1e-12) {
		t.Errorf("ApexPosition = %v, want %v", comp.ApexPosition, want)
	}

	col, ok := ecs.GetComponent[*components.ColliderComponent](em, anchor)
	if !ok || !col.Enabled {
		t.Error("anchor should have an enabled collider")
	}
}

// TestNewAssemblyEntityErrors 测试参数校验
func TestNewAssemblyEntityErrors(t *testing.T) {
	if _, err := NewAssemblyEntity(nil, config.DefaultAssemblyConfig(), mgl64.Vec3{}, mgl64.Vec3{}); err == nil {
		t.Error("nil entity manager should fail")
	}
	if _, err := NewAssemblyEntity(ecs.NewEntityManager(), nil, mgl64.Vec3{}, mgl64.Vec3{}); err == nil {
		t.Error("nil config should fail")
	}
}

// TestNewBlockEntityAndRegister 测试子实体创建与部件登记
func TestNewBlockEntityAndRegister(t *testing.T) {
	em := ecs.NewEntityManager()
	anchor, _ := NewAssemblyEntity(em, config.DefaultAssemblyConfig(), mgl64.Vec3{}, mgl64.Vec3{1, 1, 1})
	block := &config.BlockSpec{Size: []float64{2, 1, 1}, Mass: 3, Color: "#ff0000"}
	rot := mgl64.QuatRotate(0.5, mgl64.Vec3{0, 1, 0})

	id, err := NewBlockEntity(em, anchor, mgl64.Vec3{1, 0.5, 0}, rot, block)
	if err != nil {
		t.Fatalf("NewBlockEntity failed: %v", err)
	}

	comp, _ := ecs.GetComponent[*components.AssemblyComponent](em, anchor)
	if len(comp.Members) != 1 || len(comp.Pieces) != 0 {
		t.Fatalf("members=%v pieces=%v, want one member and no pieces", comp.Members, comp.Pieces)
	}

	rb, _ := ecs.GetComponent[*components.RigidBodyComponent](em, id)
	if rb.Mass != 3 || rb.UseGravity {
		t.Errorf("rigid body mass=%v gravity=%v", rb.Mass, rb.UseGravity)
	}
	col, _ := ecs.GetComponent[*components.ColliderComponent](em, id)
	if col.HalfExtents != (mgl64.Vec3{1, 0.5, 0.5}) {
		t.Errorf("collider half extents = %v", col.HalfExtents)
	}
	box, _ := ecs.GetComponent[*components.RenderBoxComponent](em, id)
	if box.Color.R != 0xff || box.Color.G != 0 {
		t.Errorf("render color = %v", box.Color)
	}

	if err := RegisterPiece(em, anchor, id); err != nil {
		t.Fatalf("RegisterPiece failed: %v", err)
	}
	pc, ok := ecs.GetComponent[*components.PieceComponent](em, id)
	if !ok || pc.Anchor != anchor || pc.TargetPosition != (mgl64.Vec3{1, 0.5, 0}) || pc.TargetRotation != rot {
		t.Errorf("piece component = %+v", pc)
	}

	// 重复登记只更新目标
	tr, _ := ecs.GetComponent[*components.TransformComponent](em, id)
	tr.Position = mgl64.Vec3{0, 2, 0}
	if err := RegisterPiece(em, anchor, id); err != nil {
		t.Fatalf("second RegisterPiece failed: %v", err)
	}
	if len(comp.Pieces) != 1 {
		t.Errorf("piece registered twice: %v", comp.Pieces)
	}
	if pc.TargetPosition != (mgl64.Vec3{0, 2, 0}) {
		t.Errorf("target not recaptured: %v", pc.TargetPosition)
	}
}

// TestBlockEntityRequiresAnchor 测试非锚点实体
func TestBlockEntityRequiresAnchor(t *testing.T) {
	em := ecs.NewEntityManager()
	plain := em.CreateEntity()
	if _, err := NewBlockEntity(em, plain, mgl64.Vec3{}, mgl64.QuatIdent(), &config.BlockSpec{}); err == nil {
		t.Error("NewBlockEntity should fail for a non-anchor")
	}
	if err := RegisterPiece(em, plain, plain); err == nil {
		t.Error("RegisterPiece should fail for a non-anchor")
	}
}

// TestBuildFromBlueprint 测试按蓝图搭建
func TestBuildFromBlueprint(t *testing.T) {
	bp, err := config.LoadBlueprintConfig("../../data/blueprints/tower.yaml")
	if err != nil {
		t.Fatalf("failed to load blueprint: %v", err)
	}
	em := ecs.NewEntityManager()

	anchor, err := BuildFromBlueprint(em, config.DefaultAssemblyConfig(), bp)
	if err != nil {
		t.Fatalf("BuildFromBlueprint failed: %v", err)
	}

	comp, _ := ecs.GetComponent[*components.AssemblyComponent](em, anchor)
	if len(comp.Pieces) != len(bp.Blocks) || len(comp.Members) != len(bp.Blocks) {
		t.Fatalf("pieces=%d members=%d, want %d", len(comp.Pieces), len(comp.Members), len(bp.Blocks))
	}
	for i, id := range comp.Pieces {
		pc, _ := ecs.GetComponent[*components.PieceComponent](em, id)
		if !pc.TargetPosition.ApproxEqualThreshold(bp.Blocks[i].TargetPosition(), 1e-12) {
			t.Errorf("piece %d target = %v, want %v", i, pc.TargetPosition, bp.Blocks[i].TargetPosition())
		}
	}

	// 锚点碰撞体覆盖所有部件
	anchorTR, _ := ecs.GetComponent[*components.TransformComponent](em, anchor)
	anchorCol, _ := ecs.GetComponent[*components.ColliderComponent](em, anchor)
	amin, amax := anchorCol.Bounds(anchorTR.Position)
	for _, id := range comp.Pieces {
		tr, _ := ecs.GetComponent[*components.TransformComponent](em, id)
		col, _ := ecs.GetComponent[*components.ColliderComponent](em, id)
		pmin, pmax := col.Bounds(tr.Position)
		for axis := 0; axis < 3; axis++ {
			if pmin[axis] < amin[axis]-1e-9 || pmax[axis] > amax[axis]+1e-9 {
				t.Errorf("piece %d sticks out of the anchor collider on axis %d", id, axis)
			}
		}
	}

	zones := ecs.GetEntitiesWith1[*components.ZoneComponent](em)
	if len(zones) != 1 {
		t.Fatalf("expected one forbidden zone, got %d", len(zones))
	}
	zone, _ := ecs.GetComponent[*components.ZoneComponent](em, zones[0])
	if zone.Tag != components.ZoneTagForbidden || zone.Max.Y() != bp.KillPlaneY {
		t.Errorf("zone = %+v", zone)
	}
}
