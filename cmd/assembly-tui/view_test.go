package main

import (
	"testing"

	"github.com/decker502/construct/pkg/components"
	"github.com/decker502/construct/pkg/ecs"
	"github.com/go-gl/mathgl/mgl64"
)

func TestSideViewProjection(t *testing.T) {
	v := newSideView(80, 24)

	if got := v.column(0); got != 40 {
		t.Errorf("column(0) = %d, want 40", got)
	}
	if got := v.column(1); got != 44 {
		t.Errorf("column(1) = %d, want 44", got)
	}
	if got := v.row(0); got != v.floorRow {
		t.Errorf("row(0) = %d, want floor row %d", got, v.floorRow)
	}
	if got := v.row(1); got != v.floorRow-2 {
		t.Errorf("row(1) = %d, want %d", got, v.floorRow-2)
	}
}

func TestBoxRect(t *testing.T) {
	v := newSideView(80, 24)

	tests := []struct {
		name string
		tr   *components.TransformComponent
		size mgl64.Vec3
		want cellRect
	}{
		{
			name: "unit box resting on the floor",
			tr:   components.NewTransformComponent(mgl64.Vec3{0, 0.5, 0}),
			size: mgl64.Vec3{1, 1, 1},
			want: cellRect{x0: 38, x1: 42, y0: v.floorRow - 2, y1: v.floorRow},
		},
		{
			name: "tiny box still covers one cell",
			tr:   components.NewTransformComponent(mgl64.Vec3{0, 0, 0}),
			size: mgl64.Vec3{0.01, 0.01, 0.01},
			want: cellRect{x0: 40, x1: 41, y0: v.floorRow, y1: v.floorRow + 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.boxRect(tt.tr, tt.size); got != tt.want {
				t.Errorf("boxRect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBoxRectRotatedIsWider(t *testing.T) {
	v := newSideView(80, 24)
	size := mgl64.Vec3{2, 1, 0.2}

	straight := v.boxRect(components.NewTransformComponent(mgl64.Vec3{0, 1, 0}), size)

	turned := components.NewTransformComponent(mgl64.Vec3{0, 1, 0})
	turned.Rotation = mgl64.QuatRotate(mgl64.DegToRad(90), mgl64.Vec3{0, 1, 0})
	rotated := v.boxRect(turned, size)

	if rotated.x1-rotated.x0 >= straight.x1-straight.x0 {
		t.Errorf("a plank turned 90 degrees should look narrower from the side: straight=%+v rotated=%+v", straight, rotated)
	}
}

func TestCellRectClip(t *testing.T) {
	r := cellRect{x0: -5, y0: -2, x1: 100, y1: 30}.clip(80, 20)
	want := cellRect{x0: 0, y0: 0, x1: 80, y1: 20}
	if r != want {
		t.Errorf("clip() = %+v, want %+v", r, want)
	}
	if !(cellRect{x0: 90, x1: 80}).empty() {
		t.Error("inverted rect should be empty")
	}
}

func TestBackToFront(t *testing.T) {
	em := ecs.NewEntityManager()
	near := em.CreateEntity()
	far := em.CreateEntity()
	ecs.AddComponent(em, near, components.NewTransformComponent(mgl64.Vec3{0, 0, 2}))
	ecs.AddComponent(em, near, &components.RenderBoxComponent{Size: mgl64.Vec3{1, 1, 1}})
	ecs.AddComponent(em, far, components.NewTransformComponent(mgl64.Vec3{0, 0, -2}))
	ecs.AddComponent(em, far, &components.RenderBoxComponent{Size: mgl64.Vec3{1, 1, 1}})

	got := backToFront(em)
	if len(got) != 2 || got[0] != far || got[1] != near {
		t.Errorf("backToFront() = %v, want [%d %d]", got, far, near)
	}
}
