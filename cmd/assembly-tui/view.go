package main

import (
	"math"
	"sort"

	"github.com/decker502/construct/pkg/components"
	"github.com/decker502/construct/pkg/ecs"
	"github.com/go-gl/mathgl/mgl64"
)

// sideView 侧视投影：X 向右、Y 向上，Z 只用于前后遮挡
//
// 一个世界单位占 cellsX 列、cellsY 行（终端字符约为 1:2）。
type sideView struct {
	width, height int
	cellsX        float64
	cellsY        float64
	floorRow      int
}

func newSideView(width, height int) sideView {
	return sideView{
		width:    width,
		height:   height,
		cellsX:   4,
		cellsY:   2,
		floorRow: height - 3,
	}
}

// column 世界 X 到终端列
func (v sideView) column(x float64) int {
	return v.width/2 + int(math.Round(x*v.cellsX))
}

// row 世界 Y 到终端行
func (v sideView) row(y float64) int {
	return v.floorRow - int(math.Round(y*v.cellsY))
}

// cellRect 终端上覆盖的矩形，左闭右开
type cellRect struct {
	x0, y0, x1, y1 int
}

// empty 矩形没有任何格子
func (r cellRect) empty() bool {
	return r.x0 >= r.x1 || r.y0 >= r.y1
}

// clip 裁剪到 [0, width) x [0, height)
func (r cellRect) clip(width, height int) cellRect {
	return cellRect{
		x0: max(r.x0, 0),
		y0: max(r.y0, 0),
		x1: min(r.x1, width),
		y1: min(r.y1, height),
	}
}

// boxRect 旋转后方块在 XY 平面上的包围矩形
func (v sideView) boxRect(tr *components.TransformComponent, size mgl64.Vec3) cellRect {
	half := size.Mul(0.5)
	var ext mgl64.Vec3
	for _, axis := range []mgl64.Vec3{{half.X(), 0, 0}, {0, half.Y(), 0}, {0, 0, half.Z()}} {
		r := tr.Rotation.Rotate(axis)
		ext = ext.Add(mgl64.Vec3{math.Abs(r.X()), math.Abs(r.Y()), math.Abs(r.Z())})
	}

	minP := tr.Position.Sub(ext)
	maxP := tr.Position.Add(ext)
	rect := cellRect{
		x0: v.column(minP.X()),
		x1: v.column(maxP.X()),
		y0: v.row(maxP.Y()),
		y1: v.row(minP.Y()),
	}
	// 极小的方块至少占一格
	if rect.x1 <= rect.x0 {
		rect.x1 = rect.x0 + 1
	}
	if rect.y1 <= rect.y0 {
		rect.y1 = rect.y0 + 1
	}
	return rect
}

// backToFront 按 Z 从远到近排序（Z 越小越远）
func backToFront(em *ecs.EntityManager) []ecs.EntityID {
	ids := ecs.GetEntitiesWith2[*components.TransformComponent, *components.RenderBoxComponent](em)
	sort.SliceStable(ids, func(i, j int) bool {
		a, _ := ecs.GetComponent[*components.TransformComponent](em, ids[i])
		b, _ := ecs.GetComponent[*components.TransformComponent](em, ids[j])
		return a.Position.Z() < b.Position.Z()
	})
	return ids
}
