package components

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// RenderBoxComponent 调试视图中绘制的盒子
type RenderBoxComponent struct {
	Size  mgl64.Vec3
	Color color.RGBA
}
