package components

import "github.com/go-gl/mathgl/mgl64"

// ColliderComponent 轴对齐盒碰撞体
//
// 中心与 TransformComponent.Position 对齐，HalfExtents 为半尺寸。
// 禁用后既不参与地面碰撞，也不触发区域回调。
type ColliderComponent struct {
	Enabled     bool
	HalfExtents mgl64.Vec3
}

// Bounds 返回以 center 为中心的 AABB 最小/最大角点
func (c *ColliderComponent) Bounds(center mgl64.Vec3) (min, max mgl64.Vec3) {
	return center.Sub(c.HalfExtents), center.Add(c.HalfExtents)
}
