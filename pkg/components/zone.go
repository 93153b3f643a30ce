package components

import "github.com/go-gl/mathgl/mgl64"

// ZoneTagForbidden 禁区标签：部件进入后会被送回目标位置
const ZoneTagForbidden = "Finish"

// ZoneComponent 触发区域（只检测进入，不产生碰撞响应）
type ZoneComponent struct {
	Tag string
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Overlaps 判断 AABB [min, max] 是否与区域相交
func (z *ZoneComponent) Overlaps(min, max mgl64.Vec3) bool {
	return max.X() >= z.Min.X() && min.X() <= z.Max.X() &&
		max.Y() >= z.Min.Y() && min.Y() <= z.Max.Y() &&
		max.Z() >= z.Min.Z() && min.Z() <= z.Max.Z()
}
