package components

import "github.com/go-gl/mathgl/mgl64"

// TransformComponent 世界空间中的位置与朝向
//
// 坐标系：Y 轴向上，地面为 Y=0 平面。
type TransformComponent struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransformComponent 创建位于 pos、朝向为单位四元数的变换组件
func NewTransformComponent(pos mgl64.Vec3) *TransformComponent {
	return &TransformComponent{
		Position: pos,
		Rotation: mgl64.QuatIdent(),
	}
}

// Up 返回该变换的局部上方向（世界空间）
func (t *TransformComponent) Up() mgl64.Vec3 {
	return t.Rotation.Rotate(mgl64.Vec3{0, 1, 0})
}
