package components

import (
	"github.com/decker502/construct/pkg/ecs"
	"github.com/go-gl/mathgl/mgl64"
)

// PieceComponent 组装部件
//
// 记录部件在成品中的目标位姿。目标位姿只在登记时（CaptureTarget）写入，
// 运行期间保持不变。部件安装完成后该组件被移除。
type PieceComponent struct {
	Anchor         ecs.EntityID // 所属组装体
	TargetPosition mgl64.Vec3
	TargetRotation mgl64.Quat
}

// CaptureTarget 把当前位姿记为目标位姿（覆盖旧值）
func (p *PieceComponent) CaptureTarget(t *TransformComponent) {
	p.TargetPosition = t.Position
	p.TargetRotation = t.Rotation
}
