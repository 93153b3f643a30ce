package components

import "github.com/go-gl/mathgl/mgl64"

// RigidBodyComponent 刚体组件
//
// 由 PhysicsSystem 积分。IsKinematic 为 true 时物理不再推动该刚体，
// 位置完全由脚本（AssemblySystem）写入。
type RigidBodyComponent struct {
	Velocity    mgl64.Vec3 // 线速度（单位/秒）
	Mass        float64    // 质量，<= 0 视为 1
	Bounciness  float64    // 落地反弹系数 0 ~ 1
	Friction    float64    // 落地摩擦 0 ~ 1（每次接触时水平速度的衰减比例）
	UseGravity  bool       // 是否受重力影响
	IsKinematic bool       // 运动学模式（不受物理推动）
}

// NewRigidBodyComponent 返回默认参数的刚体：不受重力、非运动学
//
// 部件在激活前悬停在散落位置，由 Activate 统一打开重力。
func NewRigidBodyComponent(mass float64) *RigidBodyComponent {
	return &RigidBodyComponent{
		Mass:       mass,
		Bounciness: 0.3,
		Friction:   0.2,
	}
}

// InverseMass 返回质量倒数，质量非法时按 1 处理
func (rb *RigidBodyComponent) InverseMass() float64 {
	if rb.Mass <= 0 {
		return 1
	}
	return 1 / rb.Mass
}

// ApplyImpulse 施加冲量（ForceMode.Impulse 语义：Δv = J / m）
// 运动学刚体忽略冲量
func (rb *RigidBodyComponent) ApplyImpulse(impulse mgl64.Vec3) {
	if rb.IsKinematic {
		return
	}
	rb.Velocity = rb.Velocity.Add(impulse.Mul(rb.InverseMass()))
}
