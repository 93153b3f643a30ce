// Package authoring 提供编辑期的一次性命令
//
// 这些命令只在组装体处于 Inactive 状态时使用：重新登记部件、打散部件、
// 把部件放回成品位置，以及采集/应用布局。它们不参与运行期状态机。
package authoring

import (
	"fmt"
	"log"
	"math"
	"math/rand"

	"github.com/decker502/construct/pkg/components"
	"github.com/decker502/construct/pkg/config"
	"github.com/decker502/construct/pkg/ecs"
	"github.com/decker502/construct/pkg/entities"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// inactiveAssembly 返回处于 Inactive 状态的组装组件
func inactiveAssembly(em *ecs.EntityManager, anchor ecs.EntityID) (*components.AssemblyComponent, error) {
	assembly, ok := ecs.GetComponent[*components.AssemblyComponent](em, anchor)
	if !ok {
		return nil, fmt.Errorf("entity %d is not an assembly anchor", anchor)
	}
	if assembly.State != components.AssemblyInactive {
		return nil, fmt.Errorf("assembly %d is %s, authoring requires Inactive", anchor, assembly.State)
	}
	return assembly, nil
}

// RenewPieces 清空部件列表，把所有带刚体的子实体重新登记为部件
//
// 每个部件的当前位姿成为新的目标位姿。
//
// 返回:
//   - int: 登记的部件数量
//   - error: 锚点无效或不在 Inactive 状态时返回错误
func RenewPieces(em *ecs.EntityManager, anchor ecs.EntityID) (int, error) {
	assembly, err := inactiveAssembly(em, anchor)
	if err != nil {
		return 0, err
	}

	assembly.Pieces = assembly.Pieces[:0]
	for _, member := range assembly.Members {
		if !ecs.HasComponent[*components.RigidBodyComponent](em, member) {
			continue
		}
		if err := entities.RegisterPiece(em, anchor, member); err != nil {
			return 0, err
		}
	}

	log.Printf("[Authoring] Anchor %d: renewed %d pieces", anchor, len(assembly.Pieces))
	return len(assembly.Pieces), nil
}

// RandomizePositions 把部件随机放到锚点上方半径 radius 的半球内
//
// 只取上半球，避免部件一开始就埋进地面。
func RandomizePositions(em *ecs.EntityManager, anchor ecs.EntityID, radius float64, rng *rand.Rand) error {
	assembly, err := inactiveAssembly(em, anchor)
	if err != nil {
		return err
	}
	anchorTR, ok := ecs.GetComponent[*components.TransformComponent](em, anchor)
	if !ok {
		return fmt.Errorf("anchor %d has no transform", anchor)
	}

	for _, piece := range assembly.Pieces {
		tr, ok := ecs.GetComponent[*components.TransformComponent](em, piece)
		if !ok {
			continue
		}
		offset := insideUnitSphere(rng).Mul(radius)
		offset[1] = math.Abs(offset[1])

		// 抬高半个尺寸，底面不低于锚点
		if col, ok := ecs.GetComponent[*components.ColliderComponent](em, piece); ok {
			offset[1] += col.HalfExtents.Y()
		}
		tr.Position = anchorTR.Position.Add(offset)
	}
	return nil
}

// ReturnToTargets 把部件放回记录的目标位姿（成品形态）
func ReturnToTargets(em *ecs.EntityManager, anchor ecs.EntityID) error {
	assembly, err := inactiveAssembly(em, anchor)
	if err != nil {
		return err
	}

	for _, piece := range assembly.Pieces {
		pc, okPC := ecs.GetComponent[*components.PieceComponent](em, piece)
		tr, okTR := ecs.GetComponent[*components.TransformComponent](em, piece)
		if !okPC || !okTR {
			continue
		}
		tr.Position = pc.TargetPosition
		tr.Rotation = pc.TargetRotation
		if rb, ok := ecs.GetComponent[*components.RigidBodyComponent](em, piece); ok {
			rb.Velocity = mgl64.Vec3{}
		}
	}
	return nil
}

// CaptureLayout 采集当前所有部件的目标位姿
//
// 每次采集生成新的 Revision。
func CaptureLayout(em *ecs.EntityManager, anchor ecs.EntityID, name string) (*config.Layout, error) {
	assembly, ok := ecs.GetComponent[*components.AssemblyComponent](em, anchor)
	if !ok {
		return nil, fmt.Errorf("entity %d is not an assembly anchor", anchor)
	}

	layout := &config.Layout{
		Name:     name,
		Revision: uuid.NewString(),
		Pieces:   make([]config.PiecePose, 0, len(assembly.Pieces)),
	}
	for i, piece := range assembly.Pieces {
		pc, ok := ecs.GetComponent[*components.PieceComponent](em, piece)
		if !ok {
			return nil, fmt.Errorf("piece %d has no piece component", piece)
		}
		layout.Pieces = append(layout.Pieces, config.NewPiecePose(i, pc.TargetPosition, pc.TargetRotation))
	}
	return layout, nil
}

// ApplyLayout 用布局覆盖部件目标位姿（按发现顺序对应）
//
// 每个部件索引必须恰好出现一次。
func ApplyLayout(em *ecs.EntityManager, anchor ecs.EntityID, layout *config.Layout) error {
	assembly, err := inactiveAssembly(em, anchor)
	if err != nil {
		return err
	}
	if len(layout.Pieces) != len(assembly.Pieces) {
		return fmt.Errorf("layout %q has %d pieces, assembly has %d", layout.Name, len(layout.Pieces), len(assembly.Pieces))
	}

	// 先整体校验，出错时不改动任何部件
	seen := make(map[int]bool, len(layout.Pieces))
	for _, pose := range layout.Pieces {
		if pose.Index < 0 || pose.Index >= len(assembly.Pieces) {
			return fmt.Errorf("layout %q: piece index %d out of range", layout.Name, pose.Index)
		}
		if seen[pose.Index] {
			return fmt.Errorf("layout %q: piece index %d repeated", layout.Name, pose.Index)
		}
		seen[pose.Index] = true
	}

	for _, pose := range layout.Pieces {
		pc, ok := ecs.GetComponent[*components.PieceComponent](em, assembly.Pieces[pose.Index])
		if !ok {
			continue
		}
		pc.TargetPosition = pose.Vec()
		pc.TargetRotation = pose.Quat()
	}

	log.Printf("[Authoring] Anchor %d: applied layout %q (revision %s)", anchor, layout.Name, layout.Revision)
	return nil
}

// insideUnitSphere 单位球内均匀分布的随机点（拒绝采样）
func insideUnitSphere(rng *rand.Rand) mgl64.Vec3 {
	for {
		p := mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}
		if p.Dot(p) <= 1 {
			return p
		}
	}
}
