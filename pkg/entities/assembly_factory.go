package entities

import (
	"fmt"
	"log"
	"math"

	"github.com/decker502/construct/pkg/components"
	"github.com/decker502/construct/pkg/config"
	"github.com/decker502/construct/pkg/ecs"
	"github.com/decker502/construct/pkg/game"
	"github.com/go-gl/mathgl/mgl64"
)

// NewAssemblyEntity 创建组装体锚点实体
//
// 锚点带有 TransformComponent、覆盖成品体积的 ColliderComponent 和
// 处于 Inactive 状态的 AssemblyComponent。部件通过 NewBlockEntity 与 RegisterPiece 加入。
//
// 参数:
//   - em: 实体管理器
//   - cfg: 组装调参
//   - anchorPos: 锚点（成品静止位置）
//   - halfExtents: 锚点碰撞体半尺寸
//
// 返回:
//   - ecs.EntityID: 锚点实体ID
//   - error: 参数非法时返回错误
func NewAssemblyEntity(
	em *ecs.EntityManager,
	cfg *config.AssemblyConfig,
	anchorPos mgl64.Vec3,
	halfExtents mgl64.Vec3,
) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	if cfg == nil {
		return 0, fmt.Errorf("assembly config cannot be nil")
	}

	entityID := em.CreateEntity()
	transform := components.NewTransformComponent(anchorPos)

	ecs.AddComponent(em, entityID, transform)
	ecs.AddComponent(em, entityID, &components.ColliderComponent{
		Enabled:     true,
		HalfExtents: halfExtents,
	})
	ecs.AddComponent(em, entityID, &components.AssemblyComponent{
		State:             components.AssemblyInactive,
		Pieces:            make([]ecs.EntityID, 0),
		Members:           make([]ecs.EntityID, 0),
		JumpCursor:        -1,
		FinalPhaseCounter: components.FinalPhaseNone,
		JumpForce:         cfg.JumpForce,
		JumpDelay:         cfg.JumpDelay,
		StartBuildSpeed:   cfg.StartBuildSpeed,
		MaxBuildSpeed:     cfg.MaxBuildSpeed(),
		SpeedRampRate:     cfg.SpeedRampRate,
		UseFinalJump:      cfg.UseFinalJump,
		CurrentBuildSpeed: cfg.StartBuildSpeed,
		RestPosition:      anchorPos,
		ApexPosition:      anchorPos.Add(transform.Up().Mul(cfg.FinalJumpHeight)),
		PendingTimer:      game.NoTimer,
	})

	return entityID, nil
}

// NewBlockEntity 在锚点下创建一个带刚体的子实体（尚未登记为部件）
//
// 参数:
//   - em: 实体管理器
//   - anchor: 锚点实体
//   - pos, rot: 初始位姿
//   - block: 蓝图中的部件描述（尺寸、颜色、质量）
//
// 返回:
//   - ecs.EntityID: 子实体ID
//   - error: 锚点不是组装体时返回错误
func NewBlockEntity(
	em *ecs.EntityManager,
	anchor ecs.EntityID,
	pos mgl64.Vec3,
	rot mgl64.Quat,
	block *config.BlockSpec,
) (ecs.EntityID, error) {
	assembly, ok := ecs.GetComponent[*components.AssemblyComponent](em, anchor)
	if !ok {
		return 0, fmt.Errorf("entity %d is not an assembly anchor", anchor)
	}

	size := block.Extents()
	entityID := em.CreateEntity()

	ecs.AddComponent(em, entityID, &components.TransformComponent{
		Position: pos,
		Rotation: rot,
	})
	ecs.AddComponent(em, entityID, components.NewRigidBodyComponent(block.BlockMass()))
	ecs.AddComponent(em, entityID, &components.ColliderComponent{
		Enabled:     true,
		HalfExtents: size.Mul(0.5),
	})
	ecs.AddComponent(em, entityID, &components.RenderBoxComponent{
		Size:  size,
		Color: block.RGBA(),
	})

	assembly.Members = append(assembly.Members, entityID)
	return entityID, nil
}

// RegisterPiece 把锚点的子实体登记为部件，当前位姿即目标位姿
//
// 已登记过的实体会重新采集目标位姿，但不会重复加入列表。
func RegisterPiece(em *ecs.EntityManager, anchor, entityID ecs.EntityID) error {
	assembly, ok := ecs.GetComponent[*components.AssemblyComponent](em, anchor)
	if !ok {
		return fmt.Errorf("entity %d is not an assembly anchor", anchor)
	}
	tr, ok := ecs.GetComponent[*components.TransformComponent](em, entityID)
	if !ok {
		return fmt.Errorf("entity %d has no transform", entityID)
	}

	piece, ok := ecs.GetComponent[*components.PieceComponent](em, entityID)
	if !ok {
		piece = &components.PieceComponent{Anchor: anchor}
		ecs.AddComponent(em, entityID, piece)
	}
	piece.CaptureTarget(tr)

	for _, id := range assembly.Pieces {
		if id == entityID {
			return nil
		}
	}
	assembly.Pieces = append(assembly.Pieces, entityID)
	return nil
}

// NewForbiddenZone 创建禁区（部件进入后被送回目标位置）
func NewForbiddenZone(em *ecs.EntityManager, min, max mgl64.Vec3) ecs.EntityID {
	entityID := em.CreateEntity()
	ecs.AddComponent(em, entityID, &components.ZoneComponent{
		Tag: components.ZoneTagForbidden,
		Min: min,
		Max: max,
	})
	return entityID
}

// BuildFromBlueprint 按蓝图创建完整组装体
//
// 每个部件先放在目标位姿上登记，随后由调用方（或 authoring.RandomizePositions）打散。
// 同时在地面以下创建覆盖 killPlaneY 以下区域的禁区。
//
// 返回:
//   - ecs.EntityID: 锚点实体ID
//   - error: 创建失败时返回错误
func BuildFromBlueprint(
	em *ecs.EntityManager,
	cfg *config.AssemblyConfig,
	bp *config.BlueprintConfig,
) (ecs.EntityID, error) {
	anchorPos := bp.AnchorPosition()

	// 锚点碰撞体覆盖所有部件
	var extent mgl64.Vec3
	for i := range bp.Blocks {
		b := &bp.Blocks[i]
		far := b.TargetPosition().Sub(anchorPos)
		half := b.Extents().Mul(0.5)
		for axis := 0; axis < 3; axis++ {
			reach := math.Abs(far[axis]) + half[axis]
			if reach > extent[axis] {
				extent[axis] = reach
			}
		}
	}

	anchor, err := NewAssemblyEntity(em, cfg, anchorPos, extent)
	if err != nil {
		return 0, err
	}

	for i := range bp.Blocks {
		b := &bp.Blocks[i]
		id, err := NewBlockEntity(em, anchor, b.TargetPosition(), b.TargetRotation(), b)
		if err != nil {
			return 0, fmt.Errorf("block %d: %w", i, err)
		}
		if err := RegisterPiece(em, anchor, id); err != nil {
			return 0, fmt.Errorf("block %d: %w", i, err)
		}
	}

	// 禁区：地面以下很深的一整块
	span := bp.Floor.HalfWidth + bp.Floor.HalfDepth + 200
	NewForbiddenZone(em,
		mgl64.Vec3{-span, bp.KillPlaneY - 200, -span},
		mgl64.Vec3{span, bp.KillPlaneY, span},
	)

	log.Printf("[Entities] Built assembly %q: anchor=%d, %d pieces", bp.Name, anchor, len(bp.Blocks))
	return anchor, nil
}
