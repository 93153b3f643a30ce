package config

import (
	"fmt"
	"image/color"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// BlueprintConfig 组装体蓝图
//
// 描述成品的目标形态：每个 Block 的位置即该部件的目标位置。
// 坐标为世界坐标，Y 轴向上。
//
// 配置文件位置: data/blueprints/*.yaml
type BlueprintConfig struct {
	Name   string      `yaml:"name"`
	Anchor []float64   `yaml:"anchor"` // 锚点位置 [x, y, z]
	Blocks []BlockSpec `yaml:"blocks"`

	// Floor 地面半尺寸，超出范围的部件会掉下去
	Floor FloorSpec `yaml:"floor"`
	// KillPlaneY 禁区上沿高度，低于此高度的部件被送回
	KillPlaneY float64 `yaml:"killPlaneY"`
}

// BlockSpec 单个部件
type BlockSpec struct {
	Position  []float64 `yaml:"position"`  // 目标位置 [x, y, z]
	Size      []float64 `yaml:"size"`      // 尺寸 [w, h, d]
	RotationY float64   `yaml:"rotationY"` // 绕 Y 轴旋转（角度）
	Color     string    `yaml:"color"`     // 十六进制颜色，如 "#c0392b"
	Mass      float64   `yaml:"mass"`
}

// FloorSpec 地面范围
type FloorSpec struct {
	HalfWidth float64 `yaml:"halfWidth"`
	HalfDepth float64 `yaml:"halfDepth"`
}

// LoadBlueprintConfig 从文件加载蓝图
func LoadBlueprintConfig(path string) (*BlueprintConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprint: %w", err)
	}
	return ParseBlueprintConfig(data)
}

// ParseBlueprintConfig 从 YAML 字节解析蓝图
func ParseBlueprintConfig(data []byte) (*BlueprintConfig, error) {
	var bp BlueprintConfig
	if err := yaml.Unmarshal(data, &bp); err != nil {
		return nil, fmt.Errorf("failed to parse blueprint: %w", err)
	}

	if err := bp.Validate(); err != nil {
		return nil, fmt.Errorf("invalid blueprint %q: %w", bp.Name, err)
	}

	return &bp, nil
}

// Validate 校验蓝图结构
func (bp *BlueprintConfig) Validate() error {
	if bp.Anchor != nil && len(bp.Anchor) != 3 {
		return fmt.Errorf("anchor must have 3 components, got %d", len(bp.Anchor))
	}
	if bp.Floor.HalfWidth <= 0 || bp.Floor.HalfDepth <= 0 {
		return fmt.Errorf("floor half extents must be positive")
	}
	if bp.KillPlaneY >= 0 {
		return fmt.Errorf("killPlaneY must be below the floor, got %.2f", bp.KillPlaneY)
	}
	for i, b := range bp.Blocks {
		if len(b.Position) != 3 {
			return fmt.Errorf("block %d: position must have 3 components", i)
		}
		if len(b.Size) != 3 {
			return fmt.Errorf("block %d: size must have 3 components", i)
		}
		for _, s := range b.Size {
			if s <= 0 {
				return fmt.Errorf("block %d: size must be positive", i)
			}
		}
		if b.Color != "" {
			if _, err := colorful.Hex(b.Color); err != nil {
				return fmt.Errorf("block %d: bad color %q: %w", i, b.Color, err)
			}
		}
	}
	return nil
}

// AnchorPosition 返回锚点位置，未配置时为原点
func (bp *BlueprintConfig) AnchorPosition() mgl64.Vec3 {
	if len(bp.Anchor) != 3 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{bp.Anchor[0], bp.Anchor[1], bp.Anchor[2]}
}

// TargetPosition 返回部件目标位置
func (b *BlockSpec) TargetPosition() mgl64.Vec3 {
	return mgl64.Vec3{b.Position[0], b.Position[1], b.Position[2]}
}

// TargetRotation 返回部件目标朝向
func (b *BlockSpec) TargetRotation() mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(b.RotationY), mgl64.Vec3{0, 1, 0})
}

// Extents 返回部件尺寸
func (b *BlockSpec) Extents() mgl64.Vec3 {
	return mgl64.Vec3{b.Size[0], b.Size[1], b.Size[2]}
}

// RGBA 解析部件颜色，未配置或解析失败时返回灰色
func (b *BlockSpec) RGBA() color.RGBA {
	c, err := colorful.Hex(b.Color)
	if err != nil {
		return color.RGBA{R: 160, G: 160, B: 160, A: 255}
	}
	r, g, bl := c.RGB255()
	return color.RGBA{R: r, G: g, B: bl, A: 255}
}

// BlockMass 返回部件质量，未配置时为 1
func (b *BlockSpec) BlockMass() float64 {
	if b.Mass <= 0 {
		return 1
	}
	return b.Mass
}
