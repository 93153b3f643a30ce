package config

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Layout 一次采集的部件目标位姿
//
// 部件按发现顺序编号。Revision 在每次采集时重新生成，用于区分存档版本。
type Layout struct {
	Name     string      `yaml:"name"`
	Revision string      `yaml:"revision"`
	Pieces   []PiecePose `yaml:"pieces"`
}

// PiecePose 单个部件的目标位姿
type PiecePose struct {
	Index    int        `yaml:"index"`
	Position [3]float64 `yaml:"position"`
	Rotation [4]float64 `yaml:"rotation"` // w, x, y, z
}

// NewPiecePose 由向量/四元数构造位姿
func NewPiecePose(index int, pos mgl64.Vec3, rot mgl64.Quat) PiecePose {
	return PiecePose{
		Index:    index,
		Position: [3]float64{pos.X(), pos.Y(), pos.Z()},
		Rotation: [4]float64{rot.W, rot.V.X(), rot.V.Y(), rot.V.Z()},
	}
}

// Vec 返回位置向量
func (p PiecePose) Vec() mgl64.Vec3 {
	return mgl64.Vec3{p.Position[0], p.Position[1], p.Position[2]}
}

// Quat 返回朝向四元数
func (p PiecePose) Quat() mgl64.Quat {
	return mgl64.Quat{W: p.Rotation[0], V: mgl64.Vec3{p.Rotation[1], p.Rotation[2], p.Rotation[3]}}
}

// MarshalLayout 序列化为 YAML
func MarshalLayout(l *Layout) ([]byte, error) {
	data, err := yaml.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal layout: %w", err)
	}
	return data, nil
}

// UnmarshalLayout 从 YAML 反序列化
func UnmarshalLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to unmarshal layout: %w", err)
	}
	return &l, nil
}
