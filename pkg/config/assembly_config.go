package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// AssemblyConfig 组装动画调参
//
// 所有字段都由设计师调整，取值范围由 assembly_config.schema.json 约束：
//   - jumpForce           [1, 10]   待机跳跃冲量
//   - jumpDelay           [0.1, 2]  相邻两次跳跃 / 最终跳跃停顿的间隔（秒）
//   - startBuildSpeed     [0, 4]    组装起始速度
//   - maxSpeedMultiplier  [1, 4]    最大速度 = 起始速度 × 倍率
//   - speedRampRate       [0, 4]    每秒速度增量
//   - finalJumpHeight     [1, 4]    最终跳跃高度
//   - randomPosRadius     [1, 10]   编辑期随机散布半径
//
// 配置文件位置: data/assembly.yaml
type AssemblyConfig struct {
	JumpForce          float64 `yaml:"jumpForce" json:"jumpForce"`
	JumpDelay          float64 `yaml:"jumpDelay" json:"jumpDelay"`
	StartBuildSpeed    float64 `yaml:"startBuildSpeed" json:"startBuildSpeed"`
	MaxSpeedMultiplier float64 `yaml:"maxSpeedMultiplier" json:"maxSpeedMultiplier"`
	SpeedRampRate      float64 `yaml:"speedRampRate" json:"speedRampRate"`

	// ActiveOnPlay 创建后立即进入待机跳跃
	ActiveOnPlay bool `yaml:"activeOnPlay" json:"activeOnPlay"`
	// UseFinalJump 组装完成后整体跳一下，提示玩家可以松开按键
	UseFinalJump    bool    `yaml:"useFinalJump" json:"useFinalJump"`
	FinalJumpHeight float64 `yaml:"finalJumpHeight" json:"finalJumpHeight"`

	RandomPosRadius float64 `yaml:"randomPosRadius" json:"randomPosRadius"`
}

//go:embed assembly_config.schema.json
var assemblyConfigSchemaJSON string

const assemblyConfigSchemaURL = "assembly_config.schema.json"

var (
	assemblyConfigSchema     *jsonschema.Schema
	assemblyConfigSchemaErr  error
	assemblyConfigSchemaOnce sync.Once
)

// DefaultAssemblyConfig 返回默认调参
func DefaultAssemblyConfig() *AssemblyConfig {
	return &AssemblyConfig{
		JumpForce:          2,
		JumpDelay:          0.3,
		StartBuildSpeed:    1,
		MaxSpeedMultiplier: 2,
		SpeedRampRate:      2,
		ActiveOnPlay:       false,
		UseFinalJump:       true,
		FinalJumpHeight:    2,
		RandomPosRadius:    2,
	}
}

// LoadAssemblyConfig 加载组装调参
//
// 文件中缺省的字段保留默认值。
//
// 参数:
//   - path: 配置文件路径（如 "data/assembly.yaml"）
//
// 返回:
//   - *AssemblyConfig: 加载并校验通过的配置
//   - error: 读取、解析或校验失败时返回错误
func LoadAssemblyConfig(path string) (*AssemblyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assembly config: %w", err)
	}
	return ParseAssemblyConfig(data)
}

// ParseAssemblyConfig 从 YAML 字节解析组装调参
func ParseAssemblyConfig(data []byte) (*AssemblyConfig, error) {
	cfg := DefaultAssemblyConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse assembly config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid assembly config: %w", err)
	}

	return cfg, nil
}

// Validate 按 schema 声明的取值范围校验配置
//
// 超出范围属于设计期错误，运行期不会再次检查。
func (c *AssemblyConfig) Validate() error {
	schema, err := compiledAssemblyConfigSchema()
	if err != nil {
		return err
	}

	// schema 校验的是 JSON 解码后的通用值
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config for validation: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode config for validation: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return err
	}
	return nil
}

// MaxBuildSpeed 返回最大组装速度（起始速度 × 倍率）
func (c *AssemblyConfig) MaxBuildSpeed() float64 {
	return c.StartBuildSpeed * c.MaxSpeedMultiplier
}

func compiledAssemblyConfigSchema() (*jsonschema.Schema, error) {
	assemblyConfigSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(assemblyConfigSchemaURL, strings.NewReader(assemblyConfigSchemaJSON)); err != nil {
			assemblyConfigSchemaErr = fmt.Errorf("failed to load assembly config schema: %w", err)
			return
		}
		assemblyConfigSchema, assemblyConfigSchemaErr = compiler.Compile(assemblyConfigSchemaURL)
		if assemblyConfigSchemaErr != nil {
			assemblyConfigSchemaErr = fmt.Errorf("failed to compile assembly config schema: %w", assemblyConfigSchemaErr)
		}
	})
	return assemblyConfigSchema, assemblyConfigSchemaErr
}
