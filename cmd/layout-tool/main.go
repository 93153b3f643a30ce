// layout-tool 管理组装体布局存档
//
// 使用方法:
//
//	layout-tool capture -blueprint data/blueprints/tower.yaml
//	layout-tool show -name tower
//	layout-tool export -name tower -out tower-layout.yaml
//	layout-tool import -in tower-layout.yaml
//	layout-tool renew -blueprint data/blueprints/tower.yaml
//	layout-tool scatter -blueprint data/blueprints/tower.yaml -radius 3 -seed 42
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"

	"github.com/decker502/construct/pkg/authoring"
	"github.com/decker502/construct/pkg/components"
	"github.com/decker502/construct/pkg/config"
	"github.com/decker502/construct/pkg/ecs"
	"github.com/decker502/construct/pkg/entities"
	"github.com/decker502/construct/pkg/game"
	"gopkg.in/yaml.v3"
)

const appName = "construct"

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:], game.OpenLayoutStore(appName), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "layout-tool: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: layout-tool <capture|show|export|import|renew|scatter> [flags]")
}

// run 执行一个子命令
func run(command string, args []string, store *game.LayoutStore, out io.Writer) error {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(out)
	blueprintPath := fs.String("blueprint", "data/blueprints/tower.yaml", "蓝图文件路径")
	configPath := fs.String("config", "data/assembly.yaml", "调参文件路径")
	name := fs.String("name", "", "布局名称（默认取蓝图名称）")
	inPath := fs.String("in", "", "导入文件路径")
	outPath := fs.String("out", "", "导出文件路径（为空则输出到标准输出）")
	radius := fs.Float64("radius", 0, "打散半径（0 = 使用调参中的 randomPosRadius）")
	seed := fs.Int64("seed", 1, "打散随机种子")
	verbose := fs.Bool("verbose", false, "显示详细日志")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	switch command {
	case "capture":
		return captureCommand(store, *blueprintPath, *configPath, out)
	case "show":
		return exportCommand(store, *name, "", out)
	case "export":
		return exportCommand(store, *name, *outPath, out)
	case "import":
		return importCommand(store, *inPath, out)
	case "renew":
		return renewCommand(store, *blueprintPath, *configPath, out)
	case "scatter":
		return scatterCommand(*blueprintPath, *configPath, *radius, *seed, out)
	default:
		usage(out)
		return fmt.Errorf("unknown command %q", command)
	}
}

// buildAssembly 按蓝图搭建一个独立世界
func buildAssembly(blueprintPath, configPath string) (*ecs.EntityManager, ecs.EntityID, *config.BlueprintConfig, *config.AssemblyConfig, error) {
	bp, err := config.LoadBlueprintConfig(blueprintPath)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	cfg, err := config.LoadAssemblyConfig(configPath)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	em := ecs.NewEntityManager()
	anchor, err := entities.BuildFromBlueprint(em, cfg, bp)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	return em, anchor, bp, cfg, nil
}

// captureCommand 以蓝图中的目标位姿覆盖存档
func captureCommand(store *game.LayoutStore, blueprintPath, configPath string, out io.Writer) error {
	em, anchor, bp, _, err := buildAssembly(blueprintPath, configPath)
	if err != nil {
		return err
	}
	layout, err := authoring.CaptureLayout(em, anchor, bp.Name)
	if err != nil {
		return err
	}
	if err := store.Save(layout); err != nil {
		return err
	}
	fmt.Fprintf(out, "captured %q: %d pieces, revision %s\n", layout.Name, len(layout.Pieces), layout.Revision)
	return nil
}

// renewCommand 应用存档布局，把部件放回目标位姿后重新登记并保存
//
// 用于布局和蓝图的部件数量不再一致之前，把存档规整为新的 Revision。
func renewCommand(store *game.LayoutStore, blueprintPath, configPath string, out io.Writer) error {
	em, anchor, bp, _, err := buildAssembly(blueprintPath, configPath)
	if err != nil {
		return err
	}

	saved, err := store.Load(bp.Name)
	if err != nil {
		return err
	}
	if saved != nil {
		if err := authoring.ApplyLayout(em, anchor, saved); err != nil {
			return err
		}
	}
	if err := authoring.ReturnToTargets(em, anchor); err != nil {
		return err
	}
	count, err := authoring.RenewPieces(em, anchor)
	if err != nil {
		return err
	}

	layout, err := authoring.CaptureLayout(em, anchor, bp.Name)
	if err != nil {
		return err
	}
	if err := store.Save(layout); err != nil {
		return err
	}
	fmt.Fprintf(out, "renewed %q: %d pieces, revision %s\n", layout.Name, count, layout.Revision)
	return nil
}

// exportCommand 输出存档布局
func exportCommand(store *game.LayoutStore, name, outPath string, out io.Writer) error {
	if name == "" {
		return fmt.Errorf("-name is required")
	}
	layout, err := store.Load(name)
	if err != nil {
		return err
	}
	if layout == nil {
		return fmt.Errorf("no saved layout named %q", name)
	}
	data, err := config.MarshalLayout(layout)
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err = out.Write(data)
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	fmt.Fprintf(out, "exported %q to %s\n", name, outPath)
	return nil
}

// importCommand 从文件导入布局
func importCommand(store *game.LayoutStore, inPath string, out io.Writer) error {
	if inPath == "" {
		return fmt.Errorf("-in is required")
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inPath, err)
	}
	layout, err := config.UnmarshalLayout(data)
	if err != nil {
		return err
	}
	if err := store.Save(layout); err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %q: %d pieces\n", layout.Name, len(layout.Pieces))
	return nil
}

// scatteredPiece 打散结果中的一个部件
type scatteredPiece struct {
	Index    int        `yaml:"index"`
	Position [3]float64 `yaml:"position"`
	Distance float64    `yaml:"distance"`
}

// scatterCommand 打散部件并输出各部件位置（预览 randomPosRadius 的效果）
func scatterCommand(blueprintPath, configPath string, radius float64, seed int64, out io.Writer) error {
	em, anchor, _, cfg, err := buildAssembly(blueprintPath, configPath)
	if err != nil {
		return err
	}
	if radius <= 0 {
		radius = cfg.RandomPosRadius
	}

	if err := authoring.RandomizePositions(em, anchor, radius, rand.New(rand.NewSource(seed))); err != nil {
		return err
	}

	assembly, _ := ecs.GetComponent[*components.AssemblyComponent](em, anchor)
	anchorTR, _ := ecs.GetComponent[*components.TransformComponent](em, anchor)

	result := make([]scatteredPiece, 0, len(assembly.Pieces))
	for i, piece := range assembly.Pieces {
		tr, _ := ecs.GetComponent[*components.TransformComponent](em, piece)
		p := tr.Position
		result = append(result, scatteredPiece{
			Index:    i,
			Position: [3]float64{p.X(), p.Y(), p.Z()},
			Distance: p.Sub(anchorTR.Position).Len(),
		})
	}

	enc := yaml.NewEncoder(out)
	defer enc.Close()
	return enc.Encode(result)
}
