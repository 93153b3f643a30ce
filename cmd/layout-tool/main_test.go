package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/decker502/construct/pkg/game"
	"gopkg.in/yaml.v3"
)

const (
	testBlueprint = "../../data/blueprints/tower.yaml"
	testConfig    = "../../data/assembly.yaml"
)

func runTool(t *testing.T, store *game.LayoutStore, command string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	if err := run(command, args, store, &out); err != nil {
		t.Fatalf("%s %v failed: %v\noutput: %s", command, args, err, out.String())
	}
	return out.String()
}

func TestCaptureAndShow(t *testing.T) {
	store := game.NewLayoutStore(nil)

	out := runTool(t, store, "capture", "-blueprint", testBlueprint, "-config", testConfig)
	if !strings.Contains(out, `captured "tower": 7 pieces`) {
		t.Errorf("unexpected capture output: %s", out)
	}

	shown := runTool(t, store, "show", "-name", "tower")
	if !strings.Contains(shown, "name: tower") || !strings.Contains(shown, "index: 6") {
		t.Errorf("show did not print the layout: %s", shown)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	store := game.NewLayoutStore(nil)
	runTool(t, store, "capture", "-blueprint", testBlueprint, "-config", testConfig)

	path := filepath.Join(t.TempDir(), "tower-layout.yaml")
	runTool(t, store, "export", "-name", "tower", "-out", path)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("export did not write the file: %v", err)
	}

	other := game.NewLayoutStore(nil)
	out := runTool(t, other, "import", "-in", path)
	if !strings.Contains(out, `imported "tower": 7 pieces`) {
		t.Errorf("unexpected import output: %s", out)
	}
	if !other.Exists("tower") {
		t.Error("imported layout missing from store")
	}
}

func TestRenewKeepsPieceCountAndChangesRevision(t *testing.T) {
	store := game.NewLayoutStore(nil)
	runTool(t, store, "capture", "-blueprint", testBlueprint, "-config", testConfig)
	before, _ := store.Load("tower")

	runTool(t, store, "renew", "-blueprint", testBlueprint, "-config", testConfig)
	after, err := store.Load("tower")
	if err != nil || after == nil {
		t.Fatalf("renewed layout missing: %v", err)
	}
	if len(after.Pieces) != len(before.Pieces) {
		t.Errorf("piece count changed: %d -> %d", len(before.Pieces), len(after.Pieces))
	}
	if after.Revision == before.Revision {
		t.Error("renew should produce a new revision")
	}
	for i := range after.Pieces {
		if after.Pieces[i].Position != before.Pieces[i].Position {
			t.Errorf("piece %d target moved: %v -> %v", i, before.Pieces[i].Position, after.Pieces[i].Position)
		}
	}
}

func TestScatterStaysWithinRadius(t *testing.T) {
	out := runTool(t, game.NewLayoutStore(nil), "scatter",
		"-blueprint", testBlueprint, "-config", testConfig, "-radius", "3", "-seed", "7")

	var pieces []scatteredPiece
	if err := yaml.Unmarshal([]byte(out), &pieces); err != nil {
		t.Fatalf("scatter output is not yaml: %v\n%s", err, out)
	}
	if len(pieces) != 7 {
		t.Fatalf("expected 7 pieces, got %d", len(pieces))
	}
	for _, p := range pieces {
		// 半径 3，再加上最高方块的一半高度
		if p.Distance > 3+0.75+1e-9 {
			t.Errorf("piece %d scattered too far: %.3f", p.Index, p.Distance)
		}
		if p.Position[1] < 0 {
			t.Errorf("piece %d scattered below the anchor: %v", p.Index, p.Position)
		}
	}
}

func TestRunErrors(t *testing.T) {
	store := game.NewLayoutStore(nil)
	tests := []struct {
		name    string
		command string
		args    []string
	}{
		{"unknown command", "explode", nil},
		{"show without name", "show", nil},
		{"show missing layout", "show", []string{"-name", "nope"}},
		{"import without file", "import", nil},
		{"capture missing blueprint", "capture", []string{"-blueprint", "missing.yaml", "-config", testConfig}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := run(tt.command, tt.args, store, &out); err == nil {
				t.Errorf("expected error for %s %v", tt.command, tt.args)
			}
		})
	}
}
