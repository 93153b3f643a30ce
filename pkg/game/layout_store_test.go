package game

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/decker502/construct/pkg/config"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/quasilyte/gdata/v2"
)

// createTestGdataManager 创建用于测试的 gdata Manager
func createTestGdataManager(t *testing.T, testName string) *gdata.Manager {
	appName := fmt.Sprintf("construct_test_%s_%d", testName, time.Now().UnixNano())
	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil
	}

	// 测试结束后删除测试目录
	t.Cleanup(func() {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			os.RemoveAll(filepath.Join(homeDir, ".local", "share", appName))
		}
	})

	return manager
}

func testLayout(name string) *config.Layout {
	return &config.Layout{
		Name:     name,
		Revision: "rev-1",
		Pieces: []config.PiecePose{
			config.NewPiecePose(0, mgl64.Vec3{1, 2, 3}, mgl64.QuatIdent()),
			config.NewPiecePose(1, mgl64.Vec3{-1, 0.5, 0}, mgl64.QuatRotate(1, mgl64.Vec3{0, 1, 0})),
		},
	}
}

func checkLayoutStore(t *testing.T, ls *LayoutStore) {
	t.Helper()

	if ls.Exists("tower") {
		t.Fatal("empty store reports an existing layout")
	}
	missing, err := ls.Load("tower")
	if err != nil || missing != nil {
		t.Fatalf("Load of a missing layout = %v, %v; want nil, nil", missing, err)
	}

	want := testLayout("tower")
	if err := ls.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !ls.Exists("tower") {
		t.Fatal("saved layout does not exist")
	}

	got, err := ls.Load("tower")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Name != want.Name || got.Revision != want.Revision || len(got.Pieces) != len(want.Pieces) {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
	for i := range want.Pieces {
		if got.Pieces[i] != want.Pieces[i] {
			t.Errorf("piece %d = %+v, want %+v", i, got.Pieces[i], want.Pieces[i])
		}
	}
}

// TestLayoutStoreMemory 测试降级模式（无 gdata）
func TestLayoutStoreMemory(t *testing.T) {
	ls := NewLayoutStore(nil)
	if ls.IsPersistent() {
		t.Error("store without gdata manager should not be persistent")
	}
	checkLayoutStore(t, ls)
}

// TestLayoutStoreGdata 测试 gdata 持久化
func TestLayoutStoreGdata(t *testing.T) {
	manager := createTestGdataManager(t, "layout")
	if manager == nil {
		t.Skip("Cannot create gdata manager for testing")
	}

	ls := NewLayoutStore(manager)
	if !ls.IsPersistent() {
		t.Error("store with gdata manager should be persistent")
	}
	checkLayoutStore(t, ls)

	// 新的存档实例读到同一份数据
	reopened := NewLayoutStore(manager)
	if !reopened.Exists("tower") {
		t.Error("layout not visible through a second store on the same manager")
	}
}

// TestLayoutStoreRejectsUnnamed 测试没有名称的布局不能保存
func TestLayoutStoreRejectsUnnamed(t *testing.T) {
	ls := NewLayoutStore(nil)
	if err := ls.Save(testLayout("")); err == nil {
		t.Error("expected error when saving a layout without a name")
	}
}
