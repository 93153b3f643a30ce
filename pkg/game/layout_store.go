package game

import (
	"fmt"
	"log"

	"github.com/decker502/construct/pkg/config"
	"github.com/quasilyte/gdata/v2"
)

// 存储路径常量
const layoutObject = "layouts"

// LayoutStore 组装体布局存档
//
// 保存编辑期采集到的部件目标位姿，每个组装体名称对应一个属性。
// gdataManager 为 nil 时进入降级模式：布局只保存在内存中。
type LayoutStore struct {
	gdataManager *gdata.Manager
	memory       map[string][]byte
}

// NewLayoutStore 创建布局存档
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式）
func NewLayoutStore(gdataManager *gdata.Manager) *LayoutStore {
	return &LayoutStore{
		gdataManager: gdataManager,
		memory:       make(map[string][]byte),
	}
}

// OpenLayoutStore 按应用名打开 gdata 存储
//
// 打开失败不是致命错误，返回降级模式的存档。
func OpenLayoutStore(appName string) *LayoutStore {
	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		log.Printf("[LayoutStore] Warning: gdata unavailable: %v (layouts kept in memory)", err)
		return NewLayoutStore(nil)
	}
	return NewLayoutStore(manager)
}

// IsPersistent 是否写入磁盘
func (ls *LayoutStore) IsPersistent() bool {
	return ls.gdataManager != nil
}

// Save 保存布局
//
// 返回：
//   - error: 序列化或写入失败时返回错误
func (ls *LayoutStore) Save(layout *config.Layout) error {
	if layout.Name == "" {
		return fmt.Errorf("layout has no name")
	}

	data, err := config.MarshalLayout(layout)
	if err != nil {
		return err
	}

	if ls.gdataManager == nil {
		ls.memory[layout.Name] = data
		return nil
	}

	if err := ls.gdataManager.SaveObjectProp(layoutObject, layout.Name, data); err != nil {
		return fmt.Errorf("failed to save layout %q: %w", layout.Name, err)
	}

	log.Printf("[LayoutStore] Saved layout %q (revision %s, %d pieces)", layout.Name, layout.Revision, len(layout.Pieces))
	return nil
}

// Exists 检查布局是否存在
func (ls *LayoutStore) Exists(name string) bool {
	if ls.gdataManager == nil {
		_, ok := ls.memory[name]
		return ok
	}
	return ls.gdataManager.ObjectPropExists(layoutObject, name)
}

// Load 读取布局
//
// 返回：
//   - *config.Layout: 布局，不存在时为 nil
//   - error: 读取或反序列化失败时返回错误
func (ls *LayoutStore) Load(name string) (*config.Layout, error) {
	if !ls.Exists(name) {
		return nil, nil
	}

	var data []byte
	if ls.gdataManager == nil {
		data = ls.memory[name]
	} else {
		loaded, err := ls.gdataManager.LoadObjectProp(layoutObject, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load layout %q: %w", name, err)
		}
		data = loaded
	}

	return config.UnmarshalLayout(data)
}
