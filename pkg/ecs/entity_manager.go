package ecs

import (
	"reflect"
	"slices"
)

// EntityID 是实体的唯一标识符
type EntityID uint64

// InvalidEntity 表示"没有实体"，ID 从 1 开始分配
const InvalidEntity EntityID = 0

// componentSet 一个实体的全部组件：组件类型 -> 组件实例
type componentSet map[reflect.Type]any

// EntityManager 管理所有实体和组件
//
// 所有读写都发生在同一个 tick 线程上，因此不加锁。
// 销毁是延迟的：DestroyEntity 只做标记，RemoveMarkedEntities 在 tick 末尾统一清理，
// 这样系统在遍历查询结果时不会看到实体中途消失。
type EntityManager struct {
	nextID   EntityID
	entities map[EntityID]componentSet
	// 待清理的实体，保持标记顺序，重复标记只记一次
	doomed []EntityID
}

// NewEntityManager 创建一个空的实体管理器
func NewEntityManager() *EntityManager {
	return &EntityManager{
		nextID:   InvalidEntity + 1,
		entities: make(map[EntityID]componentSet),
	}
}

// CreateEntity 分配一个新实体
func (em *EntityManager) CreateEntity() EntityID {
	id := em.nextID
	em.nextID++
	em.entities[id] = make(componentSet)
	return id
}

// Exists 检查实体是否存在（已标记删除但尚未清理的实体仍视为存在）
func (em *EntityManager) Exists(id EntityID) bool {
	_, ok := em.entities[id]
	return ok
}

// DestroyEntity 标记实体待删除，不存在的实体忽略
func (em *EntityManager) DestroyEntity(id EntityID) {
	if !em.Exists(id) || slices.Contains(em.doomed, id) {
		return
	}
	em.doomed = append(em.doomed, id)
}

// AddComponent 为实体添加组件，同类型组件会被覆盖
//
// 实体不存在时静默忽略。
func (em *EntityManager) AddComponent(id EntityID, component any) {
	if set, ok := em.entities[id]; ok {
		set[reflect.TypeOf(component)] = component
	}
}

// RemoveComponent 从实体移除指定类型的组件
func (em *EntityManager) RemoveComponent(id EntityID, componentType reflect.Type) {
	if set, ok := em.entities[id]; ok {
		delete(set, componentType)
	}
}

// GetComponent 获取实体的特定类型组件
func (em *EntityManager) GetComponent(id EntityID, componentType reflect.Type) (any, bool) {
	comp, ok := em.entities[id][componentType]
	return comp, ok
}

// HasComponent 检查实体是否拥有特定类型组件
func (em *EntityManager) HasComponent(id EntityID, componentType reflect.Type) bool {
	_, ok := em.entities[id][componentType]
	return ok
}

// RemoveMarkedEntities 清理所有标记删除的实体
func (em *EntityManager) RemoveMarkedEntities() {
	for _, id := range em.doomed {
		delete(em.entities, id)
	}
	em.doomed = em.doomed[:0]
}

// GetEntitiesWith 查询拥有指定组件类型组合的所有实体
//
// 参数:
//   - componentTypes: 需要的组件类型列表
//
// 返回:
//   - []EntityID: 满足条件的实体，按创建顺序（ID 升序）排列
func (em *EntityManager) GetEntitiesWith(componentTypes ...reflect.Type) []EntityID {
	result := make([]EntityID, 0)
	for id, set := range em.entities {
		if set.hasAll(componentTypes) {
			result = append(result, id)
		}
	}

	// map 遍历顺序不稳定，系统依赖创建顺序（例如部件发现顺序）
	slices.Sort(result)
	return result
}

func (set componentSet) hasAll(types []reflect.Type) bool {
	for _, t := range types {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}
