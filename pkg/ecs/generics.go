package ecs

import "reflect"

// componentKey 组件类型 T 在 EntityManager 中的键
func componentKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// GetComponent 按类型取组件，实体不存在或没有该组件时第二个返回值为 false
//
//	tr, ok := ecs.GetComponent[*components.TransformComponent](em, piece)
func GetComponent[T any](em *EntityManager, id EntityID) (T, bool) {
	raw, ok := em.GetComponent(id, componentKey[T]())
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := raw.(T)
	return typed, ok
}

// GetComponents2 同时取两个组件，任一缺失即返回 false
//
// 系统遍历 GetEntitiesWith2 的结果时使用，省去两次单独查找。
func GetComponents2[T1, T2 any](em *EntityManager, id EntityID) (T1, T2, bool) {
	a, okA := GetComponent[T1](em, id)
	b, okB := GetComponent[T2](em, id)
	return a, b, okA && okB
}

// AddComponent 添加组件，同类型组件会被替换
func AddComponent[T any](em *EntityManager, id EntityID, component T) {
	em.AddComponent(id, component)
}

// RemoveComponent 移除类型为 T 的组件
func RemoveComponent[T any](em *EntityManager, id EntityID) {
	em.RemoveComponent(id, componentKey[T]())
}

// HasComponent 实体是否带有类型为 T 的组件
func HasComponent[T any](em *EntityManager, id EntityID) bool {
	return em.HasComponent(id, componentKey[T]())
}

// GetEntitiesWith1 带有 T1 的实体，ID 升序
func GetEntitiesWith1[T1 any](em *EntityManager) []EntityID {
	return em.GetEntitiesWith(componentKey[T1]())
}

// GetEntitiesWith2 同时带有 T1、T2 的实体，ID 升序
func GetEntitiesWith2[T1, T2 any](em *EntityManager) []EntityID {
	return em.GetEntitiesWith(componentKey[T1](), componentKey[T2]())
}

// GetEntitiesWith3 同时带有 T1、T2、T3 的实体，ID 升序
func GetEntitiesWith3[T1, T2, T3 any](em *EntityManager) []EntityID {
	return em.GetEntitiesWith(componentKey[T1](), componentKey[T2](), componentKey[T3]())
}
