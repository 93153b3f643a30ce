//go:build !mobile

// 桌面构建时 mobile 包只剩这个文件，嵌入 data/ 和注册游戏都在 -tags mobile 下进行。
package mobile

// Dummy 空导出函数，让 go build ./... 在桌面端也能编译此包
func Dummy() {}
