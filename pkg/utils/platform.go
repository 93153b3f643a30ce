//go:build !mobile

package utils

import "os"

// IsMobile 检测当前是否在移动设备上运行
// 桌面端编译时返回 false，设置 CONSTRUCT_MOBILE_EMULATE=1 可强制启用移动模式（本地调试触摸提示）
func IsMobile() bool {
	return os.Getenv("CONSTRUCT_MOBILE_EMULATE") == "1"
}
