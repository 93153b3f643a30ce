//go:build mobile

package utils

// IsMobile 移动端构建（-tags mobile）恒为 true，HUD 据此显示触摸操作提示
func IsMobile() bool {
	return true
}
