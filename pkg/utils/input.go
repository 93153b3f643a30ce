// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PointerState 本帧的指针状态
// 统一鼠标左键和触摸：按住即视为"按下"，所有触点松开才算"抬起"
type PointerState struct {
	// 本帧刚按下
	JustPressed bool
	// 本帧刚松开，且没有剩余触点
	JustReleased bool
	// 仍处于按住状态
	Held bool
}

// touchBuffer 复用的触摸 ID 缓冲
var touchBuffer []ebiten.TouchID

// ReadPointer 读取当前帧的指针状态
// 优先检测触摸（移动设备），没有触摸时检测鼠标
func ReadPointer() PointerState {
	touchBuffer = inpututil.AppendJustPressedTouchIDs(touchBuffer[:0])
	pressed := len(touchBuffer)
	touchBuffer = inpututil.AppendJustReleasedTouchIDs(touchBuffer[:0])
	released := len(touchBuffer)
	touchBuffer = ebiten.AppendTouchIDs(touchBuffer[:0])
	active := len(touchBuffer)

	return combinePointer(
		pressed, released, active,
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
	)
}

// combinePointer 合并触摸计数与鼠标按键状态
//
// 参数:
//   - touchPressed: 本帧新按下的触点数
//   - touchReleased: 本帧松开的触点数
//   - touchActive: 当前仍按住的触点数
//   - mousePressed, mouseReleased, mouseHeld: 鼠标左键状态
func combinePointer(touchPressed, touchReleased, touchActive int, mousePressed, mouseReleased, mouseHeld bool) PointerState {
	if touchPressed > 0 || touchReleased > 0 || touchActive > 0 {
		return PointerState{
			// 多指时只有第一根手指算按下
			JustPressed:  touchPressed > 0 && touchActive == touchPressed,
			JustReleased: touchReleased > 0 && touchActive == 0,
			Held:         touchActive > 0,
		}
	}
	return PointerState{
		JustPressed:  mousePressed,
		JustReleased: mouseReleased,
		Held:         mouseHeld,
	}
}
