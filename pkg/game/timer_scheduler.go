package game

import "sort"

// TimerHandle 延迟回调的不透明句柄，0 表示无效句柄
type TimerHandle uint64

// NoTimer 无效句柄
const NoTimer TimerHandle = 0

// timerEpsilon 吸收逐帧累加 deltaTime 的浮点误差
// 例如 18 帧 * (1/60) 可能略小于 0.3
const timerEpsilon = 1e-9

type scheduledTimer struct {
	handle    TimerHandle
	dueAt     float64
	callback  func()
	cancelled bool
	fired     bool
}

// TimerScheduler 基于帧时钟的一次性延迟回调调度器
//
// 所有回调都在调用 Update 的 tick 线程上同步执行，不创建 goroutine。
// 在回调中新调度的定时器最早在下一次 Update 中触发。
type TimerScheduler struct {
	now        float64
	nextHandle uint64
	timers     []*scheduledTimer
	firing     []*scheduledTimer // 本次 Update 中已到期、尚未全部执行的定时器
}

// NewTimerScheduler 创建调度器，时钟从 0 开始
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{
		nextHandle: 1,
		timers:     make([]*scheduledTimer, 0),
	}
}

// Now 返回调度器时钟（秒）
func (ts *TimerScheduler) Now() float64 {
	return ts.now
}

// After 在 delay 秒后执行 callback
//
// 参数:
//   - delay: 延迟时间（秒），负值按 0 处理
//   - callback: 到期时执行的回调
//
// 返回:
//   - TimerHandle: 可用于 Cancel 的句柄
func (ts *TimerScheduler) After(delay float64, callback func()) TimerHandle {
	if delay < 0 {
		delay = 0
	}
	h := TimerHandle(ts.nextHandle)
	ts.nextHandle++
	ts.timers = append(ts.timers, &scheduledTimer{
		handle:   h,
		dueAt:    ts.now + delay,
		callback: callback,
	})
	return h
}

// Cancel 取消尚未触发的定时器
//
// 返回:
//   - bool: 定时器存在且被取消返回 true；已触发或句柄无效返回 false
func (ts *TimerScheduler) Cancel(h TimerHandle) bool {
	if h == NoTimer {
		return false
	}
	for i, t := range ts.timers {
		if t.handle == h {
			t.cancelled = true
			ts.timers = append(ts.timers[:i], ts.timers[i+1:]...)
			return true
		}
	}
	for _, t := range ts.firing {
		if t.handle == h && !t.fired && !t.cancelled {
			t.cancelled = true
			return true
		}
	}
	return false
}

// Pending 检查定时器是否仍在等待
func (ts *TimerScheduler) Pending(h TimerHandle) bool {
	for _, t := range ts.timers {
		if t.handle == h {
			return true
		}
	}
	for _, t := range ts.firing {
		if t.handle == h && !t.fired && !t.cancelled {
			return true
		}
	}
	return false
}

// Len 返回等待中的定时器数量
func (ts *TimerScheduler) Len() int {
	return len(ts.timers)
}

// Update 推进时钟并按到期时间顺序执行到期回调
//
// 参数:
//   - deltaTime: 自上一帧以来经过的时间（秒）
func (ts *TimerScheduler) Update(deltaTime float64) {
	ts.now += deltaTime

	due := make([]*scheduledTimer, 0)
	remaining := ts.timers[:0]
	for _, t := range ts.timers {
		if t.dueAt <= ts.now+timerEpsilon {
			due = append(due, t)
		} else {
			remaining = append(remaining, t)
		}
	}
	ts.timers = remaining

	// 同时到期时按调度顺序执行
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].dueAt != due[j].dueAt {
			return due[i].dueAt < due[j].dueAt
		}
		return due[i].handle < due[j].handle
	})

	ts.firing = due
	for _, t := range due {
		// 前一个回调可能已经取消了它
		if t.cancelled {
			continue
		}
		t.fired = true
		t.callback()
	}
	ts.firing = nil
}
