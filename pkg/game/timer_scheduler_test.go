package game

import (
	"testing"
)

// TestTimerSchedulerFiresAfterDelay 测试回调在延迟到达后触发
func TestTimerSchedulerFiresAfterDelay(t *testing.T) {
	ts := NewTimerScheduler()
	fired := 0
	ts.After(0.3, func() { fired++ })

	// 17 帧 (~0.283s) 不应触发
	for i := 0; i < 17; i++ {
		ts.Update(1.0 / 60.0)
	}
	if fired != 0 {
		t.Fatalf("timer fired early at t=%.4f", ts.Now())
	}

	// 第 18 帧累加误差也必须触发
	ts.Update(1.0 / 60.0)
	if fired != 1 {
		t.Fatalf("expected timer to fire at t=%.4f, fired=%d", ts.Now(), fired)
	}

	// 一次性
	ts.Update(1)
	if fired != 1 {
		t.Errorf("timer fired more than once: %d", fired)
	}
	if ts.Len() != 0 {
		t.Errorf("expected no pending timers, got %d", ts.Len())
	}
}

// TestTimerSchedulerOrder 测试同帧到期的回调按到期时间、再按调度顺序执行
func TestTimerSchedulerOrder(t *testing.T) {
	ts := NewTimerScheduler()
	var order []string
	ts.After(0.2, func() { order = append(order, "b1") })
	ts.After(0.1, func() { order = append(order, "a") })
	ts.After(0.2, func() { order = append(order, "b2") })

	ts.Update(0.5)

	want := []string{"a", "b1", "b2"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

// TestTimerSchedulerCancel 测试取消
func TestTimerSchedulerCancel(t *testing.T) {
	ts := NewTimerScheduler()
	fired := false
	h := ts.After(0.1, func() { fired = true })

	if !ts.Pending(h) {
		t.Error("new timer should be pending")
	}
	if !ts.Cancel(h) {
		t.Error("Cancel should succeed for a pending timer")
	}
	if ts.Pending(h) {
		t.Error("cancelled timer should not be pending")
	}
	if ts.Cancel(h) {
		t.Error("second Cancel should return false")
	}
	if ts.Cancel(NoTimer) {
		t.Error("Cancel(NoTimer) should return false")
	}

	ts.Update(1)
	if fired {
		t.Error("cancelled timer fired")
	}
}

// TestTimerSchedulerCancelFromCallback 测试同一帧内前一个回调取消后一个
func TestTimerSchedulerCancelFromCallback(t *testing.T) {
	ts := NewTimerScheduler()
	secondFired := false
	var second TimerHandle

	ts.After(0.1, func() {
		if !ts.Cancel(second) {
			t.Error("cancelling a due timer from a callback should succeed")
		}
	})
	second = ts.After(0.1, func() { secondFired = true })

	ts.Update(0.2)
	if secondFired {
		t.Error("timer cancelled by an earlier callback in the same Update still fired")
	}
}

// TestTimerSchedulerScheduleFromCallback 测试回调中新调度的定时器不会在同一次 Update 中执行
func TestTimerSchedulerScheduleFromCallback(t *testing.T) {
	ts := NewTimerScheduler()
	nested := 0
	ts.After(0.1, func() {
		ts.After(0, func() { nested++ })
	})

	ts.Update(0.1)
	if nested != 0 {
		t.Fatal("zero-delay timer scheduled inside a callback fired in the same Update")
	}
	ts.Update(0)
	if nested != 1 {
		t.Errorf("nested timer should fire on the next Update, fired=%d", nested)
	}
}

// TestTimerSchedulerNegativeDelay 测试负延迟按 0 处理
func TestTimerSchedulerNegativeDelay(t *testing.T) {
	ts := NewTimerScheduler()
	fired := false
	ts.After(-5, func() { fired = true })
	ts.Update(0)
	if !fired {
		t.Error("negative delay should fire on the next Update")
	}
}
