package timing

import (
	"testing"
	"time"
)

func TestManual_FiresInDeadlineOrder(t *testing.T) {
	clock := NewManual(time.Unix(0, 0))
	var fired []string
	clock.AfterFunc(30*time.Millisecond, func() { fired = append(fired, "b") })
	clock.AfterFunc(10*time.Millisecond, func() { fired = append(fired, "a") })
	clock.AfterFunc(50*time.Millisecond, func() { fired = append(fired, "c") })

	clock.Advance(40 * time.Millisecond)
	if len(fired) != 2 || fired[0] != "a" || fired[1] != "b" {
		t.Errorf("fired = %v, want [a b]", fired)
	}

	clock.Advance(20 * time.Millisecond)
	if len(fired) != 3 || fired[2] != "c" {
		t.Errorf("fired = %v, want [a b c]", fired)
	}
}

func TestManual_StopPreventsFire(t *testing.T) {
	clock := NewManual(time.Unix(0, 0))
	fired := false
	timer := clock.AfterFunc(10*time.Millisecond, func() { fired = true })
	if !timer.Stop() {
		t.Error("Stop on a pending timer should report true")
	}
	if timer.Stop() {
		t.Error("second Stop should report false")
	}
	clock.Advance(time.Second)
	if fired {
		t.Error("stopped timer must not fire")
	}
}

func TestManual_CallbackSchedulesWithinWindow(t *testing.T) {
	clock := NewManual(time.Unix(0, 0))
	var fired []string
	clock.AfterFunc(10*time.Millisecond, func() {
		fired = append(fired, "outer")
		clock.AfterFunc(10*time.Millisecond, func() { fired = append(fired, "inner") })
	})

	clock.Advance(30 * time.Millisecond)
	if len(fired) != 2 || fired[1] != "inner" {
		t.Errorf("fired = %v, want [outer inner]", fired)
	}
}

func TestManual_NowAdvancesWithTimers(t *testing.T) {
	clock := NewManual(time.Unix(0, 0))
	var at time.Time
	clock.AfterFunc(25*time.Millisecond, func() { at = clock.Now() })
	clock.Advance(100 * time.Millisecond)
	if at != time.Unix(0, 0).Add(25*time.Millisecond) {
		t.Errorf("callback observed %v, want now at its deadline", at)
	}
	if clock.Now() != time.Unix(0, 0).Add(100*time.Millisecond) {
		t.Errorf("Now = %v, want full advance", clock.Now())
	}
}
