package market

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_OnlyLatestCallRuns(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var first, second atomic.Int32
	d.Call(func() { first.Add(1) })
	d.Call(func() { second.Add(1) })

	time.Sleep(100 * time.Millisecond)

	if first.Load() != 0 {
		t.Error("superseded call should not have run")
	}
	if second.Load() != 1 {
		t.Errorf("latest call should have run once, ran %d times", second.Load())
	}
}

func TestDebouncer_RunsAfterQuietPeriod(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	done := make(chan struct{})
	d.Call(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var ran atomic.Int32
	d.Call(func() { ran.Add(1) })
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	if ran.Load() != 0 {
		t.Error("stopped call should not have run")
	}
}

func TestDebouncer_SequentialCallsEachRun(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		d.Call(func() { ran.Add(1) })
		time.Sleep(50 * time.Millisecond)
	}

	if ran.Load() != 3 {
		t.Errorf("expected 3 runs for spaced calls, got %d", ran.Load())
	}
}
