package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestFromResult(t *testing.T) {
	tk := FromResult(42)
	if !tk.IsCompleted() {
		t.Fatal("expected completed task")
	}
	v, err := tk.GetAwaiter().GetResult()
	if err != nil || v != 42 {
		t.Errorf("got (%v, %v), want (42, nil)", v, err)
	}
}

func TestFromError(t *testing.T) {
	boom := errors.New("boom")
	_, err := FromError(boom).Result()
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want %v", err, boom)
	}
}

func TestSource_CompletesOnce(t *testing.T) {
	s := NewSource()
	if !s.SetResult(1) {
		t.Fatal("first completion should succeed")
	}
	if s.SetResult(2) {
		t.Error("second completion should be rejected")
	}
	if s.SetException(errors.New("late")) {
		t.Error("fault after completion should be rejected")
	}
	v, err := s.Task().Result()
	if v != 1 || err != nil {
		t.Errorf("got (%v, %v), want (1, nil)", v, err)
	}
}

func TestAwaiter_OnCompleted(t *testing.T) {
	s := NewSource()
	aw := s.Task().GetAwaiter()
	var calls atomic.Int32
	aw.OnCompleted(func() { calls.Add(1) })
	if calls.Load() != 0 {
		t.Fatal("continuation ran before completion")
	}
	s.SetResult("x")
	if calls.Load() != 1 {
		t.Fatalf("continuation ran %d times, want 1", calls.Load())
	}

	aw.OnCompleted(func() { calls.Add(1) })
	if calls.Load() != 2 {
		t.Errorf("late continuation should run immediately")
	}
}

func TestRun(t *testing.T) {
	tk := Run(func() (any, error) { return "done", nil })
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := Wait(ctx, tk)
	if err != nil || v != "done" {
		t.Errorf("got (%v, %v)", v, err)
	}
}

func TestWait_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Wait(ctx, NewSource().Task())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestAfter(t *testing.T) {
	tk := After(time.Millisecond, 7)
	v, err := tk.Result()
	if err != nil || v != 7 {
		t.Errorf("got (%v, %v), want (7, nil)", v, err)
	}
}
