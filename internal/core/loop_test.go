package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"settings-service/internal/logger"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	lp := NewLoop(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	go lp.Run(ctx)
	t.Cleanup(cancel)
	return lp
}

func TestLoopDoReturnsResult(t *testing.T) {
	lp := startLoop(t)
	want := errors.New("boom")

	if err := lp.Do(func() error { return want }); err != want {
		t.Errorf("Do() = %v, want %v", err, want)
	}
}

func TestLoopRunsInOrder(t *testing.T) {
	lp := startLoop(t)

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		lp.Post(func() { order = append(order, i) })
	}
	lp.Do(func() error { return nil })

	for i, v := range order {
		if v != i {
			t.Fatalf("Out of order: %v", order)
		}
	}
	if len(order) != 5 {
		t.Errorf("Expected 5 tasks, got %v", order)
	}
}

func TestLoopAfter(t *testing.T) {
	lp := startLoop(t)

	fired := make(chan struct{})
	lp.After(20*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("Timer did not fire")
	}
}

func TestLoopStop(t *testing.T) {
	lp := startLoop(t)

	fired := false
	lp.After(50*time.Millisecond, func() { fired = true })
	lp.Stop()
	lp.Stop()

	if lp.Post(func() {}) {
		t.Error("Post should fail after Stop")
	}
	if err := lp.Do(func() error { return nil }); !errors.Is(err, ErrLoopStopped) {
		t.Errorf("Do() = %v, want ErrLoopStopped", err)
	}
	lp.After(time.Millisecond, func() {})

	time.Sleep(100 * time.Millisecond)
	if fired {
		t.Error("Timer fired after Stop")
	}
}
