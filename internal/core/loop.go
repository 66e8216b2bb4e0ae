package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"settings-service/internal/logger"
)

var ErrLoopStopped = errors.New("control loop stopped")

// Loop is the single control thread. Every settings component is only
// touched from functions posted here.
type Loop struct {
	tasks  chan func()
	logger *logger.Logger

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
	timers  map[*time.Timer]struct{}
}

func NewLoop(l *logger.Logger) *Loop {
	return &Loop{
		tasks:  make(chan func(), 64),
		logger: l,
		done:   make(chan struct{}),
		timers: make(map[*time.Timer]struct{}),
	}
}

// Run executes posted functions until ctx is cancelled or Stop is called.
func (lp *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			lp.Stop()
			return
		case <-lp.done:
			return
		case fn := <-lp.tasks:
			fn()
		}
	}
}

// Post queues fn. It returns false once the loop has stopped.
func (lp *Loop) Post(fn func()) bool {
	lp.mu.Lock()
	stopped := lp.stopped
	lp.mu.Unlock()
	if stopped {
		return false
	}

	select {
	case lp.tasks <- fn:
		return true
	case <-lp.done:
		return false
	}
}

// Do runs fn on the loop and waits for its result. Never call it from the
// loop itself.
func (lp *Loop) Do(fn func() error) error {
	result := make(chan error, 1)
	if !lp.Post(func() { result <- fn() }) {
		return ErrLoopStopped
	}
	select {
	case err := <-result:
		return err
	case <-lp.done:
		return ErrLoopStopped
	}
}

// After posts fn once d has elapsed. Pending timers are dropped by Stop.
func (lp *Loop) After(d time.Duration, fn func()) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if lp.stopped {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		lp.mu.Lock()
		delete(lp.timers, t)
		lp.mu.Unlock()
		lp.Post(fn)
	})
	lp.timers[t] = struct{}{}
}

func (lp *Loop) Stop() {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if lp.stopped {
		return
	}
	lp.stopped = true
	for t := range lp.timers {
		t.Stop()
	}
	lp.timers = nil
	close(lp.done)
	lp.logger.Debugf("Control loop stopped")
}
