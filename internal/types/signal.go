package types

import "sync"

// Signal is a minimal typed observer list.
type Signal[T any] struct {
	mu       sync.RWMutex
	handlers []func(T)
}

func (s *Signal[T]) Connect(fn func(T)) {
	s.mu.Lock()
	s.handlers = append(s.handlers, fn)
	s.mu.Unlock()
}

func (s *Signal[T]) Emit(v T) {
	s.mu.RLock()
	handlers := make([]func(T), len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.RUnlock()

	for _, fn := range handlers {
		fn(v)
	}
}
