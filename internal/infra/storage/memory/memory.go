package memory

import (
	"context"
	"sync"
)

// Store keeps the sentinel in process memory. Nothing survives a restart.
type Store[S any] struct {
	sentinel *S
	mu       sync.RWMutex
}

func NewStore[S any]() *Store[S] {
	return &Store[S]{}
}

// Current returns a copy of the stored sentinel so callers cannot mutate it.
func (s *Store[S]) Current(ctx context.Context) (*S, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sentinel == nil {
		return nil, nil
	}
	c := *s.sentinel
	return &c, nil
}

func (s *Store[S]) Commit(ctx context.Context, sentinel S) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentinel = &sentinel
	return nil
}
