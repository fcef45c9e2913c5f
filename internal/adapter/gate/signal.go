package gate

import (
	"context"
	"sync"

	"github.com/user/pane-scraper/internal/repository"
)

// Signal is released from code, e.g. by the control server's resume endpoint.
type Signal struct {
	mu      sync.Mutex
	waiting bool
	ch      chan struct{}
}

var _ repository.OperatorGate = (*Signal)(nil)

func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

func (s *Signal) Await(ctx context.Context, _ string) error {
	s.mu.Lock()
	// Drop signals sent before anyone was waiting.
	select {
	case <-s.ch:
	default:
	}
	s.waiting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.waiting = false
		s.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ch:
		return nil
	}
}

// Waiting reports whether a run is currently blocked on the gate.
func (s *Signal) Waiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiting
}

// Resume releases a waiting run. It returns false if nothing was waiting.
func (s *Signal) Resume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.waiting {
		return false
	}
	select {
	case s.ch <- struct{}{}:
	default:
	}
	return true
}
