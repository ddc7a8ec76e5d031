// Package testutil provides deterministic helpers for tests and scenarios.
package testutil

import "sync"

// Sequence is a record id source issuing 1, 2, 3, ... so replayed runs
// assign identical ids. Collections skip ids their seed data already holds.
type Sequence struct {
	mu   sync.Mutex
	last int64
}

// NewSequence creates a sequence whose first id is 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the next id.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}
