// Package clock issues record ids.
package clock

import (
	"sync"
	"time"
)

// Wall issues ids from the wall clock in milliseconds since the Unix epoch.
//
// Two calls within the same millisecond, or a clock that steps backwards,
// still get strictly increasing ids: Next never returns a value less than
// or equal to the previous one.
type Wall struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewWall creates an id clock reading time.Now.
func NewWall() *Wall {
	return &Wall{now: time.Now}
}

// NewWallAt creates an id clock reading now. Used by tests.
func NewWallAt(now func() time.Time) *Wall {
	return &Wall{now: now}
}

// Next returns the next id.
func (w *Wall) Next() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.now().UnixMilli()
	if id <= w.last {
		id = w.last + 1
	}
	w.last = id
	return id
}

// Current returns the last id issued, or 0.
func (w *Wall) Current() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}
