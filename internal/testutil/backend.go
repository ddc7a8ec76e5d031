package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/clinicdesk/internal/kv"
)

// ErrInjected is returned by FailingBackend for keys marked to fail.
var ErrInjected = errors.New("injected storage failure")

// FailingBackend wraps a kv.Backend and fails writes to chosen keys,
// standing in for a full quota or a broken disk.
type FailingBackend struct {
	kv.Backend

	mu   sync.Mutex
	fail map[string]bool
	sets map[string]int
}

// NewFailingBackend wraps inner. No key fails until FailSet is called.
func NewFailingBackend(inner kv.Backend) *FailingBackend {
	return &FailingBackend{Backend: inner, fail: make(map[string]bool), sets: make(map[string]int)}
}

// FailSet makes every later Set or Remove of key return ErrInjected.
func (b *FailingBackend) FailSet(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[key] = true
}

// Heal clears all injected failures.
func (b *FailingBackend) Heal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail = make(map[string]bool)
}

// Sets returns how many successful writes key has received.
func (b *FailingBackend) Sets(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sets[key]
}

func (b *FailingBackend) Set(ctx context.Context, key, value string) error {
	b.mu.Lock()
	failing := b.fail[key]
	b.mu.Unlock()
	if failing {
		return ErrInjected
	}
	if err := b.Backend.Set(ctx, key, value); err != nil {
		return err
	}
	b.mu.Lock()
	b.sets[key]++
	b.mu.Unlock()
	return nil
}

func (b *FailingBackend) Remove(ctx context.Context, key string) error {
	b.mu.Lock()
	failing := b.fail[key]
	b.mu.Unlock()
	if failing {
		return ErrInjected
	}
	return b.Backend.Remove(ctx, key)
}
