// Package kv defines the persistent key-value backing store that the
// session and record stores write through to.
//
// Each key holds one complete serialized snapshot. There is no
// read-modify-write protection: two processes sharing a backend overwrite
// each other at whole-key granularity.
package kv

import (
	"context"
	"sort"
	"sync"
)

// Well-known keys.
const (
	KeyUser         = "user"
	KeyPatients     = "patients"
	KeyDoctors      = "doctors"
	KeyAppointments = "appointments"
)

// Backend is synchronous string storage keyed by name.
type Backend interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Memory is an in-process Backend. Close does not discard contents, so a
// Memory can be reopened by a new store to simulate a restart.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error { return nil }

// Keys returns the stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
