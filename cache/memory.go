package cache

import (
	"context"
	"sync"
)

// Memory is an in-process Cache. It is the default backend when nothing is
// configured and the workhorse for tests.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

// Get returns the value stored under key, or ErrCacheMiss.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put stores value under key.
func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = stored
	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Flush is a no-op.
func (m *Memory) Flush(context.Context) error { return nil }

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
