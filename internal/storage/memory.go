package storage

import (
	"context"
	"sync"
)

// Memory is an in-process KV, the default backend and the test double.
type Memory struct {
	mu    sync.Mutex
	items map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy so callers cannot mutate the stored payload.
	return append([]byte(nil), payload...), nil
}

func (m *Memory) Save(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = append([]byte(nil), payload...)
	return nil
}

func (m *Memory) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
