package app_test

import (
	"context"
	"sync"
)

// mockKV is an in-memory key-value store whose calls can be overridden.
type mockKV struct {
	mu     sync.Mutex
	items  map[string]string
	writes int

	getFn func(ctx context.Context, key string) (string, bool, error)
	setFn    func(ctx context.Context, key, value string) error
	removeFn func(ctx context.Context, key string) error
}

func newMockKV() *mockKV {
	return &mockKV{items: make(map[string]string)}
}

func (m *mockKV) GetItem(ctx context.Context, key string) (string, bool, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *mockKV) SetItem(ctx context.Context, key, value string) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	m.writes++
	return nil
}

func (m *mockKV) RemoveItem(ctx context.Context, key string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *mockKV) value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok
}
