package cache

import (
	"context"
	"sync"

	"MacroDash/internal/model"
)

// Store holds at most one dataset.
type Store interface {
	// Load returns the stored dataset, or ok=false when the slot is empty.
	Load(ctx context.Context) (ds model.Dataset, ok bool, err error)
	Save(ctx context.Context, ds model.Dataset) error
	Clear(ctx context.Context) error
	Name() string
}

// MemoryStore is a single in-process slot.
type MemoryStore struct {
	mu   sync.RWMutex
	ds   model.Dataset
	full bool
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Load(_ context.Context) (model.Dataset, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ds, m.full, nil
}

func (m *MemoryStore) Save(_ context.Context, ds model.Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ds = ds
	m.full = true
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ds = model.Dataset{}
	m.full = false
	return nil
}
