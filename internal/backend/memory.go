package backend

import (
	"context"
	"slices"
	"sync"

	"tracker/internal/store"
)

// MemoryPersister keeps the last saved snapshot in process memory. State
// is lost on restart.
type MemoryPersister struct {
	mu   sync.RWMutex
	snap store.Snapshot
	set  bool
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (m *MemoryPersister) Load(ctx context.Context) (store.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.set {
		return store.EmptySnapshot(), nil
	}
	return cloneSnapshot(m.snap), nil
}

func (m *MemoryPersister) Save(ctx context.Context, snap store.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = cloneSnapshot(snap)
	m.set = true
	return nil
}

func cloneSnapshot(s store.Snapshot) store.Snapshot {
	s.Expenses = slices.Clone(s.Expenses)
	s.Loans = slices.Clone(s.Loans)
	return s
}
