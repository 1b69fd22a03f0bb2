package canonical

import (
	"context"
	"sync"

	"depcatalog/internal/types"
)

type MemoryStore struct {
	mu   sync.RWMutex
	rows []types.CanonicalOverride
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Put(o types.CanonicalOverride) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, o)
}

func (s *MemoryStore) List(_ context.Context) ([]types.CanonicalOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.CanonicalOverride(nil), s.rows...), nil
}
