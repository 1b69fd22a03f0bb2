package team

import (
	"context"
	"strings"
	"sync"

	"depcatalog/internal/types"
)

type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]types.TeamRow
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]types.TeamRow)}
}

func (s *MemoryStore) Put(t types.TeamRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[strings.TrimSpace(t.ID)] = t
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (types.TeamRow, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[strings.TrimSpace(id)]
	return t, ok, nil
}
