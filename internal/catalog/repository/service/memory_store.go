package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"depcatalog/internal/types"
)

// MemoryStore keeps services in process. TeamName is taken from the row as
// given; callers seed it already joined.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]types.ServiceRow
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]types.ServiceRow)}
}

func (s *MemoryStore) Put(svc types.ServiceRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[strings.TrimSpace(svc.ID)] = svc
}

// IsActive reports whether id names an active service.
func (s *MemoryStore) IsActive(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.byID[id]
	return ok && svc.IsActive
}

func (s *MemoryStore) FindActiveWithTeam(ctx context.Context) ([]types.ServiceRow, error) {
	return s.FindAllWithTeam(ctx, Filter{IsActive: Active(true)})
}

func (s *MemoryStore) FindAllWithTeam(_ context.Context, f Filter) ([]types.ServiceRow, error) {
	tid := strings.TrimSpace(f.TeamID)
	s.mu.RLock()
	out := make([]types.ServiceRow, 0, len(s.byID))
	for _, svc := range s.byID {
		if tid != "" && svc.TeamID != tid {
			continue
		}
		if f.IsActive != nil && svc.IsActive != *f.IsActive {
			continue
		}
		out = append(out, svc)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) FindByIDWithTeam(_ context.Context, id string) (types.ServiceRow, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.byID[strings.TrimSpace(id)]
	return svc, ok, nil
}
