package dependency

import (
	"context"
	"strings"
	"sync"

	"depcatalog/internal/types"
)

// ActivityChecker reports whether a service is active.
type ActivityChecker interface {
	IsActive(serviceID string) bool
}

// MemoryStore keeps dependency rows in insertion order. Rows are stored
// already joined; the association and latency fields are returned as given.
type MemoryStore struct {
	mu       sync.RWMutex
	rows     []types.DependencyRow
	byID     map[string]int
	services ActivityChecker
}

// NewMemoryStore uses services to honour Options.ActiveServicesOnly; a nil
// checker treats every service as active.
func NewMemoryStore(services ActivityChecker) *MemoryStore {
	return &MemoryStore{byID: make(map[string]int), services: services}
}

// Put inserts dep or replaces the row with the same id in place.
func (s *MemoryStore) Put(dep types.DependencyRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.byID[dep.ID]; ok {
		s.rows[i] = dep
		return
	}
	s.byID[dep.ID] = len(s.rows)
	s.rows = append(s.rows, dep)
}

func (s *MemoryStore) FindAllWithAssociationsAndLatency(_ context.Context, opts Options) ([]types.DependencyRow, error) {
	return s.filter(func(dep types.DependencyRow) bool {
		return !opts.ActiveServicesOnly || s.services == nil || s.services.IsActive(dep.ServiceID)
	}), nil
}

func (s *MemoryStore) FindByServiceIDsWithAssociationsAndLatency(_ context.Context, serviceIDs []string) ([]types.DependencyRow, error) {
	want := make(map[string]struct{}, len(serviceIDs))
	for _, id := range serviceIDs {
		want[strings.TrimSpace(id)] = struct{}{}
	}
	return s.filter(func(dep types.DependencyRow) bool {
		_, ok := want[dep.ServiceID]
		return ok
	}), nil
}

func (s *MemoryStore) FindByServiceID(_ context.Context, serviceID string) ([]types.DependencyRow, error) {
	serviceID = strings.TrimSpace(serviceID)
	return s.filter(func(dep types.DependencyRow) bool { return dep.ServiceID == serviceID }), nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (types.DependencyRow, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return types.DependencyRow{}, false, nil
	}
	return s.rows[i], true, nil
}

func (s *MemoryStore) filter(keep func(types.DependencyRow) bool) []types.DependencyRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.DependencyRow, 0, len(s.rows))
	for _, dep := range s.rows {
		if keep(dep) {
			out = append(out, dep)
		}
	}
	return out
}
