package team

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	teamrepo "depcatalog/internal/catalog/repository/team"
	"depcatalog/internal/types"
)

type Store = teamrepo.Store

type CacheConfig struct {
	Size int
	TTL  time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{Size: 256, TTL: 5 * time.Minute}
}

type MetricsSnapshot struct {
	Hits          uint64
	Misses        uint64
	OriginReadErr uint64
}

// CachedStore keeps found teams for up to TTL. Missing teams are not cached,
// so a newly created team is visible on the next request.
type CachedStore struct {
	origin Store
	cache  *expirable.LRU[string, types.TeamRow]

	hits          atomic.Uint64
	misses        atomic.Uint64
	originReadErr atomic.Uint64
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.Size <= 0 {
		cfg.Size = def.Size
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	return &CachedStore{
		origin: origin,
		cache:  expirable.NewLRU[string, types.TeamRow](cfg.Size, nil, cfg.TTL),
	}
}

func (s *CachedStore) FindByID(ctx context.Context, id string) (types.TeamRow, bool, error) {
	id = strings.TrimSpace(id)
	if cached, ok := s.cache.Get(id); ok {
		s.hits.Add(1)
		return cached, true, nil
	}
	s.misses.Add(1)

	t, ok, err := s.origin.FindByID(ctx, id)
	if err != nil {
		s.originReadErr.Add(1)
		return types.TeamRow{}, false, err
	}
	if ok {
		s.cache.Add(id, t)
	}
	return t, ok, nil
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Hits:          s.hits.Load(),
		Misses:        s.misses.Load(),
		OriginReadErr: s.originReadErr.Load(),
	}
}
