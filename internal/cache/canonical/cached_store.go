package canonical

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	canonicalrepo "depcatalog/internal/catalog/repository/canonical"
	"depcatalog/internal/types"
)

type Store = canonicalrepo.Store

// listKey is the single cache slot for the full override list. Graph requests
// always need every override, so there is nothing finer to key on.
const listKey = "all"

type CacheConfig struct {
	TTL time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{TTL: 30 * time.Second}
}

type MetricsSnapshot struct {
	Hits          uint64
	Misses        uint64
	OriginReads   uint64
	OriginReadErr uint64
}

type Metrics struct {
	hits          atomic.Uint64
	misses        atomic.Uint64
	originReads   atomic.Uint64
	originReadErr atomic.Uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Hits:          m.hits.Load(),
		Misses:        m.misses.Load(),
		OriginReads:   m.originReads.Load(),
		OriginReadErr: m.originReadErr.Load(),
	}
}

// CachedStore serves the override list from memory for up to TTL. Overrides
// change through operator edits, so a short staleness window is acceptable.
type CachedStore struct {
	origin  Store
	cache   *expirable.LRU[string, []types.CanonicalOverride]
	metrics Metrics
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheConfig().TTL
	}
	return &CachedStore{
		origin: origin,
		cache:  expirable.NewLRU[string, []types.CanonicalOverride](1, nil, cfg.TTL),
	}
}

func (s *CachedStore) List(ctx context.Context) ([]types.CanonicalOverride, error) {
	if cached, ok := s.cache.Get(listKey); ok {
		s.metrics.hits.Add(1)
		return append([]types.CanonicalOverride(nil), cached...), nil
	}
	s.metrics.misses.Add(1)
	s.metrics.originReads.Add(1)

	list, err := s.origin.List(ctx)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return nil, err
	}
	copied := append([]types.CanonicalOverride(nil), list...)
	s.cache.Add(listKey, copied)
	return append([]types.CanonicalOverride(nil), copied...), nil
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{}
	}
	return s.metrics.snapshot()
}
