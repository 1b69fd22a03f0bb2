package team

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"depcatalog/internal/types"
)

type fakeOriginStore struct {
	mu sync.Mutex

	teams     map[string]types.TeamRow
	findCalls int
	failFind  bool
}

func (s *fakeOriginStore) FindByID(_ context.Context, id string) (types.TeamRow, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	if s.failFind {
		return types.TeamRow{}, false, fmt.Errorf("find failed")
	}
	t, ok := s.teams[id]
	return t, ok, nil
}

func (s *fakeOriginStore) rename(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.teams[id]
	t.Name = name
	s.teams[id] = t
}

func TestCachedStoreServesHitsFromMemory(t *testing.T) {
	origin := &fakeOriginStore{teams: map[string]types.TeamRow{"t1": {ID: "t1", Name: "Core"}}}
	store := NewCachedStore(origin, CacheConfig{Size: 8, TTL: time.Minute})

	for i := 0; i < 3; i++ {
		got, ok, err := store.FindByID(context.Background(), "t1")
		if err != nil || !ok {
			t.Fatalf("find %d: ok=%v err=%v", i, ok, err)
		}
		if got.Name != "Core" {
			t.Fatalf("unexpected team: %+v", got)
		}
	}
	if origin.findCalls != 1 {
		t.Fatalf("expected 1 origin read, got %d", origin.findCalls)
	}
	m := store.Metrics()
	if m.Hits != 2 || m.Misses != 1 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestCachedStoreEditedTeamVisibleAfterTTL(t *testing.T) {
	origin := &fakeOriginStore{teams: map[string]types.TeamRow{"t1": {ID: "t1", Name: "Core"}}}
	store := NewCachedStore(origin, CacheConfig{Size: 8, TTL: 20 * time.Millisecond})

	if _, _, err := store.FindByID(context.Background(), "t1"); err != nil {
		t.Fatalf("find failed: %v", err)
	}
	origin.rename("t1", "Platform")
	time.Sleep(40 * time.Millisecond)

	got, ok, err := store.FindByID(context.Background(), "t1")
	if err != nil || !ok {
		t.Fatalf("find after ttl: ok=%v err=%v", ok, err)
	}
	if got.Name != "Platform" {
		t.Fatalf("expected refreshed team after ttl, got %+v", got)
	}
}

func TestCachedStoreDoesNotCacheMissesOrErrors(t *testing.T) {
	origin := &fakeOriginStore{teams: map[string]types.TeamRow{}}
	store := NewCachedStore(origin, DefaultCacheConfig())

	if _, ok, err := store.FindByID(context.Background(), "t2"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	origin.mu.Lock()
	origin.teams["t2"] = types.TeamRow{ID: "t2", Name: "New"}
	origin.mu.Unlock()
	if _, ok, err := store.FindByID(context.Background(), "t2"); err != nil || !ok {
		t.Fatalf("expected newly created team, got ok=%v err=%v", ok, err)
	}

	origin.failFind = true
	if _, _, err := store.FindByID(context.Background(), "t3"); err == nil {
		t.Fatalf("expected origin error")
	}
	if store.Metrics().OriginReadErr != 1 {
		t.Fatalf("expected origin error to be counted")
	}
}
