package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	canonicalcache "depcatalog/internal/cache/canonical"
	teamcache "depcatalog/internal/cache/team"
	"depcatalog/internal/catalog/config"
	canonicalrepo "depcatalog/internal/catalog/repository/canonical"
	dependencyrepo "depcatalog/internal/catalog/repository/dependency"
	"depcatalog/internal/catalog/repository/postgres"
	servicerepo "depcatalog/internal/catalog/repository/service"
	teamrepo "depcatalog/internal/catalog/repository/team"
	"depcatalog/internal/catalog/seed"
)

type catalogStores struct {
	services  servicerepo.Store
	deps      dependencyrepo.Store
	teams     teamrepo.Store
	overrides canonicalrepo.Store
	db        *sql.DB
}

func (s *catalogStores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initStores(ctx context.Context, cfg *config.Config) (*catalogStores, error) {
	if cfg.UsePostgres() {
		return initPostgresStores(ctx, cfg)
	}
	return initInMemoryStores(cfg)
}

func initPostgresStores(ctx context.Context, cfg *config.Config) (*catalogStores, error) {
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	teams, err := teamrepo.NewPostgresStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init team store: %w", err)
	}
	log.Printf("catalog store: postgres (canonical cache ttl=%s, team cache size=%d ttl=%s)",
		cfg.Cache.CanonicalTTL, cfg.Cache.TeamCacheSize, cfg.Cache.TeamCacheTTL)
	return &catalogStores{
		services:  servicerepo.NewPostgresStore(db),
		deps:      dependencyrepo.NewPostgresStore(db),
		teams:     teamcache.NewCachedStore(teams, teamcache.CacheConfig{Size: cfg.Cache.TeamCacheSize, TTL: cfg.Cache.TeamCacheTTL}),
		overrides: canonicalcache.NewCachedStore(canonicalrepo.NewPostgresStore(db), canonicalcache.CacheConfig{TTL: cfg.Cache.CanonicalTTL}),
		db:        db,
	}, nil
}

func initInMemoryStores(cfg *config.Config) (*catalogStores, error) {
	services := servicerepo.NewMemoryStore()
	mem := seed.Stores{
		Teams:        teamrepo.NewMemoryStore(),
		Services:     services,
		Dependencies: dependencyrepo.NewMemoryStore(services),
		Overrides:    canonicalrepo.NewMemoryStore(),
	}
	if cfg.SeedFile != "" {
		f, err := seed.Read(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed: %w", err)
		}
		f.Apply(mem)
		log.Printf("catalog store: in-memory seeded from %s (%d services, %d dependencies)",
			cfg.SeedFile, len(f.Services), len(f.Dependencies))
	} else {
		log.Printf("catalog store: in-memory (empty)")
	}
	return &catalogStores{
		services:  mem.Services,
		deps:      mem.Dependencies,
		teams:     mem.Teams,
		overrides: mem.Overrides,
	}, nil
}
