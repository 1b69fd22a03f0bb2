package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"depcatalog/internal/catalog/config"
	"depcatalog/internal/catalog/handler"
	"depcatalog/internal/catalog/server"
	"depcatalog/internal/graph/inference"
	graphservice "depcatalog/internal/graph/service"
)

type App struct {
	server *server.Server
	stores *catalogStores
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(ctx, cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})).
		With("env", cfg.Env)

	// Dependencies
	stores, err := initStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	graphs := graphservice.New(stores.services, stores.deps, stores.teams, stores.overrides, inference.New(), logger)
	graphHandler := handler.NewGraphHandler(graphs, logger)

	// Routing & Server
	router := server.NewRouter(graphHandler, cfg.CORSOrigin)
	srv := server.New(cfg.Port, router)

	return &App{
		server: srv,
		stores: stores,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return errors.Join(a.server.Shutdown(ctx), a.stores.Close())
}
