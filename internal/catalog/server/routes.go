package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"depcatalog/internal/catalog/handler"
	"depcatalog/internal/catalog/middleware"
)

func NewRouter(graphHandler *handler.GraphHandler, corsOrigin string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(corsOrigin))

	r.Get("/health", graphHandler.HandleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", graphHandler.HandleGraph)
	})
	return r
}
