package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"depcatalog/internal/types"
)

// GraphSource is the read side of the graph service.
type GraphSource interface {
	GetFullGraph(ctx context.Context) (types.GraphResponse, error)
	GetTeamGraph(ctx context.Context, teamID string) (types.GraphResponse, error)
	GetServiceSubgraph(ctx context.Context, serviceID string) (types.GraphResponse, error)
	GetDependencySubgraph(ctx context.Context, dependencyID string) (types.GraphResponse, error)
}

type GraphHandler struct {
	graphs GraphSource
	logger *slog.Logger
}

func NewGraphHandler(graphs GraphSource, logger *slog.Logger) *GraphHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphHandler{graphs: graphs, logger: logger.With("component", "graph_handler")}
}

// HandleGraph serves GET /api/graph. At most one of the team, service and
// dependency query parameters selects the mode; none returns the full graph.
func (h *GraphHandler) HandleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	team := strings.TrimSpace(q.Get("team"))
	service := strings.TrimSpace(q.Get("service"))
	dependency := strings.TrimSpace(q.Get("dependency"))

	selected := 0
	for _, v := range []string{team, service, dependency} {
		if v != "" {
			selected++
		}
	}
	if selected > 1 {
		writeError(w, http.StatusBadRequest, "only one of team, service or dependency may be set")
		return
	}

	var (
		graph types.GraphResponse
		err   error
		mode  = "full"
	)
	ctx := r.Context()
	switch {
	case team != "":
		mode = "team"
		graph, err = h.graphs.GetTeamGraph(ctx, team)
	case service != "":
		mode = "service"
		graph, err = h.graphs.GetServiceSubgraph(ctx, service)
	case dependency != "":
		mode = "dependency"
		graph, err = h.graphs.GetDependencySubgraph(ctx, dependency)
	default:
		graph, err = h.graphs.GetFullGraph(ctx)
	}
	if err != nil {
		h.logger.Error("graph request failed", "mode", mode, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build graph")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(graph)
}

// HandleHealth is a liveness probe.
func (h *GraphHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
