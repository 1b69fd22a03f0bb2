package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depcatalog/internal/types"
)

type recordingGraphs struct {
	mode string
	arg  string
	err  error
}

func (g *recordingGraphs) respond(mode, arg string) (types.GraphResponse, error) {
	g.mode, g.arg = mode, arg
	if g.err != nil {
		return types.GraphResponse{}, g.err
	}
	return types.EmptyGraph(), nil
}

func (g *recordingGraphs) GetFullGraph(context.Context) (types.GraphResponse, error) {
	return g.respond("full", "")
}

func (g *recordingGraphs) GetTeamGraph(_ context.Context, id string) (types.GraphResponse, error) {
	return g.respond("team", id)
}

func (g *recordingGraphs) GetServiceSubgraph(_ context.Context, id string) (types.GraphResponse, error) {
	return g.respond("service", id)
}

func (g *recordingGraphs) GetDependencySubgraph(_ context.Context, id string) (types.GraphResponse, error) {
	return g.respond("dependency", id)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleGraphDispatchesByQuery(t *testing.T) {
	cases := []struct {
		query string
		mode  string
		arg   string
	}{
		{"", "full", ""},
		{"?team=t1", "team", "t1"},
		{"?service=%20svc-1%20", "service", "svc-1"},
		{"?dependency=d9", "dependency", "d9"},
	}
	for _, tc := range cases {
		t.Run(tc.mode, func(t *testing.T) {
			graphs := &recordingGraphs{}
			h := NewGraphHandler(graphs, quietLogger())
			rec := httptest.NewRecorder()
			h.HandleGraph(rec, httptest.NewRequest(http.MethodGet, "/api/graph"+tc.query, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.mode, graphs.mode)
			assert.Equal(t, tc.arg, graphs.arg)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.JSONEq(t, `[]`, string(body["nodes"]))
			assert.JSONEq(t, `[]`, string(body["edges"]))
		})
	}
}

func TestHandleGraphRejectsAmbiguousQuery(t *testing.T) {
	graphs := &recordingGraphs{}
	h := NewGraphHandler(graphs, quietLogger())
	rec := httptest.NewRecorder()
	h.HandleGraph(rec, httptest.NewRequest(http.MethodGet, "/api/graph?team=a&service=b", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, graphs.mode)
}

func TestHandleGraphStoreFailure(t *testing.T) {
	h := NewGraphHandler(&recordingGraphs{err: errors.New("db down")}, quietLogger())
	rec := httptest.NewRecorder()
	h.HandleGraph(rec, httptest.NewRequest(http.MethodGet, "/api/graph?team=t1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to build graph"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestHandleGraphMethodNotAllowed(t *testing.T) {
	h := NewGraphHandler(&recordingGraphs{}, quietLogger())
	rec := httptest.NewRecorder()
	h.HandleGraph(rec, httptest.NewRequest(http.MethodDelete, "/api/graph", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
