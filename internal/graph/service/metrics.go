package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	modeFull       = "full"
	modeTeam       = "team"
	modeService    = "service"
	modeDependency = "dependency"
)

var (
	graphBuildTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depcatalog_graph_build_total",
		Help: "Graph builds by retrieval mode and result.",
	}, []string{"mode", "result"})

	graphBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depcatalog_graph_build_duration_seconds",
		Help:    "Time to fetch rows and build a graph snapshot.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"mode"})

	graphNodes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depcatalog_graph_nodes",
		Help:    "Nodes per graph snapshot.",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"mode"})

	graphEdges = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depcatalog_graph_edges",
		Help:    "Edges per graph snapshot.",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"mode"})

	graphEdgesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depcatalog_graph_edges_dropped_total",
		Help: "Dependencies whose edge was dropped because its provider is not in the view.",
	}, []string{"mode"})
)

func observeBuild(mode string, start time.Time, nodes, edges, dropped int, err error) {
	graphBuildDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	if err != nil {
		graphBuildTotal.WithLabelValues(mode, "error").Inc()
		return
	}
	graphBuildTotal.WithLabelValues(mode, "ok").Inc()
	graphNodes.WithLabelValues(mode).Observe(float64(nodes))
	graphEdges.WithLabelValues(mode).Observe(float64(edges))
	if dropped > 0 {
		graphEdgesDropped.WithLabelValues(mode).Add(float64(dropped))
	}
}
