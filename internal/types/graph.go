package types

import (
	"encoding/json"
	"time"
)

// Graph output ---------------------------------------------------------------------

const (
	ExternalTeamID   = "external"
	ExternalTeamName = "External"

	RelationshipDependsOn = "depends_on"
)

// ServiceNode is a renderable node. External (virtual) nodes use the same
// shape with IsExternal set.
type ServiceNode struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	TeamID          string  `json:"teamId"`
	TeamName        string  `json:"teamName"`
	HealthEndpoint  string  `json:"healthEndpoint"`
	IsActive        bool    `json:"isActive"`
	DependencyCount int     `json:"dependencyCount"`
	HealthyCount    int     `json:"healthyCount"`
	UnhealthyCount  int     `json:"unhealthyCount"`
	SkippedCount    int     `json:"skippedCount"`
	LastPollSuccess *bool   `json:"lastPollSuccess"`
	LastPollError   *string `json:"lastPollError"`
	ServiceType     string  `json:"serviceType,omitempty"`
	IsExternal      bool    `json:"isExternal"`
}

// EdgeData carries the per-dependency payload of an edge.
type EdgeData struct {
	Relationship     string          `json:"relationship"`
	DependencyType   string          `json:"dependencyType"`
	DependencyName   string          `json:"dependencyName"`
	DependencyID     string          `json:"dependencyId"`
	Healthy          *bool           `json:"healthy"`
	Skipped          bool            `json:"skipped"`
	LatencyMs        *int64          `json:"latencyMs"`
	AvgLatencyMs24h  *float64        `json:"avgLatencyMs24h"`
	AssociationType  *string         `json:"associationType"`
	IsAutoSuggested  bool            `json:"isAutoSuggested"`
	ConfidenceScore  *float64        `json:"confidenceScore"`
	CheckDetails     json.RawMessage `json:"checkDetails,omitempty"`
	Error            json.RawMessage `json:"error,omitempty"`
	ErrorMessage     *string         `json:"errorMessage"`
	LastChecked      *time.Time      `json:"lastChecked"`
	Impact           *string         `json:"impact"`
	EffectiveContact *string         `json:"effectiveContact"`
}

// Edge points from the provider (what is depended upon) to the consumer
// (the service owning the dependency).
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Data   EdgeData `json:"data"`
}

// GraphResponse is an immutable snapshot rebuilt for every query.
type GraphResponse struct {
	Nodes []ServiceNode `json:"nodes"`
	Edges []Edge        `json:"edges"`
}

// EmptyGraph returns a response whose slices marshal as [] rather than null.
func EmptyGraph() GraphResponse {
	return GraphResponse{Nodes: []ServiceNode{}, Edges: []Edge{}}
}

// EdgeID composes the identity of an edge from its endpoints and type.
func EdgeID(source, target, depType string) string {
	return source + "-" + target + "-" + depType
}
