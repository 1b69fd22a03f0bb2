// Package builder accumulates nodes and edges for a single graph request.
//
// A builder is transient: create one per request. Nodes must be registered
// before the edges that reference them, and the external name map and
// canonical override index must be configured before the first AddEdge.
package builder

import (
	"errors"
	"slices"

	"depcatalog/internal/graph/external"
	"depcatalog/internal/graph/override"
	"depcatalog/internal/types"
	"depcatalog/internal/util/jsonutil"
)

// ErrConfiguredAfterEdges is returned when lookup configuration is changed
// after edges have started to be added.
var ErrConfiguredAfterEdges = errors.New("graph builder: configuration must be set before adding edges")

// edgeKey identifies an edge. The string id is for display only: ids that
// contain hyphens can make two distinct triples render the same.
type edgeKey struct {
	source, target, depType string
}

type DependencyGraphBuilder struct {
	nodes     []types.ServiceNode
	nodeIndex map[string]int
	edges     []types.Edge
	edgeKeys  map[edgeKey]struct{}

	externalNodeMap map[string]string
	overrides       *override.Index
	edgesStarted    bool
}

func New() *DependencyGraphBuilder {
	b := &DependencyGraphBuilder{}
	b.Reset()
	return b
}

// AddServiceNode registers a real service. deps are the service's own
// dependencies; duplicates by dependency id are counted once. A second call
// for an id already present is a no-op and reports false.
func (b *DependencyGraphBuilder) AddServiceNode(service types.ServiceRow, deps []types.DependencyRow, inferredType string) bool {
	if service.ID == "" || b.HasNode(service.ID) {
		return false
	}
	unique := dedupeByID(deps)
	healthy, unhealthy, skipped := types.HealthCounts(unique)
	b.appendNode(types.ServiceNode{
		ID:              service.ID,
		Name:            service.Name,
		TeamID:          service.TeamID,
		TeamName:        service.TeamName,
		HealthEndpoint:  service.HealthEndpoint,
		IsActive:        service.IsActive,
		DependencyCount: len(unique),
		HealthyCount:    healthy,
		UnhealthyCount:  unhealthy,
		SkippedCount:    skipped,
		LastPollSuccess: service.LastPollSuccess,
		LastPollError:   service.LastPollError,
		ServiceType:     inferredType,
	})
	return true
}

// AddExternalNode registers a virtual node under id. Idempotent by id.
func (b *DependencyGraphBuilder) AddExternalNode(id string, data types.ServiceNode) bool {
	if id == "" || b.HasNode(id) {
		return false
	}
	data.ID = id
	data.IsExternal = true
	b.appendNode(data)
	return true
}

// SetExternalNodeMap sets the normalized-name to virtual-node-id map used to
// resolve edges of unassociated dependencies.
func (b *DependencyGraphBuilder) SetExternalNodeMap(m map[string]string) error {
	if b.edgesStarted {
		return ErrConfiguredAfterEdges
	}
	b.externalNodeMap = m
	return nil
}

// SetCanonicalOverrides sets the canonical override index consulted when
// computing effective contact and impact.
func (b *DependencyGraphBuilder) SetCanonicalOverrides(idx *override.Index) error {
	if b.edgesStarted {
		return ErrConfiguredAfterEdges
	}
	b.overrides = idx
	return nil
}

// AddEdge adds the provider -> consumer edge for dep. The source is the
// dependency's target service or, for unassociated dependencies, its virtual
// node. Edges whose source is unknown or not registered are dropped, as are
// repeats of an existing (source, target, type) triple. It reports whether an
// edge was added.
func (b *DependencyGraphBuilder) AddEdge(dep types.DependencyRow) bool {
	b.edgesStarted = true

	source := dep.Target()
	if source == "" && b.externalNodeMap != nil {
		source = b.externalNodeMap[external.KeyFor(dep)]
	}
	if source == "" || !b.HasNode(source) {
		return false
	}
	target := dep.ServiceID
	key := edgeKey{source: source, target: target, depType: dep.Type}
	if _, dup := b.edgeKeys[key]; dup {
		return false
	}
	b.edgeKeys[key] = struct{}{}
	b.edges = append(b.edges, types.Edge{
		ID:     types.EdgeID(source, target, dep.Type),
		Source: source,
		Target: target,
		Data:   b.createEdgeData(dep),
	})
	return true
}

func (b *DependencyGraphBuilder) createEdgeData(dep types.DependencyRow) types.EdgeData {
	eff := b.overrides.Resolve(dep, b.teamOf(dep.ServiceID))
	return types.EdgeData{
		Relationship:     types.RelationshipDependsOn,
		DependencyType:   dep.Type,
		DependencyName:   dep.DisplayName(),
		DependencyID:     dep.ID,
		Healthy:          dep.Healthy,
		Skipped:          dep.Skipped,
		LatencyMs:        dep.LatencyMs,
		AvgLatencyMs24h:  dep.AvgLatency24h,
		AssociationType:  dep.AssociationType,
		IsAutoSuggested:  dep.IsAutoSuggested,
		ConfidenceScore:  dep.ConfidenceScore,
		CheckDetails:     jsonutil.ParseText(dep.CheckDetails),
		Error:            jsonutil.ParseText(dep.Error),
		ErrorMessage:     dep.ErrorMessage,
		LastChecked:      dep.LastChecked,
		Impact:           eff.Impact,
		EffectiveContact: eff.Contact,
	}
}

func (b *DependencyGraphBuilder) HasNode(id string) bool {
	_, ok := b.nodeIndex[id]
	return ok
}

// Build returns a snapshot that later builder mutations do not affect.
func (b *DependencyGraphBuilder) Build() types.GraphResponse {
	out := types.EmptyGraph()
	out.Nodes = append(out.Nodes, b.nodes...)
	out.Edges = make([]types.Edge, 0, len(b.edges))
	for _, e := range b.edges {
		e.Data.CheckDetails = slices.Clone(e.Data.CheckDetails)
		e.Data.Error = slices.Clone(e.Data.Error)
		out.Edges = append(out.Edges, e)
	}
	return out
}

// Reset clears all nodes, edges and configuration.
func (b *DependencyGraphBuilder) Reset() {
	b.nodes = nil
	b.nodeIndex = make(map[string]int)
	b.edges = nil
	b.edgeKeys = make(map[edgeKey]struct{})
	b.externalNodeMap = nil
	b.overrides = nil
	b.edgesStarted = false
}

func (b *DependencyGraphBuilder) appendNode(n types.ServiceNode) {
	b.nodeIndex[n.ID] = len(b.nodes)
	b.nodes = append(b.nodes, n)
}

// teamOf returns the team of a registered consumer node, or "".
func (b *DependencyGraphBuilder) teamOf(serviceID string) string {
	i, ok := b.nodeIndex[serviceID]
	if !ok {
		return ""
	}
	return b.nodes[i].TeamID
}

func dedupeByID(deps []types.DependencyRow) []types.DependencyRow {
	seen := make(map[string]struct{}, len(deps))
	out := make([]types.DependencyRow, 0, len(deps))
	for _, dep := range deps {
		if dep.ID != "" {
			if _, dup := seen[dep.ID]; dup {
				continue
			}
			seen[dep.ID] = struct{}{}
		}
		out = append(out, dep)
	}
	return out
}
