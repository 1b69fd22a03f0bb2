// Package external builds virtual nodes for dependencies that have no known
// owning service. Identity is content addressed: the same normalized name
// always yields the same node id, so unrelated consumers of one external
// dependency converge on a single shared node.
package external

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"depcatalog/internal/graph/inference"
	"depcatalog/internal/types"
)

const idPrefix = "external-"

// idHexLen is the number of hex characters of the name digest kept in ids.
const idHexLen = 12

// Group is one virtual node's worth of unassociated dependencies.
type Group struct {
	ID   string
	Name string
	Deps []types.DependencyRow
}

// Groups maps normalized names to groups. Keys holds the normalized names in
// first-seen order.
type Groups struct {
	ByKey map[string]*Group
	Keys  []string
}

// Len returns the number of groups.
func (g Groups) Len() int { return len(g.Keys) }

// Ordered returns the groups in first-seen order.
func (g Groups) Ordered() []*Group {
	out := make([]*Group, 0, len(g.Keys))
	for _, k := range g.Keys {
		out = append(out, g.ByKey[k])
	}
	return out
}

// NormalizeDepName is the grouping key for a dependency name. The graph
// builder uses the same function when resolving edges.
func NormalizeDepName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GenerateExternalID derives a stable node id from a normalized name.
func GenerateExternalID(normalizedName string) string {
	sum := sha256.Sum256([]byte(normalizedName))
	return idPrefix + hex.EncodeToString(sum[:])[:idHexLen]
}

// KeyFor returns the normalized grouping key of dep.
func KeyFor(dep types.DependencyRow) string {
	return NormalizeDepName(dep.DisplayName())
}

// GroupUnassociatedDeps groups every dependency without a target service by
// normalized canonical-or-raw name. A group's display name is the un-normalized
// name of its first member.
func GroupUnassociatedDeps(deps []types.DependencyRow) Groups {
	groups := Groups{ByKey: make(map[string]*Group)}
	for _, dep := range deps {
		if dep.Target() != "" {
			continue
		}
		key := KeyFor(dep)
		if key == "" {
			continue
		}
		g, ok := groups.ByKey[key]
		if !ok {
			g = &Group{
				ID:   GenerateExternalID(key),
				Name: strings.TrimSpace(dep.DisplayName()),
			}
			groups.ByKey[key] = g
			groups.Keys = append(groups.Keys, key)
		}
		g.Deps = append(g.Deps, dep)
	}
	return groups
}

// BuildNodeData aggregates the health of a group into a virtual node. Skipped
// dependencies are counted as skipped only, never as healthy or unhealthy.
// No polling happens for virtual nodes so LastPollSuccess stays unknown.
func BuildNodeData(name string, deps []types.DependencyRow) types.ServiceNode {
	node := types.ServiceNode{
		ID:              GenerateExternalID(NormalizeDepName(name)),
		Name:            name,
		TeamID:          types.ExternalTeamID,
		TeamName:        types.ExternalTeamName,
		HealthEndpoint:  "",
		IsActive:        true,
		DependencyCount: len(deps),
		ServiceType:     inference.Dominant(deps),
		IsExternal:      true,
	}
	node.HealthyCount, node.UnhealthyCount, node.SkippedCount = types.HealthCounts(deps)
	return node
}

// BuildNameToIDMap maps each normalized name to its virtual node id.
func BuildNameToIDMap(groups Groups) map[string]string {
	out := make(map[string]string, len(groups.ByKey))
	for key, g := range groups.ByKey {
		out[key] = g.ID
	}
	return out
}
