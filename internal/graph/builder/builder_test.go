package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depcatalog/internal/graph/external"
	"depcatalog/internal/graph/override"
	"depcatalog/internal/types"
)

func boolPtr(b bool) *bool { return &b }
func strPtr(s string) *string { return &s }

func service(id, team string) types.ServiceRow {
	return types.ServiceRow{ID: id, Name: id + "-name", TeamID: team, TeamName: team + "-name", IsActive: true}
}

func depOn(id, owner, target, depType string) types.DependencyRow {
	d := types.DependencyRow{ID: id, ServiceID: owner, Name: id, Type: depType, Healthy: boolPtr(true)}
	if target != "" {
		d.TargetServiceID = strPtr(target)
	}
	return d
}

func TestAddServiceNodeIdempotent(t *testing.T) {
	b := New()
	require.True(t, b.AddServiceNode(service("a", "t1"), nil, "rest"))

	second := service("a", "t2")
	second.Name = "renamed"
	assert.False(t, b.AddServiceNode(second, []types.DependencyRow{depOn("d1", "a", "", "rest")}, "grpc"))

	g := b.Build()
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "a-name", g.Nodes[0].Name)
	assert.Equal(t, "t1", g.Nodes[0].TeamID)
	assert.Equal(t, "rest", g.Nodes[0].ServiceType)
	assert.Equal(t, 0, g.Nodes[0].DependencyCount)
}

func TestAddServiceNodeDedupesDependencies(t *testing.T) {
	b := New()
	healthy := depOn("d1", "a", "", "rest")
	unhealthy := depOn("d2", "a", "", "rest")
	unhealthy.Healthy = boolPtr(false)
	skipped := depOn("d3", "a", "", "rest")
	skipped.Skipped = true

	b.AddServiceNode(service("a", "t1"), []types.DependencyRow{healthy, healthy, unhealthy, skipped, skipped}, "")
	n := b.Build().Nodes[0]
	assert.Equal(t, 3, n.DependencyCount)
	assert.Equal(t, 1, n.HealthyCount)
	assert.Equal(t, 1, n.UnhealthyCount)
	assert.Equal(t, 1, n.SkippedCount)
}

func TestAddServiceNodeCarriesPollState(t *testing.T) {
	b := New()
	svc := service("a", "t1")
	svc.LastPollSuccess = boolPtr(false)
	svc.LastPollError = strPtr("connection refused")
	b.AddServiceNode(svc, nil, "")
	n := b.Build().Nodes[0]
	require.NotNil(t, n.LastPollSuccess)
	assert.False(t, *n.LastPollSuccess)
	assert.Equal(t, "connection refused", *n.LastPollError)
	assert.False(t, n.IsExternal)
}

func TestAddEdgeDirectionIsProviderToConsumer(t *testing.T) {
	b := New()
	b.AddServiceNode(service("consumer", "t1"), nil, "")
	b.AddServiceNode(service("provider", "t2"), nil, "")

	require.True(t, b.AddEdge(depOn("d1", "consumer", "provider", "rest")))
	e := b.Build().Edges[0]
	assert.Equal(t, "provider", e.Source)
	assert.Equal(t, "consumer", e.Target)
	assert.Equal(t, "provider-consumer-rest", e.ID)
	assert.Equal(t, types.RelationshipDependsOn, e.Data.Relationship)
	assert.Equal(t, "d1", e.Data.DependencyID)
}

func TestAddEdgeDeduplicatesTriple(t *testing.T) {
	b := New()
	b.AddServiceNode(service("a", "t1"), nil, "")
	b.AddServiceNode(service("b", "t1"), nil, "")

	assert.True(t, b.AddEdge(depOn("d1", "a", "b", "rest")))
	assert.False(t, b.AddEdge(depOn("d1", "a", "b", "rest")))
	assert.False(t, b.AddEdge(depOn("d2", "a", "b", "rest")))
	assert.True(t, b.AddEdge(depOn("d3", "a", "b", "grpc")))
	assert.Len(t, b.Build().Edges, 2)
}

func TestAddEdgeKeepsTriplesWithCollidingIDs(t *testing.T) {
	b := New()
	for _, id := range []string{"a-b", "c-x", "a", "b-c-x"} {
		b.AddServiceNode(service(id, "t1"), nil, "")
	}

	assert.True(t, b.AddEdge(depOn("d1", "c-x", "a-b", "rest")))
	assert.True(t, b.AddEdge(depOn("d2", "b-c-x", "a", "rest")))

	edges := b.Build().Edges
	require.Len(t, edges, 2)
	assert.Equal(t, "a-b", edges[0].Source)
	assert.Equal(t, "c-x", edges[0].Target)
	assert.Equal(t, "a", edges[1].Source)
	assert.Equal(t, "b-c-x", edges[1].Target)
}

func TestAddEdgeDropsUnregisteredSource(t *testing.T) {
	b := New()
	b.AddServiceNode(service("a", "t1"), nil, "")

	assert.False(t, b.AddEdge(depOn("d1", "a", "ghost", "rest")))
	assert.False(t, b.AddEdge(depOn("d2", "a", "", "rest")))
	assert.Empty(t, b.Build().Edges)
}

func TestAddEdgeResolvesExternalNode(t *testing.T) {
	b := New()
	b.AddServiceNode(service("a", "t1"), nil, "")

	deps := []types.DependencyRow{depOn("d1", "a", "", "cache")}
	deps[0].Name = "  Redis Cache "
	groups := external.GroupUnassociatedDeps(deps)
	for _, g := range groups.Ordered() {
		b.AddExternalNode(g.ID, external.BuildNodeData(g.Name, g.Deps))
	}
	require.NoError(t, b.SetExternalNodeMap(external.BuildNameToIDMap(groups)))

	require.True(t, b.AddEdge(deps[0]))
	g := b.Build()
	require.Len(t, g.Nodes, 2)
	assert.True(t, g.Nodes[1].IsExternal)
	assert.Equal(t, external.GenerateExternalID("redis cache"), g.Edges[0].Source)
	assert.Equal(t, "a", g.Edges[0].Target)
}

func TestConfigurationAfterEdgesIsRejected(t *testing.T) {
	b := New()
	b.AddServiceNode(service("a", "t1"), nil, "")
	b.AddEdge(depOn("d1", "a", "", "rest"))

	assert.ErrorIs(t, b.SetExternalNodeMap(map[string]string{"d1": "x"}), ErrConfiguredAfterEdges)
	assert.ErrorIs(t, b.SetCanonicalOverrides(override.NewIndex(nil)), ErrConfiguredAfterEdges)

	b.Reset()
	assert.NoError(t, b.SetExternalNodeMap(map[string]string{}))
	assert.NoError(t, b.SetCanonicalOverrides(nil))
}

func TestCreateEdgeDataParsesJSONColumns(t *testing.T) {
	b := New()
	b.AddServiceNode(service("a", "t1"), nil, "")
	b.AddServiceNode(service("b", "t1"), nil, "")

	dep := depOn("d1", "a", "b", "rest")
	dep.CanonicalName = strPtr("Billing API")
	dep.CheckDetails = strPtr(`{"status":200}`)
	dep.Error = strPtr(`{broken`)
	require.True(t, b.AddEdge(dep))

	data := b.Build().Edges[0].Data
	assert.Equal(t, "Billing API", data.DependencyName)
	assert.JSONEq(t, `{"status":200}`, string(data.CheckDetails))
	assert.Nil(t, data.Error)
}

func TestCreateEdgeDataAppliesOverrides(t *testing.T) {
	b := New()
	teamID := "t1"
	require.NoError(t, b.SetCanonicalOverrides(override.NewIndex([]types.CanonicalOverride{
		{CanonicalName: "postgres", ContactOverride: strPtr(`{"email":"c@x.com"}`), ImpactOverride: strPtr("Medium")},
		{CanonicalName: "postgres", TeamID: &teamID, ImpactOverride: strPtr("Critical")},
	})))
	b.AddServiceNode(service("a", "t1"), nil, "")
	b.AddServiceNode(service("c", "t2"), nil, "")
	b.AddServiceNode(service("db", "t3"), nil, "")

	dep := depOn("d1", "a", "db", "database")
	dep.CanonicalName = strPtr("postgres")
	dep.Contact = strPtr(`{"email":"p@x.com","slack":"#p"}`)
	dep.Impact = strPtr("High")
	require.True(t, b.AddEdge(dep))

	other := dep
	other.ID = "d2"
	other.ServiceID = "c"
	require.True(t, b.AddEdge(other))

	edges := b.Build().Edges
	require.NotNil(t, edges[0].Data.EffectiveContact)
	assert.JSONEq(t, `{"email":"c@x.com","slack":"#p"}`, *edges[0].Data.EffectiveContact)
	assert.Equal(t, "Critical", *edges[0].Data.Impact)
	assert.Equal(t, "Medium", *edges[1].Data.Impact)
}

func TestCreateEdgeDataWithoutOverridesUsesRowValues(t *testing.T) {
	b := New()
	b.AddServiceNode(service("a", "t1"), nil, "")
	b.AddServiceNode(service("b", "t1"), nil, "")
	dep := depOn("d1", "a", "b", "rest")
	dep.CanonicalName = strPtr("postgres")
	dep.Impact = strPtr("High")
	dep.ContactOverride = strPtr(`{"email":"i@x.com"}`)
	b.AddEdge(dep)

	data := b.Build().Edges[0].Data
	assert.Equal(t, "High", *data.Impact)
	assert.JSONEq(t, `{"email":"i@x.com"}`, *data.EffectiveContact)
}

func TestBuildReturnsIndependentSnapshot(t *testing.T) {
	b := New()
	b.AddServiceNode(service("a", "t1"), nil, "")
	first := b.Build()
	first.Nodes[0].Name = "mutated"

	b.AddServiceNode(service("b", "t1"), nil, "")
	second := b.Build()
	assert.Len(t, first.Nodes, 1)
	assert.Len(t, second.Nodes, 2)
	assert.Equal(t, "a-name", second.Nodes[0].Name)
}

func TestResetClearsState(t *testing.T) {
	b := New()
	b.AddServiceNode(service("a", "t1"), nil, "")
	b.Reset()
	assert.False(t, b.HasNode("a"))
	g := b.Build()
	assert.NotNil(t, g.Nodes)
	assert.NotNil(t, g.Edges)
	assert.Empty(t, g.Nodes)
}
