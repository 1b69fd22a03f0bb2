// Package service assembles dependency graphs from the catalog stores.
//
// Every mode registers nodes first (real services, then virtual external
// nodes), configures the builder, and only then adds edges. Unknown teams,
// services and dependencies yield an empty graph; store failures are returned.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	canonicalrepo "depcatalog/internal/catalog/repository/canonical"
	dependencyrepo "depcatalog/internal/catalog/repository/dependency"
	servicerepo "depcatalog/internal/catalog/repository/service"
	teamrepo "depcatalog/internal/catalog/repository/team"
	"depcatalog/internal/graph/builder"
	"depcatalog/internal/graph/external"
	"depcatalog/internal/graph/inference"
	"depcatalog/internal/graph/override"
	"depcatalog/internal/types"
)

// GraphService holds only read-only store handles and is safe for
// concurrent use.
type GraphService struct {
	services   servicerepo.Store
	deps       dependencyrepo.Store
	teams      teamrepo.Store
	overrides  canonicalrepo.Store
	inferencer *inference.ServiceTypeInferencer
	logger     *slog.Logger
}

// New wires a GraphService. overrides may be nil, in which case edges use
// only the polled and instance-level values.
func New(
	services servicerepo.Store,
	deps dependencyrepo.Store,
	teams teamrepo.Store,
	overrides canonicalrepo.Store,
	inferencer *inference.ServiceTypeInferencer,
	logger *slog.Logger,
) *GraphService {
	if inferencer == nil {
		inferencer = inference.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphService{
		services:   services,
		deps:       deps,
		teams:      teams,
		overrides:  overrides,
		inferencer: inferencer,
		logger:     logger.With("component", "graph"),
	}
}

// GetFullGraph returns every active service and all of their dependencies.
func (s *GraphService) GetFullGraph(ctx context.Context) (graph types.GraphResponse, err error) {
	start := time.Now()
	var dropped int
	defer func() { s.finish(modeFull, start, graph, dropped, err) }()

	services, err := s.services.FindActiveWithTeam(ctx)
	if err != nil {
		return types.GraphResponse{}, fmt.Errorf("load active services: %w", err)
	}
	deps, err := s.deps.FindAllWithAssociationsAndLatency(ctx, dependencyrepo.Options{ActiveServicesOnly: true})
	if err != nil {
		return types.GraphResponse{}, fmt.Errorf("load dependencies: %w", err)
	}
	b, err := s.newBuilder(ctx)
	if err != nil {
		return types.GraphResponse{}, err
	}

	typeMap := s.inferencer.Compute(deps)
	byService := groupByService(deps)
	for _, svc := range services {
		b.AddServiceNode(svc, byService[svc.ID], typeMap[svc.ID])
	}
	dropped, err = addExternalsAndEdges(b, deps)
	if err != nil {
		return types.GraphResponse{}, err
	}
	return b.Build(), nil
}

// GetTeamGraph returns a team's active services, the other teams' services
// they depend on, and virtual nodes for their unassociated dependencies.
func (s *GraphService) GetTeamGraph(ctx context.Context, teamID string) (graph types.GraphResponse, err error) {
	start := time.Now()
	var dropped int
	defer func() { s.finish(modeTeam, start, graph, dropped, err) }()

	teamID = strings.TrimSpace(teamID)
	if _, ok, err := s.teams.FindByID(ctx, teamID); err != nil {
		return types.GraphResponse{}, fmt.Errorf("load team %s: %w", teamID, err)
	} else if !ok {
		return types.EmptyGraph(), nil
	}

	services, err := s.services.FindAllWithTeam(ctx, servicerepo.Filter{TeamID: teamID, IsActive: servicerepo.Active(true)})
	if err != nil {
		return types.GraphResponse{}, fmt.Errorf("load services of team %s: %w", teamID, err)
	}
	if len(services) == 0 {
		return types.EmptyGraph(), nil
	}

	ids := make([]string, 0, len(services))
	for _, svc := range services {
		ids = append(ids, svc.ID)
	}
	deps, err := s.deps.FindByServiceIDsWithAssociationsAndLatency(ctx, ids)
	if err != nil {
		return types.GraphResponse{}, fmt.Errorf("load dependencies of team %s: %w", teamID, err)
	}
	b, err := s.newBuilder(ctx)
	if err != nil {
		return types.GraphResponse{}, err
	}

	typeMap := s.inferencer.Compute(deps)
	byService := groupByService(deps)
	for _, svc := range services {
		b.AddServiceNode(svc, byService[svc.ID], typeMap[svc.ID])
	}
	if err := s.addCrossTeamProviders(ctx, b, deps, typeMap); err != nil {
		return types.GraphResponse{}, err
	}
	dropped, err = addExternalsAndEdges(b, deps)
	if err != nil {
		return types.GraphResponse{}, err
	}
	return b.Build(), nil
}

// addCrossTeamProviders adds the real services of other teams that the
// team's dependencies point at. Their health counts come from their own
// dependencies, which are not turned into edges.
func (s *GraphService) addCrossTeamProviders(
	ctx context.Context,
	b *builder.DependencyGraphBuilder,
	deps []types.DependencyRow,
	typeMap map[string]string,
) error {
	var providerIDs []string
	seen := make(map[string]struct{})
	for _, dep := range deps {
		target := dep.Target()
		if target == "" || b.HasNode(target) {
			continue
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		providerIDs = append(providerIDs, target)
	}
	if len(providerIDs) == 0 {
		return nil
	}

	providerDeps, err := s.deps.FindByServiceIDsWithAssociationsAndLatency(ctx, providerIDs)
	if err != nil {
		return fmt.Errorf("load dependencies of cross-team services: %w", err)
	}
	byService := groupByService(providerDeps)
	for _, id := range providerIDs {
		svc, ok, err := s.services.FindByIDWithTeam(ctx, id)
		if err != nil {
			return fmt.Errorf("load cross-team service %s: %w", id, err)
		}
		if !ok {
			continue
		}
		b.AddServiceNode(svc, byService[svc.ID], typeMap[svc.ID])
	}
	return nil
}

// GetServiceSubgraph returns serviceID and every service reachable by
// following its dependencies upstream. Traversal uses an explicit stack and a
// visited set, so dependency cycles terminate and depth is not bounded by the
// call stack.
func (s *GraphService) GetServiceSubgraph(ctx context.Context, serviceID string) (graph types.GraphResponse, err error) {
	start := time.Now()
	var dropped int
	defer func() { s.finish(modeService, start, graph, dropped, err) }()

	graph, dropped, err = s.serviceSubgraph(ctx, serviceID)
	return graph, err
}

// GetDependencySubgraph returns the upstream subgraph of the service that
// owns dependencyID.
func (s *GraphService) GetDependencySubgraph(ctx context.Context, dependencyID string) (graph types.GraphResponse, err error) {
	start := time.Now()
	var dropped int
	defer func() { s.finish(modeDependency, start, graph, dropped, err) }()

	dep, ok, err := s.deps.FindByID(ctx, strings.TrimSpace(dependencyID))
	if err != nil {
		return types.GraphResponse{}, fmt.Errorf("load dependency %s: %w", dependencyID, err)
	}
	if !ok {
		return types.EmptyGraph(), nil
	}
	graph, dropped, err = s.serviceSubgraph(ctx, dep.ServiceID)
	return graph, err
}

func (s *GraphService) serviceSubgraph(ctx context.Context, serviceID string) (types.GraphResponse, int, error) {
	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return types.EmptyGraph(), 0, nil
	}

	var (
		services []types.ServiceRow
		deps     []types.DependencyRow
		visited  = make(map[string]struct{})
		stack    = []string{serviceID}
	)
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return types.GraphResponse{}, 0, err
		}
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, done := visited[id]; done {
			continue
		}
		visited[id] = struct{}{}

		svc, ok, err := s.services.FindByIDWithTeam(ctx, id)
		if err != nil {
			return types.GraphResponse{}, 0, fmt.Errorf("load service %s: %w", id, err)
		}
		if !ok {
			continue
		}
		svcDeps, err := s.deps.FindByServiceIDsWithAssociationsAndLatency(ctx, []string{id})
		if err != nil {
			return types.GraphResponse{}, 0, fmt.Errorf("load dependencies of %s: %w", id, err)
		}
		services = append(services, svc)
		deps = append(deps, svcDeps...)

		// Push in reverse so providers are visited in dependency order.
		for i := len(svcDeps) - 1; i >= 0; i-- {
			if target := svcDeps[i].Target(); target != "" {
				if _, done := visited[target]; !done {
					stack = append(stack, target)
				}
			}
		}
	}
	if len(services) == 0 {
		return types.EmptyGraph(), 0, nil
	}

	b, err := s.newBuilder(ctx)
	if err != nil {
		return types.GraphResponse{}, 0, err
	}
	typeMap := s.inferencer.Compute(deps)
	byService := groupByService(deps)
	for _, svc := range services {
		b.AddServiceNode(svc, byService[svc.ID], typeMap[svc.ID])
	}
	dropped, err := addExternalsAndEdges(b, deps)
	if err != nil {
		return types.GraphResponse{}, 0, err
	}
	return b.Build(), dropped, nil
}

// newBuilder returns a builder with the canonical override index configured.
func (s *GraphService) newBuilder(ctx context.Context) (*builder.DependencyGraphBuilder, error) {
	b := builder.New()
	if s.overrides == nil {
		return b, nil
	}
	list, err := s.overrides.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load canonical overrides: %w", err)
	}
	if err := b.SetCanonicalOverrides(override.NewIndex(list)); err != nil {
		return nil, err
	}
	return b, nil
}

// addExternalsAndEdges registers a virtual node per unassociated dependency
// group, sets the name map, then adds every edge. It returns how many
// dependencies produced no edge.
func addExternalsAndEdges(b *builder.DependencyGraphBuilder, deps []types.DependencyRow) (int, error) {
	groups := external.GroupUnassociatedDeps(deps)
	for _, g := range groups.Ordered() {
		b.AddExternalNode(g.ID, external.BuildNodeData(g.Name, g.Deps))
	}
	if err := b.SetExternalNodeMap(external.BuildNameToIDMap(groups)); err != nil {
		return 0, err
	}
	dropped := 0
	for _, dep := range deps {
		if !b.AddEdge(dep) {
			dropped++
		}
	}
	return dropped, nil
}

func groupByService(deps []types.DependencyRow) map[string][]types.DependencyRow {
	out := make(map[string][]types.DependencyRow)
	for _, dep := range deps {
		out[dep.ServiceID] = append(out[dep.ServiceID], dep)
	}
	return out
}

func (s *GraphService) finish(mode string, start time.Time, g types.GraphResponse, dropped int, err error) {
	observeBuild(mode, start, len(g.Nodes), len(g.Edges), dropped, err)
	if err != nil {
		s.logger.Error("graph build failed", "mode", mode, "error", err)
		return
	}
	s.logger.Debug("graph built",
		"mode", mode,
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"dropped_edges", dropped,
		"duration", time.Since(start),
	)
}
