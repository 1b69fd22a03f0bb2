// Package inference derives a service's dominant type from the dependencies
// that point at it.
package inference

import "depcatalog/internal/types"

// ServiceTypeInferencer is stateless and safe to share between requests.
type ServiceTypeInferencer struct{}

func New() *ServiceTypeInferencer {
	return &ServiceTypeInferencer{}
}

// Compute tallies dependency types per target service and returns the
// majority type of each. On a tie the type seen first wins, so the result is
// deterministic for a given input order. Services with no incoming typed
// dependency have no entry; callers treat that as unknown.
func (ServiceTypeInferencer) Compute(deps []types.DependencyRow) map[string]string {
	tallies := make(map[string]*tally)
	for _, dep := range deps {
		target := dep.Target()
		if target == "" || dep.Type == "" {
			continue
		}
		t, ok := tallies[target]
		if !ok {
			t = &tally{}
			tallies[target] = t
		}
		t.add(dep.Type)
	}
	out := make(map[string]string, len(tallies))
	for serviceID, t := range tallies {
		out[serviceID] = t.winner()
	}
	return out
}

// Dominant applies the same majority rule to a flat group of dependencies.
// It returns "" when no dependency carries a type.
func Dominant(deps []types.DependencyRow) string {
	var t tally
	for _, dep := range deps {
		if dep.Type == "" {
			continue
		}
		t.add(dep.Type)
	}
	return t.winner()
}

type tally struct {
	order  []string
	counts map[string]int
}

func (t *tally) add(depType string) {
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, seen := t.counts[depType]; !seen {
		t.order = append(t.order, depType)
	}
	t.counts[depType]++
}

// winner walks types in first-seen order and only replaces the leader on a
// strictly greater count.
func (t *tally) winner() string {
	best, bestCount := "", 0
	for _, depType := range t.order {
		if c := t.counts[depType]; c > bestCount {
			best, bestCount = depType, c
		}
	}
	return best
}
