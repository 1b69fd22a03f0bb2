package override

import (
	"strings"

	"depcatalog/internal/types"
)

type teamKey struct {
	teamID        string
	canonicalName string
}

// Index looks canonical overrides up by canonical name, optionally scoped to
// a team. A nil *Index behaves as an empty index.
type Index struct {
	global map[string]types.CanonicalOverride
	team   map[teamKey]types.CanonicalOverride
}

// Effective is the resolved contact and impact of one dependency.
type Effective struct {
	Contact *string
	Impact  *string
}

// NewIndex builds an index. When the same key appears twice the last row wins.
func NewIndex(overrides []types.CanonicalOverride) *Index {
	idx := &Index{
		global: make(map[string]types.CanonicalOverride),
		team:   make(map[teamKey]types.CanonicalOverride),
	}
	for _, o := range overrides {
		name := strings.TrimSpace(o.CanonicalName)
		if name == "" {
			continue
		}
		if o.IsGlobal() {
			idx.global[name] = o
			continue
		}
		idx.team[teamKey{teamID: strings.TrimSpace(*o.TeamID), canonicalName: name}] = o
	}
	return idx
}

// Len returns the number of indexed overrides.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.global) + len(i.team)
}

// Lookup returns the team scoped and global overrides for canonicalName.
// Either may be nil.
func (i *Index) Lookup(canonicalName, teamID string) (team, global *types.CanonicalOverride) {
	if i == nil {
		return nil, nil
	}
	name := strings.TrimSpace(canonicalName)
	if name == "" {
		return nil, nil
	}
	if g, ok := i.global[name]; ok {
		global = &g
	}
	if tid := strings.TrimSpace(teamID); tid != "" {
		if t, ok := i.team[teamKey{teamID: tid, canonicalName: name}]; ok {
			team = &t
		}
	}
	return team, global
}

// Resolve applies the full hierarchy to dep as consumed by a service of
// consumerTeamID.
func (i *Index) Resolve(dep types.DependencyRow, consumerTeamID string) Effective {
	var globalContact, globalImpact, teamContact, teamImpact *string
	team, global := i.Lookup(dep.Canonical(), consumerTeamID)
	if global != nil {
		globalContact, globalImpact = global.ContactOverride, global.ImpactOverride
	}
	if team != nil {
		teamContact, teamImpact = team.ContactOverride, team.ImpactOverride
	}
	return Effective{
		Contact: ResolveContactTiered(dep.Contact, globalContact, teamContact, dep.ContactOverride),
		Impact:  ResolveImpactTiered(dep.Impact, globalImpact, teamImpact, dep.ImpactOverride),
	}
}
