package consolidation

import (
	"sort"

	"github.com/cheeseechops/CamdramAPI/internal/roles"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

// Group is every source merged into one target. Active sources occur in the
// current corpus; future sources are waiting for a credit to apply to.
type Group struct {
	Target        string   `json:"target"`
	Sources       []string `json:"sources"`
	ActiveSources []string `json:"active_sources"`
	FutureSources []string `json:"future_sources"`
}

// Payload is what the role organisation screen renders.
type Payload struct {
	AvailableRoles []models.NamedCount `json:"available_roles"`
	Consolidations []Group             `json:"consolidations"`
	TotalMappings  int                 `json:"total_mappings"`
}

// BuildPayload combines raw canonical role counts (before consolidation) with
// the current mapping.
func BuildPayload(rawCounts map[string]int, m Mapping) Payload {
	available := make([]models.NamedCount, 0, len(rawCounts))
	for name, count := range rawCounts {
		available = append(available, models.NamedCount{Name: name, Count: count})
	}
	sort.Slice(available, func(i, j int) bool {
		a, b := available[i], available[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if fa, fb := roles.Fold(a.Name), roles.Fold(b.Name); fa != fb {
			return fa < fb
		}
		return a.Name < b.Name
	})

	grouped := make(map[string][]string)
	for source, target := range m {
		grouped[target] = append(grouped[target], source)
	}
	targets := make([]string, 0, len(grouped))
	for t := range grouped {
		targets = append(targets, t)
	}
	sortFolded(targets)

	groups := make([]Group, 0, len(targets))
	for _, target := range targets {
		seen := make(map[string]struct{})
		sources := make([]string, 0, len(grouped[target]))
		for _, s := range grouped[target] {
			if s == "" || key(s) == key(target) {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			sources = append(sources, s)
		}
		sortFolded(sources)

		g := Group{
			Target:        target,
			Sources:       sources,
			ActiveSources: []string{},
			FutureSources: []string{},
		}
		for _, s := range sources {
			if _, ok := rawCounts[s]; ok {
				g.ActiveSources = append(g.ActiveSources, s)
			} else {
				g.FutureSources = append(g.FutureSources, s)
			}
		}
		groups = append(groups, g)
	}

	return Payload{
		AvailableRoles: available,
		Consolidations: groups,
		TotalMappings:  len(m),
	}
}

func sortFolded(names []string) {
	sort.Slice(names, func(i, j int) bool {
		if fi, fj := roles.Fold(names[i]), roles.Fold(names[j]); fi != fj {
			return fi < fj
		}
		return names[i] < names[j]
	})
}
