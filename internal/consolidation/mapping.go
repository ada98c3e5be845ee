// Package consolidation stores user-defined merges of one canonical role into
// another and resolves role names through them.
package consolidation

import (
	"sort"
	"strings"

	"github.com/cheeseechops/CamdramAPI/internal/roles"
)

// Mapping maps a source role name to the role it is merged into. Sources are
// stored with their original casing but compared case-insensitively.
type Mapping map[string]string

func key(name string) string {
	return roles.Fold(strings.TrimSpace(name))
}

// Clean returns a copy of m without blank entries or case-insensitive
// self-mappings. Names are trimmed.
func Clean(m Mapping) Mapping {
	out := make(Mapping, len(m))
	for source, target := range m {
		s := strings.TrimSpace(source)
		t := strings.TrimSpace(target)
		if s == "" || t == "" || key(s) == key(t) {
			continue
		}
		out[s] = t
	}
	return out
}

// Sources returns the mapping keys in sorted order.
func (m Mapping) Sources() []string {
	out := make([]string, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Resolver follows consolidation chains. A nil Resolver resolves every name
// to itself.
type Resolver struct {
	lookup map[string]string
}

// NewResolver precomputes the case-insensitive lookup for m.
func NewResolver(m Mapping) *Resolver {
	clean := Clean(m)
	lookup := make(map[string]string, len(clean))
	// Sorted so that sources differing only by case resolve the same way on every run.
	for _, s := range clean.Sources() {
		lookup[key(s)] = clean[s]
	}
	return &Resolver{lookup: lookup}
}

// Len reports how many sources the resolver knows about.
func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.lookup)
}

// Resolve walks name through the mapping (A -> B -> C yields C). When the walk
// revisits a name the chain is a cycle and the original name is returned,
// trimmed.
func (r *Resolver) Resolve(name string) string {
	current := strings.TrimSpace(name)
	if current == "" {
		return name
	}
	if r.Len() == 0 {
		return current
	}

	seen := make(map[string]struct{}, 4)
	k := key(current)
	for {
		target, ok := r.lookup[k]
		if !ok {
			return current
		}
		if _, looped := seen[k]; looped {
			return strings.TrimSpace(name)
		}
		seen[k] = struct{}{}
		current = target
		k = key(current)
	}
}
