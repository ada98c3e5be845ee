package consolidation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cheeseechops/CamdramAPI/internal/roles"
)

// ErrInvalidEdit marks an edit request that was rejected before touching the
// mapping. A request that changes nothing is not an error.
var ErrInvalidEdit = errors.New("invalid consolidation edit")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEdit, fmt.Sprintf(format, args...))
}

// Merge points every source role at target. Names are canonicalized first;
// sources that are not roles, or equal the target ignoring case, are skipped.
// It returns how many entries changed.
func (m Mapping) Merge(target string, sources []string) (int, error) {
	if strings.TrimSpace(target) == "" {
		return 0, invalid("targetRole is required")
	}
	canonicalTarget, ok := roles.Canonicalize(target)
	if !ok {
		return 0, invalid("targetRole %q is invalid", target)
	}
	for i, s := range sources {
		if strings.TrimSpace(s) == "" {
			return 0, invalid("sourceRoles[%d] is empty", i)
		}
	}

	changed := 0
	for _, raw := range sources {
		source, ok := roles.Canonicalize(raw)
		if !ok || key(source) == key(canonicalTarget) {
			continue
		}
		if m[source] != canonicalTarget {
			m[source] = canonicalTarget
			changed++
		}
	}
	return changed, nil
}

// RemoveSource deletes the mapping for one source role.
func (m Mapping) RemoveSource(source string) (int, error) {
	if strings.TrimSpace(source) == "" {
		return 0, invalid("sourceRole is empty")
	}
	canonical, ok := roles.Canonicalize(source)
	if !ok {
		return 0, nil
	}
	changed := 0
	for s := range m {
		if key(s) == key(canonical) {
			delete(m, s)
			changed++
		}
	}
	return changed, nil
}

// RemoveTarget deletes every mapping that points at target.
func (m Mapping) RemoveTarget(target string) (int, error) {
	if strings.TrimSpace(target) == "" {
		return 0, invalid("targetRole is empty")
	}
	canonical, ok := roles.Canonicalize(target)
	if !ok {
		return 0, nil
	}
	changed := 0
	for s, t := range m {
		if key(t) == key(canonical) {
			delete(m, s)
			changed++
		}
	}
	return changed, nil
}
