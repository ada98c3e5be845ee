// Package roles turns free-text Camdram role titles into a canonical
// vocabulary and classifies canonical roles into departments.
package roles

import (
	"strings"
)

// Unknown is returned for blank role titles.
const Unknown = "Unknown"

var coPrefixes = []string{"co-", "co "}

// Canonicalize maps a raw role title to its canonical display name. The second
// result is false when the title is a character name rather than a role; such
// credits are excluded from every statistic.
func Canonicalize(raw string) (string, bool) {
	decoded := unescape(strings.TrimSpace(raw))
	if decoded == "" {
		return Unknown, true
	}
	cleaned := clean(decoded)
	if isNonRole(cleaned) {
		return "", false
	}

	key := normalizeKey(cleaned)
	if c, ok := lookup(key); ok {
		return c, true
	}
	for _, prefix := range coPrefixes {
		if base, ok := strings.CutPrefix(key, prefix); ok {
			if c, ok := lookup(base); ok {
				return c, true
			}
		}
	}

	fallback := clean(singularize(cleaned))
	if fallback == "" {
		return Unknown, true
	}
	if isNonRole(fallback) {
		return "", false
	}
	return fallback, true
}

// MustCanonicalize is Canonicalize with non-roles reported as Unknown.
func MustCanonicalize(raw string) string {
	c, ok := Canonicalize(raw)
	if !ok {
		return Unknown
	}
	return c
}

func lookup(key string) (string, bool) {
	if c, ok := aliases[key]; ok {
		return c, true
	}
	c, ok := aliases[singularize(key)]
	return c, ok
}

func isNonRole(cleaned string) bool {
	lowered := Fold(cleaned)
	if strings.ContainsAny(lowered, " /") {
		return false
	}
	_, ok := nonRoleTokens[lowered]
	return ok
}
