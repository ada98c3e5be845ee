package ranking

import (
	"sort"
	"time"

	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

// IDSet is a set of person ids.
type IDSet map[int64]struct{}

func (s IDSet) Has(pid int64) bool {
	_, ok := s[pid]
	return ok
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []int64 {
	out := make([]int64, 0, len(s))
	for pid := range s {
		out = append(out, pid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// showRanges maps each slugged show to its date range. The first show with a
// given slug wins. Without slugYears only shows with performance timestamps
// are included.
func showRanges(c *models.Corpus, slugYears bool) map[string]ShowRange {
	rangeOf := PerformanceRange
	if slugYears {
		rangeOf = DateRange
	}
	out := make(map[string]ShowRange, len(c.Shows))
	seen := make(map[string]struct{}, len(c.Shows))
	for _, show := range c.Shows {
		if show.Slug == "" {
			continue
		}
		if _, dup := seen[show.Slug]; dup {
			continue
		}
		seen[show.Slug] = struct{}{}
		if r, ok := rangeOf(show); ok {
			out[show.Slug] = r
		}
	}
	return out
}

// ActivePersonIDs returns everyone credited on a show with a performance on
// or after now minus the given number of calendar months. Shows still to come
// count as active; shows without performance timestamps never do. Roles are
// not canonicalized here: any credit counts.
func ActivePersonIDs(c *models.Corpus, now time.Time, months int) IDSet {
	out := IDSet{}
	if c == nil {
		return out
	}
	cutoff := MonthsAgo(now, months)
	for slug, r := range showRanges(c, false) {
		if r.Last.Before(cutoff) {
			continue
		}
		for _, e := range c.ShowRoles[slug] {
			if e.Person.HasID() {
				out[e.Person.ID] = struct{}{}
			}
		}
	}
	return out
}

// RecentlyActivePersonIDs returns everyone whose latest credit falls within
// the last years. Shows without performance timestamps count by slug year:
// they qualify when the year is at least the cutoff's year.
func RecentlyActivePersonIDs(c *models.Corpus, now time.Time, years int) IDSet {
	out := IDSet{}
	if c == nil || years <= 0 {
		return out
	}
	cutoff := YearsAgo(now, years)
	for slug, r := range showRanges(c, true) {
		recent := false
		if r.FromSlug {
			recent = r.Last.Year() >= cutoff.Year()
		} else {
			recent = !r.Last.Before(cutoff)
		}
		if !recent {
			continue
		}
		for _, e := range c.ShowRoles[slug] {
			if e.Person.HasID() {
				out[e.Person.ID] = struct{}{}
			}
		}
	}
	return out
}

// RecentStarterPersonIDs returns everyone whose earliest performance-dated
// credit falls within the last years. Undated shows are ignored.
func RecentStarterPersonIDs(c *models.Corpus, now time.Time, years int) IDSet {
	out := IDSet{}
	if c == nil || years <= 0 {
		return out
	}
	first := make(map[int64]time.Time)
	for slug, r := range showRanges(c, false) {
		for _, e := range c.ShowRoles[slug] {
			if !e.Person.HasID() {
				continue
			}
			if cur, ok := first[e.Person.ID]; !ok || r.First.Before(cur) {
				first[e.Person.ID] = r.First
			}
		}
	}
	cutoff := YearsAgo(now, years)
	for pid, t := range first {
		if !t.Before(cutoff) {
			out[pid] = struct{}{}
		}
	}
	return out
}
