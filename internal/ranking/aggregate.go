// Package ranking turns a harvested corpus into person and role rankings in a
// single pass, and derives the activity sets used to filter them.
package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/cheeseechops/CamdramAPI/internal/consolidation"
	"github.com/cheeseechops/CamdramAPI/internal/roles"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

// NoTop is shown in place of a top role when a person has none.
const NoTop = "—"

// SkipReport counts corpus records the pass dropped or patched up.
type SkipReport struct {
	MalformedShows   int `json:"malformed_shows"`
	MalformedRoles   int `json:"malformed_roles"`
	ShowsWithoutSlug int `json:"shows_without_slug"`
	DuplicateShows   int `json:"duplicate_shows"`
	MissingPerson    int `json:"missing_person"`
	NonRoleEntries   int `json:"non_role_entries"`
	BlankRoles       int `json:"blank_roles"`
	UndatedShows     int `json:"undated_shows"`
}

// Dropped is the number of role entries or shows excluded from every
// statistic. Blank roles and undated shows are still counted.
func (s SkipReport) Dropped() int {
	return s.MalformedShows + s.MalformedRoles + s.ShowsWithoutSlug + s.DuplicateShows + s.MissingPerson + s.NonRoleEntries
}

// Result is everything one aggregation pass produces.
type Result struct {
	People       []models.RankingRow
	RoleIndex    []models.RoleSummary
	RoleRankings map[string][]models.PersonCount
	Skipped      SkipReport
}

// Popularity maps each role to the number of distinct people credited with it.
func (r Result) Popularity() map[string]int {
	out := make(map[string]int, len(r.RoleIndex))
	for _, s := range r.RoleIndex {
		out[s.Name] = s.Popularity
	}
	return out
}

type personAcc struct {
	name, slug  string
	total       int
	roles       map[string]int
	categories  map[string]int
	groups      map[string]int
	shows       map[string]struct{}
	first, last ShowRange
	dated       bool
}

// Aggregate walks every credit once. Shows are visited in corpus order and,
// within a show, entries in listed order; a person's name and slug are taken
// from the last entry seen. A nil resolver applies no consolidations.
func Aggregate(c *models.Corpus, resolver *consolidation.Resolver) Result {
	res := Result{RoleRankings: map[string][]models.PersonCount{}}
	if c == nil {
		res.People = []models.RankingRow{}
		res.RoleIndex = []models.RoleSummary{}
		return res
	}

	res.Skipped.MalformedShows = c.MalformedShows
	res.Skipped.MalformedRoles = c.MalformedRoles

	people := make(map[int64]*personAcc)
	rolePeople := make(map[string]map[int64]int)
	seenShows := make(map[string]struct{}, len(c.Shows))
	categoryOf := make(map[string]string)

	for _, show := range c.Shows {
		slug := show.Slug
		if slug == "" {
			res.Skipped.ShowsWithoutSlug++
			continue
		}
		if _, dup := seenShows[slug]; dup {
			res.Skipped.DuplicateShows++
			continue
		}
		seenShows[slug] = struct{}{}

		rng, dated := DateRange(show)
		entries := c.ShowRoles[slug]
		if !dated && len(entries) > 0 {
			res.Skipped.UndatedShows++
		}

		for _, e := range entries {
			if !e.Person.HasID() {
				res.Skipped.MissingPerson++
				continue
			}
			if strings.TrimSpace(e.Role) == "" {
				res.Skipped.BlankRoles++
			}
			role, ok := roles.Canonicalize(e.Role)
			if !ok {
				res.Skipped.NonRoleEntries++
				continue
			}
			role = resolver.Resolve(role)

			pid := e.Person.ID
			p := people[pid]
			if p == nil {
				p = &personAcc{
					roles:      map[string]int{},
					categories: map[string]int{},
					groups:     map[string]int{},
					shows:      map[string]struct{}{},
				}
				people[pid] = p
			}
			p.name = e.Person.Name
			if p.name == "" {
				p.name = "Unknown"
			}
			p.slug = e.Person.Slug
			p.total++
			p.roles[role]++
			p.shows[slug] = struct{}{}

			cat, ok := categoryOf[role]
			if !ok {
				cat = roles.Categorize(role)
				categoryOf[role] = cat
			}
			p.categories[cat]++
			p.groups[roles.MainGroup(cat)]++

			if dated {
				if !p.dated || rng.First.Before(p.first.First) {
					p.first = rng
				}
				if !p.dated || rng.Last.After(p.last.Last) {
					p.last = rng
				}
				p.dated = true
			}

			byPerson := rolePeople[role]
			if byPerson == nil {
				byPerson = map[int64]int{}
				rolePeople[role] = byPerson
			}
			byPerson[pid]++
		}
	}

	res.People = make([]models.RankingRow, 0, len(people))
	for pid, p := range people {
		res.People = append(res.People, p.row(pid))
	}
	sort.Slice(res.People, func(i, j int) bool {
		a, b := res.People[i], res.People[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PID < b.PID
	})

	res.RoleIndex = make([]models.RoleSummary, 0, len(rolePeople))
	for role, counts := range rolePeople {
		ranked := make([]models.PersonCount, 0, len(counts))
		for pid, n := range counts {
			p := people[pid]
			ranked = append(ranked, models.PersonCount{PID: pid, Name: p.name, Slug: p.slug, Count: n})
		}
		SortPersonCounts(ranked)
		res.RoleRankings[role] = ranked
		res.RoleIndex = append(res.RoleIndex, models.RoleSummary{Name: role, Popularity: len(ranked)})
	}
	sort.Slice(res.RoleIndex, func(i, j int) bool {
		a, b := res.RoleIndex[i], res.RoleIndex[j]
		if a.Popularity != b.Popularity {
			return a.Popularity > b.Popularity
		}
		return a.Name < b.Name
	})
	return res
}

func (p *personAcc) row(pid int64) models.RankingRow {
	r := models.RankingRow{
		PID:            pid,
		Name:           p.name,
		Slug:           p.slug,
		Count:          p.total,
		TopRole:        NoTop,
		TopSubcategory: NoTop,
		TopCategory:    NoTop,
		NumShows:       len(p.shows),
		NumTitles:      len(p.roles),
	}
	if len(p.roles) > 0 {
		r.TopRole, r.TopRoleCount = argmax(p.roles)
		r.TopSubcategory, r.TopSubcategoryCount = argmax(p.categories)
		r.TopCategory, r.TopCategoryCount = argmax(p.groups)
	}
	r.TopPct = percent(r.TopRoleCount, p.total)
	if p.dated {
		r.FirstCreditDate = p.first.First.Format(DateLayout)
		r.LastCreditDate = p.last.Last.Format(DateLayout)
	}
	return r
}

// argmax picks the highest count; ties go to the alphabetically first name.
func argmax(freq map[string]int) (string, int) {
	best, bestN := "", -1
	for name, n := range freq {
		if n > bestN || (n == bestN && name < best) {
			best, bestN = name, n
		}
	}
	return best, bestN
}

func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.RoundToEven(100 * float64(part) / float64(total)))
}

// SortPersonCounts orders by count descending, then name, then id.
func SortPersonCounts(pcs []models.PersonCount) {
	sort.Slice(pcs, func(i, j int) bool {
		a, b := pcs[i], pcs[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PID < b.PID
	})
}

// RawRoleCounts counts credits per canonical role before consolidation.
// Entries without a person are still counted.
func RawRoleCounts(c *models.Corpus) map[string]int {
	out := map[string]int{}
	if c == nil {
		return out
	}
	for _, entries := range c.ShowRoles {
		for _, e := range entries {
			role, ok := roles.Canonicalize(e.Role)
			if !ok {
				continue
			}
			out[role]++
		}
	}
	return out
}
