// Package report renders the plain-text summary PDF.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cheeseechops/CamdramAPI/internal/consolidation"
	"github.com/cheeseechops/CamdramAPI/internal/ranking"
	"github.com/cheeseechops/CamdramAPI/internal/roles"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

const (
	sectionTop = 15
	noRecords  = "  - No matching records"
)

// Section is a titled block of text lines.
type Section struct {
	Title string
	Lines []string
}

// RoleGroup collects canonical roles under one heading.
type RoleGroup struct {
	Name  string
	Roles []string
}

func DefaultRoleGroups() []RoleGroup {
	return []RoleGroup{
		{"Lighting Designer", []string{"Lighting Designer", "Lighting Design"}},
		{"CLX (Chief Electrician)", []string{"Chief Electrician"}},
		{"Sound Designer/Engineer", []string{
			"Sound Designer", "Sound Engineer", "Sound Design", "Assistant Sound Designer",
			"Associate Sound Designer", "Lighting & Sound Designer",
		}},
		{"DSM", []string{"Deputy Stage Manager"}},
		{"SM", []string{"Stage Manager"}},
		{"ASM", []string{"Assistant Stage Manager"}},
		{"TD", []string{"Technical Director"}},
		{"Director", []string{"Director"}},
		{"Producer", []string{"Producer"}},
		{"Photographer", []string{"Photographer"}},
		{"Publicity", []string{
			"Publicity (General)", "Publicity Designer", "Publicity Design", "Publicity Manager",
			"Publicity Officer", "Graphic Designer", "Poster Designer", "Programme Designer", "Web Designer",
		}},
		{"Welfare", []string{"Welfare"}},
	}
}

type Options struct {
	Now time.Time
	// RecentYears keeps only people credited within that many years. Zero
	// keeps everyone.
	RecentYears int
	RoleGroups  []RoleGroup
	Resolver    *consolidation.Resolver
	Societies   []models.SocietyLeaderboard
	Venues      []models.VenueLeaderboard
}

// Summary is the text content of every page, before layout.
type Summary struct {
	People    []string
	Roles     []Section
	Societies []Section
	Venues    []Section
	Pairs     []string
}

type tally struct {
	names map[int64]string
	total map[int64]int
	shows map[int64]map[string]struct{}
	roles map[int64]map[string]int
}

func (t *tally) name(pid int64) string {
	if n := t.names[pid]; n != "" {
		return n
	}
	return "Unknown"
}

// rank orders pids by count descending, then name ignoring case, then id.
func (t *tally) rank(counts map[int64]int) []int64 {
	pids := make([]int64, 0, len(counts))
	for pid := range counts {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool {
		a, b := pids[i], pids[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		na, nb := strings.ToLower(t.name(a)), strings.ToLower(t.name(b))
		if na != nb {
			return na < nb
		}
		return a < b
	})
	return pids
}

// Build tallies c into report text. Shows are visited in slug order.
func Build(c *models.Corpus, opts Options) Summary {
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	if opts.RoleGroups == nil {
		opts.RoleGroups = DefaultRoleGroups()
	}

	var allowed ranking.IDSet
	if opts.RecentYears > 0 {
		allowed = ranking.RecentlyActivePersonIDs(c, opts.Now, opts.RecentYears)
	}
	groupOf := map[string][]string{}
	groupCounts := make(map[string]map[int64]int, len(opts.RoleGroups))
	for _, g := range opts.RoleGroups {
		groupCounts[g.Name] = map[int64]int{}
		for _, r := range g.Roles {
			groupOf[r] = append(groupOf[r], g.Name)
		}
	}

	t := &tally{
		names: map[int64]string{},
		total: map[int64]int{},
		shows: map[int64]map[string]struct{}{},
		roles: map[int64]map[string]int{},
	}
	pairs := newPairTally()
	entries := 0

	for _, slug := range sortedSlugs(c.ShowRoles) {
		byRole := map[string][]int64{}
		for _, e := range c.ShowRoles[slug] {
			if !e.Person.HasID() {
				continue
			}
			pid := e.Person.ID
			if allowed != nil && !allowed.Has(pid) {
				continue
			}
			entries++
			t.names[pid] = e.Person.Name
			t.total[pid]++
			if t.shows[pid] == nil {
				t.shows[pid] = map[string]struct{}{}
				t.roles[pid] = map[string]int{}
			}
			t.shows[pid][slug] = struct{}{}

			role, isRole := roles.Canonicalize(e.Role)
			if !isRole {
				role = roles.Unknown
			} else {
				role = opts.Resolver.Resolve(role)
				byRole[role] = appendUnique(byRole[role], pid)
			}
			t.roles[pid][role]++
			for _, g := range groupOf[role] {
				groupCounts[g][pid]++
			}
		}
		pairs.addShow(byRole)
	}

	s := Summary{}
	s.People = []string{
		"Date range: " + orUnknown(c.FromDate) + " to " + orUnknown(c.ToDate),
		"Cache timestamp: " + orUnknown(c.CachedAt),
		fmt.Sprintf("Total shows: %d", len(c.Shows)),
		fmt.Sprintf("Total role entries: %d", entries),
		fmt.Sprintf("Unique people: %d", len(t.total)),
	}
	if allowed != nil {
		cutoff := ranking.YearsAgo(opts.Now, opts.RecentYears)
		s.People = append(s.People, fmt.Sprintf("Filter: most recent role within last %d year(s) (since %s)",
			opts.RecentYears, cutoff.Format(ranking.DateLayout)))
	}
	s.People = append(s.People, "", "Top people by total role count:")
	for i, pid := range t.rank(t.total) {
		s.People = append(s.People, fmt.Sprintf("%2d. %-26s roles=%-4d shows=%-4d top=%s",
			i+1, clip(t.name(pid), 26), t.total[pid], len(t.shows[pid]), topCounts(t.roles[pid], 2, "None")))
	}

	for _, g := range opts.RoleGroups {
		var lines []string
		for i, pid := range t.rank(groupCounts[g.Name]) {
			if i == sectionTop {
				break
			}
			lines = append(lines, fmt.Sprintf("  %d. %s (%d)", i+1, t.name(pid), groupCounts[g.Name][pid]))
		}
		s.Roles = append(s.Roles, Section{Title: g.Name, Lines: orNoRecords(lines)})
	}

	for _, b := range opts.Societies {
		s.Societies = append(s.Societies, Section{Title: b.Label, Lines: orNoRecords(boardLines(b.Top))})
	}
	for _, b := range opts.Venues {
		lines := append([]string{fmt.Sprintf("  shows=%d", b.ShowCount)}, orNoRecords(boardLines(b.Top))...)
		s.Venues = append(s.Venues, Section{Title: b.Label, Lines: lines})
	}

	s.Pairs = pairs.lines(t)
	return s
}

func boardLines(top []models.PersonCount) []string {
	lines := make([]string, 0, len(top))
	for i, pc := range top {
		lines = append(lines, fmt.Sprintf("  %d. %s (%d)", i+1, pc.Name, pc.Count))
	}
	return lines
}

func orNoRecords(lines []string) []string {
	if len(lines) == 0 {
		return []string{noRecords}
	}
	return lines
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// clip cuts s to n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// topCounts renders the n most frequent keys as "key(count)" joined by
// commas, ties broken by key.
func topCounts(counts map[string]int, n int, empty string) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) == 0 {
		return empty
	}
	parts := make([]string, 0, n)
	for _, k := range keys[:min(n, len(keys))] {
		parts = append(parts, fmt.Sprintf("%s(%d)", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}

func sortedSlugs(m map[string][]models.RoleEntry) []string {
	out := make([]string, 0, len(m))
	for slug := range m {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

func appendUnique(pids []int64, pid int64) []int64 {
	for _, p := range pids {
		if p == pid {
			return pids
		}
	}
	return append(pids, pid)
}
