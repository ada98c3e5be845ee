package leaderboard

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cheeseechops/CamdramAPI/internal/consolidation"
	"github.com/cheeseechops/CamdramAPI/internal/ranking"
	"github.com/cheeseechops/CamdramAPI/internal/roles"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

const (
	personTopRoles     = 15
	personTopSocieties = 10
	personTopVenues    = 10
	personRecentShows  = 20
	camdramPeopleURL   = "https://www.camdram.net/people/"
)

// PersonStats builds the profile of one person. Role names go through the
// same canonicalization and consolidation as the rankings, so the totals
// agree with the person's ranking row. It reports false when the person has
// no credits.
func PersonStats(c *models.Corpus, pid int64, resolver *consolidation.Resolver) (*models.PersonStats, bool) {
	if c == nil || pid <= 0 {
		return nil, false
	}

	var (
		total       int
		name        = "Unknown"
		slug        string
		roleCounts  = map[string]int{}
		socCounts   = map[string]int{}
		venueCounts = map[string]int{}
		yearCounts  = map[int]int{}
		first, last time.Time
		dated       bool
		shows       []models.PersonShow
	)

	for _, show := range orderedShows(c) {
		var credited []string
		for _, e := range c.ShowRoles[show.Slug] {
			if e.Person == nil || e.Person.ID != pid {
				continue
			}
			role, ok := roles.Canonicalize(e.Role)
			if !ok {
				continue
			}
			if e.Person.Name != "" {
				name = e.Person.Name
			}
			slug = e.Person.Slug
			role = resolver.Resolve(role)
			roleCounts[role]++
			credited = append(credited, role)
			total++
		}
		if len(credited) == 0 {
			continue
		}

		lastDate := ""
		if r, ok := ranking.DateRange(show); ok {
			if !dated || r.First.Before(first) {
				first = r.First
			}
			if !dated || r.Last.After(last) {
				last = r.Last
			}
			dated = true
			yearCounts[r.Last.Year()]++
			lastDate = r.Last.Format(ranking.DateLayout)
		}
		for _, s := range show.Societies {
			if n := strings.TrimSpace(s.Name); n != "" {
				socCounts[n]++
			}
		}
		for _, v := range show.AllVenues() {
			if n := strings.TrimSpace(v.Name); n != "" {
				venueCounts[n]++
			}
		}
		title := show.Name
		if title == "" {
			title = show.Slug
		}
		shows = append(shows, models.PersonShow{Name: title, Slug: show.Slug, Roles: credited, LastDate: lastDate})
	}
	if total == 0 {
		return nil, false
	}

	sort.SliceStable(shows, func(i, j int) bool {
		a, b := shows[i], shows[j]
		if a.LastDate != b.LastDate {
			return a.LastDate > b.LastDate
		}
		return a.Name > b.Name
	})
	uniqueShows := len(shows)
	if len(shows) > personRecentShows {
		shows = shows[:personRecentShows]
	}

	st := &models.PersonStats{
		PID:             pid,
		Name:            name,
		Slug:            slug,
		TotalCredits:    total,
		UniqueShows:     uniqueShows,
		UniqueRoles:     len(roleCounts),
		FirstCreditDate: ranking.NoTop,
		LastCreditDate:  ranking.NoTop,
		TopRoles:        topNamed(roleCounts, personTopRoles),
		TopSocieties:    topNamed(socCounts, personTopSocieties),
		TopVenues:       topNamed(venueCounts, personTopVenues),
		ByYear:          byYear(yearCounts),
		RecentShows:     shows,
	}
	if slug != "" {
		st.CamdramURL = camdramPeopleURL + slug
	}
	if dated {
		st.FirstCreditDate = first.Format(ranking.DateLayout)
		st.LastCreditDate = last.Format(ranking.DateLayout)
		days := math.Floor(last.Sub(first).Hours() / 24)
		span := math.Max(1, days/365.25)
		st.SpanYears = round2(span)
		st.CreditsPerYear = round2(float64(total) / span)
	}
	return st, true
}

// orderedShows lists slugged shows in corpus order, followed by any credited
// slugs missing from the show list, sorted.
func orderedShows(c *models.Corpus) []models.Show {
	var out []models.Show
	seen := map[string]struct{}{}
	eachShow(c, func(s models.Show, _ []models.RoleEntry) {
		seen[s.Slug] = struct{}{}
		out = append(out, s)
	})
	var orphans []string
	for slug := range c.ShowRoles {
		if _, ok := seen[slug]; !ok && slug != "" {
			orphans = append(orphans, slug)
		}
	}
	sort.Strings(orphans)
	for _, slug := range orphans {
		out = append(out, models.Show{Slug: slug})
	}
	return out
}

func topNamed(counts map[string]int, limit int) []models.NamedCount {
	out := make([]models.NamedCount, 0, len(counts))
	for n, c := range counts {
		out = append(out, models.NamedCount{Name: n, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func byYear(counts map[int]int) []models.YearCount {
	out := make([]models.YearCount, 0, len(counts))
	for y, c := range counts {
		out = append(out, models.YearCount{Year: y, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
