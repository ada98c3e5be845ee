// Package leaderboard builds the display views over an aggregation result:
// role listings, society and venue top-N boards, and sorted person pages.
package leaderboard

import (
	"sort"
	"strings"

	"github.com/cheeseechops/CamdramAPI/internal/ranking"
	"github.com/cheeseechops/CamdramAPI/internal/roles"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

// DefaultRoleMinPeople is the smallest cast a role needs to be listed.
const DefaultRoleMinPeople = 6

// RoleOptions filters ListRoles.
type RoleOptions struct {
	MinPeople int
	// IncludeCount1 keeps roles nobody has done more than once.
	IncludeCount1 bool
	// Active, when non-nil, counts only these people when deciding whether a
	// role is listed.
	Active ranking.IDSet
}

// ListRoles returns the listed roles in display order together with the full
// person ranking of each listed role. Active only decides which roles are
// listed and their NumPeople; the rankings keep everyone.
func ListRoles(index []models.RoleSummary, rankings map[string][]models.PersonCount, opts RoleOptions) ([]models.RoleListing, map[string][]models.PersonCount) {
	minPeople := opts.MinPeople
	if minPeople <= 0 {
		minPeople = DefaultRoleMinPeople
	}

	listing := []models.RoleListing{}
	byRole := map[string][]models.PersonCount{}
	for _, summary := range index {
		full := rankings[summary.Name]
		ranked := full
		if opts.Active != nil {
			kept := make([]models.PersonCount, 0, len(ranked))
			for _, pc := range ranked {
				if opts.Active.Has(pc.PID) {
					kept = append(kept, pc)
				}
			}
			ranked = kept
		}
		if len(ranked) < minPeople {
			continue
		}
		if !opts.IncludeCount1 && maxCount(ranked) <= 1 {
			continue
		}
		cat := roles.Categorize(summary.Name)
		listing = append(listing, models.RoleListing{
			Name:      summary.Name,
			NumPeople: len(ranked),
			Category:  cat,
			MainGroup: roles.MainGroup(cat),
		})
		byRole[summary.Name] = full
	}
	SortRoleListing(listing)
	return listing, byRole
}

// SortRoleListing orders by main group (Tech, Prod, Cast, Band), category,
// most people, then name ignoring case.
func SortRoleListing(listing []models.RoleListing) {
	sort.SliceStable(listing, func(i, j int) bool {
		a, b := listing[i], listing[j]
		if ga, gb := groupRank(a.MainGroup), groupRank(b.MainGroup); ga != gb {
			return ga < gb
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.NumPeople != b.NumPeople {
			return a.NumPeople > b.NumPeople
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

func groupRank(g string) int {
	if r, ok := roles.GroupOrder[g]; ok {
		return r
	}
	return 99
}

func maxCount(pcs []models.PersonCount) int {
	best := 0
	for _, pc := range pcs {
		if pc.Count > best {
			best = pc.Count
		}
	}
	return best
}

// DefaultGameMinPeople is how many recently active people a role needs to
// stay in the guessing game.
const DefaultGameMinPeople = 3

// GameRoles narrows a role listing to people in allowed, dropping roles left
// with fewer than minPeople.
func GameRoles(listing []models.RoleListing, byRole map[string][]models.PersonCount, allowed ranking.IDSet, minPeople int) ([]models.RoleListing, map[string][]models.PersonCount) {
	if minPeople <= 0 {
		minPeople = DefaultGameMinPeople
	}
	outRoles := []models.RoleListing{}
	outByRole := map[string][]models.PersonCount{}
	for _, r := range listing {
		var kept []models.PersonCount
		for _, pc := range byRole[r.Name] {
			if allowed.Has(pc.PID) {
				kept = append(kept, pc)
			}
		}
		if len(kept) < minPeople {
			continue
		}
		r.NumPeople = len(kept)
		outRoles = append(outRoles, r)
		outByRole[r.Name] = kept
	}
	return outRoles, outByRole
}
