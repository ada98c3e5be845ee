package leaderboard

import (
	"sort"
	"strings"

	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

// DefaultBoardLimit is the number of people shown per society or venue.
const DefaultBoardLimit = 15

// showSets tracks, per board key, which distinct shows each person worked on.
type showSets struct {
	names  map[int64]string
	slugs  map[int64]string
	boards map[string]map[int64]map[string]struct{}
}

func newShowSets() *showSets {
	return &showSets{
		names:  map[int64]string{},
		slugs:  map[int64]string{},
		boards: map[string]map[int64]map[string]struct{}{},
	}
}

// people returns the ids credited on a show. Every credit with an id counts;
// roles are not canonicalized.
func (s *showSets) people(entries []models.RoleEntry) []int64 {
	var out []int64
	seen := map[int64]struct{}{}
	for _, e := range entries {
		if !e.Person.HasID() {
			continue
		}
		pid := e.Person.ID
		s.names[pid] = e.Person.Name
		s.slugs[pid] = e.Person.Slug
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}
		out = append(out, pid)
	}
	return out
}

func (s *showSets) add(key, showSlug string, pids []int64) {
	board := s.boards[key]
	if board == nil {
		board = map[int64]map[string]struct{}{}
		s.boards[key] = board
	}
	for _, pid := range pids {
		set := board[pid]
		if set == nil {
			set = map[string]struct{}{}
			board[pid] = set
		}
		set[showSlug] = struct{}{}
	}
}

func (s *showSets) name(pid int64) string {
	if n, ok := s.names[pid]; ok && n != "" {
		return n
	}
	return "Unknown"
}

// top ranks a board by distinct shows, then name ignoring case, then id.
func (s *showSets) top(key string, limit int) []models.PersonCount {
	board := s.boards[key]
	out := make([]models.PersonCount, 0, len(board))
	for pid, shows := range board {
		out = append(out, models.PersonCount{PID: pid, Name: s.name(pid), Slug: s.slugs[pid], Count: len(shows)})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name); la != lb {
			return la < lb
		}
		return a.PID < b.PID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// eachShow calls fn for every slugged show once, in corpus order.
func eachShow(c *models.Corpus, fn func(models.Show, []models.RoleEntry)) {
	if c == nil {
		return
	}
	seen := make(map[string]struct{}, len(c.Shows))
	for _, show := range c.Shows {
		if show.Slug == "" {
			continue
		}
		if _, dup := seen[show.Slug]; dup {
			continue
		}
		seen[show.Slug] = struct{}{}
		fn(show, c.ShowRoles[show.Slug])
	}
}
