package leaderboard

import (
	"strings"

	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

// SocietyTarget is a society that gets its own board. A show matches when one
// of its societies has Slug, or a name equal to an alias ignoring case.
type SocietyTarget struct {
	Key     string   `toml:"key" json:"key"`
	Label   string   `toml:"label" json:"label"`
	Slug    string   `toml:"slug" json:"slug"`
	Aliases []string `toml:"aliases" json:"aliases"`
}

// DefaultSocietyTargets are the big Cambridge societies.
func DefaultSocietyTargets() []SocietyTarget {
	return []SocietyTarget{
		{Key: "cuadc", Label: "CUADC", Slug: "cambridge-university-amateur-dramatic-club",
			Aliases: []string{"cambridge university amateur dramatic club", "cuadc"}},
		{Key: "fletcher-players", Label: "Fletcher Players", Slug: "the-fletcher-players-society",
			Aliases: []string{"the fletcher players society", "fletcher players"}},
		{Key: "bread", Label: "BREAD", Slug: "bread-theatre-film-company",
			Aliases: []string{"bread theatre & film company", "bread theatre and film company", "bread"}},
		{Key: "cumts", Label: "CUMTS", Slug: "cambridge-university-musical-theatre-society",
			Aliases: []string{"cambridge university musical theatre society", "cumts"}},
		{Key: "footlights", Label: "Footlights", Slug: "the-cambridge-footlights",
			Aliases: []string{"the cambridge footlights", "footlights"}},
		{Key: "gilbert-and-sullivan", Label: "G&S", Slug: "cambridge-university-gilbert-and-sullivan-society",
			Aliases: []string{"cambridge university gilbert and sullivan society", "gilbert and sullivan", "g&s"}},
	}
}

// Societies builds one board per target, in target order. Targets with no
// matching shows still get an empty board.
func Societies(c *models.Corpus, targets []SocietyTarget, limit int) []models.SocietyLeaderboard {
	bySlug := make(map[string]string, len(targets))
	aliases := make(map[string][]string)
	for _, t := range targets {
		bySlug[strings.ToLower(strings.TrimSpace(t.Slug))] = t.Key
		for _, a := range t.Aliases {
			a = strings.ToLower(strings.TrimSpace(a))
			aliases[a] = append(aliases[a], t.Key)
		}
	}

	sets := newShowSets()
	eachShow(c, func(show models.Show, entries []models.RoleEntry) {
		matched := map[string]struct{}{}
		for _, soc := range show.Societies {
			slug := strings.ToLower(strings.TrimSpace(soc.Slug))
			if key, ok := bySlug[slug]; ok && slug != "" {
				matched[key] = struct{}{}
				continue
			}
			for _, key := range aliases[strings.ToLower(strings.TrimSpace(soc.Name))] {
				matched[key] = struct{}{}
			}
		}
		if len(matched) == 0 {
			return
		}
		pids := sets.people(entries)
		for key := range matched {
			sets.add(key, show.Slug, pids)
		}
	})

	out := make([]models.SocietyLeaderboard, 0, len(targets))
	for _, t := range targets {
		out = append(out, models.SocietyLeaderboard{
			Key:   t.Key,
			Label: t.Label,
			Top:   sets.top(t.Key, limit),
		})
	}
	return out
}
