package leaderboard

import (
	"sort"
	"strings"

	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

// DefaultVenueDynamicSlots is how many busiest unpinned venues follow the
// pinned ones.
const DefaultVenueDynamicSlots = 6

// VenueTarget is a venue that is always listed first when present. Key is
// matched against the venue slug, or its lowercased name when it has none.
type VenueTarget struct {
	Key   string `toml:"key" json:"key"`
	Label string `toml:"label" json:"label"`
}

func DefaultPinnedVenues() []VenueTarget {
	return []VenueTarget{
		{Key: "adc-theatre", Label: "ADC"},
		{Key: "adc-theatre-bar", Label: "ADC Bar"},
		{Key: "adc-theatre-larkum-studio", Label: "Larkum Studio"},
		{Key: "corpus-playroom", Label: "Corpus"},
		{Key: "fitzpatrick-hall", Label: "Fitzpat"},
		{Key: "the-minack-theatre", Label: "Minack"},
	}
}

// VenueOptions controls venue selection.
type VenueOptions struct {
	Pinned       []VenueTarget
	DynamicSlots int
	Limit        int
}

// Venues builds boards for every pinned venue that has credited shows, then
// for the venues with the most credited shows. A venue whose key starts with
// a pinned key plus "-" is a sub-venue of it and is never picked dynamically.
func Venues(c *models.Corpus, opts VenueOptions) []models.VenueLeaderboard {
	slots := opts.DynamicSlots
	if slots < 0 {
		slots = 0
	}

	sets := newShowSets()
	showCounts := map[string]int{}
	labels := map[string]string{}

	eachShow(c, func(show models.Show, entries []models.RoleEntry) {
		if len(entries) == 0 {
			return
		}
		pids := sets.people(entries)
		if len(pids) == 0 {
			return
		}
		seen := map[string]struct{}{}
		for _, v := range show.AllVenues() {
			name := strings.TrimSpace(v.Name)
			key := strings.ToLower(strings.TrimSpace(v.Slug))
			if key == "" {
				key = strings.ToLower(name)
			}
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if name != "" {
				labels[key] = name
			}
			showCounts[key]++
			sets.add(key, show.Slug, pids)
		}
	})

	pinnedLabel := make(map[string]string, len(opts.Pinned))
	for _, p := range opts.Pinned {
		pinnedLabel[p.Key] = p.Label
	}

	var dynamic []string
	for key := range sets.boards {
		if _, pinned := pinnedLabel[key]; pinned || isSubVenue(key, opts.Pinned) {
			continue
		}
		dynamic = append(dynamic, key)
	}
	sort.Slice(dynamic, func(i, j int) bool {
		a, b := dynamic[i], dynamic[j]
		if showCounts[a] != showCounts[b] {
			return showCounts[a] > showCounts[b]
		}
		if la, lb := strings.ToLower(labelOr(labels, a)), strings.ToLower(labelOr(labels, b)); la != lb {
			return la < lb
		}
		return a < b
	})
	if len(dynamic) > slots {
		dynamic = dynamic[:slots]
	}

	var selected []string
	for _, p := range opts.Pinned {
		if _, ok := sets.boards[p.Key]; ok {
			selected = append(selected, p.Key)
		}
	}
	selected = append(selected, dynamic...)

	out := make([]models.VenueLeaderboard, 0, len(selected))
	for _, key := range selected {
		label := pinnedLabel[key]
		if label == "" {
			label = labelOr(labels, key)
		}
		venueName := labels[key]
		if venueName == "" {
			venueName = label
		}
		out = append(out, models.VenueLeaderboard{
			Key:       key,
			Label:     label,
			VenueName: venueName,
			ShowCount: showCounts[key],
			Top:       sets.top(key, opts.Limit),
		})
	}
	return out
}

func isSubVenue(key string, pinned []VenueTarget) bool {
	for _, p := range pinned {
		if strings.HasPrefix(key, p.Key+"-") {
			return true
		}
	}
	return false
}

func labelOr(labels map[string]string, key string) string {
	if l := labels[key]; l != "" {
		return l
	}
	return key
}
