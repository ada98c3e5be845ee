package report

import (
	"fmt"
	"sort"
	"strings"
)

// Only role slots shared by two or three people count towards a pair.
const (
	pairMinGroup = 2
	pairMaxGroup = 3
	pairLimit    = 60
)

type pair struct{ a, b int64 }

type pairTally struct {
	counts map[pair]int
	roles  map[pair]map[string]int
}

func newPairTally() *pairTally {
	return &pairTally{counts: map[pair]int{}, roles: map[pair]map[string]int{}}
}

// addShow records every pair inside each small role group of one show.
func (p *pairTally) addShow(byRole map[string][]int64) {
	for role, pids := range byRole {
		if len(pids) < pairMinGroup || len(pids) > pairMaxGroup {
			continue
		}
		sorted := append([]int64(nil), pids...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		for i := 0; i < len(sorted); i++ {
			for j := i + 1; j < len(sorted); j++ {
				k := pair{sorted[i], sorted[j]}
				p.counts[k]++
				if p.roles[k] == nil {
					p.roles[k] = map[string]int{}
				}
				p.roles[k][role]++
			}
		}
	}
}

func (p *pairTally) lines(t *tally) []string {
	out := []string{"Pairs with most shared roles (only role groups of size 2 or 3):", ""}
	keys := make([]pair, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if p.counts[a] != p.counts[b] {
			return p.counts[a] > p.counts[b]
		}
		if na, nb := strings.ToLower(t.name(a.a)), strings.ToLower(t.name(b.a)); na != nb {
			return na < nb
		}
		if na, nb := strings.ToLower(t.name(a.b)), strings.ToLower(t.name(b.b)); na != nb {
			return na < nb
		}
		if a.a != b.a {
			return a.a < b.a
		}
		return a.b < b.b
	})
	if len(keys) == 0 {
		return append(out, "No qualifying pairs found.")
	}
	for i, k := range keys {
		if i == pairLimit {
			break
		}
		out = append(out, fmt.Sprintf("%2d. %-20s & %-20s shared=%-3d top=%s",
			i+1, clip(t.name(k.a), 20), clip(t.name(k.b), 20), p.counts[k], topCounts(p.roles[k], 2, "")))
	}
	return out
}
