package ranking

import (
	"math"
	"reflect"
	"testing"

	"github.com/cheeseechops/CamdramAPI/internal/consolidation"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

func TestAggregateCoDirectorScenario(t *testing.T) {
	c := &models.Corpus{
		Shows: []models.Show{show("2020-hamlet", "2020-03-01T00:00:00Z")},
		ShowRoles: map[string][]models.RoleEntry{
			"2020-hamlet": {
				credit("Co-Director", &models.PersonRef{ID: 1, Name: "Al"}),
				credit("Director", &models.PersonRef{ID: 2, Name: "Bo"}),
			},
		},
	}
	res := Aggregate(c, nil)

	want := []models.PersonCount{
		{PID: 1, Name: "Al", Count: 1},
		{PID: 2, Name: "Bo", Count: 1},
	}
	if got := res.RoleRankings["Director"]; !reflect.DeepEqual(got, want) {
		t.Fatalf("Director ranking = %+v, want %+v", got, want)
	}
	if len(res.RoleRankings) != 1 {
		t.Fatalf("role rankings = %v, want only Director", res.RoleRankings)
	}
	if !reflect.DeepEqual(res.RoleIndex, []models.RoleSummary{{Name: "Director", Popularity: 2}}) {
		t.Fatalf("role index = %+v", res.RoleIndex)
	}
	if res.People[0].PID != 1 || res.People[1].PID != 2 {
		t.Fatalf("people order = %+v", res.People)
	}
	for _, p := range res.People {
		if p.FirstCreditDate != "2020-03-01" || p.LastCreditDate != "2020-03-01" {
			t.Fatalf("credit dates for %s = %s..%s", p.Name, p.FirstCreditDate, p.LastCreditDate)
		}
	}
}

func TestAggregateRows(t *testing.T) {
	res := Aggregate(sampleCorpus(), nil)

	byID := map[int64]models.RankingRow{}
	for _, r := range res.People {
		byID[r.PID] = r
	}

	al := byID[1]
	if al.Count != 4 || al.NumShows != 3 || al.NumTitles != 3 {
		t.Fatalf("Al row = %+v", al)
	}
	if al.TopRole != "Director" || al.TopRoleCount != 2 || al.TopPct != 50 {
		t.Fatalf("Al top role = %s/%d/%d%%", al.TopRole, al.TopRoleCount, al.TopPct)
	}
	if al.TopCategory != "Prod" || al.TopCategoryCount != 3 {
		t.Fatalf("Al top category = %s/%d", al.TopCategory, al.TopCategoryCount)
	}
	// "untitled" has no date, so it contributes a show but no dates.
	if al.FirstCreditDate != "2020-03-01" || al.LastCreditDate != "2021-11-10" {
		t.Fatalf("Al dates = %s..%s", al.FirstCreditDate, al.LastCreditDate)
	}

	cy := byID[3]
	// Macbeth credits are not roles; the blank role counts as Unknown.
	if cy.Count != 3 || cy.NumTitles != 3 {
		t.Fatalf("Cy row = %+v", cy)
	}
	if cy.TopRole != "Lighting (General)" {
		t.Fatalf("Cy top role = %q, want alphabetical tie-break", cy.TopRole)
	}
	if cy.TopSubcategory != "Lighting" || cy.TopSubcategoryCount != 2 {
		t.Fatalf("Cy top subcategory = %s/%d", cy.TopSubcategory, cy.TopSubcategoryCount)
	}
	if cy.TopPct != 33 {
		t.Fatalf("Cy pct = %d", cy.TopPct)
	}

	di := byID[4]
	if di.FirstCreditDate != "1999-01-01" || di.LastCreditDate != "2022-02-01" {
		t.Fatalf("Di dates = %s..%s", di.FirstCreditDate, di.LastCreditDate)
	}
	if _, ok := res.RoleRankings["Violin 1"]; !ok {
		t.Fatalf("Violin I not normalized: %v", res.RoleIndex)
	}

	wantSkipped := SkipReport{
		ShowsWithoutSlug: 1,
		DuplicateShows:   1,
		MissingPerson:    2,
		NonRoleEntries:   2,
		BlankRoles:       1,
		UndatedShows:     1,
	}
	if res.Skipped != wantSkipped {
		t.Fatalf("skipped = %+v, want %+v", res.Skipped, wantSkipped)
	}
	if res.Skipped.Dropped() != 6 {
		t.Fatalf("dropped = %d", res.Skipped.Dropped())
	}
}

func TestAggregateOrdering(t *testing.T) {
	res := Aggregate(sampleCorpus(), nil)
	var names []string
	for _, r := range res.People {
		names = append(names, r.Name)
	}
	// Al 4, Cy 3, Di 3, Bo 1
	if want := []string{"Al", "Cy", "Di", "Bo"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("order = %v, want %v", names, want)
	}
	for i := 1; i < len(res.RoleIndex); i++ {
		a, b := res.RoleIndex[i-1], res.RoleIndex[i]
		if a.Popularity < b.Popularity || (a.Popularity == b.Popularity && a.Name > b.Name) {
			t.Fatalf("role index out of order at %d: %+v then %+v", i, a, b)
		}
	}
	if res.RoleIndex[0].Name != "Actor" && res.RoleIndex[0].Name != "Director" {
		t.Fatalf("unexpected most popular role %+v", res.RoleIndex[0])
	}
}

func TestAggregateInvariants(t *testing.T) {
	c := sampleCorpus()
	res := Aggregate(c, nil)

	perPerson := map[int64]int{}
	for _, ranked := range res.RoleRankings {
		for _, pc := range ranked {
			perPerson[pc.PID] += pc.Count
		}
	}
	for _, r := range res.People {
		if perPerson[r.PID] != r.Count {
			t.Errorf("%s: role frequencies sum to %d, row count %d", r.Name, perPerson[r.PID], r.Count)
		}
		if r.TopPct < 0 || r.TopPct > 100 {
			t.Errorf("%s: pct %d out of range", r.Name, r.TopPct)
		}
		want := int(math.RoundToEven(100 * float64(r.TopRoleCount) / float64(r.Count)))
		if r.TopPct != want {
			t.Errorf("%s: pct %d, want %d", r.Name, r.TopPct, want)
		}
	}
	for name, ranked := range res.RoleRankings {
		for i := 1; i < len(ranked); i++ {
			a, b := ranked[i-1], ranked[i]
			if a.Count < b.Count || (a.Count == b.Count && a.Name > b.Name) {
				t.Errorf("%s ranking out of order: %+v then %+v", name, a, b)
			}
		}
	}
}

func TestAggregateDeterministic(t *testing.T) {
	m := consolidation.Mapping{"Producer": "Director"}
	first := Aggregate(sampleCorpus(), consolidation.NewResolver(m))
	for i := 0; i < 20; i++ {
		again := Aggregate(sampleCorpus(), consolidation.NewResolver(m))
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs", i)
		}
	}
}

func TestAggregateAppliesConsolidations(t *testing.T) {
	r := consolidation.NewResolver(consolidation.Mapping{
		"Producer":          "Director",
		"Lighting (General)": "Lighting Designer",
	})
	res := Aggregate(sampleCorpus(), r)

	if _, ok := res.RoleRankings["Producer"]; ok {
		t.Fatal("Producer should be consolidated into Director")
	}
	dir := res.RoleRankings["Director"]
	if dir[0].PID != 1 || dir[0].Count != 3 {
		t.Fatalf("Director ranking = %+v", dir)
	}
	for _, row := range res.People {
		if row.PID == 3 && (row.TopRole != "Lighting Designer" || row.TopRoleCount != 2) {
			t.Fatalf("Cy row = %+v", row)
		}
	}
}

func TestAggregateNilCorpus(t *testing.T) {
	res := Aggregate(nil, nil)
	if res.People == nil || len(res.People) != 0 || len(res.RoleIndex) != 0 || len(res.RoleRankings) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRawRoleCounts(t *testing.T) {
	got := RawRoleCounts(sampleCorpus())
	if got["Actor"] != 4 {
		t.Fatalf("Actor = %d, want 4 (entries without ids count)", got["Actor"])
	}
	if got["Sound Operator"] != 1 || got["Director"] != 3 || got["Unknown"] != 1 {
		t.Fatalf("counts = %v", got)
	}
	if _, ok := got["Macbeth"]; ok {
		t.Fatal("non-role token counted")
	}
}

func TestAggregateCountsMalformedRecords(t *testing.T) {
	c := &models.Corpus{
		Shows: []models.Show{{Slug: "2024-a"}},
		ShowRoles: map[string][]models.RoleEntry{
			"2024-a": {{Role: "Director", Person: &models.PersonRef{ID: 1, Name: "Al"}}},
		},
		MalformedShows: 2,
		MalformedRoles: 3,
	}
	res := Aggregate(c, nil)
	if res.Skipped.MalformedShows != 2 || res.Skipped.MalformedRoles != 3 || res.Skipped.Dropped() != 5 {
		t.Fatalf("skipped = %+v", res.Skipped)
	}
	if len(res.People) != 1 || res.People[0].Count != 1 {
		t.Fatalf("people = %+v", res.People)
	}
}
