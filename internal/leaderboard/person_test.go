package leaderboard

import (
	"reflect"
	"testing"

	"github.com/cheeseechops/CamdramAPI/internal/consolidation"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

func TestPersonStats(t *testing.T) {
	adc := models.Venue{Name: "ADC Theatre", Slug: "adc-theatre"}
	c := &models.Corpus{
		Shows: []models.Show{
			{Name: "Hamlet", Slug: "2020-hamlet",
				Performances: []models.Performance{{StartAt: "2020-03-01T19:30:00Z"}, {StartAt: "2020-03-04T19:30:00Z"}},
				Societies:    []models.Society{{Name: "CUADC"}}, Venues: []models.Venue{adc}},
			{Name: "Cabaret", Slug: "2022-cabaret",
				Performances: []models.Performance{{StartAt: "2022-03-01T19:30:00Z"}},
				Societies:    []models.Society{{Name: "CUADC"}, {Name: "CUMTS"}}, Venue: &adc},
			{Name: "Revue", Slug: "revue"},
		},
		ShowRoles: map[string][]models.RoleEntry{
			"2020-hamlet": {
				cred("Co-Director", &models.PersonRef{ID: 7, Name: "Old Name", Slug: "old"}),
				cred("Producer", &models.PersonRef{ID: 7, Name: "Old Name", Slug: "old"}),
				cred("Actor", ref(8, "Someone")),
			},
			"2022-cabaret": {
				cred("Assistant Director", &models.PersonRef{ID: 7, Name: "New Name", Slug: "new-name"}),
				cred("Macbeth", &models.PersonRef{ID: 7, Name: "Ignored", Slug: "ignored"}),
			},
			"revue":       {cred("Actor", &models.PersonRef{ID: 7, Name: "New Name", Slug: "new-name"})},
			"orphan-show": {cred("Director", &models.PersonRef{ID: 7, Name: "New Name", Slug: "new-name"})},
		},
	}
	r := consolidation.NewResolver(consolidation.Mapping{"Assistant Director": "Director"})

	st, ok := PersonStats(c, 7, r)
	if !ok {
		t.Fatal("expected stats")
	}
	if st.Name != "New Name" || st.Slug != "new-name" || st.CamdramURL != "https://www.camdram.net/people/new-name" {
		t.Fatalf("identity = %q %q %q", st.Name, st.Slug, st.CamdramURL)
	}
	if st.TotalCredits != 5 || st.UniqueShows != 4 || st.UniqueRoles != 3 {
		t.Fatalf("totals = %d/%d/%d", st.TotalCredits, st.UniqueShows, st.UniqueRoles)
	}
	wantRoles := []models.NamedCount{{Name: "Director", Count: 3}, {Name: "Actor", Count: 1}, {Name: "Producer", Count: 1}}
	if !reflect.DeepEqual(st.TopRoles, wantRoles) {
		t.Fatalf("top roles = %+v", st.TopRoles)
	}
	if !reflect.DeepEqual(st.TopSocieties, []models.NamedCount{{Name: "CUADC", Count: 2}, {Name: "CUMTS", Count: 1}}) {
		t.Fatalf("societies = %+v", st.TopSocieties)
	}
	if !reflect.DeepEqual(st.TopVenues, []models.NamedCount{{Name: "ADC Theatre", Count: 2}}) {
		t.Fatalf("venues = %+v", st.TopVenues)
	}
	if st.FirstCreditDate != "2020-03-01" || st.LastCreditDate != "2022-03-01" {
		t.Fatalf("dates = %s..%s", st.FirstCreditDate, st.LastCreditDate)
	}
	if st.SpanYears != 2 || st.CreditsPerYear != 2.5 {
		t.Fatalf("span = %v, per year = %v", st.SpanYears, st.CreditsPerYear)
	}
	if !reflect.DeepEqual(st.ByYear, []models.YearCount{{Year: 2022, Count: 1}, {Year: 2020, Count: 1}}) {
		t.Fatalf("by year = %+v", st.ByYear)
	}
	var recent []string
	for _, s := range st.RecentShows {
		recent = append(recent, s.Slug)
	}
	if want := []string{"2022-cabaret", "2020-hamlet", "orphan-show", "revue"}; !reflect.DeepEqual(recent, want) {
		t.Fatalf("recent = %v, want %v", recent, want)
	}
	if st.RecentShows[2].Name != "orphan-show" {
		t.Fatalf("orphan show name = %q", st.RecentShows[2].Name)
	}

	if _, ok := PersonStats(c, 99, r); ok {
		t.Fatal("unknown person should report false")
	}
}
