package scraper

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

type fakeAPI struct {
	mu        sync.Mutex
	windows   []string
	inFlight  atomic.Int32
	maxFlight atomic.Int32

	venueDiary map[string][]models.Show
	pages      [][]models.Show
	roles      map[string][]models.RoleEntry
	details    map[string]*models.Show
	failRoles  map[string]bool
	showCalls  atomic.Int32
}

func (f *fakeAPI) track() func() {
	n := f.inFlight.Add(1)
	for {
		m := f.maxFlight.Load()
		if n <= m || f.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeAPI) Venues(context.Context) ([]models.Venue, error) {
	return []models.Venue{{Slug: "adc-theatre", Name: "ADC"}, {Slug: "corpus-playroom"}}, nil
}

func (f *fakeAPI) Societies(context.Context) ([]models.Society, error) {
	return nil, errors.New("societies down")
}

func (f *fakeAPI) VenueDiary(_ context.Context, slug, from, to string) ([]models.Show, error) {
	defer f.track()()
	f.mu.Lock()
	f.windows = append(f.windows, from+".."+to)
	f.mu.Unlock()
	return f.venueDiary[slug], nil
}

func (f *fakeAPI) SocietyDiary(context.Context, string, string, string) ([]models.Show, error) {
	return nil, nil
}

func (f *fakeAPI) VenueShows(_ context.Context, slug, _, _ string) ([]models.Show, error) {
	return f.venueDiary[slug], nil
}

func (f *fakeAPI) SocietyShows(context.Context, string, string, string) ([]models.Show, error) {
	return nil, nil
}

func (f *fakeAPI) Shows(_ context.Context, page, _ int) ([]models.Show, error) {
	if page > len(f.pages) {
		return nil, nil
	}
	return f.pages[page-1], nil
}

func (f *fakeAPI) Show(_ context.Context, slug string) (*models.Show, error) {
	defer f.track()()
	f.showCalls.Add(1)
	if d, ok := f.details[slug]; ok {
		return d, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeAPI) ShowRoles(_ context.Context, slug string) ([]models.RoleEntry, error) {
	defer f.track()()
	if f.failRoles[slug] {
		return nil, errors.New("boom")
	}
	return f.roles[slug], nil
}

func pref(id int64, name string) *models.PersonRef {
	return &models.PersonRef{ID: id, Name: name, Slug: name}
}

var fixedNow = time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)

func newFakeHarvester(api API) *Harvester {
	h := NewHarvester(api, nil)
	h.Now = func() time.Time { return fixedNow }
	return h
}

func TestHarvestFullRun(t *testing.T) {
	api := &fakeAPI{
		venueDiary: map[string][]models.Show{
			"adc-theatre": {{ID: 1, Slug: "2024-hamlet"}, {ID: 2, Slug: "2024-macbeth"}},
		},
		pages: [][]models.Show{
			{{ID: 2, Slug: "2024-macbeth"}, {ID: 3, Slug: "1990-revue"}},
		},
		roles: map[string][]models.RoleEntry{
			"2024-hamlet":  {{Role: "Director", Person: pref(1, "al")}},
			"2024-macbeth": {{Role: "Producer", Person: pref(2, "bo")}},
			"1990-revue":   {{Role: "Performer", Person: pref(3, "cy")}},
		},
		failRoles: map[string]bool{"2024-macbeth": true},
		details: map[string]*models.Show{
			"2024-hamlet": {
				Performances: []models.Performance{{StartAt: "2024-03-01T19:30:00Z", Venue: &models.Venue{ID: 5, Slug: "adc-theatre"}}},
				Societies:    []models.Society{{Slug: "cuadc"}},
			},
		},
	}
	existing := &models.Corpus{
		Shows:     []models.Show{{ID: 1, Slug: "2024-hamlet", Name: "Hamlet"}},
		ShowRoles: map[string][]models.RoleEntry{},
	}

	c, run, err := newFakeHarvester(api).Run(context.Background(), existing, Options{
		Hydrate:        true,
		HydrateMinYear: 2000,
		MaxWorkers:     2,
		PerPage:        50,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var slugs []string
	for _, s := range c.Shows {
		slugs = append(slugs, s.Slug)
	}
	want := []string{"2024-hamlet", "2024-macbeth", "1990-revue"}
	if len(slugs) != len(want) {
		t.Fatalf("shows = %v, want %v", slugs, want)
	}
	for i := range want {
		if slugs[i] != want[i] {
			t.Fatalf("shows = %v, want %v", slugs, want)
		}
	}
	if len(existing.Shows) != 1 {
		t.Fatal("Run must not modify the existing corpus")
	}

	if _, ok := c.ShowRoles["2024-macbeth"]; ok {
		t.Fatal("failed role fetch should leave the show without roles")
	}
	if run.RolesLoaded != 2 || run.ShowsAdded != 2 || run.Status != RunOK || run.ID == "" {
		t.Fatalf("run = %+v", run)
	}

	hamlet := c.Shows[0]
	if len(hamlet.Performances) != 1 || len(hamlet.Societies) != 1 {
		t.Fatalf("hamlet not hydrated: %+v", hamlet)
	}
	if len(hamlet.Venues) != 1 || hamlet.Venues[0].ID != 5 {
		t.Fatalf("hamlet venues from performances = %+v", hamlet.Venues)
	}
	if run.Hydrated != 1 {
		t.Fatalf("hydrated = %d, want 1", run.Hydrated)
	}
	if got := api.showCalls.Load(); got != 1 {
		t.Fatalf("detail fetches = %d, want 1 (1990 show is below the minimum year)", got)
	}
	if c.FromDate != DefaultFromDate || c.ToDate != "2025-09-15" {
		t.Fatalf("window = %s..%s", c.FromDate, c.ToDate)
	}
	if m := api.maxFlight.Load(); m > 2 {
		t.Fatalf("max concurrent requests = %d, limit 2", m)
	}
}

func TestHarvestIncrementalWindow(t *testing.T) {
	api := &fakeAPI{pages: [][]models.Show{{{ID: 9, Slug: "2025-never"}}}}
	c, run, err := newFakeHarvester(api).Run(context.Background(), nil, Options{
		Incremental:   true,
		LookbackDays:  60,
		LookaheadDays: 730,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.FromDate != "2025-07-17" || run.ToDate != "2027-09-15" {
		t.Fatalf("window = %s..%s", run.FromDate, run.ToDate)
	}
	for _, w := range api.windows {
		if w != "2025-07-17..2027-09-15" {
			t.Fatalf("diary window = %s", w)
		}
	}
	if len(c.Shows) != 0 {
		t.Fatalf("incremental run should skip the show list, got %+v", c.Shows)
	}
}

func TestHarvestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, run, err := newFakeHarvester(&fakeAPI{}).Run(ctx, nil, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if run.Status != RunFailed || run.Error == "" {
		t.Fatalf("run = %+v", run)
	}
}

func TestDetailVenuesFallbacks(t *testing.T) {
	tests := []struct {
		name string
		show models.Show
		want int
	}{
		{"list", models.Show{Venues: []models.Venue{{Slug: "a"}, {Slug: "b"}}}, 2},
		{"single", models.Show{Venue: &models.Venue{Slug: "a"}}, 1},
		{"single without id or slug", models.Show{Venue: &models.Venue{Name: "Somewhere"}}, 0},
		{"performances", models.Show{Performances: []models.Performance{
			{Venue: &models.Venue{ID: 1}}, {Venue: &models.Venue{ID: 1}}, {Venue: &models.Venue{Name: "Barn"}}, {},
		}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detailVenues(&tt.show); len(got) != tt.want {
				t.Fatalf("detailVenues = %+v, want %d", got, tt.want)
			}
		})
	}
}
