package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/cheeseechops/CamdramAPI/pkg/database"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

func fixture() *models.Corpus {
	return &models.Corpus{
		CachedAt: "2025-09-01T10:00:00Z",
		FromDate: "2020-01-01",
		ToDate:   "2025-09-01",
		Venues:   []models.Venue{{ID: 9, Name: "ADC Theatre", Slug: "adc-theatre"}},
		Shows: []models.Show{
			{
				ID: 2, Name: "Macbeth", Slug: "2021-macbeth",
				Performances: []models.Performance{{StartAt: "2021-11-10T19:30:00Z"}},
				Societies:    []models.Society{{ID: 4, Name: "CUADC", Slug: "cuadc"}},
				Venues:       []models.Venue{{ID: 9, Name: "ADC Theatre", Slug: "adc-theatre"}},
			},
			{
				ID: 1, Name: "Hamlet", Slug: "2020-hamlet",
				Venue: &models.Venue{Name: "Corpus Playroom", Slug: "corpus-playroom"},
			},
		},
		ShowRoles: map[string][]models.RoleEntry{
			"2021-macbeth": {
				{Role: "Director", RoleType: "prod", Person: &models.PersonRef{ID: 7, Name: "Al", Slug: "al"}},
				{Role: "Macbeth", RoleType: "cast", Person: &models.PersonRef{ID: 8, Name: "Bo", Slug: "bo"}},
				{Role: "Producer"},
			},
			"2020-hamlet": {
				{Role: "Lighting Designer", Person: &models.PersonRef{ID: 7, Name: "Al", Slug: "al"}},
			},
		},
	}
}

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "camdram.db")
	db, err := database.OpenMigrated(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db, path)
}

func TestJSONFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := NewJSONFile(filepath.Join(t.TempDir(), "cache.json"))

	if _, err := f.Stamp(ctx); !errors.Is(err, ErrNoCorpus) {
		t.Fatalf("Stamp before save = %v, want ErrNoCorpus", err)
	}
	if _, err := f.Load(ctx); !errors.Is(err, ErrNoCorpus) {
		t.Fatalf("Load before save = %v, want ErrNoCorpus", err)
	}

	want := fixture()
	if err := f.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	st, err := f.Stamp(ctx)
	if err != nil || st.Version == 0 {
		t.Fatalf("Stamp = %v, %v", st, err)
	}
	got, err := f.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestJSONFileLoadsLooseDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	doc := `{"shows":[{"name":"A & B","slug":"2024-ab"}],
	         "show_roles":null,
	         "extra":"ignored"}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := NewJSONFile(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ShowRoles == nil {
		t.Fatal("ShowRoles should default to an empty map")
	}
	if len(c.Shows) != 1 || c.Shows[0].Name != "A & B" {
		t.Fatalf("Shows = %+v", c.Shows)
	}
}

func TestJSONFileKeepsGoodRecordsAroundBadOnes(t *testing.T) {
	const good = `{"id":1,"name":"Hamlet","slug":"2024-hamlet",
		"performances":[{"start_at":"2024-05-01T19:30:00Z"}],
		"societies":[{"id":4,"name":"CUADC","slug":"cuadc"}]}`
	const goodRoles = `"2024-hamlet":[{"role":"Director","person":{"id":7,"name":"Al","slug":"al"}}]`

	tests := []struct {
		name          string
		shows         string
		roles         string
		wantShows     int
		wantRoles     int
		wantMalformed [2]int
		check         func(t *testing.T, c *models.Corpus)
	}{
		{
			name:      "society given as a bare string",
			shows:     `,{"name":"Lear","slug":"2024-lear","societies":["CUADC",{"name":"ETG","slug":"etg"}]}`,
			wantShows: 2, wantRoles: 1,
			check: func(t *testing.T, c *models.Corpus) {
				if socs := c.Shows[1].Societies; len(socs) != 1 || socs[0].Slug != "etg" {
					t.Fatalf("societies = %+v", socs)
				}
			},
		},
		{
			name:      "numeric start_at",
			shows:     `,{"name":"Lear","slug":"2024-lear","performances":[{"start_at":1583020800},"later"]}`,
			wantShows: 2, wantRoles: 1,
			check: func(t *testing.T, c *models.Corpus) {
				if perfs := c.Shows[1].Performances; len(perfs) != 1 || perfs[0].StartAt != "1583020800" {
					t.Fatalf("performances = %+v", perfs)
				}
			},
		},
		{
			name:      "numeric role",
			roles:     `,"2024-lear":[{"role":7,"person":{"id":8,"name":"Bo"}},{"role":"Producer","person":"Cy"}]`,
			wantShows: 1, wantRoles: 3,
			check: func(t *testing.T, c *models.Corpus) {
				lear := c.ShowRoles["2024-lear"]
				if lear[0].Role != "7" || lear[1].Person != nil {
					t.Fatalf("lear roles = %+v", lear)
				}
			},
		},
		{
			name:      "string show id",
			shows:     `,{"id":"x","name":"Lear","slug":"2024-lear","venue":"ADC"}`,
			wantShows: 2, wantRoles: 1,
			check: func(t *testing.T, c *models.Corpus) {
				if s := c.Shows[1]; s.ID != 0 || s.Slug != "2024-lear" || s.Venue != nil {
					t.Fatalf("show = %+v", s)
				}
			},
		},
		{
			name:          "unreadable records are counted",
			shows:         `,"2024-lear",42`,
			roles:         `,"2024-lear":{"role":"Director"},"2024-tempest":["Director",{"role":"Producer","person":{"id":9}}]`,
			wantShows:     1,
			wantRoles:     2,
			wantMalformed: [2]int{2, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cache.json")
			doc := `{"shows":[` + good + tt.shows + `],"show_roles":{` + goodRoles + tt.roles + `}}`
			if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
				t.Fatal(err)
			}
			c, err := NewJSONFile(path).Load(context.Background())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(c.Shows) != tt.wantShows || c.Shows[0].Slug != "2024-hamlet" {
				t.Fatalf("shows = %+v", c.Shows)
			}
			roles := 0
			for _, entries := range c.ShowRoles {
				roles += len(entries)
			}
			if roles != tt.wantRoles {
				t.Fatalf("role entries = %d, want %d", roles, tt.wantRoles)
			}
			if got := [2]int{c.MalformedShows, c.MalformedRoles}; got != tt.wantMalformed {
				t.Fatalf("malformed = %v, want %v", got, tt.wantMalformed)
			}
			if soc := c.Shows[0].Societies; len(soc) != 1 || soc[0].ID != 4 {
				t.Fatalf("good show societies = %+v", soc)
			}
			if tt.check != nil {
				tt.check(t, c)
			}
		})
	}
}

func TestJSONFileParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewJSONFile(path).Load(context.Background())
	if err == nil || errors.Is(err, ErrNoCorpus) {
		t.Fatalf("Load = %v, want parse error", err)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	if _, err := s.Stamp(ctx); !errors.Is(err, ErrNoCorpus) {
		t.Fatalf("Stamp on empty db = %v, want ErrNoCorpus", err)
	}

	want := fixture()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestSQLiteStoreRevisionAndDuplicates(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	c := fixture()
	c.Shows = append(c.Shows, models.Show{Name: "Macbeth again", Slug: "2021-macbeth"}, models.Show{Name: "no slug"})
	if err := s.Save(ctx, c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first, err := s.Stamp(ctx)
	if err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if first.Version != 1 {
		t.Fatalf("revision = %d, want 1", first.Version)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Shows) != 2 || got.Shows[0].Name != "Macbeth" {
		t.Fatalf("duplicate slug should keep the first show, got %+v", got.Shows)
	}

	if err := s.Save(ctx, fixture()); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	second, _ := s.Stamp(ctx)
	if second.Version != 2 || second == first {
		t.Fatalf("stamp after second save = %v", second)
	}
}

func TestSQLiteStoreRuns(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	base := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	runs := []models.HarvestRun{
		{ID: "a", StartedAt: base, FinishedAt: base.Add(time.Minute), Status: "ok", ShowsAdded: 3},
		{ID: "b", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour), Status: "failed", Error: "boom"},
	}
	for _, r := range runs {
		if err := s.RecordRun(ctx, r); err != nil {
			t.Fatalf("RecordRun %s: %v", r.ID, err)
		}
	}
	runs[0].Hydrated = 5
	if err := s.RecordRun(ctx, runs[0]); err != nil {
		t.Fatalf("RecordRun update: %v", err)
	}

	got, err := s.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("Runs order = %+v", got)
	}
	if got[1].Hydrated != 5 || !got[1].StartedAt.Equal(base) {
		t.Fatalf("updated run = %+v", got[1])
	}
	if got[0].Error != "boom" {
		t.Fatalf("failed run error = %q", got[0].Error)
	}
}

type fakeSource struct {
	name    string
	version int64
	corpus  *models.Corpus
}

func (f fakeSource) Name() string { return f.name }

func (f fakeSource) Stamp(context.Context) (Stamp, error) {
	if f.version == 0 {
		return Stamp{}, ErrNoCorpus
	}
	return Stamp{Source: f.name, Version: f.version}, nil
}

func (f fakeSource) Load(context.Context) (*models.Corpus, error) {
	if f.corpus == nil {
		return nil, ErrNoCorpus
	}
	return f.corpus, nil
}

func TestChainPicksFirstAvailable(t *testing.T) {
	ctx := context.Background()
	primary := &models.Corpus{CachedAt: "primary"}
	fallback := &models.Corpus{CachedAt: "fallback"}

	tests := []struct {
		name    string
		chain   Chain
		want    string
		wantErr bool
	}{
		{"primary", Chain{fakeSource{"a", 1, primary}, fakeSource{"b", 2, fallback}}, "primary", false},
		{"fallback", Chain{fakeSource{"a", 0, nil}, fakeSource{"b", 2, fallback}}, "fallback", false},
		{"none", Chain{fakeSource{"a", 0, nil}}, "", true},
		{"empty", Chain{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.chain.Load(ctx)
			if tt.wantErr {
				if !errors.Is(err, ErrNoCorpus) {
					t.Fatalf("Load err = %v, want ErrNoCorpus", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if c.CachedAt != tt.want {
				t.Fatalf("loaded %q, want %q", c.CachedAt, tt.want)
			}
		})
	}
}

