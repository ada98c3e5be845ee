package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cheeseechops/CamdramAPI/internal/config"
	"github.com/cheeseechops/CamdramAPI/internal/consolidation"
	"github.com/cheeseechops/CamdramAPI/internal/corpus"
	"github.com/cheeseechops/CamdramAPI/internal/rankcache"
	"github.com/cheeseechops/CamdramAPI/internal/report"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var now = time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)

func person(id int64, name string) *models.PersonRef {
	return &models.PersonRef{ID: id, Name: name, Slug: strings.ToLower(name)}
}

func show(slug, name, start string) models.Show {
	return models.Show{
		Slug:         slug,
		Name:         name,
		Performances: []models.Performance{{StartAt: start}},
		Societies:    []models.Society{{Name: "CUADC", Slug: "cuadc"}},
		Venues:       []models.Venue{{Name: "ADC Theatre", Slug: "adc-theatre"}},
	}
}

func testCorpus() *models.Corpus {
	al, bo, cy, dee := person(1, "Al"), person(2, "Bo"), person(3, "Cy"), person(4, "Dee")
	return &models.Corpus{
		Shows: []models.Show{
			show("2025-hamlet", "Hamlet", "2025-06-01T19:30:00Z"),
			show("2025-lear", "King Lear", "2025-02-01T19:30:00Z"),
			show("2010-old", "Old Times", "2010-05-01T19:30:00Z"),
		},
		ShowRoles: map[string][]models.RoleEntry{
			"2025-hamlet": {
				{Role: "Director", Person: al},
				{Role: "Producer", Person: bo},
				{Role: "Producer", Person: cy},
			},
			"2025-lear": {
				{Role: "Director", Person: al},
				{Role: "Director", Person: bo},
			},
			"2010-old": {
				{Role: "Director", Person: al},
				{Role: "Producer", Person: dee},
			},
		},
	}
}

type fixture struct {
	router *gin.Engine
	cfg    *config.Config
	dir    string
}

func newFixture(t *testing.T, c *models.Corpus) *fixture {
	t.Helper()
	dir := t.TempDir()
	src := corpus.NewJSONFile(filepath.Join(dir, "corpus.json"))
	if c != nil {
		if err := src.Save(context.Background(), c); err != nil {
			t.Fatalf("save corpus: %v", err)
		}
	}
	store := consolidation.NewStore(filepath.Join(dir, "consolidations.json"))

	cfg := config.Default()
	cfg.Corpus.Source = config.SourceJSON
	cfg.Paths.SummaryPDF = filepath.Join(dir, "summary.pdf")
	cfg.Leaderboards.RoleMinPeople = 2
	cfg.Leaderboards.GameMinPeople = 2

	cache := rankcache.New(src, store, rankcache.Options{Now: func() time.Time { return now }})
	router := NewRouter(Deps{Config: &cfg, Cache: cache, Consolidations: store})
	return &fixture{router: router, cfg: &cfg, dir: dir}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

type rolesBody struct {
	Roles  []models.RoleListing             `json:"roles"`
	ByRole map[string][]models.PersonCount `json:"by_role"`
}

func roleNames(roles []models.RoleListing) map[string]int {
	out := map[string]int{}
	for _, r := range roles {
		out[r.Name] = r.NumPeople
	}
	return out
}

func TestBootstrap(t *testing.T) {
	f := newFixture(t, testCorpus())
	w := f.do(t, http.MethodGet, "/api/bootstrap", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	got := decode[struct {
		TotalPeople int                              `json:"totalPeople"`
		Roles       []models.RoleListing             `json:"roles"`
		ByRole      map[string][]models.PersonCount `json:"byRole"`
		SocietyTop  []models.SocietyLeaderboard      `json:"societyTop"`
		VenueTop    []models.VenueLeaderboard        `json:"venueTop"`
	}](t, w)

	if got.TotalPeople != 4 {
		t.Fatalf("totalPeople = %d, want 4", got.TotalPeople)
	}
	names := roleNames(got.Roles)
	if names["Director"] != 2 {
		t.Fatalf("Director people = %d, want 2 (roles %v)", names["Director"], names)
	}
	if _, ok := names["Producer"]; ok {
		t.Fatalf("Producer listed although nobody produced twice")
	}
	if top := got.ByRole["Director"]; len(top) != 2 || top[0].Name != "Al" || top[0].Count != 3 {
		t.Fatalf("byRole Director = %+v", top)
	}
	if len(got.SocietyTop) == 0 || got.SocietyTop[0].Key != "cuadc" || len(got.SocietyTop[0].Top) == 0 {
		t.Fatalf("societyTop = %+v", got.SocietyTop)
	}
	if len(got.VenueTop) == 0 {
		t.Fatalf("venueTop empty")
	}
}

func TestBootstrapWithoutCorpus(t *testing.T) {
	f := newFixture(t, nil)
	w := f.do(t, http.MethodGet, "/api/bootstrap", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"byRole":{},"roles":[],"totalPeople":0}` {
		t.Fatalf("body = %s", got)
	}

	w = f.do(t, http.MethodGet, "/api/game/bootstrap", nil)
	if got := strings.TrimSpace(w.Body.String()); got != `{"byRole":{},"recentActivePeople":0,"roles":[]}` {
		t.Fatalf("game body = %s", got)
	}
}

func TestRoles(t *testing.T) {
	f := newFixture(t, testCorpus())
	tests := []struct {
		query string
		want  map[string]int
		// by_role sizes when they differ from the listed people counts
		ranked map[string]int
	}{
		{"", map[string]int{"Director": 2}, nil},
		{"?include_count1=1", map[string]int{"Director": 2, "Producer": 3}, nil},
		{"?include_count1=yes&active_only=on", map[string]int{"Director": 2, "Producer": 2},
			map[string]int{"Director": 2, "Producer": 3}},
		{"?include_count1=nope", map[string]int{"Director": 2}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/api/roles"+tt.query, nil)
			got := decode[rolesBody](t, w)
			names := roleNames(got.Roles)
			if len(names) != len(tt.want) {
				t.Fatalf("roles = %v, want %v", names, tt.want)
			}
			for name, n := range tt.want {
				if names[name] != n {
					t.Fatalf("%s people = %d, want %d", name, names[name], n)
				}
				ranked := n
				if tt.ranked != nil {
					ranked = tt.ranked[name]
				}
				if len(got.ByRole[name]) != ranked {
					t.Fatalf("by_role %s = %+v", name, got.ByRole[name])
				}
			}
		})
	}
}

func TestRankings(t *testing.T) {
	f := newFixture(t, testCorpus())
	type page struct {
		People []struct {
			PID   int64  `json:"pid"`
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"people"`
		Total   int `json:"total"`
		Page    int `json:"page"`
		PerPage int `json:"per_page"`
	}
	tests := []struct {
		query     string
		total     int
		perPage   int
		firstName string
		size      int
	}{
		{"", 4, 100, "Al", 4},
		{"?per_page=2&page=2", 4, 2, "Cy", 2},
		{"?per_page=9999", 4, 500, "Al", 4},
		{"?search=BO", 1, 100, "Bo", 1},
		{"?active_only=true", 3, 100, "Al", 3},
		{"?sort_col=name&sort_dir=desc", 4, 100, "Dee", 4},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/api/rankings"+tt.query, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			got := decode[page](t, w)
			if got.Total != tt.total || got.PerPage != tt.perPage || len(got.People) != tt.size {
				t.Fatalf("page = total %d per %d size %d", got.Total, got.PerPage, len(got.People))
			}
			if got.People[0].Name != tt.firstName {
				t.Fatalf("first = %s, want %s", got.People[0].Name, tt.firstName)
			}
		})
	}
}

func TestGameBootstrap(t *testing.T) {
	f := newFixture(t, testCorpus())
	w := f.do(t, http.MethodGet, "/api/game/bootstrap", nil)
	got := decode[struct {
		Roles              []models.RoleListing             `json:"roles"`
		ByRole             map[string][]models.PersonCount `json:"byRole"`
		RecentActivePeople int                              `json:"recentActivePeople"`
	}](t, w)
	if got.RecentActivePeople != 3 {
		t.Fatalf("recentActivePeople = %d, want 3", got.RecentActivePeople)
	}
	if names := roleNames(got.Roles); len(names) != 1 || names["Director"] != 2 {
		t.Fatalf("game roles = %v", names)
	}
}

func TestPerson(t *testing.T) {
	f := newFixture(t, testCorpus())
	tests := []struct {
		path   string
		status int
	}{
		{"/api/people/1", http.StatusOK},
		{"/api/people/999", http.StatusNotFound},
		{"/api/people/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := f.do(t, http.MethodGet, tt.path, nil)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}

	stats := decode[models.PersonStats](t, f.do(t, http.MethodGet, "/api/people/1", nil))
	if stats.TotalCredits != 3 || stats.UniqueShows != 3 || stats.Name != "Al" {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestLeaderboardLimit(t *testing.T) {
	f := newFixture(t, testCorpus())
	w := f.do(t, http.MethodGet, "/api/leaderboards/societies?limit=1", nil)
	got := decode[struct {
		Leaderboards []models.SocietyLeaderboard `json:"leaderboards"`
	}](t, w)
	for _, b := range got.Leaderboards {
		if len(b.Top) > 1 {
			t.Fatalf("board %s has %d rows", b.Key, len(b.Top))
		}
	}

	w = f.do(t, http.MethodGet, "/api/leaderboards/venues", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("venues status = %d", w.Code)
	}
}

func TestConsolidationEditRebuildsRankings(t *testing.T) {
	f := newFixture(t, testCorpus())
	w := f.do(t, http.MethodPost, "/api/role-consolidations/update", map[string]any{
		"targetRole":  "Director",
		"sourceRoles": []string{"Producer"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", w.Code, w.Body.String())
	}

	got := decode[rolesBody](t, f.do(t, http.MethodGet, "/api/roles", nil))
	if n := len(got.ByRole["Director"]); n != 4 {
		t.Fatalf("Director people after merge = %d, want 4", n)
	}
}

func TestSummaryPDF(t *testing.T) {
	f := newFixture(t, testCorpus())
	w := f.do(t, http.MethodGet, "/summary-pdf", nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "Summary PDF not found") {
		t.Fatalf("missing pdf = %d %s", w.Code, w.Body.String())
	}

	if err := os.WriteFile(f.cfg.Paths.SummaryPDF, []byte("%PDF-1.3"), 0o644); err != nil {
		t.Fatal(err)
	}
	w = f.do(t, http.MethodGet, "/summary-pdf", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, report.FileName) {
		t.Fatalf("Content-Disposition = %q", cd)
	}
}

func TestHealthAndReady(t *testing.T) {
	tests := []struct {
		name   string
		corpus *models.Corpus
		status int
	}{
		{"with corpus", testCorpus(), http.StatusOK},
		{"without corpus", nil, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.corpus)
			if w := f.do(t, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
				t.Fatalf("health = %d", w.Code)
			}
			if w := f.do(t, http.MethodGet, "/ready", nil); w.Code != tt.status {
				t.Fatalf("ready = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	f := newFixture(t, testCorpus())
	w := f.do(t, http.MethodGet, "/health", nil)
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("no request id assigned")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q", got)
	}
}

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{
		"1": true, "TRUE": true, " yes ": true, "on": true,
		"": false, "0": false, "off": false, "y": false,
	} {
		if got := parseBool(in); got != want {
			t.Errorf("parseBool(%q) = %v, want %v", in, got, want)
		}
	}
}
