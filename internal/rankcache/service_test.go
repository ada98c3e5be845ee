package rankcache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cheeseechops/CamdramAPI/internal/consolidation"
	"github.com/cheeseechops/CamdramAPI/internal/corpus"
	"github.com/cheeseechops/CamdramAPI/internal/ranking"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

type fakeSource struct {
	version atomic.Int64
	loads   atomic.Int64
	corpus  *models.Corpus
	loadErr error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Stamp(context.Context) (corpus.Stamp, error) {
	v := f.version.Load()
	if v == 0 {
		return corpus.Stamp{}, corpus.ErrNoCorpus
	}
	return corpus.Stamp{Source: "fake", Version: v}, nil
}

func (f *fakeSource) Load(context.Context) (*models.Corpus, error) {
	f.loads.Add(1)
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.corpus, nil
}

type fakeCons struct {
	m     consolidation.Mapping
	stamp int64
}

func (f *fakeCons) Load() (consolidation.Mapping, error) {
	out := consolidation.Mapping{}
	for k, v := range f.m {
		out[k] = v
	}
	return out, nil
}

func (f *fakeCons) Save(m consolidation.Mapping) error {
	f.m = consolidation.Clean(m)
	f.stamp++
	return nil
}

func (f *fakeCons) Stamp() (int64, error) { return f.stamp, nil }

func ref(id int64, name string) *models.PersonRef {
	return &models.PersonRef{ID: id, Name: name, Slug: name}
}

func testCorpus() *models.Corpus {
	al, bo := ref(1, "Al"), ref(2, "Bo")
	return &models.Corpus{
		Shows: []models.Show{
			{Slug: "2025-hamlet", Name: "Hamlet",
				Performances: []models.Performance{{StartAt: "2025-06-01T19:30:00Z"}},
				Societies:    []models.Society{{Name: "CUADC", Slug: "cuadc"}},
				Venues:       []models.Venue{{Name: "ADC Theatre", Slug: "adc-theatre"}}},
			{Slug: "2019-revue", Name: "Revue",
				Performances: []models.Performance{{StartAt: "2019-06-01T19:30:00Z"}}},
		},
		ShowRoles: map[string][]models.RoleEntry{
			"2025-hamlet": {
				{Role: "Sound Op", Person: al},
				{Role: "Director", Person: bo},
			},
			"2019-revue": {
				{Role: "Sound Operator", Person: bo},
			},
		},
	}
}

var now = time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)

func newService(src *fakeSource, cons *fakeCons) *Service {
	return New(src, cons, Options{Now: func() time.Time { return now }})
}

func TestServiceCachesUntilStampChanges(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{corpus: testCorpus()}
	src.version.Store(1)
	svc := newService(src, &fakeCons{})

	first := svc.PersonRankings(ctx)
	svc.RoleRankings(ctx)
	svc.SocietyLeaderboards(ctx, 0)
	if got := src.loads.Load(); got != 1 {
		t.Fatalf("loads = %d, want 1", got)
	}
	if len(first) != 2 {
		t.Fatalf("people = %d, want 2", len(first))
	}

	src.version.Store(2)
	svc.PersonRankings(ctx)
	if got := src.loads.Load(); got != 2 {
		t.Fatalf("loads after stamp change = %d, want 2", got)
	}

	svc.InvalidateDerivedCaches()
	svc.PersonRankings(ctx)
	if got := src.loads.Load(); got != 3 {
		t.Fatalf("loads after invalidate = %d, want 3", got)
	}
}

func TestServiceConsolidationChangeRebuilds(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{corpus: testCorpus()}
	src.version.Store(1)
	cons := &fakeCons{}
	svc := newService(src, cons)

	_, byRole := svc.RoleRankings(ctx)
	if len(byRole["Director"]) != 1 {
		t.Fatalf("Director people = %v", byRole["Director"])
	}

	if err := svc.SaveConsolidationMapping(consolidation.Mapping{"Sound Operator": "Director"}); err != nil {
		t.Fatalf("SaveConsolidationMapping: %v", err)
	}
	_, byRole = svc.RoleRankings(ctx)
	got := byRole["Director"]
	if len(got) != 2 || got[0].Name != "Bo" || got[0].Count != 2 {
		t.Fatalf("Director after merge = %+v", got)
	}
	m, err := svc.LoadConsolidationMapping()
	if err != nil || m["Sound Operator"] != "Director" {
		t.Fatalf("LoadConsolidationMapping = %v, %v", m, err)
	}
}

func TestServiceUnavailableCorpusIsEmpty(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		src  *fakeSource
	}{
		{"never written", &fakeSource{}},
		{"load error", func() *fakeSource {
			s := &fakeSource{loadErr: errors.New("disk on fire")}
			s.version.Store(1)
			return s
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(tt.src, &fakeCons{})
			if got := svc.PersonRankings(ctx); got == nil || len(got) != 0 {
				t.Fatalf("PersonRankings = %#v, want empty", got)
			}
			idx, byRole := svc.RoleRankings(ctx)
			if len(idx) != 0 || len(byRole) != 0 {
				t.Fatalf("RoleRankings = %v, %v", idx, byRole)
			}
			if got := svc.ActivePersonIDs(ctx, 6); len(got) != 0 {
				t.Fatalf("ActivePersonIDs = %v", got)
			}
			if got := svc.RawRoleCounts(ctx); len(got) != 0 {
				t.Fatalf("RawRoleCounts = %v", got)
			}
			for _, b := range svc.SocietyLeaderboards(ctx, 5) {
				if len(b.Top) != 0 {
					t.Fatalf("society board %s not empty", b.Key)
				}
			}
		})
	}
}

func TestServiceUnavailableCorpusIsRetried(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{loadErr: errors.New("not yet")}
	src.version.Store(1)
	svc := newService(src, &fakeCons{})

	svc.PersonRankings(ctx)
	src.loadErr = nil
	src.corpus = testCorpus()
	if got := svc.PersonRankings(ctx); len(got) != 2 {
		t.Fatalf("people after recovery = %d, want 2", len(got))
	}
}

func TestServiceActivitySets(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{corpus: testCorpus()}
	src.version.Store(1)
	svc := newService(src, &fakeCons{})

	tests := []struct {
		name string
		got  ranking.IDSet
		want []int64
	}{
		{"active 6 months", svc.ActivePersonIDs(ctx, 6), []int64{1, 2}},
		{"active 1 month", svc.ActivePersonIDs(ctx, 1), nil},
		{"recently active 1 year", svc.RecentlyActivePersonIDs(ctx, 1), []int64{1, 2}},
		{"starters 2 years", svc.RecentStarterPersonIDs(ctx, 2), []int64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.got.Sorted()
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestServiceOnRebuild(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{corpus: testCorpus()}
	src.version.Store(7)

	var calls int
	var seen corpus.Stamp
	svc := New(src, &fakeCons{}, Options{
		Now: func() time.Time { return now },
		OnRebuild: func(st corpus.Stamp, _ ranking.SkipReport) {
			calls++
			seen = st
		},
	})
	svc.PersonRankings(ctx)
	svc.PersonRankings(ctx)
	if calls != 1 || seen.Version != 7 {
		t.Fatalf("OnRebuild calls = %d, stamp = %v", calls, seen)
	}
}

func TestServicePersonStatsAndBoards(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{corpus: testCorpus()}
	src.version.Store(1)
	svc := newService(src, &fakeCons{})

	stats, ok := svc.PersonStats(ctx, 2)
	if !ok || stats.TotalCredits != 2 {
		t.Fatalf("PersonStats(2) = %+v, %v", stats, ok)
	}
	if _, ok := svc.PersonStats(ctx, 99); ok {
		t.Fatal("unknown person should report false")
	}

	venues := svc.VenueLeaderboards(ctx, 0)
	if len(venues) == 0 || venues[0].Key != "adc-theatre" {
		t.Fatalf("venues = %+v", venues)
	}
	if counts := svc.RawRoleCounts(ctx); counts["Sound Operator"] != 2 {
		t.Fatalf("raw counts = %v", counts)
	}
}

func TestServiceWatch(t *testing.T) {
	src := &fakeSource{corpus: testCorpus()}
	rebuilt := make(chan int64, 4)
	svc := New(src, &fakeCons{}, Options{
		Now: func() time.Time { return now },
		OnRebuild: func(st corpus.Stamp, _ ranking.SkipReport) {
			rebuilt <- st.Version
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Watch(ctx, 5*time.Millisecond)
		close(done)
	}()

	// no corpus yet: nothing is built
	time.Sleep(20 * time.Millisecond)
	if n := src.loads.Load(); n != 0 {
		t.Fatalf("loads before corpus = %d", n)
	}

	src.version.Store(3)
	select {
	case v := <-rebuilt:
		if v != 3 {
			t.Fatalf("rebuilt version = %d", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not rebuild")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop")
	}
}
