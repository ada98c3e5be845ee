// Package rankcache memoizes rankings and leaderboards per corpus and
// consolidation version.
package rankcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cheeseechops/CamdramAPI/internal/consolidation"
	"github.com/cheeseechops/CamdramAPI/internal/corpus"
	"github.com/cheeseechops/CamdramAPI/internal/leaderboard"
	"github.com/cheeseechops/CamdramAPI/internal/logging"
	"github.com/cheeseechops/CamdramAPI/internal/ranking"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

// Consolidations is the mapping store the service reads and writes.
// *consolidation.Store satisfies it.
type Consolidations interface {
	Load() (consolidation.Mapping, error)
	Save(consolidation.Mapping) error
	Stamp() (int64, error)
}

// Options configures a Service. Zero values take the package defaults.
type Options struct {
	Now          func() time.Time
	Logger       *slog.Logger
	Societies    []leaderboard.SocietyTarget
	Venues       []leaderboard.VenueTarget
	DynamicSlots int
	SocietyLimit int
	VenueLimit   int

	// OnRebuild runs after a fresh aggregation replaced the cached one.
	OnRebuild func(stamp corpus.Stamp, skipped ranking.SkipReport)
}

// Key is what a cached snapshot was built from.
type Key struct {
	Corpus         corpus.Stamp
	Consolidations int64
}

// Service answers every ranking query from one cached snapshot, rebuilt
// whenever the corpus or the consolidation file changes.
type Service struct {
	source corpus.Source
	cons   Consolidations
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	current *snapshot
}

func New(source corpus.Source, cons Consolidations, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Societies == nil {
		opts.Societies = leaderboard.DefaultSocietyTargets()
	}
	if opts.Venues == nil {
		opts.Venues = leaderboard.DefaultPinnedVenues()
	}
	if opts.DynamicSlots == 0 {
		opts.DynamicSlots = leaderboard.DefaultVenueDynamicSlots
	}
	if opts.SocietyLimit <= 0 {
		opts.SocietyLimit = leaderboard.DefaultBoardLimit
	}
	if opts.VenueLimit <= 0 {
		opts.VenueLimit = leaderboard.DefaultBoardLimit
	}
	return &Service{
		source: source,
		cons:   cons,
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "rankcache"),
	}
}

// snapshot is one aggregation plus the derived views computed from it so far.
type snapshot struct {
	key      Key
	corpus   *models.Corpus
	resolver *consolidation.Resolver
	result   ranking.Result

	mu        sync.Mutex
	raw       map[string]int
	active    map[string]ranking.IDSet
	societies map[int][]models.SocietyLeaderboard
	venues    map[int][]models.VenueLeaderboard
}

func newSnapshot(key Key, c *models.Corpus, resolver *consolidation.Resolver) *snapshot {
	return &snapshot{
		key:       key,
		corpus:    c,
		resolver:  resolver,
		result:    ranking.Aggregate(c, resolver),
		active:    map[string]ranking.IDSet{},
		societies: map[int][]models.SocietyLeaderboard{},
		venues:    map[int][]models.VenueLeaderboard{},
	}
}

func emptySnapshot() *snapshot {
	return newSnapshot(Key{}, &models.Corpus{ShowRoles: map[string][]models.RoleEntry{}}, nil)
}

// key computes the cache key. A corpus that cannot be stamped is an error;
// an unreadable consolidation file only logs, since rankings are still
// meaningful without it.
func (s *Service) key(ctx context.Context) (Key, error) {
	st, err := s.source.Stamp(ctx)
	if err != nil {
		return Key{}, err
	}
	k := Key{Corpus: st}
	if s.cons != nil {
		v, err := s.cons.Stamp()
		if err != nil {
			s.logger.Warn("stat consolidations failed", logging.Error(err))
		}
		k.Consolidations = v
	}
	return k, nil
}

// snapshot returns the cached snapshot, rebuilding it when the key moved.
// Two callers racing on a stale key may both rebuild; the result is the same.
// A corpus that cannot be loaded yields an empty snapshot that is not cached.
func (s *Service) snapshot(ctx context.Context) *snapshot {
	k, err := s.key(ctx)
	if err != nil {
		s.logger.Warn("corpus unavailable", logging.String("source", s.source.Name()), logging.Error(err))
		return emptySnapshot()
	}

	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur != nil && cur.key == k {
		return cur
	}

	snap, err := s.build(ctx, k)
	if err != nil {
		s.logger.Warn("corpus load failed", logging.String("source", s.source.Name()), logging.Error(err))
		return emptySnapshot()
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	skipped := snap.result.Skipped
	s.logger.Info("rankings rebuilt",
		logging.String("stamp", k.Corpus.String()),
		logging.Int("people", len(snap.result.People)),
		logging.Int("roles", len(snap.result.RoleIndex)),
		logging.Int("dropped", skipped.Dropped()),
	)
	if s.opts.OnRebuild != nil {
		s.opts.OnRebuild(k.Corpus, skipped)
	}
	return snap
}

func (s *Service) build(ctx context.Context, k Key) (*snapshot, error) {
	start := time.Now()
	c, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%s: %w", s.source.Name(), corpus.ErrNoCorpus)
	}
	var m consolidation.Mapping
	if s.cons != nil {
		if m, err = s.cons.Load(); err != nil {
			s.logger.Warn("load consolidations failed", logging.Error(err))
			m = consolidation.Mapping{}
		}
	}
	snap := newSnapshot(k, c, consolidation.NewResolver(m))
	s.logger.Debug("aggregation finished", logging.Duration("took", time.Since(start)))
	return snap, nil
}

// InvalidateDerivedCaches drops the cached snapshot and every view derived
// from it. Call it after writing the consolidation mapping.
func (s *Service) InvalidateDerivedCaches() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Key reports what the next query would be served from.
func (s *Service) Key(ctx context.Context) (Key, error) {
	return s.key(ctx)
}

// Corpus returns the corpus behind the current rankings. Callers must not
// modify it.
func (s *Service) Corpus(ctx context.Context) *models.Corpus {
	return s.snapshot(ctx).corpus
}

func (s *Service) PersonRankings(ctx context.Context) []models.RankingRow {
	return s.snapshot(ctx).result.People
}

// RoleRankings returns the role index and each role's ranked people.
func (s *Service) RoleRankings(ctx context.Context) ([]models.RoleSummary, map[string][]models.PersonCount) {
	r := s.snapshot(ctx).result
	return r.RoleIndex, r.RoleRankings
}

// Popularity maps each role to its number of distinct people.
func (s *Service) Popularity(ctx context.Context) map[string]int {
	return s.snapshot(ctx).result.Popularity()
}

// Skipped reports what the last aggregation dropped or patched.
func (s *Service) Skipped(ctx context.Context) ranking.SkipReport {
	return s.snapshot(ctx).result.Skipped
}

// PersonStats builds one person's profile from the cached corpus.
func (s *Service) PersonStats(ctx context.Context, pid int64) (*models.PersonStats, bool) {
	snap := s.snapshot(ctx)
	return leaderboard.PersonStats(snap.corpus, pid, snap.resolver)
}

// RawRoleCounts counts credits per canonical role before consolidation.
func (s *Service) RawRoleCounts(ctx context.Context) map[string]int {
	snap := s.snapshot(ctx)
	snap.mu.Lock()
	defer snap.mu.Unlock()
	if snap.raw == nil {
		snap.raw = ranking.RawRoleCounts(snap.corpus)
	}
	return snap.raw
}

// Activity sets depend on the clock, so they are keyed by window and day.
func (s *Service) activity(ctx context.Context, kind string, n int, fn func(*models.Corpus, time.Time, int) ranking.IDSet) ranking.IDSet {
	snap := s.snapshot(ctx)
	now := s.opts.Now()
	k := fmt.Sprintf("%s/%d/%s", kind, n, now.UTC().Format(ranking.DateLayout))

	snap.mu.Lock()
	defer snap.mu.Unlock()
	if set, ok := snap.active[k]; ok {
		return set
	}
	set := fn(snap.corpus, now, n)
	snap.active[k] = set
	return set
}

// ActivePersonIDs returns people credited on a show that ran within the
// last months.
func (s *Service) ActivePersonIDs(ctx context.Context, months int) ranking.IDSet {
	return s.activity(ctx, "active", months, ranking.ActivePersonIDs)
}

func (s *Service) RecentlyActivePersonIDs(ctx context.Context, years int) ranking.IDSet {
	return s.activity(ctx, "recent", years, ranking.RecentlyActivePersonIDs)
}

func (s *Service) RecentStarterPersonIDs(ctx context.Context, years int) ranking.IDSet {
	return s.activity(ctx, "starter", years, ranking.RecentStarterPersonIDs)
}

// SocietyLeaderboards returns the configured society boards. A limit of
// zero or less uses the configured default.
func (s *Service) SocietyLeaderboards(ctx context.Context, limit int) []models.SocietyLeaderboard {
	if limit <= 0 {
		limit = s.opts.SocietyLimit
	}
	snap := s.snapshot(ctx)
	snap.mu.Lock()
	defer snap.mu.Unlock()
	if boards, ok := snap.societies[limit]; ok {
		return boards
	}
	boards := leaderboard.Societies(snap.corpus, s.opts.Societies, limit)
	snap.societies[limit] = boards
	return boards
}

func (s *Service) VenueLeaderboards(ctx context.Context, limit int) []models.VenueLeaderboard {
	if limit <= 0 {
		limit = s.opts.VenueLimit
	}
	snap := s.snapshot(ctx)
	snap.mu.Lock()
	defer snap.mu.Unlock()
	if boards, ok := snap.venues[limit]; ok {
		return boards
	}
	boards := leaderboard.Venues(snap.corpus, leaderboard.VenueOptions{
		Pinned:       s.opts.Venues,
		DynamicSlots: s.opts.DynamicSlots,
		Limit:        limit,
	})
	snap.venues[limit] = boards
	return boards
}

// LoadConsolidationMapping reads the current mapping.
func (s *Service) LoadConsolidationMapping() (consolidation.Mapping, error) {
	if s.cons == nil {
		return consolidation.Mapping{}, nil
	}
	return s.cons.Load()
}

// SaveConsolidationMapping persists m and invalidates every cached view.
func (s *Service) SaveConsolidationMapping(m consolidation.Mapping) error {
	if s.cons == nil {
		return fmt.Errorf("no consolidation store configured")
	}
	if err := s.cons.Save(m); err != nil {
		return err
	}
	s.InvalidateDerivedCaches()
	return nil
}

// Watch polls the cache key every interval until ctx is done and rebuilds as
// soon as it moves, so OnRebuild fires without waiting for a query.
func (s *Service) Watch(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.key(ctx); err != nil {
				continue
			}
			s.snapshot(ctx)
		}
	}
}
