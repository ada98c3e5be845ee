package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cheeseechops/CamdramAPI/internal/logging"
	"github.com/cheeseechops/CamdramAPI/internal/ranking"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

const (
	DefaultMaxWorkers = 20
	DefaultPerPage    = 50
	DefaultMaxPages   = 500
	DefaultFromDate   = "2000-01-01"

	RunOK     = "ok"
	RunFailed = "failed"
)

// API is the part of the Camdram API a harvest uses. *Client implements it.
type API interface {
	Venues(ctx context.Context) ([]models.Venue, error)
	Societies(ctx context.Context) ([]models.Society, error)
	VenueDiary(ctx context.Context, slug, from, to string) ([]models.Show, error)
	SocietyDiary(ctx context.Context, slug, from, to string) ([]models.Show, error)
	VenueShows(ctx context.Context, slug, from, to string) ([]models.Show, error)
	SocietyShows(ctx context.Context, slug, from, to string) ([]models.Show, error)
	Shows(ctx context.Context, page, perPage int) ([]models.Show, error)
	Show(ctx context.Context, slug string) (*models.Show, error)
	ShowRoles(ctx context.Context, slug string) ([]models.RoleEntry, error)
}

// Options controls one harvest.
type Options struct {
	// From and To bound discovery for a full harvest. From defaults to
	// DefaultFromDate and To to today.
	From, To string

	// Incremental discovers only the window [now-LookbackDays,
	// now+LookaheadDays] and skips the global show listing.
	Incremental   bool
	LookbackDays  int
	LookaheadDays int

	// Hydrate fetches show details to fill in missing performances,
	// societies, and venues for credited shows whose slug year is at least
	// HydrateMinYear (0 means every year).
	Hydrate        bool
	HydrateMinYear int

	MaxWorkers int
	PerPage    int
	MaxPages   int
}

func (o *Options) defaults() {
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = DefaultMaxWorkers
	}
	if o.PerPage <= 0 {
		o.PerPage = DefaultPerPage
	}
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
}

// Harvester grows a corpus from the Camdram API.
type Harvester struct {
	API    API
	Logger *slog.Logger
	Now    func() time.Time
}

func NewHarvester(api API, logger *slog.Logger) *Harvester {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Harvester{API: api, Logger: logging.NewComponentLogger(logger, "scraper"), Now: time.Now}
}

// Run merges newly discovered shows into a copy of existing (which may be
// nil), fetches role lists for shows that have none, and optionally hydrates
// show details. Individual request failures are logged and skipped; only a
// cancelled context fails the run. The returned run record is filled in
// either way.
func (h *Harvester) Run(ctx context.Context, existing *models.Corpus, opts Options) (*models.Corpus, models.HarvestRun, error) {
	opts.defaults()
	now := h.Now().UTC()
	run := models.HarvestRun{ID: uuid.NewString(), StartedAt: now}
	logger := h.Logger.With(logging.String(logging.FieldRunID, run.ID))

	c := cloneCorpus(existing)
	from, to := opts.From, opts.To
	if opts.Incremental {
		from = now.AddDate(0, 0, -max(0, opts.LookbackDays)).Format(ranking.DateLayout)
		to = now.AddDate(0, 0, max(0, opts.LookaheadDays)).Format(ranking.DateLayout)
	} else {
		if from == "" {
			from = DefaultFromDate
		}
		if to == "" {
			to = now.Format(ranking.DateLayout)
		}
	}
	run.FromDate, run.ToDate = from, to
	logger.Info("harvest started",
		logging.String("from", from),
		logging.String("to", to),
		logging.Bool("incremental", opts.Incremental),
		logging.Int("existing_shows", len(c.Shows)),
	)

	m := newMerger(c)
	err := h.discover(ctx, logger, c, m, from, to, opts)
	if err == nil {
		run.RolesLoaded, err = h.loadRoles(ctx, logger, c, opts.MaxWorkers)
	}
	if err == nil && opts.Hydrate {
		run.Hydrated, err = h.hydrate(ctx, logger, c, opts)
	}
	run.ShowsAdded = m.added

	if from < c.FromDate || c.FromDate == "" {
		c.FromDate = from
	}
	if to > c.ToDate {
		c.ToDate = to
	}
	c.CachedAt = h.Now().UTC().Format(time.RFC3339)

	run.FinishedAt = h.Now().UTC()
	run.Status = RunOK
	if err != nil {
		run.Status = RunFailed
		run.Error = err.Error()
		logger.Warn("harvest failed", logging.Error(err))
		return c, run, err
	}
	logger.Info("harvest finished",
		logging.Int("shows", len(c.Shows)),
		logging.Int("shows_added", run.ShowsAdded),
		logging.Int("roles_loaded", run.RolesLoaded),
		logging.Int("hydrated", run.Hydrated),
		logging.Duration("took", run.FinishedAt.Sub(run.StartedAt)),
	)
	return c, run, nil
}

// discover runs each discovery phase in turn and merges what it finds.
func (h *Harvester) discover(ctx context.Context, logger *slog.Logger, c *models.Corpus, m *merger, from, to string, opts Options) error {
	if len(c.Venues) == 0 {
		venues, err := h.API.Venues(ctx)
		if err != nil {
			logger.Warn("fetch venues failed", logging.Error(err))
		}
		c.Venues = venues
	}
	societies, err := h.API.Societies(ctx)
	if err != nil {
		logger.Warn("fetch societies failed", logging.Error(err))
	}
	venueSlugs := make([]string, 0, len(c.Venues))
	for _, v := range c.Venues {
		if v.Slug != "" {
			venueSlugs = append(venueSlugs, v.Slug)
		}
	}
	societySlugs := make([]string, 0, len(societies))
	for _, s := range societies {
		if s.Slug != "" {
			societySlugs = append(societySlugs, s.Slug)
		}
	}

	phases := []struct {
		name  string
		slugs []string
		fetch func(ctx context.Context, slug, from, to string) ([]models.Show, error)
	}{
		{"venue diaries", venueSlugs, h.API.VenueDiary},
		{"society shows", societySlugs, h.API.SocietyShows},
		{"society diaries", societySlugs, h.API.SocietyDiary},
		{"venue shows", venueSlugs, h.API.VenueShows},
	}
	for _, p := range phases {
		logger.Info("fetching "+p.name, logging.Int("count", len(p.slugs)))
		batches, err := parallel(ctx, opts.MaxWorkers, p.slugs, func(ctx context.Context, slug string) ([]models.Show, error) {
			return p.fetch(ctx, slug, from, to)
		}, func(slug string, err error) {
			logger.Debug("fetch failed", logging.String("phase", p.name), logging.String("slug", slug), logging.Error(err))
		})
		if err != nil {
			return err
		}
		for _, b := range batches {
			m.addAll(b)
		}
	}

	if opts.Incremental {
		return nil
	}
	logger.Info("fetching show list", logging.Int("per_page", opts.PerPage))
	for page := 1; page <= opts.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err := h.API.Shows(ctx, page, opts.PerPage)
		if err != nil {
			logger.Warn("fetch show page failed", logging.Int("page", page), logging.Error(err))
			break
		}
		m.addAll(batch)
		if len(batch) < opts.PerPage {
			break
		}
	}
	return nil
}

// loadRoles fetches role lists for every slugged show that has none yet.
func (h *Harvester) loadRoles(ctx context.Context, logger *slog.Logger, c *models.Corpus, workers int) (int, error) {
	var missing []string
	seen := map[string]struct{}{}
	for _, s := range c.Shows {
		if s.Slug == "" {
			continue
		}
		if _, ok := c.ShowRoles[s.Slug]; ok {
			continue
		}
		if _, dup := seen[s.Slug]; dup {
			continue
		}
		seen[s.Slug] = struct{}{}
		missing = append(missing, s.Slug)
	}
	if len(missing) == 0 {
		logger.Info("all roles already loaded")
		return 0, nil
	}
	logger.Info("fetching roles", logging.Int("shows", len(missing)), logging.Int("workers", workers))

	results, err := parallel(ctx, workers, missing, h.API.ShowRoles, func(slug string, err error) {
		logger.Debug("fetch roles failed", logging.String("slug", slug), logging.Error(err))
	})
	if err != nil {
		return 0, err
	}
	loaded := 0
	for i, entries := range results {
		if entries == nil {
			continue
		}
		c.ShowRoles[missing[i]] = entries
		loaded++
	}
	return loaded, nil
}

// hydrate fills missing performances, societies, and venues from show
// details, one request per show.
func (h *Harvester) hydrate(ctx context.Context, logger *slog.Logger, c *models.Corpus, opts Options) (int, error) {
	index := map[string]int{}
	var targets []string
	for i, s := range c.Shows {
		if s.Slug == "" {
			continue
		}
		if _, dup := index[s.Slug]; dup {
			continue
		}
		index[s.Slug] = i
		if !needsHydration(s) || len(c.ShowRoles[s.Slug]) == 0 {
			continue
		}
		if opts.HydrateMinYear > 0 {
			if y, ok := ranking.SlugYear(s.Slug); !ok || y < opts.HydrateMinYear {
				continue
			}
		}
		targets = append(targets, s.Slug)
	}
	if len(targets) == 0 {
		return 0, nil
	}
	logger.Info("hydrating shows", logging.Int("shows", len(targets)))

	details, err := parallel(ctx, opts.MaxWorkers, targets, h.API.Show, func(slug string, err error) {
		logger.Debug("fetch show failed", logging.String("slug", slug), logging.Error(err))
	})
	if err != nil {
		return 0, err
	}
	updated := 0
	for i, d := range details {
		if d == nil {
			continue
		}
		if applyDetail(&c.Shows[index[targets[i]]], d) {
			updated++
		}
	}
	return updated, nil
}

func needsHydration(s models.Show) bool {
	return len(s.Performances) == 0 || len(s.Societies) == 0 || len(s.AllVenues()) == 0
}

// applyDetail copies whatever s is missing from d and reports whether
// anything changed.
func applyDetail(s *models.Show, d *models.Show) bool {
	changed := false
	if len(s.Performances) == 0 && len(d.Performances) > 0 {
		s.Performances = d.Performances
		changed = true
	}
	if len(s.Societies) == 0 && len(d.Societies) > 0 {
		s.Societies = d.Societies
		changed = true
	}
	if len(s.AllVenues()) == 0 {
		if venues := detailVenues(d); len(venues) > 0 {
			s.Venues = venues
			changed = true
		}
	}
	return changed
}

// detailVenues prefers the show's venue list, then its single venue, then
// the distinct venues of its performances.
func detailVenues(d *models.Show) []models.Venue {
	if len(d.Venues) > 0 {
		return d.Venues
	}
	if d.Venue != nil && (d.Venue.ID > 0 || d.Venue.Slug != "") {
		return []models.Venue{*d.Venue}
	}
	var out []models.Venue
	seen := map[string]struct{}{}
	for _, p := range d.Performances {
		if p.Venue == nil {
			continue
		}
		k := venueKey(*p.Venue)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, *p.Venue)
	}
	return out
}

func venueKey(v models.Venue) string {
	switch {
	case v.ID > 0:
		return strconv.FormatInt(v.ID, 10)
	case v.Slug != "":
		return v.Slug
	default:
		return strings.ToLower(strings.TrimSpace(v.Name))
	}
}

// merger appends shows not yet in the corpus, keyed by id or, for shows
// without one, by slug.
type merger struct {
	c     *models.Corpus
	seen  map[string]struct{}
	added int
}

func newMerger(c *models.Corpus) *merger {
	m := &merger{c: c, seen: map[string]struct{}{}}
	for _, s := range c.Shows {
		if k := showKey(s); k != "" {
			m.seen[k] = struct{}{}
		}
	}
	return m
}

func showKey(s models.Show) string {
	if s.ID > 0 {
		return "id:" + strconv.FormatInt(s.ID, 10)
	}
	if s.Slug != "" {
		return "slug:" + s.Slug
	}
	return ""
}

func (m *merger) addAll(shows []models.Show) {
	for _, s := range shows {
		k := showKey(s)
		if k == "" {
			continue
		}
		if _, dup := m.seen[k]; dup {
			continue
		}
		m.seen[k] = struct{}{}
		m.c.Shows = append(m.c.Shows, s)
		m.added++
	}
}

// parallel calls fn for every item with at most limit calls in flight and
// returns the results in item order. Failed items leave a zero value and are
// reported to onErr. Only cancellation of ctx is returned as an error.
func parallel[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, error), onErr func(T, error)) ([]R, error) {
	out := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, limit))
	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			v, err := fn(gctx, item)
			if err != nil {
				if onErr != nil {
					onErr(item, err)
				}
				return nil
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("harvest interrupted: %w", err)
	}
	return out, nil
}

func cloneCorpus(c *models.Corpus) *models.Corpus {
	out := &models.Corpus{ShowRoles: map[string][]models.RoleEntry{}}
	if c == nil {
		return out
	}
	out.CachedAt, out.FromDate, out.ToDate = c.CachedAt, c.FromDate, c.ToDate
	out.Venues = append([]models.Venue(nil), c.Venues...)
	out.Shows = append([]models.Show(nil), c.Shows...)
	for slug, entries := range c.ShowRoles {
		out.ShowRoles[slug] = entries
	}
	return out
}
