package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/cheeseechops/CamdramAPI/internal/ranking"
)

// Validate reports every unusable setting at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch c.Corpus.Source {
	case SourceJSON, SourceSQLite:
	default:
		add("corpus.source must be %q or %q, got %q", SourceJSON, SourceSQLite, c.Corpus.Source)
	}

	if c.Camdram.TimeoutSeconds < 0 {
		add("camdram.timeout_seconds must not be negative")
	}
	if c.Camdram.MaxWorkers < 1 {
		add("camdram.max_workers must be at least 1")
	}
	if c.Camdram.PerPage < 1 {
		add("camdram.per_page must be at least 1")
	}

	if c.Harvest.FromDate != "" {
		if _, err := time.Parse(ranking.DateLayout, c.Harvest.FromDate); err != nil {
			add("harvest.from_date must be YYYY-MM-DD, got %q", c.Harvest.FromDate)
		}
	}
	if c.Harvest.LookbackDays < 0 || c.Harvest.LookaheadDays < 0 {
		add("harvest.lookback_days and harvest.lookahead_days must not be negative")
	}

	lb := c.Leaderboards
	for _, f := range []struct {
		name  string
		value int
	}{
		{"leaderboards.role_min_people", lb.RoleMinPeople},
		{"leaderboards.society_limit", lb.SocietyLimit},
		{"leaderboards.venue_limit", lb.VenueLimit},
		{"leaderboards.active_window_months", lb.ActiveWindowMonths},
		{"leaderboards.recent_activity_years", lb.RecentActivityYears},
		{"leaderboards.recent_starter_years", lb.RecentStarterYears},
		{"leaderboards.default_page_size", lb.DefaultPageSize},
		{"leaderboards.max_page_size", lb.MaxPageSize},
		{"leaderboards.game_min_people", lb.GameMinPeople},
	} {
		if f.value < 1 {
			add("%s must be at least 1", f.name)
		}
	}
	if lb.VenueDynamicSlots < 0 {
		add("leaderboards.venue_dynamic_slots must not be negative")
	}
	seen := map[string]bool{}
	for i, s := range lb.Societies {
		if s.Key == "" {
			add("leaderboards.societies[%d].key must be set", i)
			continue
		}
		if seen[s.Key] {
			add("leaderboards.societies[%d].key %q is repeated", i, s.Key)
		}
		seen[s.Key] = true
		if s.Slug == "" && len(s.Aliases) == 0 {
			add("leaderboards.societies[%d] needs a slug or aliases", i)
		}
	}
	for i, v := range lb.PinnedVenues {
		if v.Key == "" {
			add("leaderboards.pinned_venues[%d].key must be set", i)
		}
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		add("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}

	return errors.Join(errs...)
}

// Timeout is the Camdram request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Camdram.TimeoutSeconds) * time.Second
}
