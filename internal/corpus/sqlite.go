package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

const (
	metaRevision = "revision"
	metaCachedAt = "cached_at"
	metaFromDate = "from_date"
	metaToDate   = "to_date"
)

// SQLiteStore keeps the corpus in the database. Every Save bumps a revision
// counter, which is the store's stamp.
type SQLiteStore struct {
	db   *sql.DB
	name string
}

// NewSQLiteStore wraps an open, migrated database. name labels the stamp,
// usually the database path.
func NewSQLiteStore(db *sql.DB, name string) *SQLiteStore {
	return &SQLiteStore{db: db, name: name}
}

func (s *SQLiteStore) Name() string { return "sqlite:" + s.name }

func (s *SQLiteStore) Stamp(ctx context.Context) (Stamp, error) {
	rev, err := s.revision(ctx, s.db)
	if err != nil {
		return Stamp{}, err
	}
	if rev == 0 {
		return Stamp{}, fmt.Errorf("%s: %w", s.Name(), ErrNoCorpus)
	}
	return Stamp{Source: s.Name(), Version: rev}, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) revision(ctx context.Context, q queryer) (int64, error) {
	v, err := s.meta(ctx, q, metaRevision)
	if err != nil || v == "" {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corpus revision %q: %w", v, err)
	}
	return n, nil
}

func (s *SQLiteStore) meta(ctx context.Context, q queryer, key string) (string, error) {
	var v string
	err := q.QueryRowContext(ctx, `SELECT value FROM corpus_meta WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read corpus_meta %s: %w", key, err)
	}
	return v, nil
}

// Save replaces the stored corpus in one transaction. Shows repeating an
// earlier slug are ignored.
func (s *SQLiteStore) Save(ctx context.Context, c *models.Corpus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"shows", "show_roles", "venues"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	showStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO shows (slug, position, id, name, performances, societies, venues, venue)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare shows: %w", err)
	}
	defer showStmt.Close()

	for i, show := range c.Shows {
		if show.Slug == "" {
			continue
		}
		perfs, socs, venues, venue, err := encodeShow(show)
		if err != nil {
			return fmt.Errorf("encode show %s: %w", show.Slug, err)
		}
		if _, err := showStmt.ExecContext(ctx, show.Slug, i, nullID(show.ID), show.Name, perfs, socs, venues, venue); err != nil {
			return fmt.Errorf("insert show %s: %w", show.Slug, err)
		}
	}

	roleStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO show_roles (show_slug, position, role, role_type, person_id, person_name, person_slug)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare show_roles: %w", err)
	}
	defer roleStmt.Close()

	for slug, entries := range c.ShowRoles {
		for i, e := range entries {
			var (
				pid         sql.NullInt64
				name, slug2 string
			)
			if e.Person != nil {
				pid = nullID(e.Person.ID)
				name, slug2 = e.Person.Name, e.Person.Slug
			}
			if _, err := roleStmt.ExecContext(ctx, slug, i, e.Role, e.RoleType, pid, name, slug2); err != nil {
				return fmt.Errorf("insert role %s#%d: %w", slug, i, err)
			}
		}
	}

	venueStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO venues (slug, position, id, name) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare venues: %w", err)
	}
	defer venueStmt.Close()

	for i, v := range c.Venues {
		if v.Slug == "" {
			continue
		}
		if _, err := venueStmt.ExecContext(ctx, v.Slug, i, nullID(v.ID), v.Name); err != nil {
			return fmt.Errorf("insert venue %s: %w", v.Slug, err)
		}
	}

	rev, err := s.revision(ctx, tx)
	if err != nil {
		return err
	}
	meta := map[string]string{
		metaRevision: strconv.FormatInt(rev+1, 10),
		metaCachedAt: c.CachedAt,
		metaFromDate: c.FromDate,
		metaToDate:   c.ToDate,
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO corpus_meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, v); err != nil {
			return fmt.Errorf("write corpus_meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Load reads the corpus back in saved order.
func (s *SQLiteStore) Load(ctx context.Context) (*models.Corpus, error) {
	if _, err := s.Stamp(ctx); err != nil {
		return nil, err
	}
	c := &models.Corpus{ShowRoles: map[string][]models.RoleEntry{}}

	var err error
	if c.CachedAt, err = s.meta(ctx, s.db, metaCachedAt); err != nil {
		return nil, err
	}
	if c.FromDate, err = s.meta(ctx, s.db, metaFromDate); err != nil {
		return nil, err
	}
	if c.ToDate, err = s.meta(ctx, s.db, metaToDate); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, id, name, performances, societies, venues, venue
		FROM shows ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query shows: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			show                models.Show
			id                  sql.NullInt64
			perfs, socs, venues string
			venue               sql.NullString
		)
		if err := rows.Scan(&show.Slug, &id, &show.Name, &perfs, &socs, &venues, &venue); err != nil {
			return nil, fmt.Errorf("scan show: %w", err)
		}
		show.ID = id.Int64
		if err := decodeShow(&show, perfs, socs, venues, venue); err != nil {
			return nil, fmt.Errorf("decode show %s: %w", show.Slug, err)
		}
		c.Shows = append(c.Shows, show)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shows: %w", err)
	}

	roleRows, err := s.db.QueryContext(ctx, `
		SELECT show_slug, role, role_type, person_id, person_name, person_slug
		FROM show_roles ORDER BY show_slug, position
	`)
	if err != nil {
		return nil, fmt.Errorf("query show_roles: %w", err)
	}
	defer roleRows.Close()
	for roleRows.Next() {
		var (
			slug string
			e    models.RoleEntry
			pid  sql.NullInt64
			p    models.PersonRef
		)
		if err := roleRows.Scan(&slug, &e.Role, &e.RoleType, &pid, &p.Name, &p.Slug); err != nil {
			return nil, fmt.Errorf("scan show_role: %w", err)
		}
		p.ID = pid.Int64
		if pid.Valid || p.Name != "" || p.Slug != "" {
			e.Person = &p
		}
		c.ShowRoles[slug] = append(c.ShowRoles[slug], e)
	}
	if err := roleRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate show_roles: %w", err)
	}

	venueRows, err := s.db.QueryContext(ctx, `SELECT slug, id, name FROM venues ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query venues: %w", err)
	}
	defer venueRows.Close()
	for venueRows.Next() {
		var (
			v  models.Venue
			id sql.NullInt64
		)
		if err := venueRows.Scan(&v.Slug, &id, &v.Name); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		v.ID = id.Int64
		c.Venues = append(c.Venues, v)
	}
	if err := venueRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate venues: %w", err)
	}
	return c, nil
}

// RecordRun stores the outcome of a harvest.
func (s *SQLiteStore) RecordRun(ctx context.Context, run models.HarvestRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO harvest_runs (id, started_at, finished_at, from_date, to_date, shows_added, roles_loaded, hydrated, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  finished_at = excluded.finished_at,
		  shows_added = excluded.shows_added,
		  roles_loaded = excluded.roles_loaded,
		  hydrated = excluded.hydrated,
		  status = excluded.status,
		  error = excluded.error
	`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.FromDate, run.ToDate,
		run.ShowsAdded, run.RolesLoaded, run.Hydrated,
		run.Status, run.Error,
	)
	if err != nil {
		return fmt.Errorf("record harvest run %s: %w", run.ID, err)
	}
	return nil
}

// Runs lists the most recent harvests first.
func (s *SQLiteStore) Runs(ctx context.Context, limit int) ([]models.HarvestRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, from_date, to_date, shows_added, roles_loaded, hydrated, status, error
		FROM harvest_runs ORDER BY started_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query harvest_runs: %w", err)
	}
	defer rows.Close()

	var out []models.HarvestRun
	for rows.Next() {
		var (
			r               models.HarvestRun
			started, finish string
		)
		if err := rows.Scan(&r.ID, &started, &finish, &r.FromDate, &r.ToDate, &r.ShowsAdded, &r.RolesLoaded, &r.Hydrated, &r.Status, &r.Error); err != nil {
			return nil, fmt.Errorf("scan harvest_run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finish)
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}

func encodeShow(show models.Show) (perfs, socs, venues string, venue sql.NullString, err error) {
	enc := func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	}
	if perfs, err = enc(nonNil(show.Performances)); err != nil {
		return
	}
	if socs, err = enc(nonNil(show.Societies)); err != nil {
		return
	}
	if venues, err = enc(nonNil(show.Venues)); err != nil {
		return
	}
	if show.Venue != nil {
		var v string
		if v, err = enc(show.Venue); err != nil {
			return
		}
		venue = sql.NullString{String: v, Valid: true}
	}
	return
}

func decodeShow(show *models.Show, perfs, socs, venues string, venue sql.NullString) error {
	if err := json.Unmarshal([]byte(perfs), &show.Performances); err != nil {
		return fmt.Errorf("performances: %w", err)
	}
	if err := json.Unmarshal([]byte(socs), &show.Societies); err != nil {
		return fmt.Errorf("societies: %w", err)
	}
	if err := json.Unmarshal([]byte(venues), &show.Venues); err != nil {
		return fmt.Errorf("venues: %w", err)
	}
	if venue.Valid {
		show.Venue = &models.Venue{}
		if err := json.Unmarshal([]byte(venue.String), show.Venue); err != nil {
			return fmt.Errorf("venue: %w", err)
		}
	}
	if len(show.Performances) == 0 {
		show.Performances = nil
	}
	if len(show.Societies) == 0 {
		show.Societies = nil
	}
	if len(show.Venues) == 0 {
		show.Venues = nil
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
