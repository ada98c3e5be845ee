// Package corpusaccess opens the configured corpus source, consolidation
// store, and ranking cache so every binary wires them the same way.
package corpusaccess

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"

	"github.com/cheeseechops/CamdramAPI/internal/config"
	"github.com/cheeseechops/CamdramAPI/internal/consolidation"
	"github.com/cheeseechops/CamdramAPI/internal/corpus"
	"github.com/cheeseechops/CamdramAPI/internal/logging"
	"github.com/cheeseechops/CamdramAPI/internal/rankcache"
	"github.com/cheeseechops/CamdramAPI/internal/ranking"
	"github.com/cheeseechops/CamdramAPI/pkg/database"
)

// Access bundles the stores behind one configuration.
type Access struct {
	Config         *config.Config
	Source         corpus.Source
	Saver          corpus.Saver
	Consolidations *consolidation.Store

	// DB and SQLite are set only for the sqlite source.
	DB     *sql.DB
	SQLite *corpus.SQLiteStore
}

// Open selects the corpus source named by [corpus] source.
func Open(cfg *config.Config) (*Access, error) {
	a := &Access{
		Config:         cfg,
		Consolidations: consolidation.NewStore(cfg.Paths.ConsolidationsFile),
	}
	switch cfg.Corpus.Source {
	case config.SourceSQLite:
		db, store, err := OpenSQLite(cfg.Paths.Database)
		if err != nil {
			return nil, err
		}
		a.DB, a.SQLite = db, store
		a.Source, a.Saver = store, store
	default:
		f := corpus.NewJSONFile(cfg.Paths.CorpusFile)
		a.Source, a.Saver = f, f
	}
	return a, nil
}

// OpenSQLite opens and migrates the database at path.
func OpenSQLite(path string) (*sql.DB, *corpus.SQLiteStore, error) {
	db, err := database.OpenMigrated(path)
	if err != nil {
		return nil, nil, err
	}
	return db, corpus.NewSQLiteStore(db, path), nil
}

func (a *Access) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// Ping checks the database when there is one.
func (a *Access) Ping(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	return a.DB.PingContext(ctx)
}

// NewCache builds the ranking cache with the configured leaderboard targets.
func (a *Access) NewCache(logger *slog.Logger, onRebuild func(corpus.Stamp, ranking.SkipReport)) *rankcache.Service {
	lb := a.Config.Leaderboards
	return rankcache.New(a.Source, a.Consolidations, rankcache.Options{
		Logger:       logger,
		Societies:    lb.Societies,
		Venues:       lb.PinnedVenues,
		DynamicSlots: lb.VenueDynamicSlots,
		SocietyLimit: lb.SocietyLimit,
		VenueLimit:   lb.VenueLimit,
		OnRebuild:    onRebuild,
	})
}

// NewLogger creates a logger from the [logging] section. When a log
// directory is configured, records also go to <log_dir>/<name>.log.
func NewLogger(cfg *config.Config, name string) (*slog.Logger, error) {
	if cfg == nil {
		return logging.New(logging.Options{Level: "info", Format: "console"})
	}
	outputs := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, name+".log"))
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}
