package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cheeseechops/CamdramAPI/internal/api"
	"github.com/cheeseechops/CamdramAPI/internal/config"
	"github.com/cheeseechops/CamdramAPI/internal/corpus"
	"github.com/cheeseechops/CamdramAPI/internal/corpusaccess"
	"github.com/cheeseechops/CamdramAPI/internal/logging"
	"github.com/cheeseechops/CamdramAPI/internal/ranking"
	synchub "github.com/cheeseechops/CamdramAPI/internal/sync"
)

const watchInterval = 5 * time.Second

func main() {
	cfg, cfgPath, found, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := corpusaccess.NewLogger(cfg, "api-server")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	if !found {
		logger.Info("no config file, using defaults", logging.String("path", cfgPath))
	}

	access, err := corpusaccess.Open(cfg)
	if err != nil {
		log.Fatalf("open corpus: %v", err)
	}
	defer access.Close()

	hub := synchub.NewHub(logger)
	tcpSrv := synchub.NewServer(cfg.Server.SyncBind, hub)

	cache := access.NewCache(logger, rebuildNotifier(access, hub, logger))

	router := api.NewRouter(api.Deps{
		Config:         cfg,
		Cache:          cache,
		Consolidations: access.Consolidations,
		Hub:            hub,
		Logger:         logger,
		Ping:           access.Ping,
	})

	httpSrv := &http.Server{
		Addr:    cfg.Server.APIBind,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("TCP sync server listening", logging.String("addr", cfg.Server.SyncBind))
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP API server listening",
			logging.String("addr", cfg.Server.APIBind),
			logging.String("corpus", access.Source.Name()))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		cache.Watch(ctx, watchInterval)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server error", logging.Error(err))
	}

	logger.Info("shutting down servers")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", logging.Error(err))
	}
	if err := tcpSrv.Close(); err != nil {
		logger.Error("tcp shutdown error", logging.Error(err))
	}

	wg.Wait()
	logger.Info("servers stopped")
}

// rebuildNotifier tells subscribers the rankings changed, and with the
// sqlite source also announces a harvest run they have not seen yet.
func rebuildNotifier(access *corpusaccess.Access, hub *synchub.Hub, logger *slog.Logger) func(corpus.Stamp, ranking.SkipReport) {
	lastRun := latestRunID(access, logger)
	return func(stamp corpus.Stamp, skipped ranking.SkipReport) {
		now := time.Now().UTC()
		logger.Info("corpus reloaded",
			logging.String("stamp", stamp.String()),
			logging.Int("dropped", skipped.Dropped()))
		hub.Publish(synchub.Event{Type: synchub.EventCorpusReload, At: now})

		if access.SQLite == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		runs, err := access.SQLite.Runs(ctx, 1)
		if err != nil || len(runs) == 0 || runs[0].ID == lastRun {
			return
		}
		lastRun = runs[0].ID
		hub.Publish(synchub.Event{
			Type:  synchub.EventHarvestFinished,
			RunID: runs[0].ID,
			Shows: runs[0].ShowsAdded,
			At:    now,
		})
	}
}

func latestRunID(access *corpusaccess.Access, logger *slog.Logger) string {
	if access.SQLite == nil {
		return ""
	}
	runs, err := access.SQLite.Runs(context.Background(), 1)
	if err != nil {
		logger.Warn("read harvest runs", logging.Error(err))
		return ""
	}
	if len(runs) == 0 {
		return ""
	}
	return runs[0].ID
}
