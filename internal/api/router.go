package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cheeseechops/CamdramAPI/internal/config"
	"github.com/cheeseechops/CamdramAPI/internal/consolidation"
	"github.com/cheeseechops/CamdramAPI/internal/logging"
	"github.com/cheeseechops/CamdramAPI/internal/rankcache"
	"github.com/cheeseechops/CamdramAPI/internal/sync"
)

// Deps is everything the router serves from.
type Deps struct {
	Config         *config.Config
	Cache          *rankcache.Service
	Consolidations *consolidation.Store
	Hub            *sync.Hub
	Logger         *slog.Logger

	// Ping, when set, is part of the readiness check (the sqlite handle
	// when the corpus lives there).
	Ping func(ctx context.Context) error
}

// NewRouter builds the HTTP surface: the ranking API, the consolidation
// editor, the summary download and the health probes.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(d.Logger))
	_ = router.SetTrustedProxies(d.Config.Server.TrustedProxies)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "corpus": d.Config.Corpus.Source})
	})
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		body := gin.H{}
		if d.Hub != nil {
			stats := d.Hub.Stats()
			body["tcp_clients"] = stats.TCPClients
			body["ws_clients"] = stats.WSClients
			body["events_published"] = stats.Published
		}
		if d.Ping != nil {
			if err := d.Ping(ctx); err != nil {
				body["status"] = "not_ready"
				body["db_error"] = err.Error()
				c.JSON(http.StatusServiceUnavailable, body)
				return
			}
		}
		key, err := d.Cache.Key(ctx)
		if err != nil {
			body["status"] = "not_ready"
			body["corpus_error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["status"] = "ready"
		body["corpus"] = key.Corpus.String()
		c.JSON(http.StatusOK, body)
	})
	if d.Hub != nil {
		router.GET("/ws", sync.WSHandler(d.Hub))
	}

	h := NewHandler(d.Cache, d.Config.Leaderboards, d.Config.Paths.SummaryPDF, d.Logger)
	h.RegisterRoutes(router.Group("/api"))
	router.GET("/summary-pdf", h.summaryPDF)

	if d.Consolidations != nil {
		ch := consolidation.NewHandler(d.Consolidations, d.Cache, d.Hub, d.Logger)
		ch.RegisterRoutes(router.Group("/api/role-consolidations"))
	}

	return router
}
