// Package api serves the ranking views over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cheeseechops/CamdramAPI/internal/config"
	"github.com/cheeseechops/CamdramAPI/internal/leaderboard"
	"github.com/cheeseechops/CamdramAPI/internal/logging"
	"github.com/cheeseechops/CamdramAPI/internal/rankcache"
	"github.com/cheeseechops/CamdramAPI/internal/ranking"
	"github.com/cheeseechops/CamdramAPI/internal/report"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

type Handler struct {
	Cache      *rankcache.Service
	Limits     config.Leaderboards
	SummaryPDF string
	Logger     *slog.Logger
}

func NewHandler(cache *rankcache.Service, limits config.Leaderboards, summaryPDF string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{Cache: cache, Limits: limits, SummaryPDF: summaryPDF, Logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/bootstrap", h.bootstrap)                        // GET /api/bootstrap
	rg.GET("/rankings", h.rankings)                          // GET /api/rankings?page=&per_page=&search=&active_only=&sort_col=&sort_dir=
	rg.GET("/roles", h.roles)                                // GET /api/roles?include_count1=&active_only=
	rg.GET("/game/bootstrap", h.gameBootstrap)               // GET /api/game/bootstrap
	rg.GET("/people/:pid", h.person)                         // GET /api/people/:pid
	rg.GET("/leaderboards/societies", h.societyLeaderboards) // GET /api/leaderboards/societies?limit=
	rg.GET("/leaderboards/venues", h.venueLeaderboards)      // GET /api/leaderboards/venues?limit=
	rg.GET("/skipped", h.skipped)                            // GET /api/skipped
}

func (h *Handler) bootstrap(c *gin.Context) {
	ctx := c.Request.Context()
	people := h.Cache.PersonRankings(ctx)
	if len(people) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"totalPeople": 0,
			"roles":       []models.RoleListing{},
			"byRole":      gin.H{},
		})
		return
	}

	listing, byRole := h.listRoles(c, false, nil)
	c.JSON(http.StatusOK, gin.H{
		"totalPeople": len(people),
		"roles":       listing,
		"byRole":      byRole,
		"societyTop":  h.Cache.SocietyLeaderboards(ctx, h.Limits.SocietyLimit),
		"venueTop":    h.Cache.VenueLeaderboards(ctx, h.Limits.VenueLimit),
	})
}

func (h *Handler) rankings(c *gin.Context) {
	ctx := c.Request.Context()
	q := leaderboard.PeopleQuery{
		Search:  c.Query("search"),
		SortCol: c.DefaultQuery("sort_col", leaderboard.SortCount),
		SortDir: c.DefaultQuery("sort_dir", "desc"),
		Page:    parseInt(c.Query("page"), 1),
		PerPage: parseInt(c.Query("per_page"), h.Limits.DefaultPageSize),
		MaxPer:  h.Limits.MaxPageSize,
	}
	if parseBool(c.Query("active_only")) {
		q.Active = h.Cache.ActivePersonIDs(ctx, h.Limits.ActiveWindowMonths)
	}
	page := leaderboard.QueryPeople(h.Cache.PersonRankings(ctx), h.Cache.Popularity(ctx), q)
	c.JSON(http.StatusOK, page)
}

func (h *Handler) roles(c *gin.Context) {
	var active ranking.IDSet
	if parseBool(c.Query("active_only")) {
		active = h.Cache.ActivePersonIDs(c.Request.Context(), h.Limits.ActiveWindowMonths)
	}
	listing, byRole := h.listRoles(c, parseBool(c.Query("include_count1")), active)
	c.JSON(http.StatusOK, gin.H{"roles": listing, "by_role": byRole})
}

func (h *Handler) gameBootstrap(c *gin.Context) {
	ctx := c.Request.Context()
	if len(h.Cache.PersonRankings(ctx)) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"roles":              []models.RoleListing{},
			"byRole":             gin.H{},
			"recentActivePeople": 0,
		})
		return
	}

	allowed := h.Cache.RecentlyActivePersonIDs(ctx, h.Limits.RecentActivityYears)
	listing, byRole := h.listRoles(c, false, nil)
	gameRoles, gameByRole := leaderboard.GameRoles(listing, byRole, allowed, h.Limits.GameMinPeople)
	c.JSON(http.StatusOK, gin.H{
		"roles":              gameRoles,
		"byRole":             gameByRole,
		"recentActivePeople": len(allowed),
	})
}

func (h *Handler) person(c *gin.Context) {
	pid, err := strconv.ParseInt(c.Param("pid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person id"})
		return
	}
	stats, ok := h.Cache.PersonStats(c.Request.Context(), pid)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) societyLeaderboards(c *gin.Context) {
	limit := parseInt(c.Query("limit"), 0)
	c.JSON(http.StatusOK, gin.H{
		"leaderboards": h.Cache.SocietyLeaderboards(c.Request.Context(), limit),
	})
}

func (h *Handler) venueLeaderboards(c *gin.Context) {
	limit := parseInt(c.Query("limit"), 0)
	c.JSON(http.StatusOK, gin.H{
		"leaderboards": h.Cache.VenueLeaderboards(c.Request.Context(), limit),
	})
}

func (h *Handler) skipped(c *gin.Context) {
	sk := h.Cache.Skipped(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"skipped": sk, "dropped": sk.Dropped()})
}

// summaryPDF serves the generated plain-text summary as a download.
func (h *Handler) summaryPDF(c *gin.Context) {
	if h.SummaryPDF == "" {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Summary PDF not found"})
		return
	}
	if info, err := os.Stat(h.SummaryPDF); err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Summary PDF not found"})
		return
	}
	c.FileAttachment(h.SummaryPDF, report.FileName)
}

func (h *Handler) listRoles(c *gin.Context, includeCount1 bool, active ranking.IDSet) ([]models.RoleListing, map[string][]models.PersonCount) {
	index, byRole := h.Cache.RoleRankings(c.Request.Context())
	return leaderboard.ListRoles(index, byRole, leaderboard.RoleOptions{
		MinPeople:     h.Limits.RoleMinPeople,
		IncludeCount1: includeCount1,
		Active:        active,
	})
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
