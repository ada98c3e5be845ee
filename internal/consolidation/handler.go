package consolidation

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cheeseechops/CamdramAPI/internal/logging"
	"github.com/cheeseechops/CamdramAPI/internal/sync"
)

// RoleCounter is the slice of the ranking cache the edit routes need.
type RoleCounter interface {
	RawRoleCounts(ctx context.Context) map[string]int
	InvalidateDerivedCaches()
}

type Handler struct {
	Store  *Store
	Cache  RoleCounter
	Hub    *sync.Hub
	Logger *slog.Logger
}

func NewHandler(store *Store, cache RoleCounter, hub *sync.Hub, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{Store: store, Cache: cache, Hub: hub, Logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)           // GET /api/role-consolidations
	rg.POST("/update", h.update) // POST /api/role-consolidations/update
	rg.POST("/delete", h.remove) // POST /api/role-consolidations/delete
}

func (h *Handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.payload(c.Request.Context()))
}

func (h *Handler) update(c *gin.Context) {
	body := readBody(c)
	target, ok := body["targetRole"].(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "targetRole must be a string"})
		return
	}
	list, ok := body["sourceRoles"].([]any)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "sourceRoles must be a list"})
		return
	}
	sources := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "sourceRoles must contain only strings"})
			return
		}
		sources = append(sources, s)
	}

	changed, err := h.Store.Update(c.Request.Context(), func(m Mapping) (int, error) {
		return m.Merge(target, sources)
	})
	if h.failed(c, err) {
		return
	}
	h.afterEdit(sync.EventConsolidationUpdate, target, changed)
	h.respond(c, changed)
}

func (h *Handler) remove(c *gin.Context) {
	body := readBody(c)

	var (
		changed int
		err     error
		subject string
	)
	if source, ok := body["sourceRole"].(string); ok {
		subject = source
		changed, err = h.Store.Update(c.Request.Context(), func(m Mapping) (int, error) {
			return m.RemoveSource(source)
		})
	} else if target, ok := body["targetRole"].(string); ok {
		subject = target
		changed, err = h.Store.Update(c.Request.Context(), func(m Mapping) (int, error) {
			return m.RemoveTarget(target)
		})
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "sourceRole or targetRole required"})
		return
	}
	if h.failed(c, err) {
		return
	}
	h.afterEdit(sync.EventConsolidationDelete, subject, changed)
	h.respond(c, changed)
}

func (h *Handler) failed(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidEdit) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return true
	}
	h.Logger.Error("consolidation edit failed", logging.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "edit failed"})
	return true
}

func (h *Handler) afterEdit(eventType, subject string, changed int) {
	if changed == 0 {
		return
	}
	h.Cache.InvalidateDerivedCaches()
	h.Logger.Info("role consolidations updated",
		logging.String("event", eventType),
		logging.String("role", subject),
		logging.Int("changed", changed),
	)
	if h.Hub != nil {
		ev := sync.Event{
			Type:    eventType,
			Role:    subject,
			Changed: changed,
			At:      time.Now().UTC(),
		}
		go h.Hub.Publish(ev)
	}
}

func (h *Handler) respond(c *gin.Context, changed int) {
	p := h.payload(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"ok":              true,
		"changed":         changed,
		"available_roles": p.AvailableRoles,
		"consolidations":  p.Consolidations,
		"total_mappings":  p.TotalMappings,
	})
}

func (h *Handler) payload(ctx context.Context) Payload {
	m, err := h.Store.Load()
	if err != nil {
		h.Logger.Warn("load consolidations failed", logging.Error(err))
	}
	return BuildPayload(h.Cache.RawRoleCounts(ctx), m)
}

// readBody decodes a JSON object body; anything else reads as empty.
func readBody(c *gin.Context) map[string]any {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil || body == nil {
		return map[string]any{}
	}
	return body
}
