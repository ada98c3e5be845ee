package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cheeseechops/CamdramAPI/internal/logging"
)

const (
	requestIDHeader = "X-Request-ID"
	ctxRequestID    = "request_id"
)

// RequestID tags every request with an id, reusing the caller's header when
// one was sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request once it completes.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	log := logging.NewComponentLogger(logger, "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			logging.String(logging.FieldRequestID, c.GetString(ctxRequestID)),
			logging.String("method", c.Request.Method),
			logging.String("path", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(start)),
		}
		switch {
		case c.Writer.Status() >= 500:
			log.Error("request failed", attrs...)
		case len(c.Errors) > 0:
			log.Warn("request", append(attrs, logging.String("errors", c.Errors.String()))...)
		default:
			log.Debug("request", attrs...)
		}
	}
}
