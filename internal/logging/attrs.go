package logging

import (
	"log/slog"
	"time"
)

// Shared attribute keys.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldRunID     = "run_id"
)

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Int64(key string, value int64) slog.Attr { return slog.Int64(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}
