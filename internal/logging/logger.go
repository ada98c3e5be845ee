// Package logging builds the slog loggers used across the services and CLI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string // "console" or "json"
	// OutputPaths lists "stdout", "stderr" or file paths. Empty means stdout.
	OutputPaths []string
	// Writer, when set, replaces OutputPaths. Used by tests.
	Writer io.Writer
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))

	w := opts.Writer
	if w == nil {
		var err error
		w, err = openWriters(opts.OutputPaths)
		if err != nil {
			return nil, err
		}
	}

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		return slog.New(newConsoleHandler(w, levelVar)), nil
	case "json":
		return slog.New(newJSONHandler(w, levelVar)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewComponentLogger tags every record with a component name, which the
// console handler prints as a prefix.
func NewComponentLogger(base *slog.Logger, component string) *slog.Logger {
	if base == nil {
		base = NewNop()
	}
	return base.With(slog.String(FieldComponent, component))
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openWriters(paths []string) (io.Writer, error) {
	if len(paths) == 0 {
		return os.Stdout, nil
	}
	seen := map[string]struct{}{}
	var writers []io.Writer
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		switch p {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return nil, fmt.Errorf("ensure log dir: %w", err)
			}
			f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", p, err)
			}
			writers = append(writers, f)
		}
	}
	switch len(writers) {
	case 0:
		return os.Stdout, nil
	case 1:
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			}
			return attr
		},
	})
}
