package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes one human-readable line per record:
//
//	2026-01-02T15:04:05Z INFO harvest: roles fetched shows=120
type consoleHandler struct {
	mu     *sync.Mutex
	writer io.Writer
	level  *slog.LevelVar
	attrs  []slog.Attr
	groups []string
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, writer: w, level: lvl}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var kvs []kv
	for _, a := range h.attrs {
		flatten(&kvs, h.groups, a)
	}
	record.Attrs(func(a slog.Attr) bool {
		flatten(&kvs, h.groups, a)
		return true
	})

	component := ""
	var buf bytes.Buffer
	buf.WriteString(ts.UTC().Format(time.RFC3339))
	buf.WriteByte(' ')
	buf.WriteString(record.Level.String())
	buf.WriteByte(' ')
	for _, f := range kvs {
		if f.key == FieldComponent && component == "" {
			component = f.value.String()
		}
	}
	if component != "" {
		buf.WriteString(component)
		buf.WriteString(": ")
	}
	if msg := strings.TrimSpace(record.Message); msg != "" {
		buf.WriteString(msg)
	} else {
		buf.WriteString("(no message)")
	}
	for _, f := range kvs {
		if f.key == FieldComponent {
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(f.key)
		buf.WriteByte('=')
		buf.WriteString(formatValue(f.value))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

type kv struct {
	key   string
	value slog.Value
}

func flatten(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(append([]string{}, prefix...), attr.Key)
		}
		for _, a := range attr.Value.Group() {
			flatten(dst, next, a)
		}
		return
	}
	k := attr.Key
	if len(prefix) > 0 {
		k = strings.Join(append(append([]string{}, prefix...), k), ".")
	}
	*dst = append(*dst, kv{key: k, value: attr.Value})
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return quoteIfNeeded(v.String())
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return quoteIfNeeded(err.Error())
		}
		return quoteIfNeeded(fmt.Sprint(v.Any()))
	}
	return v.String()
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
