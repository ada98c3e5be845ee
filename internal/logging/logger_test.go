package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestConsoleLoggerPrefixesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	NewComponentLogger(logger, "harvest").Info("roles fetched", Int("shows", 12), String("window", "2024 to 2025"))

	line := buf.String()
	if !strings.Contains(line, "INFO harvest: roles fetched") {
		t.Fatalf("missing component prefix: %q", line)
	}
	if !strings.Contains(line, "shows=12") || !strings.Contains(line, `window="2024 to 2025"`) {
		t.Fatalf("missing attrs: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not be repeated as an attr: %q", line)
	}
}

func TestConsoleLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", Error(errors.New("boom")))
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("info record should be filtered: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "error=boom") {
		t.Fatalf("expected error attr, got %q", buf.String())
	}
}

func TestJSONLoggerKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hello", String(FieldRequestID, "abc"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v (%q)", err, buf.String())
	}
	if rec["level"] != "debug" || rec["msg"] != "hello" || rec[FieldRequestID] != "abc" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if _, ok := rec["ts"]; !ok {
		t.Fatalf("missing ts: %v", rec)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
