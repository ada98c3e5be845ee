package consolidation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/cheeseechops/CamdramAPI/internal/fileutil"
)

const lockRetryDelay = 50 * time.Millisecond

// Store persists a Mapping as a sorted, indented JSON object.
type Store struct {
	path string
	lock *flock.Flock
}

// NewStore returns a store backed by path. Edits made through Update are
// serialized with an advisory lock on path + ".lock".
func NewStore(path string) *Store {
	return &Store{path: path, lock: flock.New(path + ".lock")}
}

func (s *Store) Path() string { return s.path }

// Load reads the mapping. A missing file is an empty mapping. Entries whose
// key or value is not a string are skipped.
func (s *Store) Load() (Mapping, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Mapping{}, nil
		}
		return Mapping{}, fmt.Errorf("read consolidations: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Mapping{}, nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Mapping{}, fmt.Errorf("parse consolidations %s: %w", s.path, err)
	}
	m := make(Mapping, len(raw))
	for source, v := range raw {
		if target, ok := v.(string); ok {
			m[source] = target
		}
	}
	return Clean(m), nil
}

// Save cleans m and replaces the file atomically.
func (s *Store) Save(m Mapping) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Clean(m)); err != nil {
		return fmt.Errorf("encode consolidations: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write consolidations: %w", err)
	}
	return nil
}

// Stamp returns the file's modification time for cache keys.
func (s *Store) Stamp() (int64, error) {
	return fileutil.ModTime(s.path)
}

// Update runs fn against the current mapping while holding the edit lock and
// saves the result when fn reports changes. A mapping file that cannot be
// parsed aborts the edit instead of being overwritten.
func (s *Store) Update(ctx context.Context, fn func(Mapping) (int, error)) (int, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return 0, fmt.Errorf("ensure consolidations dir: %w", err)
	}
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return 0, fmt.Errorf("lock consolidations: %w", err)
	}
	if !locked {
		return 0, fmt.Errorf("lock consolidations: not acquired")
	}
	defer s.lock.Unlock() //nolint:errcheck

	m, err := s.Load()
	if err != nil {
		return 0, err
	}
	changed, err := fn(m)
	if err != nil {
		return 0, err
	}
	if changed == 0 {
		return 0, nil
	}
	if err := s.Save(m); err != nil {
		return 0, err
	}
	return changed, nil
}
