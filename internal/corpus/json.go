package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cheeseechops/CamdramAPI/internal/fileutil"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

// JSONFile is the harvester's cache file. Its stamp is the file's mtime.
type JSONFile struct {
	Path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

func (f *JSONFile) Name() string { return f.Path }

func (f *JSONFile) Stamp(context.Context) (Stamp, error) {
	mtime, err := fileutil.ModTime(f.Path)
	if err != nil {
		return Stamp{}, fmt.Errorf("stat corpus: %w", err)
	}
	if mtime == 0 {
		return Stamp{}, fmt.Errorf("%s: %w", f.Path, ErrNoCorpus)
	}
	return Stamp{Source: f.Path, Version: mtime}, nil
}

func (f *JSONFile) Load(context.Context) (*models.Corpus, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", f.Path, ErrNoCorpus)
		}
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	var c models.Corpus
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", f.Path, err)
	}
	if c.ShowRoles == nil {
		c.ShowRoles = map[string][]models.RoleEntry{}
	}
	return &c, nil
}

// Save writes the corpus with write-then-rename so readers never see a
// partial file.
func (f *JSONFile) Save(_ context.Context, c *models.Corpus) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	if err := fileutil.WriteFileAtomic(f.Path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}
	return nil
}
