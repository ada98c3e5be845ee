// Package corpus loads and stores the harvested Camdram snapshot.
package corpus

import (
	"context"
	"errors"
	"fmt"

	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

// ErrNoCorpus means the source has never been written.
var ErrNoCorpus = errors.New("no corpus available")

// Stamp identifies one version of a source's content. Equal stamps mean the
// content has not changed.
type Stamp struct {
	Source  string
	Version int64
}

func (s Stamp) String() string {
	return fmt.Sprintf("%s@%d", s.Source, s.Version)
}

// Source yields the corpus and a cheap change signal for it.
type Source interface {
	Name() string
	Stamp(ctx context.Context) (Stamp, error)
	Load(ctx context.Context) (*models.Corpus, error)
}

// Saver persists a whole corpus, replacing what was there.
type Saver interface {
	Save(ctx context.Context, c *models.Corpus) error
}

// Chain serves from the first source that has a corpus, so a fresh harvest
// file can shadow an older shared snapshot.
type Chain []Source

func (c Chain) Name() string {
	if s, err := c.pick(context.Background()); err == nil {
		return s.Name()
	}
	return "chain"
}

func (c Chain) pick(ctx context.Context) (Source, error) {
	var errs []error
	for _, s := range c {
		if _, err := s.Stamp(ctx); err != nil {
			errs = append(errs, err)
			continue
		}
		return s, nil
	}
	if len(errs) == 0 {
		return nil, ErrNoCorpus
	}
	return nil, errors.Join(errs...)
}

func (c Chain) Stamp(ctx context.Context) (Stamp, error) {
	s, err := c.pick(ctx)
	if err != nil {
		return Stamp{}, err
	}
	return s.Stamp(ctx)
}

func (c Chain) Load(ctx context.Context) (*models.Corpus, error) {
	s, err := c.pick(ctx)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx)
}
