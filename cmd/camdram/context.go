package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/cheeseechops/CamdramAPI/internal/config"
	"github.com/cheeseechops/CamdramAPI/internal/corpusaccess"
	"github.com/cheeseechops/CamdramAPI/internal/logging"
	"github.com/cheeseechops/CamdramAPI/internal/rankcache"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// logger writes to the command's stderr so stdout stays machine readable.
func (c *commandContext) logger(cmd *cobra.Command) *slog.Logger {
	opts := logging.Options{Level: "info", Format: "console", Writer: cmd.ErrOrStderr()}
	if c.config != nil {
		opts.Level = c.config.Logging.Level
		opts.Format = c.config.Logging.Format
	}
	logger, err := logging.New(opts)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// withAccess opens the configured corpus for the duration of fn.
func (c *commandContext) withAccess(fn func(*corpusaccess.Access) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	access, err := corpusaccess.Open(cfg)
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer access.Close()
	return fn(access)
}

// withCache is withAccess plus a ranking cache over it.
func (c *commandContext) withCache(cmd *cobra.Command, fn func(*corpusaccess.Access, *rankcache.Service) error) error {
	return c.withAccess(func(a *corpusaccess.Access) error {
		return fn(a, a.NewCache(c.logger(cmd), nil))
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
