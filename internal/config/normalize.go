package config

import (
	"fmt"
	"strings"

	"github.com/cheeseechops/CamdramAPI/internal/leaderboard"
	"github.com/cheeseechops/CamdramAPI/pkg/utils"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCamdram()
	c.normalizeServer()
	c.normalizeLeaderboards()
	c.normalizeLogging()
	c.Corpus.Source = strings.ToLower(strings.TrimSpace(c.Corpus.Source))
	if c.Corpus.Source == "" {
		c.Corpus.Source = defaultCorpusSource
	}
	c.Harvest.FromDate = strings.TrimSpace(c.Harvest.FromDate)
	return nil
}

func (c *Config) normalizePaths() error {
	utils.Fill(&c.Paths.Database, utils.EnvDBPath)

	fields := []struct {
		name  string
		value *string
		def   string
	}{
		{"paths.corpus_file", &c.Paths.CorpusFile, defaultCorpusFile},
		{"paths.database", &c.Paths.Database, defaultDatabase},
		{"paths.consolidations_file", &c.Paths.ConsolidationsFile, defaultConsolidationsFile},
		{"paths.summary_pdf", &c.Paths.SummaryPDF, defaultSummaryPDF},
		{"paths.log_dir", &c.Paths.LogDir, ""},
	}
	for _, f := range fields {
		if strings.TrimSpace(*f.value) == "" {
			*f.value = f.def
		}
		expanded, err := expandPath(strings.TrimSpace(*f.value))
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = expanded
	}
	return nil
}

func (c *Config) normalizeCamdram() {
	utils.Fill(&c.Camdram.ClientID, utils.EnvClientID)
	utils.Fill(&c.Camdram.ClientSecret, utils.EnvClientSecret)
	c.Camdram.ClientID = strings.TrimSpace(c.Camdram.ClientID)
	c.Camdram.ClientSecret = strings.TrimSpace(c.Camdram.ClientSecret)

	c.Camdram.BaseURL = strings.TrimRight(strings.TrimSpace(c.Camdram.BaseURL), "/")
	if c.Camdram.BaseURL == "" {
		c.Camdram.BaseURL = defaultCamdramBaseURL
	}
	c.Camdram.TokenURL = strings.TrimSpace(c.Camdram.TokenURL)
	if c.Camdram.TokenURL == "" {
		c.Camdram.TokenURL = c.Camdram.BaseURL + "/oauth/v2/token"
	}
	if c.Camdram.TimeoutSeconds == 0 {
		c.Camdram.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Camdram.MaxWorkers == 0 {
		c.Camdram.MaxWorkers = defaultMaxWorkers
	}
	if c.Camdram.PerPage == 0 {
		c.Camdram.PerPage = defaultPerPage
	}
}

func (c *Config) normalizeServer() {
	utils.Fill(&c.Server.APIBind, utils.EnvAPIBind)
	c.Server.APIBind = strings.TrimSpace(c.Server.APIBind)
	if c.Server.APIBind == "" {
		c.Server.APIBind = defaultAPIBind
	}
	c.Server.SyncBind = strings.TrimSpace(c.Server.SyncBind)
	if c.Server.SyncBind == "" {
		c.Server.SyncBind = defaultSyncBind
	}
	c.Server.GRPCBind = strings.TrimSpace(c.Server.GRPCBind)
	if c.Server.GRPCBind == "" {
		c.Server.GRPCBind = defaultGRPCBind
	}
}

func (c *Config) normalizeLeaderboards() {
	lb := &c.Leaderboards
	if len(lb.Societies) == 0 {
		lb.Societies = leaderboard.DefaultSocietyTargets()
	}
	if len(lb.PinnedVenues) == 0 {
		lb.PinnedVenues = leaderboard.DefaultPinnedVenues()
	}
	for i := range lb.Societies {
		s := &lb.Societies[i]
		s.Key = strings.TrimSpace(s.Key)
		s.Slug = strings.TrimSpace(s.Slug)
		if strings.TrimSpace(s.Label) == "" {
			s.Label = s.Key
		}
	}
	for i := range lb.PinnedVenues {
		v := &lb.PinnedVenues[i]
		v.Key = strings.ToLower(strings.TrimSpace(v.Key))
		if strings.TrimSpace(v.Label) == "" {
			v.Label = v.Key
		}
	}
	if lb.DefaultPageSize > lb.MaxPageSize && lb.MaxPageSize > 0 {
		lb.DefaultPageSize = lb.MaxPageSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
