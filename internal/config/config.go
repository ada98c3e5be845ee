package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/cheeseechops/CamdramAPI/internal/leaderboard"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths locates every file the tools read or write.
type Paths struct {
	CorpusFile         string `toml:"corpus_file"`
	Database           string `toml:"database"`
	ConsolidationsFile string `toml:"consolidations_file"`
	SummaryPDF         string `toml:"summary_pdf"`
	LogDir             string `toml:"log_dir"`
}

// Corpus selects where rankings read the harvested data from.
type Corpus struct {
	Source string `toml:"source"` // "json" or "sqlite"
}

// Camdram holds the API client settings.
type Camdram struct {
	BaseURL        string `toml:"base_url"`
	TokenURL       string `toml:"token_url"`
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxWorkers     int    `toml:"max_workers"`
	PerPage        int    `toml:"per_page"`
}

// Harvest controls which shows a harvest discovers and hydrates.
type Harvest struct {
	FromDate       string `toml:"from_date"`
	HydrateMinYear int    `toml:"hydrate_min_year"`
	LookbackDays   int    `toml:"lookback_days"`
	LookaheadDays  int    `toml:"lookahead_days"`
}

// Server holds listen addresses.
type Server struct {
	APIBind        string   `toml:"api_bind"`
	SyncBind       string   `toml:"sync_bind"`
	GRPCBind       string   `toml:"grpc_bind"`
	TrustedProxies []string `toml:"trusted_proxies"`
}

// Leaderboards tunes the derived views.
type Leaderboards struct {
	RoleMinPeople       int                         `toml:"role_min_people"`
	SocietyLimit        int                         `toml:"society_limit"`
	VenueLimit          int                         `toml:"venue_limit"`
	VenueDynamicSlots   int                         `toml:"venue_dynamic_slots"`
	ActiveWindowMonths  int                         `toml:"active_window_months"`
	RecentActivityYears int                         `toml:"recent_activity_years"`
	RecentStarterYears  int                         `toml:"recent_starter_years"`
	DefaultPageSize     int                         `toml:"default_page_size"`
	MaxPageSize         int                         `toml:"max_page_size"`
	GameMinPeople       int                         `toml:"game_min_people"`
	Societies           []leaderboard.SocietyTarget `toml:"societies"`
	PinnedVenues        []leaderboard.VenueTarget   `toml:"pinned_venues"`
}

// Logging selects the log handler.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the whole configuration file.
type Config struct {
	Paths        Paths        `toml:"paths"`
	Corpus       Corpus       `toml:"corpus"`
	Camdram      Camdram      `toml:"camdram"`
	Harvest      Harvest      `toml:"harvest"`
	Server       Server       `toml:"server"`
	Leaderboards Leaderboards `toml:"leaderboards"`
	Logging      Logging      `toml:"logging"`
}

const defaultConfigPath = "~/.config/camdram/config.toml"

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. It returns the
// resolved path and whether a file was found there; without one the defaults
// apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("camdram.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath applies the config's "~" and absolute-path rules.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the sample configuration to path. An existing file is
// left alone.
func CreateSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
