package config

import "github.com/cheeseechops/CamdramAPI/internal/leaderboard"

const (
	defaultCorpusFile         = "~/.camdram/rank_all_people_cache.json"
	defaultDatabase           = "~/.camdram/camdram.db"
	defaultConsolidationsFile = "~/.camdram/role_consolidations.json"
	defaultSummaryPDF         = "~/.camdram/camdram_summary.pdf"
	defaultCorpusSource       = SourceJSON
	defaultCamdramBaseURL     = "https://www.camdram.net"
	defaultCamdramTokenURL    = "https://www.camdram.net/oauth/v2/token"
	defaultTimeoutSeconds     = 30
	defaultMaxWorkers         = 20
	defaultPerPage            = 50
	defaultHarvestFromDate    = "2000-01-01"
	defaultHydrateMinYear     = 1994
	defaultLookbackDays       = 60
	defaultLookaheadDays      = 730
	defaultAPIBind            = "127.0.0.1:8080"
	defaultSyncBind           = "127.0.0.1:7070"
	defaultGRPCBind           = "127.0.0.1:9090"
	defaultActiveWindowMonths = 6
	defaultRecentActivityYrs  = 1
	defaultRecentStarterYears = 4
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Corpus sources.
const (
	SourceJSON   = "json"
	SourceSQLite = "sqlite"
)

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CorpusFile:         defaultCorpusFile,
			Database:           defaultDatabase,
			ConsolidationsFile: defaultConsolidationsFile,
			SummaryPDF:         defaultSummaryPDF,
		},
		Corpus: Corpus{Source: defaultCorpusSource},
		Camdram: Camdram{
			BaseURL:        defaultCamdramBaseURL,
			TokenURL:       defaultCamdramTokenURL,
			TimeoutSeconds: defaultTimeoutSeconds,
			MaxWorkers:     defaultMaxWorkers,
			PerPage:        defaultPerPage,
		},
		Harvest: Harvest{
			FromDate:       defaultHarvestFromDate,
			HydrateMinYear: defaultHydrateMinYear,
			LookbackDays:   defaultLookbackDays,
			LookaheadDays:  defaultLookaheadDays,
		},
		Server: Server{
			APIBind:        defaultAPIBind,
			SyncBind:       defaultSyncBind,
			GRPCBind:       defaultGRPCBind,
			TrustedProxies: []string{"127.0.0.1"},
		},
		Leaderboards: Leaderboards{
			RoleMinPeople:       leaderboard.DefaultRoleMinPeople,
			SocietyLimit:        leaderboard.DefaultBoardLimit,
			VenueLimit:          leaderboard.DefaultBoardLimit,
			VenueDynamicSlots:   leaderboard.DefaultVenueDynamicSlots,
			ActiveWindowMonths:  defaultActiveWindowMonths,
			RecentActivityYears: defaultRecentActivityYrs,
			RecentStarterYears:  defaultRecentStarterYears,
			DefaultPageSize:     leaderboard.DefaultPageSize,
			MaxPageSize:         leaderboard.MaxPageSize,
			GameMinPeople:       leaderboard.DefaultGameMinPeople,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
