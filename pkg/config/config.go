package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wallascope/wallascope/pkg/domain"
)

// Config holds the application configuration. Built once at startup from the
// YAML file merged with explicit overrides, then passed into components as a
// value; nothing reads it through ambient global state.
type Config struct {
	Scraping struct {
		Headless         bool          `yaml:"headless"`
		Scrolls          int           `yaml:"scrolls"`
		LoadMoreAttempts int           `yaml:"load_more_attempts"`
		NavigateTimeout  time.Duration `yaml:"navigate_timeout"`
		JitterMin        time.Duration `yaml:"jitter_min"`
		JitterMax        time.Duration `yaml:"jitter_max"`
		UserAgent        string        `yaml:"user_agent"`
	} `yaml:"scraping"`

	Pipeline struct {
		OnIntentFailure string        `yaml:"on_intent_failure"` // "skip" or "fail_fast"
		IntentRetries   int           `yaml:"intent_retries"`
		IntentBackoff   time.Duration `yaml:"intent_backoff"`
		StageRetries    int           `yaml:"stage_retries"`
		StageBackoff    time.Duration `yaml:"stage_backoff"`
	} `yaml:"pipeline"`

	Database struct {
		DSN             string `yaml:"dsn"`
		MaxOpenConns    int    `yaml:"max_open_conns"`
		MaxIdleConns    int    `yaml:"max_idle_conns"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime"`
	} `yaml:"database"`

	LLM struct {
		Endpoint    string        `yaml:"endpoint"`
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model"`
		Temperature float64       `yaml:"temperature"`
		MaxTokens   int           `yaml:"max_tokens"`
		Timeout     time.Duration `yaml:"timeout"`
		BatchPause  time.Duration `yaml:"batch_pause"`
	} `yaml:"llm"`

	Warehouse struct {
		Enabled       bool   `yaml:"enabled"`
		DSN           string `yaml:"dsn"`
		IncludedTable string `yaml:"included_table"`
		ExcludedTable string `yaml:"excluded_table"`
	} `yaml:"warehouse"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID string `yaml:"chat_id"`
	} `yaml:"telegram"`

	Paths struct {
		DataDir string `yaml:"data_dir"`
		DiagDir string `yaml:"diag_dir"`
	} `yaml:"paths"`

	Filter struct {
		BlacklistFile string `yaml:"blacklist_file"`
		WhitelistFile string `yaml:"whitelist_file"`
	} `yaml:"filter"`

	SearchItems []SearchItem `yaml:"search_items"`
}

// SearchItem is the YAML shape of one configured search intent
type SearchItem struct {
	Name         string   `yaml:"name"`
	BlacklistDir string   `yaml:"blacklist_dir"`
	FirstWord    []string `yaml:"start_exclude_keywords"`
	Anywhere     []string `yaml:"exclude_keywords"`
	Filters      struct {
		PriceFloor   float64  `yaml:"price_floor"`
		Distance     int      `yaml:"distance"`
		Municipality string   `yaml:"municipality"`
		Conditions   []string `yaml:"conditions"`
		Condition    string   `yaml:"condition"` // legacy single value
	} `yaml:"filters"`
}

// Overrides carries values that take precedence over the config file,
// typically sourced from flags or process environment
type Overrides struct {
	Headless   *bool
	Scrolls    *int
	SearchTerm string // ad-hoc intent injected in addition to configured ones
}

// Load reads configuration from a YAML file and applies overrides
func Load(path string, over Overrides) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// set defaults for scraping
	if cfg.Scraping.Scrolls == 0 {
		cfg.Scraping.Scrolls = 25
	}
	if cfg.Scraping.LoadMoreAttempts == 0 {
		cfg.Scraping.LoadMoreAttempts = 10
	}
	if cfg.Scraping.NavigateTimeout == 0 {
		cfg.Scraping.NavigateTimeout = 90 * time.Second
	}
	if cfg.Scraping.JitterMin == 0 {
		cfg.Scraping.JitterMin = 500 * time.Millisecond
	}
	if cfg.Scraping.JitterMax == 0 {
		cfg.Scraping.JitterMax = 1500 * time.Millisecond
	}
	if cfg.Scraping.UserAgent == "" {
		cfg.Scraping.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}

	// set defaults for pipeline
	if cfg.Pipeline.OnIntentFailure == "" {
		cfg.Pipeline.OnIntentFailure = "skip"
	}
	if cfg.Pipeline.IntentRetries == 0 {
		cfg.Pipeline.IntentRetries = 1
	}
	if cfg.Pipeline.IntentBackoff == 0 {
		cfg.Pipeline.IntentBackoff = 3 * time.Second
	}
	if cfg.Pipeline.StageRetries == 0 {
		cfg.Pipeline.StageRetries = 3
	}
	if cfg.Pipeline.StageBackoff == 0 {
		cfg.Pipeline.StageBackoff = 2 * time.Second
	}

	// set defaults for database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:wallascope.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// set defaults for LLM
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.2
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 300
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 30 * time.Second
	}
	if cfg.LLM.BatchPause == 0 {
		cfg.LLM.BatchPause = 2 * time.Second
	}

	// set defaults for warehouse
	if cfg.Warehouse.IncludedTable == "" {
		cfg.Warehouse.IncludedTable = "listings_included"
	}
	if cfg.Warehouse.ExcludedTable == "" {
		cfg.Warehouse.ExcludedTable = "listings_excluded"
	}

	// set defaults for paths
	if cfg.Paths.DataDir == "" {
		cfg.Paths.DataDir = "data"
	}
	if cfg.Paths.DiagDir == "" {
		cfg.Paths.DiagDir = cfg.Paths.DataDir + "/diagnostics"
	}

	// apply overrides last so they win over file values
	if over.Headless != nil {
		cfg.Scraping.Headless = *over.Headless
	}
	if over.Scrolls != nil {
		cfg.Scraping.Scrolls = *over.Scrolls
	}
	if over.SearchTerm != "" {
		cfg.SearchItems = append(cfg.SearchItems, SearchItem{Name: over.SearchTerm})
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if len(cfg.SearchItems) == 0 {
		return fmt.Errorf("at least one search item is required")
	}
	for i, item := range cfg.SearchItems {
		if item.Name == "" {
			return fmt.Errorf("search_items[%d].name is required", i)
		}
		if item.Filters.PriceFloor < 0 {
			return fmt.Errorf("search_items[%d].filters.price_floor must be non-negative", i)
		}
	}

	if cfg.Pipeline.OnIntentFailure != "skip" && cfg.Pipeline.OnIntentFailure != "fail_fast" {
		return fmt.Errorf("pipeline.on_intent_failure must be %q or %q, got %q",
			"skip", "fail_fast", cfg.Pipeline.OnIntentFailure)
	}

	if cfg.Scraping.JitterMax < cfg.Scraping.JitterMin {
		return fmt.Errorf("scraping.jitter_max must be >= jitter_min")
	}

	if cfg.Warehouse.Enabled && cfg.Warehouse.DSN == "" {
		return fmt.Errorf("warehouse.dsn is required when warehouse is enabled")
	}

	return nil
}

// Intents converts the configured search items to domain intents,
// preserving configuration order
func (c *Config) Intents() []domain.SearchIntent {
	intents := make([]domain.SearchIntent, 0, len(c.SearchItems))
	for _, item := range c.SearchItems {
		intents = append(intents, domain.SearchIntent{
			Name:                item.Name,
			BlacklistDir:        item.BlacklistDir,
			FirstWordExclusions: item.FirstWord,
			AnywhereExclusions:  item.Anywhere,
			Filters: domain.IntentFilters{
				PriceFloor:   item.Filters.PriceFloor,
				Distance:     item.Filters.Distance,
				Municipality: item.Filters.Municipality,
				Conditions:   item.Filters.Conditions,
				Condition:    item.Filters.Condition,
			},
		})
	}
	return intents
}
