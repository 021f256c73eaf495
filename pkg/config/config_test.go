package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
search_items:
  - name: iphone 16
    filters:
      price_floor: 250
      distance: 60
      municipality: Madrid
      conditions: [new, as_good_as_new]
`)

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Scraping.Scrolls)
	assert.Equal(t, 10, cfg.Scraping.LoadMoreAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Scraping.JitterMin)
	assert.Equal(t, "skip", cfg.Pipeline.OnIntentFailure)
	assert.Equal(t, 1, cfg.Pipeline.IntentRetries)
	assert.Equal(t, 3, cfg.Pipeline.StageRetries)
	assert.Contains(t, cfg.Database.DSN, "wallascope.db")
	assert.Equal(t, "listings_included", cfg.Warehouse.IncludedTable)
	assert.Equal(t, "data/diagnostics", cfg.Paths.DiagDir)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
scraping:
  headless: true
  scrolls: 25
search_items:
  - name: iphone 16
`)

	headless := false
	scrolls := 5
	cfg, err := Load(path, Overrides{Headless: &headless, Scrolls: &scrolls, SearchTerm: "gopro 11"})
	require.NoError(t, err)

	assert.False(t, cfg.Scraping.Headless)
	assert.Equal(t, 5, cfg.Scraping.Scrolls)
	require.Len(t, cfg.SearchItems, 2)
	assert.Equal(t, "gopro 11", cfg.SearchItems[1].Name)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_WH_DSN", "postgres://warehouse")
	path := writeConfig(t, `
warehouse:
  enabled: true
  dsn: ${TEST_WH_DSN}
search_items:
  - name: iphone 16
`)

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "postgres://warehouse", cfg.Warehouse.DSN)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "no search items",
			content: `scraping: {headless: true}`,
			errMsg:  "at least one search item",
		},
		{
			name: "unnamed search item",
			content: `
search_items:
  - filters: {price_floor: 100}
`,
			errMsg: "name is required",
		},
		{
			name: "bad failure policy",
			content: `
pipeline:
  on_intent_failure: retry_forever
search_items:
  - name: iphone 16
`,
			errMsg: "on_intent_failure",
		},
		{
			name: "warehouse without dsn",
			content: `
warehouse:
  enabled: true
search_items:
  - name: iphone 16
`,
			errMsg: "warehouse.dsn is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path, Overrides{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yml", Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestConfig_Intents(t *testing.T) {
	path := writeConfig(t, `
search_items:
  - name: iphone 16
    blacklist_dir: config/blacklists/iphone
    filters:
      price_floor: 250
      distance: 60
      municipality: Madrid
      conditions: [new, good]
  - name: gopro 11
    start_exclude_keywords: [funda]
    exclude_keywords: [carcasa, soporte]
    filters:
      condition: good
`)

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)

	intents := cfg.Intents()
	require.Len(t, intents, 2)

	assert.Equal(t, "iphone 16", intents[0].Name)
	assert.Equal(t, "config/blacklists/iphone", intents[0].BlacklistDir)
	assert.InEpsilon(t, 250.0, intents[0].Filters.PriceFloor, 0.0001)
	assert.Equal(t, []string{"new", "good"}, intents[0].Filters.Conditions)

	assert.Equal(t, []string{"funda"}, intents[1].FirstWordExclusions)
	assert.Equal(t, []string{"carcasa", "soporte"}, intents[1].AnywhereExclusions)
	assert.Equal(t, "good", intents[1].Filters.Condition)
}
