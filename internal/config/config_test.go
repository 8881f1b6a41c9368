package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "https://www.dice.com/jobs", cfg.Crawler.BaseURL)
	require.Equal(t, 1, cfg.Crawler.StartPage)
	require.Equal(t, 20, cfg.Crawler.PageSize)
	require.Equal(t, 1, cfg.Crawler.Concurrency)
	require.Equal(t, 5, cfg.Crawler.DefaultTotalPages)
	require.Equal(t, "python", cfg.Search.Query)
	require.Equal(t, "dice_jobs.json", cfg.Store.Path)
	require.Equal(t, 8080, cfg.Server.Port)
	require.True(t, cfg.Logging.Development)

	min, max := cfg.DelayRange()
	require.Equal(t, time.Second, min)
	require.Equal(t, 3*time.Second, max)
	require.Equal(t, 10*time.Second, cfg.FetchTimeout())
	require.Equal(t, 2*time.Second, cfg.SettleDelay())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
crawler:
  page_size: 50
  concurrency: 4
search:
  query: golang
  location: ""
store:
  path: /tmp/out.json
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 50, cfg.Crawler.PageSize)
	require.Equal(t, 4, cfg.Crawler.Concurrency)
	require.Equal(t, "golang", cfg.Search.Query)
	require.Empty(t, cfg.Search.Location)
	require.Equal(t, "/tmp/out.json", cfg.Store.Path)
	// Untouched keys keep their defaults.
	require.Equal(t, 1, cfg.Crawler.StartPage)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{"empty base url", func(c *Config) { c.Crawler.BaseURL = "" }, "crawler.base_url"},
		{"empty user agent", func(c *Config) { c.Crawler.UserAgent = "" }, "crawler.user_agent"},
		{"zero start page", func(c *Config) { c.Crawler.StartPage = 0 }, "crawler.start_page"},
		{"negative page size", func(c *Config) { c.Crawler.PageSize = -1 }, "crawler.page_size"},
		{"zero concurrency", func(c *Config) { c.Crawler.Concurrency = 0 }, "crawler.concurrency"},
		{"inverted delay range", func(c *Config) { c.Crawler.DelayMinMs = 500; c.Crawler.DelayMaxMs = 100 }, "delay_min_ms"},
		{"zero default pages", func(c *Config) { c.Crawler.DefaultTotalPages = 0 }, "crawler.default_total_pages"},
		{"empty store path", func(c *Config) { c.Store.Path = "" }, "store.path"},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantKey)
		})
	}
}

func TestSearchURL(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	u, err := url.Parse(cfg.SearchURL())
	require.NoError(t, err)

	q := u.Query()
	require.Equal(t, "python", q.Get("q"))
	require.Equal(t, "United States", q.Get("location"))
	require.Equal(t, "US", q.Get("countryCode"))
	require.Equal(t, "ONE", q.Get("filters.postedDate"))
	require.Equal(t, "FULLTIME", q.Get("filters.employmentType"))
	require.Equal(t, "en", q.Get("language"))
}

func TestSearchURLOmitsEmptyOptions(t *testing.T) {
	cfg := Config{Crawler: CrawlerConfig{BaseURL: "https://example.com/jobs"}}
	require.Equal(t, "https://example.com/jobs", cfg.SearchURL())

	cfg.Search.Query = "sre"
	u, err := url.Parse(cfg.SearchURL())
	require.NoError(t, err)
	require.Equal(t, "sre", u.Query().Get("q"))
	require.False(t, u.Query().Has("location"))
}
