// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Search  SearchConfig  `mapstructure:"search"`
	Store   StoreConfig   `mapstructure:"store"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig governs the crawl session: pagination, politeness, timeouts.
type CrawlerConfig struct {
	BaseURL              string  `mapstructure:"base_url"`
	UserAgent            string  `mapstructure:"user_agent"`
	StartPage            int     `mapstructure:"start_page"`
	PageSize             int     `mapstructure:"page_size"`
	Concurrency          int     `mapstructure:"concurrency"`
	FetchTimeoutSeconds  int     `mapstructure:"fetch_timeout_seconds"`
	RenderTimeoutSeconds int     `mapstructure:"render_timeout_seconds"`
	SettleMs             int     `mapstructure:"settle_ms"`
	DelayMinMs           int     `mapstructure:"delay_min_ms"`
	DelayMaxMs           int     `mapstructure:"delay_max_ms"`
	HostQPS              float64 `mapstructure:"host_qps"`
	DefaultTotalPages    int     `mapstructure:"default_total_pages"`
}

// SearchConfig holds the recognized search options folded into the
// listing-page query string. Unrecognized options are not supported.
type SearchConfig struct {
	Query             string `mapstructure:"query"`
	Location          string `mapstructure:"location"`
	Latitude          string `mapstructure:"latitude"`
	Longitude         string `mapstructure:"longitude"`
	CountryCode       string `mapstructure:"country_code"`
	LocationPrecision string `mapstructure:"location_precision"`
	Radius            string `mapstructure:"radius"`
	RadiusUnit        string `mapstructure:"radius_unit"`
	PostedDate        string `mapstructure:"posted_date"`
	EmploymentType    string `mapstructure:"employment_type"`
	Language          string `mapstructure:"language"`
}

// StoreConfig sets the output file for scraped records.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig controls the ingestion API server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.base_url", "https://www.dice.com/jobs")
	v.SetDefault("crawler.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("crawler.start_page", 1)
	v.SetDefault("crawler.page_size", 20)
	v.SetDefault("crawler.concurrency", 1)
	v.SetDefault("crawler.fetch_timeout_seconds", 10)
	v.SetDefault("crawler.render_timeout_seconds", 10)
	v.SetDefault("crawler.settle_ms", 2000)
	v.SetDefault("crawler.delay_min_ms", 1000)
	v.SetDefault("crawler.delay_max_ms", 3000)
	v.SetDefault("crawler.host_qps", 1)
	v.SetDefault("crawler.default_total_pages", 5)
	v.SetDefault("search.query", "python")
	v.SetDefault("search.location", "United States")
	v.SetDefault("search.latitude", "38.7945952")
	v.SetDefault("search.longitude", "-106.5348379")
	v.SetDefault("search.country_code", "US")
	v.SetDefault("search.location_precision", "Country")
	v.SetDefault("search.radius", "30")
	v.SetDefault("search.radius_unit", "mi")
	v.SetDefault("search.posted_date", "ONE")
	v.SetDefault("search.employment_type", "FULLTIME")
	v.SetDefault("search.language", "en")
	v.SetDefault("store.path", "dice_jobs.json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.BaseURL == "" {
		return fmt.Errorf("crawler.base_url must be set")
	}
	if c.Crawler.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.Crawler.StartPage <= 0 {
		return fmt.Errorf("crawler.start_page must be > 0")
	}
	if c.Crawler.PageSize <= 0 {
		return fmt.Errorf("crawler.page_size must be > 0")
	}
	if c.Crawler.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.Crawler.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("crawler.fetch_timeout_seconds must be > 0")
	}
	if c.Crawler.RenderTimeoutSeconds <= 0 {
		return fmt.Errorf("crawler.render_timeout_seconds must be > 0")
	}
	if c.Crawler.DelayMinMs < 0 || c.Crawler.DelayMaxMs < c.Crawler.DelayMinMs {
		return fmt.Errorf("crawler.delay_min_ms/delay_max_ms must form a valid range")
	}
	if c.Crawler.HostQPS < 0 {
		return fmt.Errorf("crawler.host_qps must be >= 0")
	}
	if c.Crawler.DefaultTotalPages <= 0 {
		return fmt.Errorf("crawler.default_total_pages must be > 0")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must be set")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// SearchURL folds the configured search options into the listing base URL.
// Empty options are omitted so the site applies its own defaults.
func (c Config) SearchURL() string {
	params := url.Values{}
	set := func(key, value string) {
		if value != "" {
			params.Set(key, value)
		}
	}
	set("q", c.Search.Query)
	set("location", c.Search.Location)
	set("latitude", c.Search.Latitude)
	set("longitude", c.Search.Longitude)
	set("countryCode", c.Search.CountryCode)
	set("locationPrecision", c.Search.LocationPrecision)
	set("radius", c.Search.Radius)
	set("radiusUnit", c.Search.RadiusUnit)
	set("filters.postedDate", c.Search.PostedDate)
	set("filters.employmentType", c.Search.EmploymentType)
	set("language", c.Search.Language)
	if len(params) == 0 {
		return c.Crawler.BaseURL
	}
	return c.Crawler.BaseURL + "?" + params.Encode()
}

// FetchTimeout returns the detail fetch timeout as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Crawler.FetchTimeoutSeconds) * time.Second
}

// RenderTimeout returns the listing render timeout as a duration.
func (c Config) RenderTimeout() time.Duration {
	return time.Duration(c.Crawler.RenderTimeoutSeconds) * time.Second
}

// SettleDelay returns the post-navigation settle pause as a duration.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.Crawler.SettleMs) * time.Millisecond
}

// DelayRange returns the politeness delay bounds as durations.
func (c Config) DelayRange() (time.Duration, time.Duration) {
	return time.Duration(c.Crawler.DelayMinMs) * time.Millisecond,
		time.Duration(c.Crawler.DelayMaxMs) * time.Millisecond
}
