// Package config loads bot settings from the environment and the sources file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/footnews/internal/httpclient"
	"github.com/deusflow/footnews/internal/mirror"
	"github.com/deusflow/footnews/internal/news"
	"github.com/deusflow/footnews/internal/retry"
	"github.com/deusflow/footnews/internal/storage"
)

const (
	SourceRSS    = "rss"
	SourceScrape = "scrape"
)

type Config struct {
	// Telegram settings
	TelegramToken  string
	TelegramChatID string
	Hashtags       []string
	LiveHashtags   []string

	// Loop settings
	PollInterval   time.Duration
	PublishDelay   time.Duration
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	UserAgent      string
	FeedMaxItems   int
	ScrapeMaxItems int

	// Storage settings
	StorageDriver string
	StoragePath   string
	DatabaseURL   string

	// Translation settings
	TargetLang        string
	TranslateMaxRunes int
	GeminiAPIKey      string
	OpenAIAPIKey      string
	MaxAIRequests     int // per day across AI backends, 0 = unlimited
	RedisURL          string

	// Live score settings
	FootballAPIKey  string
	FootballTeamID  int
	FootballAPIURL  string
	FixturesEnabled bool

	// App settings
	Debug                bool
	EnableHTTPMonitoring bool
	MonitoringPort       string

	SourcesFile string
	Sources     []SourceConfig
	Mirrors     []mirror.SinkConfig
}

// SourceConfig is one entry of the sources: list.
type SourceConfig struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"` // rss | scrape
	URL       string   `yaml:"url"`
	BaseURL   string   `yaml:"base_url"`
	Selectors []string `yaml:"selectors"`
	MaxItems  int      `yaml:"max_items"`
	Enabled   *bool    `yaml:"enabled"`
}

func (s SourceConfig) EnabledValue() bool {
	return s.Enabled == nil || *s.Enabled
}

type sourcesFile struct {
	Sources []SourceConfig      `yaml:"sources"`
	Mirrors []mirror.SinkConfig `yaml:"mirrors"`
}

// DefaultSources is used when no sources file exists.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{Name: "Real Madrid", Type: SourceRSS, URL: "https://www.realmadrid.com/en/rss"},
		{Name: "Marca", Type: SourceRSS, URL: "https://www.marca.com/en/rss/futbol/real-madrid.xml"},
		{Name: "Goal.com", Type: SourceRSS, URL: "https://www.goal.com/feeds/en/news/9/rss"},
		{Name: "AS", Type: SourceRSS, URL: "https://as.com/rss/futbol/real_madrid.xml"},
	}
}

// Load reads .env files, the environment and the sources file, then validates.
// Validation failures are returned as *news.ConfigError.
func Load() (*Config, error) {
	for _, f := range []string{".env", "config.env"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		TelegramToken:  strings.TrimSpace(v.GetString("TELEGRAM_TOKEN")),
		TelegramChatID: strings.TrimSpace(v.GetString("TELEGRAM_CHAT_ID")),
		Hashtags:       splitList(v.GetString("HASHTAGS")),
		LiveHashtags:   splitList(v.GetString("LIVE_HASHTAGS")),

		RetryAttempts:  v.GetInt("RETRY_ATTEMPTS"),
		UserAgent:      v.GetString("USER_AGENT"),
		FeedMaxItems:   v.GetInt("FEED_MAX_ITEMS"),
		ScrapeMaxItems: v.GetInt("SCRAPE_MAX_ITEMS"),

		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		StoragePath:   v.GetString("STORAGE_PATH"),
		DatabaseURL:   v.GetString("DATABASE_URL"),

		TargetLang:        v.GetString("TARGET_LANG"),
		TranslateMaxRunes: v.GetInt("TRANSLATE_MAX_RUNES"),
		GeminiAPIKey:      v.GetString("GEMINI_API_KEY"),
		OpenAIAPIKey:      v.GetString("OPENAI_API_KEY"),
		MaxAIRequests:     v.GetInt("MAX_AI_REQUESTS"),
		RedisURL:          v.GetString("REDIS_URL"),

		FootballAPIKey:  v.GetString("FOOTBALL_API_KEY"),
		FootballTeamID:  v.GetInt("FOOTBALL_TEAM_ID"),
		FootballAPIURL:  v.GetString("FOOTBALL_API_URL"),
		FixturesEnabled: v.GetBool("FIXTURES_ENABLED"),

		Debug:                v.GetBool("DEBUG"),
		EnableHTTPMonitoring: v.GetBool("ENABLE_HTTP_MONITORING"),
		MonitoringPort:       v.GetString("MONITORING_PORT"),

		SourcesFile: v.GetString("SOURCES_FILE"),
	}

	var err error
	for key, dst := range map[string]*time.Duration{
		"POLL_INTERVAL":   &cfg.PollInterval,
		"PUBLISH_DELAY":   &cfg.PublishDelay,
		"REQUEST_TIMEOUT": &cfg.RequestTimeout,
		"RETRY_DELAY":     &cfg.RetryDelay,
	} {
		if *dst, err = parseSeconds(v.GetString(key)); err != nil {
			return nil, &news.ConfigError{Key: key, Reason: err.Error()}
		}
	}

	if err := cfg.loadSources(); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("POLL_INTERVAL", "900")
	v.SetDefault("PUBLISH_DELAY", "3")
	v.SetDefault("REQUEST_TIMEOUT", "15")
	v.SetDefault("RETRY_ATTEMPTS", 3)
	v.SetDefault("RETRY_DELAY", "2")
	v.SetDefault("USER_AGENT", httpclient.DefaultUserAgent)
	v.SetDefault("FEED_MAX_ITEMS", 3)
	v.SetDefault("SCRAPE_MAX_ITEMS", 8)
	v.SetDefault("STORAGE_DRIVER", storage.DriverSQLite)
	v.SetDefault("STORAGE_PATH", storage.DefaultPath)
	v.SetDefault("TARGET_LANG", "uz")
	v.SetDefault("TRANSLATE_MAX_RUNES", 1000)
	v.SetDefault("MAX_AI_REQUESTS", 50)
	v.SetDefault("FOOTBALL_TEAM_ID", 86)
	v.SetDefault("HASHTAGS", "RealMadrid,HalaMadrid,Yangilik,Futbol")
	v.SetDefault("LIVE_HASHTAGS", "RealMadrid,Live,HalaMadrid")
	v.SetDefault("MONITORING_PORT", "8080")
	v.SetDefault("SOURCES_FILE", "configs/sources.yaml")
}

// loadSources reads SOURCES_FILE after expanding ${VAR} references. A missing file means the default feeds.
func (c *Config) loadSources() error {
	raw, err := os.ReadFile(c.SourcesFile)
	if errors.Is(err, os.ErrNotExist) {
		c.Sources = DefaultSources()
		return nil
	}
	if err != nil {
		return &news.ConfigError{Key: "SOURCES_FILE", Reason: err.Error()}
	}

	var f sourcesFile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &f); err != nil {
		return &news.ConfigError{Key: "SOURCES_FILE", Reason: fmt.Sprintf("parse %s: %v", c.SourcesFile, err)}
	}

	for _, s := range f.Sources {
		if s.EnabledValue() {
			c.Sources = append(c.Sources, s)
		}
	}
	c.Mirrors = f.Mirrors
	return nil
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return &news.ConfigError{Key: "TELEGRAM_TOKEN", Reason: "is required"}
	}
	if c.TelegramChatID == "" {
		return &news.ConfigError{Key: "TELEGRAM_CHAT_ID", Reason: "is required"}
	}
	if c.PollInterval <= 0 {
		return &news.ConfigError{Key: "POLL_INTERVAL", Reason: "must be positive"}
	}

	switch c.StorageDriver {
	case storage.DriverSQLite, storage.DriverBolt:
	case storage.DriverPostgres:
		if c.DatabaseURL == "" {
			return &news.ConfigError{Key: "DATABASE_URL", Reason: "is required for the postgres driver"}
		}
	default:
		return &news.ConfigError{Key: "STORAGE_DRIVER", Reason: fmt.Sprintf("unknown driver %q", c.StorageDriver)}
	}

	if len(c.Sources) == 0 {
		return &news.ConfigError{Key: "SOURCES_FILE", Reason: "no enabled sources"}
	}
	for i, s := range c.Sources {
		if s.URL == "" {
			return &news.ConfigError{Key: "SOURCES_FILE", Reason: fmt.Sprintf("sources[%d] %q has no url", i, s.Name)}
		}
		if s.Type != SourceRSS && s.Type != SourceScrape {
			return &news.ConfigError{Key: "SOURCES_FILE", Reason: fmt.Sprintf("sources[%d] %q has unknown type %q", i, s.Name, s.Type)}
		}
	}
	for i, m := range c.Mirrors {
		if !m.EnabledValue() {
			continue
		}
		if err := m.Validate(); err != nil {
			return &news.ConfigError{Key: "SOURCES_FILE", Reason: fmt.Sprintf("mirrors[%d]: %v", i, err)}
		}
	}

	return nil
}

// LiveEnabled reports whether live score tracking can run.
func (c *Config) LiveEnabled() bool { return c.FootballAPIKey != "" }

func (c *Config) Retry() retry.RetryConfig {
	return retry.RetryConfig{MaxAttempts: c.RetryAttempts, Delay: c.RetryDelay, Backoff: true}
}

// parseSeconds accepts a plain number of seconds or a Go duration like "1m30s".
func parseSeconds(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
