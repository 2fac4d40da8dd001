package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/footnews/internal/news"
)

func writeSources(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "@realmadrid_uz")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("SOURCES_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 900*time.Second, cfg.PollInterval)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "uz", cfg.TargetLang)
	assert.Equal(t, 1000, cfg.TranslateMaxRunes)
	assert.Equal(t, 86, cfg.FootballTeamID)
	assert.Equal(t, 3, cfg.FeedMaxItems)
	assert.Equal(t, "realbot/1.0", cfg.UserAgent)
	assert.Equal(t, "sqlite", cfg.StorageDriver)
	assert.Equal(t, []string{"RealMadrid", "HalaMadrid", "Yangilik", "Futbol"}, cfg.Hashtags)
	assert.Equal(t, DefaultSources(), cfg.Sources)
	assert.False(t, cfg.LiveEnabled())
}

func TestLoad_MissingChatIDIsConfigError(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("SOURCES_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	var cfgErr *news.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "TELEGRAM_CHAT_ID", cfgErr.Key)
}

func TestLoad_SourcesFile(t *testing.T) {
	setRequired(t)
	t.Setenv("HOOK_TOKEN", "s3cret")
	t.Setenv("SOURCES_FILE", writeSources(t, `
sources:
  - name: Marca
    type: rss
    url: https://www.marca.com/en/rss/futbol/real-madrid.xml
  - name: Real Madrid
    type: scrape
    url: https://www.realmadrid.com/en/news
    base_url: https://www.realmadrid.com
    selectors: ["article", ".news-item"]
  - name: Disabled
    type: rss
    url: https://example.com/rss
    enabled: false
mirrors:
  - id: hook
    type: http
    http:
      url: https://hooks.example.com/posts
      headers:
        Authorization: Bearer ${HOOK_TOKEN}
`))
	t.Setenv("POLL_INTERVAL", "5m")
	t.Setenv("PUBLISH_DELAY", "1")

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, SourceScrape, cfg.Sources[1].Type)
	assert.Equal(t, []string{"article", ".news-item"}, cfg.Sources[1].Selectors)
	require.Len(t, cfg.Mirrors, 1)
	assert.Equal(t, "Bearer s3cret", cfg.Mirrors[0].HTTP.Headers["Authorization"])
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)
	assert.Equal(t, time.Second, cfg.PublishDelay)
}

func TestLoad_InvalidSource(t *testing.T) {
	setRequired(t)
	t.Setenv("SOURCES_FILE", writeSources(t, `
sources:
  - name: Broken
    type: ftp
    url: ftp://example.com
`))

	_, err := Load()
	var cfgErr *news.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "SOURCES_FILE", cfgErr.Key)
}

func TestLoad_PostgresNeedsDSN(t *testing.T) {
	setRequired(t)
	t.Setenv("SOURCES_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	var cfgErr *news.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "DATABASE_URL", cfgErr.Key)
}

func TestLoad_BadDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("REQUEST_TIMEOUT", "soon")

	_, err := Load()
	var cfgErr *news.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "REQUEST_TIMEOUT", cfgErr.Key)
}
