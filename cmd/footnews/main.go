package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deusflow/footnews/internal/app"
	"github.com/deusflow/footnews/internal/cache"
	"github.com/deusflow/footnews/internal/config"
	"github.com/deusflow/footnews/internal/gemini"
	"github.com/deusflow/footnews/internal/httpclient"
	"github.com/deusflow/footnews/internal/livescore"
	"github.com/deusflow/footnews/internal/logger"
	"github.com/deusflow/footnews/internal/metrics"
	"github.com/deusflow/footnews/internal/mirror"
	"github.com/deusflow/footnews/internal/monitor"
	"github.com/deusflow/footnews/internal/news"
	"github.com/deusflow/footnews/internal/publisher"
	"github.com/deusflow/footnews/internal/ratelimit"
	"github.com/deusflow/footnews/internal/storage"
	"github.com/deusflow/footnews/internal/telegram"
	"github.com/deusflow/footnews/internal/translate"
)

func main() {
	logger.Init()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		var cfgErr *news.ConfigError
		if errors.As(err, &cfgErr) {
			logger.Error("invalid configuration", "key", cfgErr.Key, "error", cfgErr.Reason)
		} else {
			logger.Error("bot stopped", "error", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client := httpclient.NewRestyClient(cfg.RequestTimeout, cfg.UserAgent)

	store, err := storage.Open(ctx, storage.Options{
		Driver: cfg.StorageDriver,
		Path:   cfg.StoragePath,
		DSN:    cfg.DatabaseURL,
	})
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("dedup store ready", "driver", cfg.StorageDriver)

	translations := newCache(ctx, cfg.RedisURL)
	defer translations.Close()

	limiter := ratelimit.NewAIRateLimiter(map[string]int{
		"gemini": cfg.MaxAIRequests,
		"openai": cfg.MaxAIRequests,
	}, cfg.MaxAIRequests)

	backends := []translate.Backend{translate.NewGoogle(client, "")}
	if cfg.GeminiAPIKey != "" {
		gc, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Warn("gemini disabled", "error", err)
		} else {
			defer gc.Close()
			backends = append(backends, gc)
		}
	}
	if cfg.OpenAIAPIKey != "" {
		backends = append(backends, translate.NewOpenAI(cfg.OpenAIAPIKey))
	}
	translator := translate.New(translate.Options{
		TargetLang: cfg.TargetLang,
		MaxRunes:   cfg.TranslateMaxRunes,
		Timeout:    cfg.RequestTimeout,
		Cache:      translations,
		Limiter:    limiter,
	}, backends...)

	sinks, err := mirror.Build(ctx, cfg.Mirrors, client)
	if err != nil {
		logger.Warn("some mirrors are disabled", "error", err)
	}
	fanout := mirror.NewFanout(cfg.RequestTimeout, sinks...)
	defer fanout.Close()

	pub := publisher.New(
		telegram.New(client, cfg.TelegramToken, cfg.TelegramChatID),
		store,
		translator,
		fanout,
		publisher.Config{Hashtags: cfg.Hashtags, Delay: cfg.PublishDelay},
	)

	runner := app.NewRunner(app.Config{
		Interval:     cfg.PollInterval,
		LiveHashtags: cfg.LiveHashtags,
	}, pub, app.BuildSources(cfg, client)...)

	if cfg.LiveEnabled() {
		scores := livescore.NewClient(client, cfg.FootballAPIURL, cfg.FootballAPIKey, cfg.FootballTeamID)
		runner.WithLive(livescore.NewTracker(scores))
		if cfg.FixturesEnabled {
			runner.WithFixtures(scores)
		}
	}

	if cfg.EnableHTTPMonitoring {
		srv := monitor.New(monitor.Options{
			Store:   store,
			Metrics: metrics.Global,
			Limiter: limiter,
		})
		srv.Start(":" + cfg.MonitoringPort)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("footnews starting",
		"sources", len(cfg.Sources),
		"translators", len(backends),
		"mirrors", fanout.Len(),
		"live", cfg.LiveEnabled(),
		"target_lang", translator.TargetLang())

	return runner.Run(ctx)
}

// newCache prefers Redis and falls back to the in-process cache.
func newCache(ctx context.Context, redisURL string) cache.Cache {
	if redisURL == "" {
		return cache.NewMemory()
	}
	rc, err := cache.NewRedis(ctx, redisURL)
	if err != nil {
		logger.Warn("redis unavailable, using memory cache", "error", err)
		return cache.NewMemory()
	}
	return rc
}
