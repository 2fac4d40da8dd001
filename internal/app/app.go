// Package app runs the poll loop: fetch every source, publish new items, then follow the live match.
package app

import (
	"context"
	"time"

	"github.com/deusflow/footnews/internal/livescore"
	"github.com/deusflow/footnews/internal/logger"
	"github.com/deusflow/footnews/internal/metrics"
	"github.com/deusflow/footnews/internal/mirror"
	"github.com/deusflow/footnews/internal/news"
)

const (
	DefaultInterval = 15 * time.Minute
	fixturesCount   = 3
)

// Source is one news adapter. *rss.Source and *scraper.Source implement it.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]news.Item, error)
}

// Publisher is the part of *publisher.Publisher the loop drives.
type Publisher interface {
	Publish(ctx context.Context, item news.Item) bool
	Announce(ctx context.Context, identity, kind, text string) (bool, error)
	Post(ctx context.Context, kind, text string) error
}

// LiveTracker reports the current live match and whether its score changed.
type LiveTracker interface {
	Poll(ctx context.Context) (*livescore.Match, bool, error)
}

// FixtureSource lists upcoming matches.
type FixtureSource interface {
	Upcoming(ctx context.Context, n int) ([]livescore.Fixture, error)
}

type Config struct {
	Interval     time.Duration
	LiveHashtags []string
}

// CycleStats summarizes one RunOnce.
type CycleStats struct {
	Fetched       int
	Published     int
	FailedSources int
	Goal          bool
}

type Runner struct {
	cfg       Config
	sources   []Source
	publisher Publisher
	tracker   LiveTracker
	fixtures  FixtureSource

	lastFixturesDay string
	now             func() time.Time
}

func NewRunner(cfg Config, publisher Publisher, sources ...Source) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Runner{
		cfg:       cfg,
		sources:   sources,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithLive enables live score posts after each news pass.
func (r *Runner) WithLive(tracker LiveTracker) *Runner {
	r.tracker = tracker
	return r
}

// WithFixtures enables the daily upcoming fixtures post.
func (r *Runner) WithFixtures(src FixtureSource) *Runner {
	r.fixtures = src
	return r
}

// Run repeats RunOnce until ctx is cancelled, sleeping the configured interval between cycles.
func (r *Runner) Run(ctx context.Context) error {
	logger.Info("poll loop started", "sources", len(r.sources), "interval", r.cfg.Interval.String())
	for {
		start := time.Now()
		stats := r.RunOnce(ctx)
		if ctx.Err() != nil {
			logger.Info("poll loop stopped")
			return nil
		}
		metrics.Global.RecordCycle(time.Since(start))
		logger.Info("cycle finished",
			"fetched", stats.Fetched,
			"published", stats.Published,
			"failed_sources", stats.FailedSources,
			"took", time.Since(start).String())

		t := time.NewTimer(r.cfg.Interval)
		select {
		case <-ctx.Done():
			t.Stop()
			logger.Info("poll loop stopped")
			return nil
		case <-t.C:
		}
	}
}

// RunOnce is one full cycle. Sources run in order; a failing source is logged and skipped.
func (r *Runner) RunOnce(ctx context.Context) CycleStats {
	var stats CycleStats

	for _, src := range r.sources {
		if ctx.Err() != nil {
			return stats
		}

		items, err := src.Fetch(ctx)
		if err != nil {
			stats.FailedSources++
			metrics.Global.IncrementFetchErrors(err)
			logger.Warn("source failed", "source", src.Name(), "error", err)
			continue
		}
		stats.Fetched += len(items)
		metrics.Global.AddItemsFetched(len(items))
		logger.Debug("source fetched", "source", src.Name(), "items", len(items))

		news.SortOldestFirst(items)
		for _, item := range items {
			if ctx.Err() != nil {
				return stats
			}
			if r.publisher.Publish(ctx, item) {
				stats.Published++
			}
		}
	}

	if ctx.Err() != nil {
		return stats
	}
	if r.tracker != nil {
		stats.Goal = r.trackLive(ctx)
	}
	if r.fixtures != nil {
		r.announceFixtures(ctx)
	}
	return stats
}

func (r *Runner) trackLive(ctx context.Context) bool {
	m, goal, err := r.tracker.Poll(ctx)
	if err != nil {
		logger.Warn("live score check failed", "error", err)
		return false
	}
	if m == nil {
		return false
	}

	if err := r.publisher.Post(ctx, mirror.KindLive, livescore.LivePost(*m, r.cfg.LiveHashtags)); err != nil {
		logger.Error("live update not delivered", "error", err)
	}
	if !goal {
		return false
	}

	logger.Info("goal detected", "home", m.Home, "away", m.Away, "score", m.Score)
	metrics.Global.IncrementGoalAlerts()
	if err := r.publisher.Post(ctx, mirror.KindGoal, livescore.GoalPost(*m, r.cfg.LiveHashtags)); err != nil {
		logger.Error("goal alert not delivered", "error", err)
	}
	return true
}

// announceFixtures posts the next matches once per UTC day.
func (r *Runner) announceFixtures(ctx context.Context) {
	day := r.now().UTC().Format("2006-01-02")
	if r.lastFixturesDay == day {
		return
	}

	fixtures, err := r.fixtures.Upcoming(ctx, fixturesCount)
	if err != nil {
		logger.Warn("fixtures check failed", "error", err)
		return
	}
	if len(fixtures) == 0 {
		r.lastFixturesDay = day
		return
	}

	text := livescore.FixturesPost(fixtures, r.cfg.LiveHashtags)
	sent, err := r.publisher.Announce(ctx, "fixtures:"+day, mirror.KindFixtures, text)
	if err != nil {
		logger.Error("fixtures post failed", "error", err)
		return
	}
	r.lastFixturesDay = day
	if sent {
		logger.Info("fixtures posted", "count", len(fixtures))
	}
}
