// Package publisher turns news items into channel posts and records them in the dedup store.
package publisher

import (
	"context"
	"time"

	"github.com/deusflow/footnews/internal/logger"
	"github.com/deusflow/footnews/internal/metrics"
	"github.com/deusflow/footnews/internal/mirror"
	"github.com/deusflow/footnews/internal/news"
	"github.com/deusflow/footnews/internal/storage"
)

const (
	DefaultSummaryRunes = 600
	DefaultTitleRunes   = 250
)

type Config struct {
	Hashtags     []string
	Delay        time.Duration // pause after each delivered post
	SummaryRunes int
	TitleRunes   int
}

type Publisher struct {
	messenger  Messenger
	store      Store
	translator Translator
	mirror     Mirror
	cfg        Config
}

// New wires a Publisher. mirror may be nil.
func New(messenger Messenger, store Store, translator Translator, mirror Mirror, cfg Config) *Publisher {
	if cfg.SummaryRunes <= 0 {
		cfg.SummaryRunes = DefaultSummaryRunes
	}
	if cfg.TitleRunes <= 0 {
		cfg.TitleRunes = DefaultTitleRunes
	}
	return &Publisher{
		messenger:  messenger,
		store:      store,
		translator: translator,
		mirror:     mirror,
		cfg:        cfg,
	}
}

// Publish delivers item unless it was published before. It reports whether a message went out.
func (p *Publisher) Publish(ctx context.Context, item news.Item) bool {
	seen, err := p.store.HasBeenPublished(ctx, item.Identity)
	if err != nil {
		logger.Error("dedup check failed, skipping item", "identity", item.Identity, "error", err)
		return false
	}
	if seen {
		metrics.Global.IncrementDuplicates()
		logger.Debug("already published", "identity", item.Identity)
		return false
	}

	title := news.Truncate(p.translator.Translate(ctx, item.Title), p.cfg.TitleRunes)
	summary := news.Truncate(p.translator.Translate(ctx, item.Summary), p.cfg.SummaryRunes)

	text := Compose(Post{
		Marker:   news.Categorize(title, item.Title).Marker(),
		Title:    title,
		Summary:  summary,
		Link:     item.Link,
		Source:   item.SourceName,
		Hashtags: p.cfg.Hashtags,
	})

	if err := p.deliver(ctx, item, text); err != nil {
		metrics.Global.IncrementDeliveryFailures(err)
		logger.Error("delivery failed, will retry next cycle", "identity", item.Identity, "source", item.SourceName, "error", err)
		return false
	}

	rec := storage.PublishedRecord{
		Identity:    item.Identity,
		Title:       item.Title,
		Link:        item.Link,
		SourceName:  item.SourceName,
		PublishedAt: time.Now(),
	}
	if err := p.store.RecordPublished(ctx, rec); err != nil {
		logger.Error("post delivered but not recorded", "identity", item.Identity, "error", err)
	}

	metrics.Global.IncrementPublished()
	logger.Info("published", "identity", item.Identity, "source", item.SourceName, "title", item.Title)

	p.emit(ctx, mirror.PostEvent{
		Identity:    item.Identity,
		Kind:        mirror.KindNews,
		Title:       title,
		Link:        item.Link,
		Source:      item.SourceName,
		Text:        text,
		PublishedAt: rec.PublishedAt,
	})

	p.pause(ctx)
	return true
}

// deliver sends a photo post when the item has an image and falls back to text exactly once.
func (p *Publisher) deliver(ctx context.Context, item news.Item, text string) error {
	if item.HasImage() {
		err := p.messenger.SendPhoto(ctx, item.Image, text)
		if err == nil {
			return nil
		}
		logger.Warn("photo send failed, falling back to text", "identity", item.Identity, "error", err)
	}

	if err := p.messenger.SendText(ctx, text); err != nil {
		return &news.DeliveryError{Identity: item.Identity, Op: "text", Err: err}
	}
	return nil
}

// Announce sends a text post once per identity, e.g. the daily fixtures list.
// It reports whether a message went out; an identity already published is not an error.
func (p *Publisher) Announce(ctx context.Context, identity, kind, text string) (bool, error) {
	seen, err := p.store.HasBeenPublished(ctx, identity)
	if err != nil {
		return false, err
	}
	if seen {
		return false, nil
	}

	if err := p.messenger.SendText(ctx, text); err != nil {
		err = &news.DeliveryError{Identity: identity, Op: "text", Err: err}
		metrics.Global.IncrementDeliveryFailures(err)
		return false, err
	}

	now := time.Now()
	if err := p.store.RecordPublished(ctx, storage.PublishedRecord{Identity: identity, Title: kind, SourceName: kind, PublishedAt: now}); err != nil {
		logger.Error("announcement delivered but not recorded", "identity", identity, "error", err)
	}
	metrics.Global.IncrementPublished()

	p.emit(ctx, mirror.PostEvent{Identity: identity, Kind: kind, Text: text, PublishedAt: now})
	p.pause(ctx)
	return true, nil
}

// Post sends a text message without dedup, used for live score updates.
func (p *Publisher) Post(ctx context.Context, kind, text string) error {
	if err := p.messenger.SendText(ctx, text); err != nil {
		err = &news.DeliveryError{Identity: kind, Op: "text", Err: err}
		metrics.Global.IncrementDeliveryFailures(err)
		return err
	}
	p.emit(ctx, mirror.PostEvent{Kind: kind, Text: text, PublishedAt: time.Now()})
	p.pause(ctx)
	return nil
}

func (p *Publisher) emit(ctx context.Context, evt mirror.PostEvent) {
	if p.mirror != nil {
		p.mirror.Emit(ctx, evt)
	}
}

func (p *Publisher) pause(ctx context.Context) {
	if p.cfg.Delay <= 0 {
		return
	}
	t := time.NewTimer(p.cfg.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
