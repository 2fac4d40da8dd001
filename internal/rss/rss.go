package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/footnews/internal/httpclient"
	"github.com/deusflow/footnews/internal/logger"
	"github.com/deusflow/footnews/internal/news"
	"github.com/deusflow/footnews/internal/retry"
)

const DefaultMaxItems = 3

// Config describes one feed source.
type Config struct {
	Name     string
	URL      string
	MaxItems int
	Retry    retry.RetryConfig
}

// Source fetches one RSS/Atom feed and normalizes its newest entries.
type Source struct {
	cfg    Config
	client httpclient.Client
	parser *gofeed.Parser
}

func New(cfg Config, client httpclient.Client) *Source {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	if cfg.Name == "" {
		cfg.Name = cfg.URL
	}
	return &Source{cfg: cfg, client: client, parser: gofeed.NewParser()}
}

func (s *Source) Name() string { return s.cfg.Name }

// Fetch downloads and parses the feed. Any failure comes back as *news.FetchError.
func (s *Source) Fetch(ctx context.Context) ([]news.Item, error) {
	var body string
	err := retry.WithRetry(ctx, s.cfg.Retry, func() error {
		resp, err := s.client.Get(ctx, s.cfg.URL, nil)
		if err != nil {
			return err
		}
		if resp.StatusCode() != http.StatusOK {
			err := fmt.Errorf("status %d body: %s", resp.StatusCode(), httpclient.Snippet(resp.Body()))
			if resp.StatusCode() >= 400 && resp.StatusCode() < 500 {
				return retry.Permanent(err)
			}
			return err
		}
		body = string(resp.Body())
		return nil
	})
	if err != nil {
		return nil, &news.FetchError{Source: s.cfg.Name, Err: err}
	}

	feed, err := s.parser.ParseString(body)
	if err != nil {
		return nil, &news.FetchError{Source: s.cfg.Name, Err: fmt.Errorf("parse feed: %w", err)}
	}

	entries := newestFirst(feed.Items)
	if len(entries) > s.cfg.MaxItems {
		entries = entries[:s.cfg.MaxItems]
	}

	items := make([]news.Item, 0, len(entries))
	for _, e := range entries {
		it, err := news.NewItem(
			e.GUID,
			news.PlainText(e.Title),
			news.PlainText(firstNonEmpty(e.Description, e.Content)),
			resolveURL(e.Link, s.cfg.URL),
			resolveURL(imageOf(e), s.cfg.URL),
			s.cfg.Name,
			publishedOf(e),
		)
		if err != nil {
			logger.Debug("skipping feed entry", "source", s.cfg.Name, "error", err)
			continue
		}
		items = append(items, it)
	}

	logger.Debug("feed fetched", "source", s.cfg.Name, "entries", len(feed.Items), "kept", len(items))
	return items, nil
}

// newestFirst sorts by date when every entry has one; otherwise the feed's own order is kept.
func newestFirst(in []*gofeed.Item) []*gofeed.Item {
	out := make([]*gofeed.Item, 0, len(in))
	for _, e := range in {
		if e != nil {
			out = append(out, e)
		}
	}
	for _, e := range out {
		if publishedOf(e).IsZero() {
			return out
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return publishedOf(out[i]).After(publishedOf(out[j]))
	})
	return out
}

func publishedOf(e *gofeed.Item) time.Time {
	if e.PublishedParsed != nil {
		return *e.PublishedParsed
	}
	if e.UpdatedParsed != nil {
		return *e.UpdatedParsed
	}
	return time.Time{}
}

// imageOf looks at media:content, media:thumbnail, image enclosures and the item image, in that order.
func imageOf(e *gofeed.Item) string {
	if media, ok := e.Extensions["media"]; ok {
		for _, key := range []string{"content", "thumbnail"} {
			for _, ext := range media[key] {
				if u := strings.TrimSpace(ext.Attrs["url"]); u != "" {
					if medium := ext.Attrs["medium"]; medium == "" || medium == "image" {
						return u
					}
				}
			}
		}
		for _, group := range media["group"] {
			for _, ext := range group.Children["content"] {
				if u := strings.TrimSpace(ext.Attrs["url"]); u != "" {
					return u
				}
			}
		}
	}
	for _, enc := range e.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image") && enc.URL != "" {
			return enc.URL
		}
	}
	if e.Image != nil {
		return e.Image.URL
	}
	return ""
}

func resolveURL(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.IsAbs() {
		return raw
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}
	return baseURL.ResolveReference(parsed).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
