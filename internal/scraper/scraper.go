package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/footnews/internal/httpclient"
	"github.com/deusflow/footnews/internal/logger"
	"github.com/deusflow/footnews/internal/news"
	"github.com/deusflow/footnews/internal/retry"
)

const (
	DefaultMaxItems  = 8
	maxTitleRunes    = 250
	maxHTMLBodyBytes = 2 << 20 // 2 MiB
)

// DefaultSelectors is the generic article-list cascade.
var DefaultSelectors = []string{
	"article",
	".news-item",
	".news-list__item",
	".Card",
}

// Config describes one HTML page to scrape.
type Config struct {
	Name      string
	URL       string
	BaseURL   string // relative links resolve against this; defaults to URL
	Selectors []string
	MaxItems  int
	Retry     retry.RetryConfig
}

// Source scrapes an article list page into news items.
type Source struct {
	cfg    Config
	client httpclient.Client
}

func New(cfg Config, client httpclient.Client) *Source {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	if len(cfg.Selectors) == 0 {
		cfg.Selectors = DefaultSelectors
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = cfg.URL
	}
	if cfg.Name == "" {
		cfg.Name = cfg.URL
	}
	return &Source{cfg: cfg, client: client}
}

func (s *Source) Name() string { return s.cfg.Name }

// Fetch downloads the page and extracts items with the first selector that matches.
func (s *Source) Fetch(ctx context.Context) ([]news.Item, error) {
	var body []byte
	err := retry.WithRetry(ctx, s.cfg.Retry, func() error {
		resp, err := s.client.Get(ctx, s.cfg.URL, nil)
		if err != nil {
			return err
		}
		if resp.StatusCode() != http.StatusOK {
			err := fmt.Errorf("HTTP error: %d", resp.StatusCode())
			if resp.StatusCode() >= 400 && resp.StatusCode() < 500 {
				return retry.Permanent(err)
			}
			return err
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, &news.FetchError{Source: s.cfg.Name, Err: err}
	}

	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &news.FetchError{Source: s.cfg.Name, Err: fmt.Errorf("parse html: %w", err)}
	}

	items, selector := s.Extract(doc)
	if selector == "" {
		return nil, &news.FetchError{Source: s.cfg.Name, Err: fmt.Errorf("no selector matched (%s)", strings.Join(s.cfg.Selectors, ", "))}
	}

	logger.Debug("page scraped", "source", s.cfg.Name, "selector", selector, "items", len(items))
	return items, nil
}

// Extract runs the selector cascade over doc. The first selector with at least one
// match wins; later selectors are not evaluated. It returns the winning selector.
func (s *Source) Extract(doc *goquery.Document) ([]news.Item, string) {
	for _, selector := range s.cfg.Selectors {
		nodes := doc.Find(selector)
		if nodes.Length() == 0 {
			continue
		}

		var items []news.Item
		nodes.EachWithBreak(func(i int, node *goquery.Selection) bool {
			if i >= s.cfg.MaxItems {
				return false
			}
			if it, ok := s.itemFrom(node); ok {
				items = append(items, it)
			}
			return true
		})
		return items, selector
	}
	return nil, ""
}

func (s *Source) itemFrom(node *goquery.Selection) (news.Item, bool) {
	title := extractTitle(node)

	link := s.cfg.URL
	if href, ok := node.Find("a[href]").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		link = resolveURL(href, s.cfg.BaseURL)
	} else if href, ok := node.Attr("href"); ok && strings.TrimSpace(href) != "" {
		link = resolveURL(href, s.cfg.BaseURL)
	}

	summary := strings.TrimSpace(node.Find("p").First().Text())

	image := ""
	if src, ok := node.Find("img[src]").First().Attr("src"); ok {
		image = resolveURL(src, s.cfg.BaseURL)
	}

	published := time.Time{}
	if dt, ok := node.Find("time[datetime]").First().Attr("datetime"); ok {
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(dt)); err == nil {
			published = t
		}
	}

	// A link that only points back at the listing page is not a stable identity.
	guid := link
	if link == s.cfg.URL {
		guid = title
	}

	it, err := news.NewItem(guid, title, summary, link, image, s.cfg.Name, published)
	if err != nil {
		return news.Item{}, false
	}
	return it, true
}

// extractTitle prefers a heading and falls back to the node's whole text.
func extractTitle(node *goquery.Selection) string {
	selectors := []string{"h1", "h2", "h3", "h4", ".title", ".headline"}
	for _, selector := range selectors {
		if t := strings.TrimSpace(node.Find(selector).First().Text()); t != "" {
			return truncateRunes(t, maxTitleRunes)
		}
	}
	text := strings.Join(strings.Fields(node.Text()), " ")
	return truncateRunes(text, maxTitleRunes)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// resolveURL resolves a possibly relative URL against a base URL.
func resolveURL(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}

	return baseURL.ResolveReference(parsed).String()
}
