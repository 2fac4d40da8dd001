package app

import (
	"github.com/deusflow/footnews/internal/config"
	"github.com/deusflow/footnews/internal/httpclient"
	"github.com/deusflow/footnews/internal/rss"
	"github.com/deusflow/footnews/internal/scraper"
)

// BuildSources turns the configured source list into adapters.
func BuildSources(cfg *config.Config, client httpclient.Client) []Source {
	sources := make([]Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		switch sc.Type {
		case config.SourceRSS:
			limit := sc.MaxItems
			if limit <= 0 {
				limit = cfg.FeedMaxItems
			}
			sources = append(sources, rss.New(rss.Config{
				Name:     sc.Name,
				URL:      sc.URL,
				MaxItems: limit,
				Retry:    cfg.Retry(),
			}, client))
		case config.SourceScrape:
			limit := sc.MaxItems
			if limit <= 0 {
				limit = cfg.ScrapeMaxItems
			}
			sources = append(sources, scraper.New(scraper.Config{
				Name:      sc.Name,
				URL:       sc.URL,
				BaseURL:   sc.BaseURL,
				Selectors: sc.Selectors,
				MaxItems:  limit,
				Retry:     cfg.Retry(),
			}, client))
		}
	}
	return sources
}
