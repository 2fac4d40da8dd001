// Package monitor serves health, metrics and a feed of recent posts over HTTP.
package monitor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"

	"github.com/deusflow/footnews/internal/logger"
	"github.com/deusflow/footnews/internal/metrics"
	"github.com/deusflow/footnews/internal/ratelimit"
	"github.com/deusflow/footnews/internal/storage"
)

const feedItems = 20

// Store is the read side of the dedup store.
type Store interface {
	Recent(ctx context.Context, limit int) ([]storage.PublishedRecord, error)
	Stats(ctx context.Context) (storage.Stats, error)
}

type Options struct {
	Store   Store
	Metrics *metrics.Metrics
	Limiter *ratelimit.AIRateLimiter // optional
	Title   string
	Link    string // channel URL used as the feed link
}

type Server struct {
	opts   Options
	engine *gin.Engine
	srv    *http.Server
}

func New(opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Global
	}
	if opts.Title == "" {
		opts.Title = "Football news"
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{opts: opts, engine: r}
	r.GET("/health", s.health)
	r.GET("/metrics", s.metrics)
	r.GET("/feed.xml", s.feed)
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// Start listens on addr in the background.
func (s *Server) Start(addr string) {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("monitoring server listening", "addr", addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("monitoring server stopped", "error", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	if !s.opts.Metrics.Healthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "degraded",
			"timestamp": time.Now().UTC(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) metrics(c *gin.Context) {
	out := gin.H{"bot": s.opts.Metrics.GetStats()}

	if s.opts.Limiter != nil {
		out["ai"] = s.opts.Limiter.GetStats()
	}
	if s.opts.Store != nil {
		if st, err := s.opts.Store.Stats(c.Request.Context()); err == nil {
			out["store"] = st
		} else {
			out["store_error"] = err.Error()
		}
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) feed(c *gin.Context) {
	if s.opts.Store == nil {
		c.Status(http.StatusNotFound)
		return
	}

	recs, err := s.opts.Store.Recent(c.Request.Context(), feedItems)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rss, err := BuildFeed(s.opts.Title, s.opts.Link, recs).ToRss()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

// BuildFeed renders published records newest first.
func BuildFeed(title, link string, recs []storage.PublishedRecord) *feeds.Feed {
	now := time.Now()
	feed := &feeds.Feed{
		Title:       title,
		Description: "Posts recently published to the channel",
		Link:        &feeds.Link{Href: link},
		Created:     now,
		Updated:     now,
	}

	for _, r := range recs {
		item := &feeds.Item{
			Title:   r.Title,
			Id:      r.Identity,
			Created: r.PublishedAt,
		}
		if r.Link != "" {
			item.Link = &feeds.Link{Href: r.Link}
		}
		if r.SourceName != "" {
			item.Author = &feeds.Author{Name: r.SourceName}
		}
		feed.Items = append(feed.Items, item)
	}
	return feed
}
