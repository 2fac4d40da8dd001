// Package storage is the dedup store: which item identities were already posted to the channel.
package storage

import (
	"context"
	"fmt"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"

	DefaultPath = "data/footnews.db"
)

// PublishedRecord is one delivered post. Records are append-only and unique on Identity.
type PublishedRecord struct {
	Identity    string    `db:"identity" json:"identity"`
	Title       string    `db:"title" json:"title"`
	Link        string    `db:"link" json:"link"`
	SourceName  string    `db:"source_name" json:"source"`
	PublishedAt time.Time `db:"-" json:"published_at"`
}

// Stats summarizes the store for diagnostics.
type Stats struct {
	Total    int            `json:"total"`
	LastDay  int            `json:"last_day"`
	BySource map[string]int `json:"by_source"`
}

// Store remembers published identities across restarts.
type Store interface {
	HasBeenPublished(ctx context.Context, identity string) (bool, error)
	// RecordPublished is a no-op when the identity already exists.
	RecordPublished(ctx context.Context, rec PublishedRecord) error
	Recent(ctx context.Context, limit int) ([]PublishedRecord, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

type Options struct {
	Driver string
	Path   string // sqlite and bolt file
	DSN    string // postgres connection string
}

// Open creates the configured backend and its schema.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}

	switch opts.Driver {
	case "", DriverSQLite:
		return NewSQLite(ctx, opts.Path)
	case DriverPostgres:
		return NewPostgres(ctx, opts.DSN)
	case DriverBolt:
		return NewBolt(opts.Path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

func normalize(rec PublishedRecord) PublishedRecord {
	if rec.PublishedAt.IsZero() {
		rec.PublishedAt = time.Now()
	}
	rec.PublishedAt = rec.PublishedAt.UTC()
	return rec
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	return limit
}
