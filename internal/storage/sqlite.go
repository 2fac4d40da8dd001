package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/deusflow/footnews/internal/logger"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS published (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	identity TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	link TEXT NOT NULL DEFAULT '',
	source_name TEXT NOT NULL DEFAULT '',
	published_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_published_at ON published(published_at);
`

// NewSQLite opens (or creates) the store file at path.
func NewSQLite(ctx context.Context, path string) (Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one writer, no SQLITE_BUSY between the loop and the monitor
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("sqlite store ready", "path", path)
	return &sqlStore{db: db}, nil
}
