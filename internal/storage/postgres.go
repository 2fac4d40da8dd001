package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/deusflow/footnews/internal/logger"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS published (
	id BIGSERIAL PRIMARY KEY,
	identity TEXT UNIQUE NOT NULL,
	title TEXT NOT NULL,
	link TEXT NOT NULL DEFAULT '',
	source_name VARCHAR(100) NOT NULL DEFAULT '',
	published_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_published_at ON published(published_at);
`

// NewPostgres connects to dsn and creates the schema if needed.
func NewPostgres(ctx context.Context, dsn string) (Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres store needs DATABASE_URL")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("PostgreSQL store connected")
	return &sqlStore{db: db}, nil
}
