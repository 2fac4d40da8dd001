package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/deusflow/footnews/internal/news"
)

// sqlStore implements Store on any sqlx driver whose dialect accepts ON CONFLICT.
type sqlStore struct {
	db *sqlx.DB
}

type recordRow struct {
	PublishedRecord
	PublishedUnix int64 `db:"published_at"`
}

func (s *sqlStore) HasBeenPublished(ctx context.Context, identity string) (bool, error) {
	var one int
	err := s.db.GetContext(ctx, &one, s.db.Rebind(`SELECT 1 FROM published WHERE identity = ?`), identity)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &news.StoreError{Identity: identity, Op: "read", Err: err}
	}
	return true, nil
}

func (s *sqlStore) RecordPublished(ctx context.Context, rec PublishedRecord) error {
	rec = normalize(rec)

	query := s.db.Rebind(`
		INSERT INTO published (identity, title, link, source_name, published_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (identity) DO NOTHING`)

	_, err := s.db.ExecContext(ctx, query, rec.Identity, rec.Title, rec.Link, rec.SourceName, rec.PublishedAt.Unix())
	if err != nil {
		return &news.StoreError{Identity: rec.Identity, Op: "write", Err: err}
	}
	return nil
}

func (s *sqlStore) Recent(ctx context.Context, limit int) ([]PublishedRecord, error) {
	var rows []recordRow
	query := s.db.Rebind(`
		SELECT identity, title, link, source_name, published_at
		FROM published
		ORDER BY published_at DESC, id DESC
		LIMIT ?`)
	if err := s.db.SelectContext(ctx, &rows, query, defaultLimit(limit)); err != nil {
		return nil, fmt.Errorf("select recent: %w", err)
	}

	out := make([]PublishedRecord, 0, len(rows))
	for _, r := range rows {
		rec := r.PublishedRecord
		rec.PublishedAt = time.Unix(r.PublishedUnix, 0).UTC()
		out = append(out, rec)
	}
	return out, nil
}

func (s *sqlStore) Stats(ctx context.Context) (Stats, error) {
	st := Stats{BySource: make(map[string]int)}

	if err := s.db.GetContext(ctx, &st.Total, `SELECT COUNT(*) FROM published`); err != nil {
		return st, fmt.Errorf("count published: %w", err)
	}

	cutoff := time.Now().Add(-24 * time.Hour).Unix()
	if err := s.db.GetContext(ctx, &st.LastDay, s.db.Rebind(`SELECT COUNT(*) FROM published WHERE published_at > ?`), cutoff); err != nil {
		return st, fmt.Errorf("count last day: %w", err)
	}

	var groups []struct {
		Source string `db:"source_name"`
		Count  int    `db:"n"`
	}
	if err := s.db.SelectContext(ctx, &groups, `SELECT source_name, COUNT(*) AS n FROM published GROUP BY source_name`); err != nil {
		return st, fmt.Errorf("count by source: %w", err)
	}
	for _, g := range groups {
		st.BySource[g.Source] = g.Count
	}

	return st, nil
}

func (s *sqlStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
