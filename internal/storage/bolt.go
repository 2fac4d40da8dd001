package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/deusflow/footnews/internal/news"
)

var publishedBucket = []byte("published")

// BoltStore keeps records as JSON values keyed by identity.
type BoltStore struct {
	db *bolt.DB
}

func NewBolt(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(publishedBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) HasBeenPublished(_ context.Context, identity string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(publishedBucket).Get([]byte(identity)) != nil
		return nil
	})
	if err != nil {
		return false, &news.StoreError{Identity: identity, Op: "read", Err: err}
	}
	return found, nil
}

func (s *BoltStore) RecordPublished(_ context.Context, rec PublishedRecord) error {
	rec = normalize(rec)
	data, err := json.Marshal(rec)
	if err != nil {
		return &news.StoreError{Identity: rec.Identity, Op: "write", Err: err}
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(publishedBucket)
		if b.Get([]byte(rec.Identity)) != nil {
			return nil
		}
		return b.Put([]byte(rec.Identity), data)
	})
	if err != nil {
		return &news.StoreError{Identity: rec.Identity, Op: "write", Err: err}
	}
	return nil
}

func (s *BoltStore) all() ([]PublishedRecord, error) {
	var out []PublishedRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(publishedBucket).ForEach(func(_, v []byte) error {
			var rec PublishedRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	return out, err
}

func (s *BoltStore) Recent(_ context.Context, limit int) ([]PublishedRecord, error) {
	recs, err := s.all()
	if err != nil {
		return nil, fmt.Errorf("scan bolt: %w", err)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].PublishedAt.After(recs[j].PublishedAt)
	})
	if limit = defaultLimit(limit); len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (s *BoltStore) Stats(_ context.Context) (Stats, error) {
	st := Stats{BySource: make(map[string]int)}
	recs, err := s.all()
	if err != nil {
		return st, fmt.Errorf("scan bolt: %w", err)
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	for _, r := range recs {
		st.Total++
		if r.PublishedAt.After(cutoff) {
			st.LastDay++
		}
		st.BySource[r.SourceName]++
	}
	return st, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
