//go:build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type PostgresStoreSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	store     Store
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("footnews"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	store, err := Open(s.ctx, Options{Driver: DriverPostgres, DSN: connStr})
	s.Require().NoError(err)
	s.store = store
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.store != nil {
		s.store.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.store.(*sqlStore).db.ExecContext(s.ctx, "DELETE FROM published")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestRecordIsIdempotent() {
	rec := PublishedRecord{Identity: "pg-1", Title: "Barça sign", SourceName: "Sport"}
	s.Require().NoError(s.store.RecordPublished(s.ctx, rec))
	s.Require().NoError(s.store.RecordPublished(s.ctx, rec))

	seen, err := s.store.HasBeenPublished(s.ctx, "pg-1")
	s.Require().NoError(err)
	s.True(seen)

	st, err := s.store.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, st.Total)
	s.Equal(1, st.BySource["Sport"])
}

func (s *PostgresStoreSuite) TestRecentNewestFirst() {
	now := time.Now()
	s.Require().NoError(s.store.RecordPublished(s.ctx, PublishedRecord{Identity: "old", Title: "old", PublishedAt: now.Add(-time.Hour)}))
	s.Require().NoError(s.store.RecordPublished(s.ctx, PublishedRecord{Identity: "new", Title: "new", PublishedAt: now}))

	recent, err := s.store.Recent(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal("new", recent[0].Identity)
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}
