//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"auditlog/migrations"
	"auditlog/pkg/audit"
	"auditlog/pkg/audit/store/postgres"
	"auditlog/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(migrations.Up(s.postgres.DB))
	s.store = postgres.New(s.postgres.DB)
}

func (s *PostgresStoreSuite) TearDownTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background(), "audit_events"))
}

func (s *PostgresStoreSuite) newEvent(ts time.Time) audit.Event {
	event, err := audit.NewBuilder(audit.EnrichmentContext{}, audit.CategorySecurity, audit.ActionLoginSucceeded).Build()
	s.Require().NoError(err)
	event.Timestamp = ts
	return event
}

func (s *PostgresStoreSuite) TestPersistThenByID() {
	event := s.newEvent(time.Now().UTC())
	s.Require().NoError(s.store.Persist(context.Background(), event))

	row, err := s.store.ByID(context.Background(), event.ID.String())
	s.Require().NoError(err)
	s.Equal(event.ID.String(), row.ID)
	s.Equal(string(event.Category), row.Category)
	s.NotEmpty(row.Checksum)
}

func (s *PostgresStoreSuite) TestPersistIsIdempotentOnConflict() {
	event := s.newEvent(time.Now().UTC())
	s.Require().NoError(s.store.Persist(context.Background(), event))
	s.Require().NoError(s.store.Persist(context.Background(), event))

	_, err := s.store.ByID(context.Background(), event.ID.String())
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestPersistBatchIsAllOrNothing() {
	now := time.Now().UTC()
	batch := audit.Batch{Events: []audit.CapturedEvent{
		{Event: s.newEvent(now)},
		{Event: s.newEvent(now.Add(time.Second))},
	}}
	s.Require().NoError(s.store.PersistBatch(context.Background(), batch))

	for _, c := range batch.Events {
		_, err := s.store.ByID(context.Background(), c.Event.ID.String())
		s.Require().NoError(err)
	}
}

func (s *PostgresStoreSuite) TestOldestBeforeAndDeleteByIDs() {
	now := time.Now().UTC()
	older := s.newEvent(now.Add(-48 * time.Hour))
	newer := s.newEvent(now.Add(-time.Hour))
	s.Require().NoError(s.store.Persist(context.Background(), older))
	s.Require().NoError(s.store.Persist(context.Background(), newer))

	candidates, err := s.store.OldestBefore(context.Background(), now.Add(-24*time.Hour), 10)
	s.Require().NoError(err)
	s.Require().Len(candidates, 1)
	s.Equal(older.ID.String(), candidates[0].EventID)

	s.Require().NoError(s.store.DeleteByIDs(context.Background(), []string{older.ID.String()}))
	_, err = s.store.ByID(context.Background(), older.ID.String())
	s.Error(err)
}
