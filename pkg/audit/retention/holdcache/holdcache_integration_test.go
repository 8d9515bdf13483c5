//go:build integration

package holdcache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"auditlog/pkg/audit"
	"auditlog/pkg/audit/retention"
	"auditlog/pkg/audit/retention/holdcache"
	"auditlog/pkg/testutil/containers"
)

type HoldCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *holdcache.Cache
}

func TestHoldCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(HoldCacheSuite))
}

func (s *HoldCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *HoldCacheSuite) SetupTest() {
	require.NoError(s.T(), s.redis.FlushAll(context.Background()))
	s.cache = holdcache.New(s.redis.Client, "", 50*time.Millisecond)
}

func (s *HoldCacheSuite) TestActiveHoldsIsEmptyWhenKeyMissing() {
	holds, err := s.cache.ActiveHolds(audit.CategorySecurity)
	s.Require().NoError(err)
	s.Empty(holds)
}

func (s *HoldCacheSuite) TestPutThenActiveHoldsReturnsStoredSet() {
	want := retention.HoldSet{{ID: "legal-1", Categories: []audit.Category{audit.CategorySecurity}}}
	s.Require().NoError(s.cache.Put(context.Background(), want))

	got, err := s.cache.ActiveHolds(audit.CategorySecurity)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(want[0].ID, got[0].ID)
}

func (s *HoldCacheSuite) TestActiveHoldsRefreshesAfterTTLExpires() {
	s.Require().NoError(s.cache.Put(context.Background(), retention.HoldSet{{ID: "legal-1"}}))
	_, err := s.cache.ActiveHolds(audit.CategorySecurity)
	s.Require().NoError(err)

	time.Sleep(75 * time.Millisecond)

	updated := holdcache.New(s.redis.Client, "", 50*time.Millisecond)
	s.Require().NoError(updated.Put(context.Background(), retention.HoldSet{{ID: "legal-2"}}))

	got, err := s.cache.ActiveHolds(audit.CategorySecurity)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("legal-2", got[0].ID)
}
