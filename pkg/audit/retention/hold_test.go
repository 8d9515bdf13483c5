package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"auditlog/pkg/audit"
)

func TestHold_MatchesEmptyCategoriesMeansAll(t *testing.T) {
	h := Hold{ID: "legal-1"}
	now := time.Now()
	assert.True(t, h.Matches(now, audit.CategorySecurity, now))
}

func TestHold_MatchesRestrictsToListedCategories(t *testing.T) {
	h := Hold{ID: "legal-1", Categories: []audit.Category{audit.CategorySecurity}}
	now := time.Now()
	assert.True(t, h.Matches(now, audit.CategorySecurity, now))
	assert.False(t, h.Matches(now, audit.CategorySystem, now))
}

func TestHold_ExpiredHoldNeverMatches(t *testing.T) {
	now := time.Now()
	h := Hold{ID: "legal-1", Expiry: now.Add(-time.Hour)}
	assert.False(t, h.Matches(now, audit.CategorySystem, now))
}

func TestHold_RangeBounds(t *testing.T) {
	now := time.Now()
	h := Hold{
		ID:         "legal-1",
		RangeStart: now.Add(-time.Hour),
		RangeEnd:   now.Add(time.Hour),
	}
	assert.True(t, h.Matches(now, audit.CategorySystem, now))
	assert.False(t, h.Matches(now, audit.CategorySystem, now.Add(-2*time.Hour)))
	assert.False(t, h.Matches(now, audit.CategorySystem, now.Add(2*time.Hour)))
}

func TestHoldSet_AnyMatchesIsUnion(t *testing.T) {
	now := time.Now()
	set := HoldSet{
		{ID: "a", Categories: []audit.Category{audit.CategorySystem}},
		{ID: "b", Categories: []audit.Category{audit.CategorySecurity}},
	}
	assert.True(t, set.AnyMatches(now, audit.CategorySecurity, now))
	assert.False(t, set.AnyMatches(now, audit.CategoryAPICall, now))
}

func TestStaticHolds_ImplementsHoldProvider(t *testing.T) {
	var _ HoldProvider = StaticHolds{}
}
