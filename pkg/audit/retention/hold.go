package retention

import (
	"time"

	"auditlog/pkg/audit"
)

// Hold is an external override forbidding deletion of any event matching
// its category set (empty means all categories) within its time range
// (zero bounds mean unbounded). An expired hold is ignored. Holds compose
// by union: any applicable, unexpired hold protects the event.
type Hold struct {
	ID         string
	Categories []audit.Category
	RangeStart time.Time
	RangeEnd   time.Time
	Expiry     time.Time
}

func (h Hold) expired(now time.Time) bool {
	return !h.Expiry.IsZero() && now.After(h.Expiry)
}

func (h Hold) matchesCategory(category audit.Category) bool {
	if len(h.Categories) == 0 {
		return true
	}
	for _, c := range h.Categories {
		if c == category {
			return true
		}
	}
	return false
}

func (h Hold) matchesTimestamp(ts time.Time) bool {
	if !h.RangeStart.IsZero() && ts.Before(h.RangeStart) {
		return false
	}
	if !h.RangeEnd.IsZero() && ts.After(h.RangeEnd) {
		return false
	}
	return true
}

// Matches reports whether h, evaluated at now, protects an event of the
// given category timestamped ts.
func (h Hold) Matches(now time.Time, category audit.Category, ts time.Time) bool {
	if h.expired(now) {
		return false
	}
	return h.matchesCategory(category) && h.matchesTimestamp(ts)
}

// HoldSet is the union of active holds. AnyMatches implements hold
// dominance: if any hold in the set matches, the event is protected
// regardless of the policy's eligibility rule.
type HoldSet []Hold

func (hs HoldSet) AnyMatches(now time.Time, category audit.Category, ts time.Time) bool {
	for _, h := range hs {
		if h.Matches(now, category, ts) {
			return true
		}
	}
	return false
}

// HoldProvider supplies the currently active holds. The Redis-backed
// implementation (pkg/audit/retention/holdcache) refreshes this from a
// shared cache so multiple retention engine instances observe the same
// holds without a database round trip per candidate.
type HoldProvider interface {
	ActiveHolds(category audit.Category) (HoldSet, error)
}

// StaticHolds is a HoldProvider backed by a fixed in-memory set, used in
// tests and any deployment that manages holds outside the cache.
type StaticHolds HoldSet

func (s StaticHolds) ActiveHolds(audit.Category) (HoldSet, error) {
	return HoldSet(s), nil
}
