// Package retention implements the Retention Engine: the eligibility rule
// that decides whether an indexed-store row may be deleted, and the
// enforcement pass that chunks through candidates applying it. It never
// touches the chain log, which is strictly append-only.
package retention

import (
	"time"

	"auditlog/pkg/audit"
)

// Duration is either a fixed span or Indefinite, matching the retention
// policy's category overrides and default.
type Duration struct {
	Indefinite bool
	Span       time.Duration
}

// Indefinite is the sentinel for "never delete."
func Indefinite() Duration { return Duration{Indefinite: true} }

// For builds a fixed-span Duration.
func For(span time.Duration) Duration { return Duration{Span: span} }

// Policy is the default retention duration, a per-category override
// mapping, and severity multipliers that may only extend the effective
// retention, never shorten it.
type Policy struct {
	Default            Duration
	CategoryOverrides  map[audit.Category]Duration
	HighMultiplier     float64
	CriticalMultiplier float64
}

func (p Policy) withDefaults() Policy {
	if p.HighMultiplier < 1 {
		p.HighMultiplier = 1
	}
	if p.CriticalMultiplier < 1 {
		p.CriticalMultiplier = 1
	}
	return p
}

// EffectiveRetention computes the category override (falling back to
// Default) and applies the severity multiplier for High/Critical.
func (p Policy) EffectiveRetention(category audit.Category, severity audit.Severity) Duration {
	p = p.withDefaults()

	base := p.Default
	if override, ok := p.CategoryOverrides[category]; ok {
		base = override
	}
	if base.Indefinite {
		return base
	}

	multiplier := 1.0
	switch severity {
	case audit.SeverityCritical:
		multiplier = p.CriticalMultiplier
	case audit.SeverityHigh:
		multiplier = p.HighMultiplier
	}
	return Duration{Span: time.Duration(float64(base.Span) * multiplier)}
}

// Retain reports whether an event timestamped ts should be retained under
// effective, evaluated relative to now.
func Retain(now, ts time.Time, effective Duration) bool {
	if effective.Indefinite {
		return true
	}
	return !ts.Before(now.Add(-effective.Span))
}
