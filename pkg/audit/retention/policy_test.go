package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"auditlog/pkg/audit"
)

func TestPolicy_EffectiveRetention_FallsBackToDefault(t *testing.T) {
	p := Policy{Default: For(30 * 24 * time.Hour)}
	got := p.EffectiveRetention(audit.CategorySystem, audit.SeverityInfo)
	assert.Equal(t, 30*24*time.Hour, got.Span)
}

func TestPolicy_EffectiveRetention_CategoryOverrideWins(t *testing.T) {
	p := Policy{
		Default:           For(30 * 24 * time.Hour),
		CategoryOverrides: map[audit.Category]Duration{audit.CategorySecurity: For(400 * 24 * time.Hour)},
	}
	got := p.EffectiveRetention(audit.CategorySecurity, audit.SeverityInfo)
	assert.Equal(t, 400*24*time.Hour, got.Span)
}

func TestPolicy_EffectiveRetention_HighSeverityMultiplierExtends(t *testing.T) {
	p := Policy{Default: For(100 * time.Hour), HighMultiplier: 2}
	got := p.EffectiveRetention(audit.CategorySystem, audit.SeverityHigh)
	assert.Equal(t, 200*time.Hour, got.Span)
}

func TestPolicy_EffectiveRetention_CriticalSeverityMultiplierExtends(t *testing.T) {
	p := Policy{Default: For(100 * time.Hour), CriticalMultiplier: 3}
	got := p.EffectiveRetention(audit.CategorySystem, audit.SeverityCritical)
	assert.Equal(t, 300*time.Hour, got.Span)
}

func TestPolicy_EffectiveRetention_MultiplierNeverShortens(t *testing.T) {
	p := Policy{Default: For(100 * time.Hour), HighMultiplier: 0.1}
	got := p.EffectiveRetention(audit.CategorySystem, audit.SeverityHigh)
	assert.Equal(t, 100*time.Hour, got.Span, "multiplier below 1 is clamped to 1")
}

func TestPolicy_EffectiveRetention_IndefiniteIgnoresMultiplier(t *testing.T) {
	p := Policy{Default: Indefinite(), CriticalMultiplier: 5}
	got := p.EffectiveRetention(audit.CategorySystem, audit.SeverityCritical)
	assert.True(t, got.Indefinite)
}

func TestRetain(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, Retain(now, now.Add(-1*time.Hour), For(2*time.Hour)))
	assert.False(t, Retain(now, now.Add(-3*time.Hour), For(2*time.Hour)))
	assert.True(t, Retain(now, now.Add(-1000*24*time.Hour), Indefinite()))
}
