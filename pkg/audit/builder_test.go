package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_AppliesActionDefaultSeverity(t *testing.T) {
	enrich := EnrichmentContext{Actor: NewSystemActor("auditd", "1")}

	event, err := NewBuilder(enrich, CategorySecurity, ActionSecurityAlert).Build()
	require.NoError(t, err)
	assert.Equal(t, SeverityCritical, event.Severity)
}

func TestBuilder_SeverityOverrideWins(t *testing.T) {
	enrich := EnrichmentContext{Actor: NewSystemActor("auditd", "1")}

	event, err := NewBuilder(enrich, CategorySecurity, ActionSecurityAlert).
		Severity(SeverityLow).
		Build()
	require.NoError(t, err)
	assert.Equal(t, SeverityLow, event.Severity)
}

func TestBuilder_DefaultsOutcomeToUnknown(t *testing.T) {
	event, err := NewBuilder(EnrichmentContext{}, CategorySystem, ActionSystemStarted).Build()
	require.NoError(t, err)
	assert.Equal(t, OutcomeTypeUnknown, event.Outcome.Type)
}

func TestBuilder_RejectsUnknownCategory(t *testing.T) {
	_, err := NewBuilder(EnrichmentContext{}, Category("not_a_category"), ActionSystemStarted).Build()
	assert.Error(t, err)
}

func TestBuilder_MetadataLastWriteWins(t *testing.T) {
	event, err := NewBuilder(EnrichmentContext{}, CategorySystem, ActionSystemStarted).
		Metadata("key", "first").
		Metadata("key", "second").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "second", event.Metadata["key"])
}

func TestBuilder_EachEventGetsAUniqueID(t *testing.T) {
	b := func() (Event, error) { return NewBuilder(EnrichmentContext{}, CategorySystem, ActionSystemStarted).Build() }

	first, err := b()
	require.NoError(t, err)
	second, err := b()
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}
