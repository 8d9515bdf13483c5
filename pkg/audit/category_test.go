package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_IsValid(t *testing.T) {
	assert.True(t, CategorySecurity.IsValid())
	assert.False(t, Category("not_a_category").IsValid())
}

func TestCategory_JSONRoundTrip(t *testing.T) {
	b, err := CategoryForge.MarshalJSON()
	require.NoError(t, err)

	var got Category
	require.NoError(t, got.UnmarshalJSON(b))
	assert.Equal(t, CategoryForge, got)
}

func TestCategory_UnmarshalRejectsUnknownToken(t *testing.T) {
	var c Category
	err := c.UnmarshalJSON([]byte(`"not_a_category"`))
	assert.Error(t, err)
}

func TestOutcome_JSONRoundTrip(t *testing.T) {
	o := OutcomeFailure("bad password")
	b, err := o.MarshalJSON()
	require.NoError(t, err)

	var got Outcome
	require.NoError(t, got.UnmarshalJSON(b))
	assert.Equal(t, o, got)
}

func TestOutcome_UnmarshalRejectsUnknownType(t *testing.T) {
	var o Outcome
	err := o.UnmarshalJSON([]byte(`{"type":"maybe"}`))
	assert.Error(t, err)
}

func TestSeverity_JSONRoundTrip(t *testing.T) {
	for _, s := range []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		b, err := s.MarshalJSON()
		require.NoError(t, err)

		var got Severity
		require.NoError(t, got.UnmarshalJSON(b))
		assert.Equal(t, s, got)
	}
}

func TestSeverity_UnmarshalRejectsUnknownToken(t *testing.T) {
	var s Severity
	err := s.UnmarshalJSON([]byte(`"extreme"`))
	assert.Error(t, err)
}

func TestSeverity_AtLeast(t *testing.T) {
	assert.True(t, SeverityHigh.AtLeast(SeverityLow))
	assert.False(t, SeverityLow.AtLeast(SeverityHigh))
	assert.True(t, SeverityMedium.AtLeast(SeverityMedium))
}

func TestMetadata_ValidateAcceptsStructuredValues(t *testing.T) {
	m := Metadata{
		"str":    "value",
		"num":    42,
		"flag":   true,
		"nested": Metadata{"inner": "ok"},
		"list":   []any{"a", 1, false},
	}
	assert.NoError(t, m.Validate())
}

func TestMetadata_ValidateRejectsUnsupportedType(t *testing.T) {
	m := Metadata{"bad": struct{}{}}
	assert.Error(t, m.Validate())
}

func TestMetadata_CloneIsDeepAndDoesNotAliasNestedMaps(t *testing.T) {
	original := Metadata{"nested": Metadata{"inner": "value"}}
	clone := original.clone()

	clone["nested"].(Metadata)["inner"] = "mutated"

	assert.Equal(t, "value", original["nested"].(Metadata)["inner"])
}

func TestMetadata_CloneOfNilIsNil(t *testing.T) {
	var m Metadata
	assert.Nil(t, m.clone())
}
