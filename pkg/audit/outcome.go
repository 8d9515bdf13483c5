package audit

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// OutcomeType discriminates the Outcome tagged union.
type OutcomeType string

const (
	OutcomeTypeSuccess OutcomeType = "success"
	OutcomeTypeFailure OutcomeType = "failure"
	OutcomeTypeDenied  OutcomeType = "denied"
	OutcomeTypePending OutcomeType = "pending"
	OutcomeTypeUnknown OutcomeType = "unknown"
)

// Outcome is a tagged union describing how an event resolved.
type Outcome struct {
	Type   OutcomeType
	Reason string
}

func OutcomeSuccess() Outcome             { return Outcome{Type: OutcomeTypeSuccess} }
func OutcomeFailure(reason string) Outcome { return Outcome{Type: OutcomeTypeFailure, Reason: reason} }
func OutcomeDenied(reason string) Outcome  { return Outcome{Type: OutcomeTypeDenied, Reason: reason} }
func OutcomePending() Outcome             { return Outcome{Type: OutcomeTypePending} }
func OutcomeUnknown() Outcome             { return Outcome{Type: OutcomeTypeUnknown} }

type outcomeWire struct {
	Type   OutcomeType `json:"type"`
	Reason string      `json:"reason,omitempty"`
}

// MarshalJSON renders the discriminator-tagged object form.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(outcomeWire{Type: o.Type, Reason: o.Reason})
}

// UnmarshalJSON parses the discriminator-tagged object form, rejecting any
// Type outside the closed set.
func (o *Outcome) UnmarshalJSON(b []byte) error {
	var w outcomeWire
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("unmarshal outcome: %w", err)
	}
	switch w.Type {
	case OutcomeTypeSuccess, OutcomeTypeFailure, OutcomeTypeDenied, OutcomeTypePending, OutcomeTypeUnknown:
	default:
		return newDeserializationError("outcome.type", string(w.Type))
	}
	*o = Outcome{Type: w.Type, Reason: w.Reason}
	return nil
}
