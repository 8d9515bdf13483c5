// Package id provides the typed identifiers used across the audit core,
// following the same parse-at-the-boundary discipline the rest of the
// platform uses for its domain identifiers.
package id

import (
	"auditlog/internal/apperr"

	"github.com/google/uuid"
)

// EventID uniquely identifies an AuditEvent. It is assigned at
// construction and never reused.
type EventID uuid.UUID

// NewEventID allocates a fresh, random EventID.
func NewEventID() EventID {
	return EventID(uuid.New())
}

// ParseEventID validates and parses an external string into an EventID.
// Empty strings and the nil UUID are rejected: an event ID must uniquely
// identify something.
func ParseEventID(s string) (EventID, error) {
	if s == "" {
		return EventID{}, apperr.New(apperr.CodePolicy, "event id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return EventID{}, apperr.Wrap(apperr.CodePolicy, "invalid event id", err)
	}
	if u == uuid.Nil {
		return EventID{}, apperr.New(apperr.CodePolicy, "event id cannot be nil")
	}
	return EventID(u), nil
}

// String renders the canonical UUID string form.
func (id EventID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether this is the zero-value EventID.
func (id EventID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
