// Package audit implements the hard core of the tamper-evident audit
// logging subsystem: the event model, the non-blocking capture pipeline,
// the batcher, and the contracts the indexed store, chain log, integrity
// monitor, and retention engine build on.
package audit

import (
	"time"

	"auditlog/pkg/audit/id"
)

// Event is the atomic, immutable unit of the audit trail. Construct one
// only through Builder.Build; once handed to Capture it must not be
// mutated (invariant c).
type Event struct {
	ID        id.EventID
	Timestamp time.Time
	Category  Category
	Action    Action
	Severity  Severity
	Actor     Actor
	Target    *Target
	Outcome   Outcome
	Metadata  Metadata

	CorrelationID string
	IPAddress     string
	UserAgent     string
}

// ActorIdentifier returns the deterministic derived actor identifier
// string (invariant d).
func (e Event) ActorIdentifier() string { return e.Actor.Identifier() }
