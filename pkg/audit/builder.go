package audit

import (
	"time"

	"auditlog/internal/apperr"
	"auditlog/pkg/audit/id"
)

// EnrichmentContext is the ambient, per-request bag of (actor, correlation
// id, ip, user agent) producers carry alongside a request. It is applied
// when a Builder is created and never mutates an already-built Event.
type EnrichmentContext struct {
	Actor         Actor
	CorrelationID string
	IPAddress     string
	UserAgent     string
}

// Builder assembles an Event one field at a time. Obtain one via
// NewBuilder (or Pipeline.Builder, which supplies the ambient enrichment
// context automatically); call Build to produce the immutable Event.
type Builder struct {
	category Category
	action   Action

	severity    *Severity
	actor       Actor
	target      *Target
	outcome     Outcome
	outcomeSet  bool
	metadata    Metadata

	correlationID string
	ipAddress     string
	userAgent     string
}

// NewBuilder starts a Builder for category/action, seeded with the
// enrichment context's ambient actor, correlation id, ip, and user agent.
func NewBuilder(enrich EnrichmentContext, category Category, action Action) *Builder {
	return &Builder{
		category:      category,
		action:        action,
		actor:         enrich.Actor,
		correlationID: enrich.CorrelationID,
		ipAddress:     enrich.IPAddress,
		userAgent:     enrich.UserAgent,
		metadata:      Metadata{},
	}
}

// Severity overrides the action's default severity. Per invariant (b),
// this is the only way to go below the default; absent a call here, Build
// applies the action's default rather than silently picking something
// lower.
func (b *Builder) Severity(s Severity) *Builder {
	b.severity = &s
	return b
}

// Actor overrides the enrichment-context actor.
func (b *Builder) Actor(a Actor) *Builder {
	b.actor = a
	return b
}

// Target sets the optional resource reference.
func (b *Builder) Target(t *Target) *Builder {
	b.target = t
	return b
}

// Outcome sets the event's outcome.
func (b *Builder) Outcome(o Outcome) *Builder {
	b.outcome = o
	b.outcomeSet = true
	return b
}

// Metadata sets a single metadata key. Last write for a given key wins.
func (b *Builder) Metadata(key string, value any) *Builder {
	if b.metadata == nil {
		b.metadata = Metadata{}
	}
	b.metadata[key] = value
	return b
}

// CorrelationID overrides the enrichment-context correlation id.
func (b *Builder) CorrelationID(s string) *Builder {
	b.correlationID = s
	return b
}

// IPAddress overrides the enrichment-context ip address.
func (b *Builder) IPAddress(s string) *Builder {
	b.ipAddress = s
	return b
}

// UserAgent overrides the enrichment-context user agent.
func (b *Builder) UserAgent(s string) *Builder {
	b.userAgent = s
	return b
}

// Build assigns id and timestamp, applies the action's default severity
// when none was set, and returns the immutable Event.
func (b *Builder) Build() (Event, error) {
	if !b.category.IsValid() {
		return Event{}, apperr.New(apperr.CodePolicy, "unknown event category")
	}

	severity := b.action.DefaultSeverity()
	if b.severity != nil {
		severity = *b.severity
	}

	outcome := b.outcome
	if !b.outcomeSet {
		outcome = OutcomeUnknown()
	}

	meta := b.metadata.clone()
	if err := meta.Validate(); err != nil {
		return Event{}, apperr.Wrap(apperr.CodePolicy, "invalid event metadata", err)
	}

	return Event{
		ID:            id.NewEventID(),
		Timestamp:     time.Now().UTC(),
		Category:      b.category,
		Action:        b.action,
		Severity:      severity,
		Actor:         b.actor,
		Target:        b.target,
		Outcome:       outcome,
		Metadata:      meta,
		CorrelationID: b.correlationID,
		IPAddress:     b.ipAddress,
		UserAgent:     b.userAgent,
	}, nil
}
