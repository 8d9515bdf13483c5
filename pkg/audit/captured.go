package audit

import "time"

// CapturedEvent wraps an Event with the wall-clock instant it was
// accepted by the Capture stage, for latency diagnostics. It is owned by
// the pipeline until persisted and is never handed back to producers.
type CapturedEvent struct {
	Event      Event
	CapturedAt time.Time
}
