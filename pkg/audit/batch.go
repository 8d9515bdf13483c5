package audit

import "time"

// Batch is an ordered, non-empty sequence of CapturedEvents plus the
// instant the first of them was enqueued. Created by the Batcher,
// consumed exactly once by a persister; once emitted it is never
// modified.
type Batch struct {
	Events      []CapturedEvent
	FirstEnqueuedAt time.Time
}

// Len returns the number of events in the batch.
func (b Batch) Len() int { return len(b.Events) }
