package audit

import (
	"context"
	"time"
)

// BatcherConfig bounds a batch by size and age. Defaults match the spec's
// documented defaults: 100 events or 1 second, whichever comes first.
type BatcherConfig struct {
	MaxSize int
	MaxAge  time.Duration
}

func (c BatcherConfig) withDefaults() BatcherConfig {
	if c.MaxSize <= 0 {
		c.MaxSize = 100
	}
	if c.MaxAge <= 0 {
		c.MaxAge = time.Second
	}
	return c
}

// Batcher coalesces CapturedEvents from a Capture into Batches bounded by
// size and age. It holds exactly one current batch: events append to it;
// it is emitted and a fresh one started whenever size reaches MaxSize, or
// on a timer tick when the batch is non-empty and older than MaxAge. No
// event is ever split across batches or silently dropped at this stage.
type Batcher struct {
	cfg BatcherConfig
	in  <-chan CapturedEvent
	out chan Batch
}

// NewBatcher reads from in and emits completed batches on the returned
// channel, consumed by one or more persisters.
func NewBatcher(cfg BatcherConfig, in <-chan CapturedEvent) *Batcher {
	cfg = cfg.withDefaults()
	return &Batcher{
		cfg: cfg,
		in:  in,
		out: make(chan Batch, 1),
	}
}

// Batches exposes the emitted-batch channel.
func (b *Batcher) Batches() <-chan Batch { return b.out }

// Run drives the coalescing loop until in is closed or ctx is cancelled.
// On either, it emits whatever partial batch remains before returning, per
// the shutdown contract that requires the Batcher to flush in-flight work.
func (b *Batcher) Run(ctx context.Context) {
	defer close(b.out)

	ticker := time.NewTicker(b.cfg.MaxAge / 2)
	defer ticker.Stop()

	var current []CapturedEvent
	var firstEnqueuedAt time.Time

	emit := func() {
		if len(current) == 0 {
			return
		}
		b.out <- Batch{Events: current, FirstEnqueuedAt: firstEnqueuedAt}
		current = nil
	}

	for {
		select {
		case <-ctx.Done():
			emit()
			return
		case evt, ok := <-b.in:
			if !ok {
				emit()
				return
			}
			if len(current) == 0 {
				firstEnqueuedAt = evt.CapturedAt
			}
			current = append(current, evt)
			if len(current) >= b.cfg.MaxSize {
				emit()
			}
		case <-ticker.C:
			if len(current) > 0 && time.Since(firstEnqueuedAt) >= b.cfg.MaxAge {
				emit()
			}
		}
	}
}
