package audit

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// CaptureConfig sizes the bounded capture channel.
type CaptureConfig struct {
	BufferSize int
	Logger     *slog.Logger
}

func (c CaptureConfig) withDefaults() CaptureConfig {
	if c.BufferSize <= 0 {
		c.BufferSize = 10000
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Capture is the hot-path entry point for producers: Record never blocks,
// dropping on overflow rather than stalling the caller (audit must not
// destabilize callers). RecordAsync trades that guarantee for backpressure
// when a producer has opted in.
type Capture struct {
	ch     chan CapturedEvent
	logger *slog.Logger

	overflowed  atomic.Int64
	closedDrops atomic.Int64
	closed      atomic.Bool
}

// NewCapture builds a Capture. Close marks it terminal so late Record
// calls are counted and dropped instead of sending on a channel nobody
// drains.
func NewCapture(cfg CaptureConfig) *Capture {
	cfg = cfg.withDefaults()
	return &Capture{
		ch:     make(chan CapturedEvent, cfg.BufferSize),
		logger: cfg.Logger,
	}
}

// Events exposes the receive side for the Batcher.
func (c *Capture) Events() <-chan CapturedEvent { return c.ch }

// Record enqueues event without blocking. Under buffer pressure, or after
// Close, it drops the event, bumps the relevant counter, and emits a
// warning log rather than propagating an error — Record has no recoverable
// error path.
func (c *Capture) Record(event Event) {
	if c.closed.Load() {
		c.closedDrops.Add(1)
		c.logger.Warn("audit capture closed, dropping event", "event_id", event.ID.String())
		return
	}
	select {
	case c.ch <- CapturedEvent{Event: event, CapturedAt: time.Now().UTC()}:
	default:
		c.overflowed.Add(1)
		c.logger.Warn("audit capture buffer full, dropping event", "event_id", event.ID.String())
	}
}

// RecordAsync enqueues event, suspending until it is accepted or ctx is
// cancelled (the bounded shutdown signal). A cancelled context counts as a
// drop like any other failure to enqueue.
func (c *Capture) RecordAsync(ctx context.Context, event Event) error {
	if c.closed.Load() {
		c.closedDrops.Add(1)
		return ctx.Err()
	}
	select {
	case c.ch <- CapturedEvent{Event: event, CapturedAt: time.Now().UTC()}:
		return nil
	case <-ctx.Done():
		c.closedDrops.Add(1)
		return ctx.Err()
	}
}

// Close marks the capture terminal. It does not close the underlying
// channel; the Batcher stops on context cancellation rather than on the
// channel closing.
func (c *Capture) Close() {
	c.closed.Store(true)
}

// Degraded reports whether persistent drops have occurred, the "capture
// degraded" observable state the overflow metric backs.
func (c *Capture) Degraded() bool {
	return c.overflowed.Load() > 0 || c.closedDrops.Load() > 0
}

// Overflowed returns the total number of events dropped due to buffer
// pressure.
func (c *Capture) Overflowed() int64 { return c.overflowed.Load() }

// ClosedDrops returns the total number of events dropped because Capture
// had already been closed, plus RecordAsync calls whose context was
// cancelled before the event was enqueued.
func (c *Capture) ClosedDrops() int64 { return c.closedDrops.Load() }

// Pipeline ties an EnrichmentContext to a Capture so producers can go
// straight from a category/action pair to a built, recorded Event without
// repeating ambient request context at every call site.
type Pipeline struct {
	enrich  EnrichmentContext
	capture *Capture
}

// NewPipeline binds enrich to capture.
func NewPipeline(enrich EnrichmentContext, capture *Capture) *Pipeline {
	return &Pipeline{enrich: enrich, capture: capture}
}

// Builder starts a Builder seeded with the pipeline's enrichment context.
func (p *Pipeline) Builder(category Category, action Action) *Builder {
	return NewBuilder(p.enrich, category, action)
}

// Record builds event from b and hands it to the underlying Capture.
func (p *Pipeline) Record(b *Builder) error {
	event, err := b.Build()
	if err != nil {
		return err
	}
	p.capture.Record(event)
	return nil
}

// RecordAsync builds event from b and hands it to the underlying Capture's
// backpressure-aware path.
func (p *Pipeline) RecordAsync(ctx context.Context, b *Builder) error {
	event, err := b.Build()
	if err != nil {
		return err
	}
	return p.capture.RecordAsync(ctx, event)
}
