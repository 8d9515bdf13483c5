package audit

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Store is the Indexed Store's write surface as seen by the persister.
// Implementations (pkg/audit/store/postgres, pkg/audit/store/memory) own
// transactions, indexing, and schema; the persister only needs to hand
// batches across the boundary.
type Store interface {
	Persist(ctx context.Context, event Event) error
	PersistBatch(ctx context.Context, batch Batch) error
}

// ChainAppender is the Chain Log's write surface as seen by the persister.
// It is satisfied by an adapter over *chainlog.Writer; the persister
// package deliberately does not import chainlog directly so that the core
// event/capture/batch model never depends on the storage layer.
type ChainAppender interface {
	Append(ctx context.Context, event Event) error
}

// Persister drains emitted batches and writes each to both the Indexed
// Store and the Chain Log. The two writes are independent: an event may
// land in one before the other (the documented "skew window"), and the
// chain log remains authoritative for tamper evidence regardless of
// indexed-store outcome.
type Persister struct {
	store  Store
	chain  ChainAppender
	logger *slog.Logger
	tracer trace.Tracer
}

// NewPersister builds a Persister writing through store and chain.
func NewPersister(store Store, chain ChainAppender, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{store: store, chain: chain, logger: logger, tracer: otel.Tracer("auditlog/pkg/audit")}
}

// Run consumes batches until the channel closes or ctx is cancelled,
// finishing any in-flight batch before returning (persisters finish
// in-flight commits on cancellation, per the concurrency model).
func (p *Persister) Run(ctx context.Context, batches <-chan Batch) {
	for {
		select {
		case batch, ok := <-batches:
			if !ok {
				return
			}
			p.persist(ctx, batch)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Persister) persist(ctx context.Context, batch Batch) {
	ctx, span := p.tracer.Start(ctx, "Persister.persist",
		trace.WithAttributes(attribute.Int("batch.size", batch.Len())),
	)
	defer span.End()

	if err := p.store.PersistBatch(ctx, batch); err != nil {
		span.RecordError(err)
		p.logger.Error("indexed store batch persist failed", "error", err, "batch_size", batch.Len())
	}

	for _, captured := range batch.Events {
		if err := p.chain.Append(ctx, captured.Event); err != nil {
			span.RecordError(err)
			p.logger.Error("chain log append failed", "error", err, "event_id", captured.Event.ID.String())
		}
	}
}
