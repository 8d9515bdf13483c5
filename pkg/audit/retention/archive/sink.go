// Package archive defines the Archive Sink boundary the Retention Engine
// writes through before deleting rows from the Indexed Store. The
// destination itself is opaque to the core; kafka and noop provide two
// concrete implementations.
package archive

//go:generate mockgen -source=sink.go -destination=mocks/mocks.go -package=mocks Sink

import "context"

// Record is the minimal row shape the engine archives before deletion.
// Sinks that need the full event should decode Payload themselves; the
// engine does not interpret it.
type Record struct {
	EventID   string
	Category  string
	Timestamp int64 // unix nanos, avoids importing time into the sink boundary
	Payload   []byte
}

// Sink moves rows out of the Indexed Store to an archive destination.
// Per the archival contract, ArchiveRows either fully succeeds for every
// record (after which the engine may proceed to delete) or returns an
// error (after which the engine must not delete any of the affected
// rows) — there is no partial-success outcome.
type Sink interface {
	ArchiveRows(ctx context.Context, records []Record) (count int, err error)
}
