// Package noop provides an archive.Sink that discards every record,
// suitable for dry-run deployments or when archive_before_delete is
// disabled but the engine still wants a uniform sink to call.
package noop

import (
	"context"

	"auditlog/pkg/audit/retention/archive"
)

// Sink discards all records and always reports success.
type Sink struct{}

func (Sink) ArchiveRows(_ context.Context, records []archive.Record) (int, error) {
	return len(records), nil
}
