package chainlog

import (
	"context"

	"auditlog/pkg/audit"
)

// Appender adapts *Writer to audit.ChainAppender, discarding the emitted
// Entry. Callers that need the entry itself (the Integrity Monitor's
// windowed verification) subscribe via Writer.OnAppend instead.
type Appender struct {
	Writer *Writer
}

// Append satisfies audit.ChainAppender.
func (a Appender) Append(ctx context.Context, event audit.Event) error {
	_, err := a.Writer.Append(ctx, event)
	return err
}
