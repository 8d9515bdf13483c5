package integrity

import (
	"context"
	"log/slog"
)

// Issue describes a single integrity finding surfaced to an AlertSink.
// PerEntry corruption is reported at Warning; a chain break or sequence gap
// is Critical.
type Issue struct {
	Critical    bool
	Description string
	EventID     string
	Sequence    uint64
}

// AlertSink receives integrity findings from the monitoring task. The
// default, SlogSink, logs at the severity the issue warrants; production
// deployments can chain a paging or ticketing sink alongside it.
type AlertSink interface {
	Alert(ctx context.Context, issue Issue)
}

// SlogSink logs issues through a structured logger.
type SlogSink struct {
	Logger *slog.Logger
}

// NewSlogSink wraps logger (or slog.Default() if nil) as an AlertSink.
func NewSlogSink(logger *slog.Logger) SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return SlogSink{Logger: logger}
}

func (s SlogSink) Alert(ctx context.Context, issue Issue) {
	level := slog.LevelWarn
	if issue.Critical {
		level = slog.LevelError
	}
	s.Logger.Log(ctx, level, "audit chain integrity issue",
		"critical", issue.Critical,
		"description", issue.Description,
		"event_id", issue.EventID,
		"sequence", issue.Sequence,
	)
}

// issuesFromReport translates a verification Report into the Issue list a
// monitoring tick alerts on.
func issuesFromReport(report Report) []Issue {
	issues := make([]Issue, 0, len(report.CorruptedEventIDs)+len(report.BrokenAtSequences))
	for _, id := range report.CorruptedEventIDs {
		issues = append(issues, Issue{
			Critical:    false,
			Description: "entry checksum does not match recomputed link hash",
			EventID:     id,
		})
	}
	for _, seq := range report.BrokenAtSequences {
		issues = append(issues, Issue{
			Critical:    true,
			Description: "chain continuity broken: prev_checksum or sequence mismatch",
			Sequence:    seq,
		})
	}
	return issues
}
