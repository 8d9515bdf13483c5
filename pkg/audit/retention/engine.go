package retention

import (
	"context"
	"log/slog"
	"time"

	"auditlog/internal/apperr"
	"auditlog/pkg/audit"
	"auditlog/pkg/audit/retention/archive"
)

// Candidate is the minimal row shape the enforcement pass needs to apply
// the eligibility rule, decoupling the engine from the Indexed Store's
// concrete row type.
type Candidate struct {
	EventID   string
	Timestamp time.Time
	Category  audit.Category
	Severity  audit.Severity
	Payload   []byte // canonical event bytes, used only if archived
}

// Store is the Indexed Store's read/delete surface as seen by the
// enforcement pass.
type Store interface {
	OldestBefore(ctx context.Context, before time.Time, limit int) ([]Candidate, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

// EngineConfig controls one enforcement pass.
type EngineConfig struct {
	BatchSize           int
	DryRun              bool
	ArchiveBeforeDelete bool
	EnforcementInterval time.Duration
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = 500
	}
	if c.EnforcementInterval <= 0 {
		c.EnforcementInterval = time.Hour
	}
	return c
}

// Engine runs the enforcement pass: select up to batch_size oldest
// candidates, classify each into {delete, hold, skip} via the eligibility
// rule, archive before delete if configured, then delete — always leaving
// the chain log untouched.
type Engine struct {
	cfg     EngineConfig
	store   Store
	policy  Policy
	holds   HoldProvider
	archive archive.Sink
	logger  *slog.Logger

	// OnClassification, when set, is called after every completed pass
	// (including dry runs) with its resulting counts, for metrics wiring.
	OnClassification func(Classification)
}

// NewEngine builds an Engine. archiveSink may be noop.Sink{} when
// ArchiveBeforeDelete is false.
func NewEngine(cfg EngineConfig, store Store, policy Policy, holds HoldProvider, archiveSink archive.Sink, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:     cfg.withDefaults(),
		store:   store,
		policy:  policy,
		holds:   holds,
		archive: archiveSink,
		logger:  logger,
	}
}

// Classification buckets one enforcement pass's candidates.
type Classification struct {
	Deleted int
	Held    int
	Skipped int
}

// RunOnce performs a single enforcement pass. In dry-run mode it returns
// the classification counts without mutating any state.
func (e *Engine) RunOnce(ctx context.Context) (Classification, error) {
	now := time.Now().UTC()

	candidates, err := e.store.OldestBefore(ctx, now, e.cfg.BatchSize)
	if err != nil {
		return Classification{}, apperr.Wrap(apperr.CodeDatabase, "select retention candidates", err)
	}

	var result Classification
	var toDelete []Candidate

	for _, c := range candidates {
		held, err := e.isHeld(now, c)
		if err != nil {
			return result, err
		}
		if held {
			result.Held++
			continue
		}

		effective := e.policy.EffectiveRetention(c.Category, c.Severity)
		if Retain(now, c.Timestamp, effective) {
			result.Skipped++
			continue
		}

		toDelete = append(toDelete, c)
	}

	if e.cfg.DryRun || len(toDelete) == 0 {
		result.Deleted = len(toDelete)
		return result, nil
	}

	if e.cfg.ArchiveBeforeDelete {
		records := make([]archive.Record, len(toDelete))
		for i, c := range toDelete {
			records[i] = archive.Record{
				EventID:   c.EventID,
				Category:  string(c.Category),
				Timestamp: c.Timestamp.UnixNano(),
				Payload:   c.Payload,
			}
		}
		archived, err := e.archive.ArchiveRows(ctx, records)
		if err != nil || archived != len(records) {
			// Archival failure aborts the delete step for the affected
			// rows (fail-safe): the rows stay in the indexed store.
			return result, apperr.Wrap(apperr.CodeIO, "archive rows before delete", err)
		}
	}

	if err := e.deleteChunked(ctx, toDelete); err != nil {
		return result, err
	}
	result.Deleted = len(toDelete)
	return result, nil
}

// deleteChunked deletes toDelete in bounded chunks so the operation stays
// responsive rather than issuing one unbounded DELETE.
func (e *Engine) deleteChunked(ctx context.Context, candidates []Candidate) error {
	const chunkSize = 100
	for start := 0; start < len(candidates); start += chunkSize {
		end := start + chunkSize
		if end > len(candidates) {
			end = len(candidates)
		}
		ids := make([]string, end-start)
		for i, c := range candidates[start:end] {
			ids[i] = c.EventID
		}
		if err := e.store.DeleteByIDs(ctx, ids); err != nil {
			return apperr.Wrap(apperr.CodeDatabase, "delete retention candidates", err)
		}
	}
	return nil
}

func (e *Engine) isHeld(now time.Time, c Candidate) (bool, error) {
	if e.holds == nil {
		return false, nil
	}
	holds, err := e.holds.ActiveHolds(c.Category)
	if err != nil {
		return false, apperr.Wrap(apperr.CodeDatabase, "load retention holds", err)
	}
	return holds.AnyMatches(now, c.Category, c.Timestamp), nil
}

// Run ticks RunOnce at EnforcementInterval until ctx is cancelled,
// retrying at the next interval when a pass errors (errors surface to the
// scheduler, which logs and retries rather than crashing the process).
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.EnforcementInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := e.RunOnce(ctx)
			if err != nil {
				e.logger.Error("retention enforcement pass failed", "error", err)
				continue
			}
			if e.OnClassification != nil {
				e.OnClassification(result)
			}
		}
	}
}
