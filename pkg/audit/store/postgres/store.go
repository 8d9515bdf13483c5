// Package postgres implements the Indexed Store (the transactional,
// secondary-indexed relational half of dual persistence) on top of
// database/sql and lib/pq.
package postgres

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/lib/pq"
	"github.com/sony/gobreaker/v2"

	"auditlog/internal/apperr"
	"auditlog/pkg/audit"
	"auditlog/pkg/audit/retention"
	"auditlog/pkg/platform/tx"
)

// dbExecutor is satisfied by both *sql.DB and *sql.Tx, letting Store run
// either directly against the pool or inside a transaction pulled from
// context by tx.From.
type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements audit.Store against a Postgres audit_events table. A
// circuit breaker wraps the write path (Persist and PersistBatch) so a
// failing database degrades the audit path instead of blocking it
// indefinitely; reads, deletes and Flush go to the database directly.
type Store struct {
	db      *sql.DB
	breaker *gobreaker.CircuitBreaker[any]
}

// New wraps db. Callers own the *sql.DB's lifecycle.
func New(db *sql.DB) *Store {
	settings := gobreaker.Settings{
		Name:    "audit-indexed-store",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	}
	return &Store{db: db, breaker: gobreaker.NewCircuitBreaker[any](settings)}
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

// Persist inserts a single event within the context's transaction if one
// is present, otherwise directly against the pool.
func (s *Store) Persist(ctx context.Context, event audit.Event) error {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, insertEvent(ctx, s.execer(ctx), event)
	})
	if err != nil {
		return apperr.Wrap(apperr.CodeDatabase, "persist audit event", err)
	}
	return nil
}

// PersistBatch writes every event in batch within a single transaction:
// either all rows commit or none do.
func (s *Store) PersistBatch(ctx context.Context, batch audit.Batch) error {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.persistBatchTx(ctx, batch)
	})
	if err != nil {
		return apperr.Wrap(apperr.CodeDatabase, "persist audit batch", err)
	}
	return nil
}

func (s *Store) persistBatchTx(ctx context.Context, batch audit.Batch) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, captured := range batch.Events {
		if err := insertEvent(ctx, sqlTx, captured.Event); err != nil {
			return err
		}
	}
	return sqlTx.Commit()
}

// Flush forces a durable checkpoint. Postgres commits are already durable
// per the configured synchronous_commit level, so this is a connectivity
// probe rather than an explicit fsync.
func (s *Store) Flush(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperr.Wrap(apperr.CodeDatabase, "flush indexed store", err)
	}
	return nil
}

const insertQuery = `
	INSERT INTO audit_events (
		id, timestamp, category, action, severity,
		actor_type, actor_id, actor_name,
		target_type, target_id, target_name,
		outcome, outcome_reason, metadata,
		correlation_id, ip_address, user_agent, checksum, created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, now()
	)
	ON CONFLICT (id) DO NOTHING
`

func insertEvent(ctx context.Context, exec dbExecutor, event audit.Event) error {
	metadataJSON, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	checksum, err := checksumEvent(event)
	if err != nil {
		return err
	}

	var targetType, targetID, targetName sql.NullString
	if event.Target != nil {
		targetType = sql.NullString{String: event.Target.ResourceType, Valid: true}
		targetID = sql.NullString{String: event.Target.ResourceID, Valid: true}
		targetName = sql.NullString{String: event.Target.ResourceName, Valid: event.Target.ResourceName != ""}
	}

	_, err = exec.ExecContext(ctx, insertQuery,
		event.ID.String(),
		event.Timestamp,
		string(event.Category),
		string(event.Action),
		event.Severity.String(),
		string(event.Actor.Type),
		event.Actor.ID(),
		event.Actor.Name(),
		targetType,
		targetID,
		targetName,
		string(event.Outcome.Type),
		event.Outcome.Reason,
		metadataJSON,
		event.CorrelationID,
		event.IPAddress,
		event.UserAgent,
		checksum,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// checksumEvent computes the per-row checksum covering the event's full
// canonical serialization — a secondary consistency check, independent of
// the chain log's link hash, used to detect row-level tampering in the
// indexed store's own copy.
func checksumEvent(event audit.Event) (string, error) {
	canonical, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal canonical audit event: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Row is a decoded audit_events row, returned by the read methods below.
// Unlike audit.Event it carries the indexed store's own checksum and the
// decomposed actor/target/outcome columns directly, since the caller
// (integrity's per-row consistency check, or a query API) may want either
// view.
type Row struct {
	ID            string
	Timestamp     time.Time
	Category      string
	Action        string
	Severity      string
	ActorType     string
	ActorID       string
	ActorName     string
	TargetType    sql.NullString
	TargetID      sql.NullString
	TargetName    sql.NullString
	Outcome       string
	OutcomeReason string
	Metadata      json.RawMessage
	CorrelationID string
	IPAddress     string
	UserAgent     string
	Checksum      string
	CreatedAt     time.Time
}

const selectColumns = `
	id, timestamp, category, action, severity,
	actor_type, actor_id, actor_name,
	target_type, target_id, target_name,
	outcome, outcome_reason, metadata,
	correlation_id, ip_address, user_agent, checksum, created_at
`

// ByID fetches a single row by its event id.
func (s *Store) ByID(ctx context.Context, eventID string) (Row, error) {
	query := "SELECT " + selectColumns + " FROM audit_events WHERE id = $1"
	row := s.db.QueryRowContext(ctx, query, eventID)
	r, err := scanRow(row)
	if err != nil {
		return Row{}, apperr.Wrap(apperr.CodeDatabase, "fetch audit event by id", err)
	}
	return r, nil
}

// OldestBefore returns up to limit candidates with timestamp <= before,
// ordered oldest first, satisfying retention.Store for the enforcement
// pass.
func (s *Store) OldestBefore(ctx context.Context, before time.Time, limit int) ([]retention.Candidate, error) {
	query := "SELECT " + selectColumns + ` FROM audit_events WHERE timestamp <= $1 ORDER BY timestamp ASC LIMIT $2`
	rows, err := s.db.QueryContext(ctx, query, before, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDatabase, "query oldest audit events", err)
	}
	defer rows.Close()

	var out []retention.Candidate
	for rows.Next() {
		r, err := scanRows(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeDatabase, "scan audit event row", err)
		}
		out = append(out, retention.Candidate{
			EventID:   r.ID,
			Timestamp: r.Timestamp,
			Category:  audit.Category(r.Category),
			Severity:  severityFromString(r.Severity),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.CodeDatabase, "iterate audit events", err)
	}
	return out, nil
}

func severityFromString(s string) audit.Severity {
	var sev audit.Severity
	if err := sev.UnmarshalJSON([]byte(`"` + s + `"`)); err != nil {
		return audit.SeverityMedium
	}
	return sev
}

// DeleteByIDs removes the given rows, chunked by the caller so a single
// call stays responsive; it never touches the chain log.
func (s *Store) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM audit_events WHERE id = ANY($1)`
	if _, err := s.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return apperr.Wrap(apperr.CodeDatabase, "delete audit events", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row *sql.Row) (Row, error)        { return scan(row) }
func scanRows(rows *sql.Rows) (Row, error)      { return scan(rows) }

func scan(s rowScanner) (Row, error) {
	var r Row
	err := s.Scan(
		&r.ID, &r.Timestamp, &r.Category, &r.Action, &r.Severity,
		&r.ActorType, &r.ActorID, &r.ActorName,
		&r.TargetType, &r.TargetID, &r.TargetName,
		&r.Outcome, &r.OutcomeReason, &r.Metadata,
		&r.CorrelationID, &r.IPAddress, &r.UserAgent, &r.Checksum, &r.CreatedAt,
	)
	if err != nil {
		return Row{}, err
	}
	return r, nil
}
