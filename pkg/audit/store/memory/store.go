// Package memory implements an in-process Indexed Store used by tests and
// local development, satisfying the same audit.Store contract as the
// Postgres implementation without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"auditlog/pkg/audit"
	"auditlog/pkg/audit/retention"
)

// Store is a goroutine-safe, in-memory Indexed Store keyed by event id.
type Store struct {
	mu     sync.RWMutex
	events map[string]audit.Event
}

// New returns an empty Store.
func New() *Store {
	return &Store{events: make(map[string]audit.Event)}
}

// Persist inserts a single event, ignoring duplicate ids (matching the
// Postgres store's ON CONFLICT DO NOTHING idempotence).
func (s *Store) Persist(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := event.ID.String()
	if _, exists := s.events[key]; exists {
		return nil
	}
	s.events[key] = event
	return nil
}

// PersistBatch inserts every event in batch. There is no partial failure
// mode to simulate in memory, so this is always all-or-nothing by
// construction.
func (s *Store) PersistBatch(ctx context.Context, batch audit.Batch) error {
	for _, captured := range batch.Events {
		if err := s.Persist(ctx, captured.Event); err != nil {
			return err
		}
	}
	return nil
}

// Flush is a no-op; there is nothing to checkpoint in memory.
func (s *Store) Flush(context.Context) error { return nil }

// Clear empties the store, useful between test cases.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string]audit.Event)
}

// ByID returns a single event by id.
func (s *Store) ByID(_ context.Context, eventID string) (audit.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[eventID]
	return e, ok
}

// ListAll returns every stored event, most recent first.
func (s *Store) ListAll(context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedDescending(), nil
}

// ListRecent returns up to limit events, most recent first.
func (s *Store) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.sortedDescending()
	if limit >= 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// OldestBefore returns up to limit candidates with Timestamp <= before,
// oldest first, satisfying retention.Store for the enforcement pass.
func (s *Store) OldestBefore(_ context.Context, before time.Time, limit int) ([]retention.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []audit.Event
	for _, e := range s.events {
		if !e.Timestamp.After(before) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Timestamp.Before(matched[j].Timestamp) })
	if limit >= 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	out := make([]retention.Candidate, len(matched))
	for i, e := range matched {
		payload, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		out[i] = retention.Candidate{
			EventID:   e.ID.String(),
			Timestamp: e.Timestamp,
			Category:  e.Category,
			Severity:  e.Severity,
			Payload:   payload,
		}
	}
	return out, nil
}

// DeleteByIDs removes the given events.
func (s *Store) DeleteByIDs(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.events, id)
	}
	return nil
}

func (s *Store) sortedDescending() []audit.Event {
	out := make([]audit.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}
