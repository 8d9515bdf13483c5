// Package kafka implements an archive.Sink that publishes archived rows to
// a Kafka topic via franz-go, for deployments that feed a downstream data
// lake or compliance pipeline instead of (or in addition to) a database
// archive table.
package kafka

import (
	"context"
	"fmt"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"

	"auditlog/pkg/audit/retention/archive"
)

// Sink publishes one Kafka record per archived row, keyed by event id so a
// compacted topic retains only the latest archival for a given event.
type Sink struct {
	client *kgo.Client
	topic  string
}

// New dials brokers and returns a Sink publishing to topic.
func New(brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka archive sink: dial brokers: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

// Close releases the underlying Kafka client.
func (s *Sink) Close() { s.client.Close() }

// ArchiveRows produces one record per row and waits for every produce to be
// acknowledged. Per the archival contract it is all-or-nothing: if any
// produce fails, the call returns the first error (with a count of 0) once
// every produce has completed, and the engine must not delete any of the
// affected rows.
func (s *Sink) ArchiveRows(ctx context.Context, records []archive.Record) (int, error) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	acked := 0

	wg.Add(len(records))
	for _, rec := range records {
		kr := &kgo.Record{
			Topic: s.topic,
			Key:   []byte(rec.EventID),
			Value: rec.Payload,
			Headers: []kgo.RecordHeader{
				{Key: "category", Value: []byte(rec.Category)},
			},
		}
		s.client.Produce(ctx, kr, func(_ *kgo.Record, err error) {
			defer wg.Done()
			mu.Lock()
			defer mu.Unlock()
			if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("kafka archive sink: produce %s: %w", rec.EventID, err)
				return
			}
			if err == nil {
				acked++
			}
		})
	}
	wg.Wait()

	if firstErr != nil {
		return 0, firstErr
	}
	return acked, nil
}
