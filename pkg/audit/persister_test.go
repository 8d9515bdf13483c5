package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	batches []Batch
	failErr error
}

func (f *fakeStore) Persist(ctx context.Context, event Event) error { return nil }

func (f *fakeStore) PersistBatch(ctx context.Context, batch Batch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.batches = append(f.batches, batch)
	return nil
}

type fakeChain struct {
	mu       sync.Mutex
	appended []Event
	failErr  error
}

func (f *fakeChain) Append(ctx context.Context, event Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.appended = append(f.appended, event)
	return nil
}

func TestPersister_WritesBothStoreAndChain(t *testing.T) {
	store := &fakeStore{}
	chain := &fakeChain{}
	persister := NewPersister(store, chain, nil)

	batches := make(chan Batch, 1)
	batch := Batch{Events: []CapturedEvent{{Event: testEvent(t)}}}
	batches <- batch
	close(batches)

	persister.Run(context.Background(), batches)

	require.Len(t, store.batches, 1)
	require.Len(t, chain.appended, 1)
	assert.Equal(t, batch.Events[0].Event.ID, chain.appended[0].ID)
}

func TestPersister_ChainFailureDoesNotBlockStoreWrite(t *testing.T) {
	store := &fakeStore{}
	chain := &fakeChain{failErr: errors.New("disk full")}
	persister := NewPersister(store, chain, nil)

	batches := make(chan Batch, 1)
	batches <- Batch{Events: []CapturedEvent{{Event: testEvent(t)}}}
	close(batches)

	persister.Run(context.Background(), batches)

	assert.Len(t, store.batches, 1, "store write happens independently of chain log outcome")
}

func TestPersister_StopsOnContextCancellation(t *testing.T) {
	store := &fakeStore{}
	chain := &fakeChain{}
	persister := NewPersister(store, chain, nil)

	batches := make(chan Batch)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	persister.Run(ctx, batches) // must return promptly, not block forever on an empty channel
}
