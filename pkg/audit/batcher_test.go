package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatcher_EmitsOnMaxSize(t *testing.T) {
	in := make(chan CapturedEvent, 10)
	b := NewBatcher(BatcherConfig{MaxSize: 3, MaxAge: time.Hour}, in)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	for i := 0; i < 3; i++ {
		in <- CapturedEvent{Event: testEvent(t), CapturedAt: time.Now()}
	}

	select {
	case batch := <-b.Batches():
		assert.Equal(t, 3, batch.Len())
	case <-time.After(time.Second):
		t.Fatal("expected a batch emitted on reaching MaxSize")
	}
}

func TestBatcher_EmitsOnMaxAge(t *testing.T) {
	in := make(chan CapturedEvent, 10)
	b := NewBatcher(BatcherConfig{MaxSize: 100, MaxAge: 20 * time.Millisecond}, in)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	in <- CapturedEvent{Event: testEvent(t), CapturedAt: time.Now()}

	select {
	case batch := <-b.Batches():
		assert.Equal(t, 1, batch.Len())
	case <-time.After(time.Second):
		t.Fatal("expected a batch emitted after MaxAge elapsed")
	}
}

func TestBatcher_FlushesPartialBatchOnShutdown(t *testing.T) {
	in := make(chan CapturedEvent, 10)
	b := NewBatcher(BatcherConfig{MaxSize: 100, MaxAge: time.Hour}, in)

	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)

	in <- CapturedEvent{Event: testEvent(t), CapturedAt: time.Now()}
	time.Sleep(10 * time.Millisecond) // let Run observe the send before cancelling
	cancel()

	select {
	case batch, ok := <-b.Batches():
		require.True(t, ok)
		assert.Equal(t, 1, batch.Len())
	case <-time.After(time.Second):
		t.Fatal("expected the in-flight partial batch to flush on shutdown")
	}

	_, ok := <-b.Batches()
	assert.False(t, ok, "out channel should close after shutdown flush")
}
