package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(t *testing.T) Event {
	t.Helper()
	event, err := NewBuilder(EnrichmentContext{}, CategorySystem, ActionSystemStarted).Build()
	require.NoError(t, err)
	return event
}

func TestCapture_RecordDoesNotBlockOnFullBuffer(t *testing.T) {
	c := NewCapture(CaptureConfig{BufferSize: 1})
	c.Record(testEvent(t))

	done := make(chan struct{})
	go func() {
		c.Record(testEvent(t)) // buffer full, must drop rather than block
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full buffer")
	}
	assert.Equal(t, int64(1), c.Overflowed())
	assert.True(t, c.Degraded())
}

func TestCapture_RecordAfterCloseIsDropped(t *testing.T) {
	c := NewCapture(CaptureConfig{BufferSize: 10})
	c.Close()
	c.Record(testEvent(t))

	assert.Equal(t, int64(1), c.ClosedDrops())
}

func TestCapture_RecordAsyncRespectsContextCancellation(t *testing.T) {
	c := NewCapture(CaptureConfig{BufferSize: 1})
	c.Record(testEvent(t)) // fill the buffer so RecordAsync has to wait
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := c.RecordAsync(ctx, testEvent(t))
	assert.Error(t, err)
}

func TestPipeline_RecordBuildsAndCaptures(t *testing.T) {
	capture := NewCapture(CaptureConfig{BufferSize: 10})
	pipeline := NewPipeline(EnrichmentContext{Actor: NewSystemActor("auditd", "")}, capture)

	err := pipeline.Record(pipeline.Builder(CategorySystem, ActionSystemStarted))
	require.NoError(t, err)

	select {
	case captured := <-capture.Events():
		assert.Equal(t, CategorySystem, captured.Event.Category)
	default:
		t.Fatal("expected an event on the capture channel")
	}
}
