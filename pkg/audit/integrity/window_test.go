package integrity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditlog/pkg/audit/chainlog"
)

func TestRecentWindow_SnapshotPreservesAppendOrder(t *testing.T) {
	w := newRecentWindow(3)
	for i := uint64(0); i < 3; i++ {
		w.Push(chainlog.Entry{Sequence: i})
	}

	got := w.Snapshot()
	require.Len(t, got, 3)
	for i, e := range got {
		assert.Equal(t, uint64(i), e.Sequence)
	}
}

func TestRecentWindow_DropsOldestBeyondCapacity(t *testing.T) {
	w := newRecentWindow(2)
	w.Push(chainlog.Entry{Sequence: 0})
	w.Push(chainlog.Entry{Sequence: 1})
	w.Push(chainlog.Entry{Sequence: 2})

	got := w.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].Sequence)
	assert.Equal(t, uint64(2), got[1].Sequence)
}

func TestRecentWindow_LenTracksCount(t *testing.T) {
	w := newRecentWindow(5)
	assert.Equal(t, 0, w.Len())
	w.Push(chainlog.Entry{})
	assert.Equal(t, 1, w.Len())
}
