package integrity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditlog/pkg/audit"
	"auditlog/pkg/audit/chainlog"
)

func testEvent(t *testing.T) audit.Event {
	t.Helper()
	event, err := audit.NewBuilder(audit.EnrichmentContext{}, audit.CategorySystem, audit.ActionSystemStarted).Build()
	require.NoError(t, err)
	return event
}

func buildChain(t *testing.T, n int) []chainlog.Entry {
	t.Helper()
	w, err := chainlog.Open(chainlog.Config{Dir: t.TempDir()})
	require.NoError(t, err)
	defer w.Close()

	entries := make([]chainlog.Entry, 0, n)
	for i := 0; i < n; i++ {
		entry, err := w.Append(context.Background(), testEvent(t))
		require.NoError(t, err)
		entries = append(entries, entry)
	}
	return entries
}

func TestVerifyEntry_DetectsTamperedChecksum(t *testing.T) {
	entries := buildChain(t, 1)
	entry := entries[0]
	assert.True(t, VerifyEntry(entry))

	entry.Checksum = "0000000000000000000000000000000000000000000000000000000000000000"
	assert.False(t, VerifyEntry(entry))
}

func TestVerifyChainSegment_ValidChainHasNoIssues(t *testing.T) {
	entries := buildChain(t, 5)
	report := VerifyChainSegment(entries)
	assert.True(t, report.Valid())
	assert.Equal(t, 5, report.TotalScanned)
	assert.Equal(t, 5, report.TotalVerified)
}

func TestVerifyChainSegment_DetectsBrokenLink(t *testing.T) {
	entries := buildChain(t, 3)
	entries[1].PrevChecksum = "deadbeef"

	report := VerifyChainSegment(entries)
	assert.False(t, report.Valid())
	assert.Contains(t, report.BrokenAtSequences, entries[1].Sequence)
}

func TestVerifyFull_ScansEveryEntryAcrossTheWholeChain(t *testing.T) {
	w, err := chainlog.Open(chainlog.Config{Dir: t.TempDir()})
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 4; i++ {
		_, err := w.Append(context.Background(), testEvent(t))
		require.NoError(t, err)
	}

	report, err := VerifyFull(context.Background(), w)
	require.NoError(t, err)
	assert.True(t, report.Valid())
	assert.Equal(t, 4, report.TotalScanned)
}
