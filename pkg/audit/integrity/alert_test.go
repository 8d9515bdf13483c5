package integrity

import "testing"

import "github.com/stretchr/testify/assert"

func TestIssuesFromReport_CorruptedIsWarningBrokenIsCritical(t *testing.T) {
	report := Report{
		CorruptedEventIDs: []string{"evt-1"},
		BrokenAtSequences: []uint64{7},
	}

	issues := issuesFromReport(report)
	a := assert.New(t)
	a.Len(issues, 2)
	a.False(issues[0].Critical)
	a.Equal("evt-1", issues[0].EventID)
	a.True(issues[1].Critical)
	a.Equal(uint64(7), issues[1].Sequence)
}

func TestIssuesFromReport_ValidReportHasNoIssues(t *testing.T) {
	assert.Empty(t, issuesFromReport(Report{}))
}
