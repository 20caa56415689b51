package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeStatusFallsBackToNew(t *testing.T) {
	info := DescribeStatus("escalated")
	require.Equal(t, AppealStatusNew, info.Key)
	require.Equal(t, "New", info.Label)

	closed := DescribeStatus(AppealStatusClosed)
	require.Equal(t, "Closed", closed.Label)
}

func TestAllTransitionsArePermitted(t *testing.T) {
	statuses := AppealStatuses()
	pairs := 0
	for _, from := range statuses {
		next := ValidTransitions(from)
		assert.Len(t, next, len(statuses)-1)
		for _, to := range statuses {
			if from == to {
				assert.False(t, CanTransition(from, to))
				continue
			}
			assert.True(t, CanTransition(from, to), "%s -> %s", from, to)
			pairs++
		}
	}
	require.Equal(t, 12, pairs)
}

func TestCanTransitionRejectsUnknownDestination(t *testing.T) {
	require.False(t, CanTransition(AppealStatusNew, "archived"))
	require.False(t, AppealStatus("archived").Valid())
}

func TestPriorityValidation(t *testing.T) {
	require.True(t, AppealPriorityUrgent.Valid())
	require.False(t, AppealPriority("critical").Valid())
	require.Equal(t, AppealPriorityNormal, DescribePriority("critical").Key)
}

func TestAppealIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	appeal := &Appeal{Status: AppealStatusInProgress, Deadline: &past}
	require.True(t, appeal.IsOverdue(now))

	appeal.Status = AppealStatusClosed
	require.False(t, appeal.IsOverdue(now))

	appeal.Status = AppealStatusWaiting
	appeal.Deadline = nil
	require.False(t, appeal.IsOverdue(now))
}

func TestAppealNotOverdueOnDueDay(t *testing.T) {
	deadline := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	appeal := &Appeal{Status: AppealStatusNew, Deadline: &deadline}

	require.False(t, appeal.IsOverdue(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)))
	require.False(t, appeal.IsOverdue(time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)))
	require.True(t, appeal.IsOverdue(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), DeadlineEnd(deadline))
}
