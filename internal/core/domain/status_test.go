package domain_test

import (
	"testing"

	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

var allStatuses = []domain.GoalStatus{
	domain.StatusYetToStart,
	domain.StatusInProgress,
	domain.StatusBlocked,
	domain.StatusPendingReview,
	domain.StatusAchieved,
	domain.StatusCancelled,
}

func TestMigrateStatus_IdempotentOnCanonical(t *testing.T) {
	for _, s := range allStatuses {
		assert.Equal(t, s, domain.MigrateStatus(string(s)), "canonical status %q must map to itself", s)
	}
}

func TestMigrateStatus_LegacyVocabulary(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.GoalStatus
	}{
		{"not-started", domain.StatusYetToStart},
		{"todo", domain.StatusYetToStart},
		{"open", domain.StatusYetToStart},
		{"active", domain.StatusInProgress},
		{"in_progress", domain.StatusInProgress},
		{"In Progress", domain.StatusInProgress},
		{"on-hold", domain.StatusBlocked},
		{"paused", domain.StatusBlocked},
		{"in-review", domain.StatusPendingReview},
		{"awaiting-review", domain.StatusPendingReview},
		{"completed", domain.StatusAchieved},
		{"DONE", domain.StatusAchieved},
		{"abandoned", domain.StatusCancelled},
		{"canceled", domain.StatusCancelled},
		{"  achieved  ", domain.StatusAchieved},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.MigrateStatus(tt.raw))
		})
	}
}

func TestMigrateStatus_Totality(t *testing.T) {
	// Every input, including garbage, must land on a canonical value.
	inputs := []string{"", "garbage", "status-42", "ACHIEVED!!", "null", "????"}
	for _, raw := range inputs {
		got := domain.MigrateStatus(raw)
		assert.True(t, domain.IsValidStatus(string(got)), "migrated %q to non-canonical %q", raw, got)
	}
	assert.Equal(t, domain.StatusYetToStart, domain.MigrateStatus("completely unknown"))
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range allStatuses {
		assert.True(t, domain.IsValidStatus(string(s)))
	}
	assert.False(t, domain.IsValidStatus("completed"))
	assert.False(t, domain.IsValidStatus("In-Progress"))
	assert.False(t, domain.IsValidStatus(""))
}

func TestValidTransitions_Table(t *testing.T) {
	tests := []struct {
		from domain.GoalStatus
		want []domain.GoalStatus
	}{
		{domain.StatusYetToStart, []domain.GoalStatus{domain.StatusInProgress, domain.StatusCancelled}},
		{domain.StatusInProgress, []domain.GoalStatus{domain.StatusBlocked, domain.StatusPendingReview, domain.StatusAchieved, domain.StatusCancelled}},
		{domain.StatusBlocked, []domain.GoalStatus{domain.StatusInProgress, domain.StatusCancelled}},
		{domain.StatusPendingReview, []domain.GoalStatus{domain.StatusInProgress, domain.StatusAchieved, domain.StatusCancelled}},
		{domain.StatusAchieved, []domain.GoalStatus{domain.StatusInProgress}},
		{domain.StatusCancelled, []domain.GoalStatus{domain.StatusInProgress}},
	}
	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ValidTransitions(tt.from))
		})
	}
}

func TestValidTransitions_NoSelfLoop(t *testing.T) {
	for _, s := range allStatuses {
		assert.NotContains(t, domain.ValidTransitions(s), s)
	}
}

func TestValidTransitions_Reopenable(t *testing.T) {
	assert.Contains(t, domain.ValidTransitions(domain.StatusAchieved), domain.StatusInProgress)
	assert.Contains(t, domain.ValidTransitions(domain.StatusCancelled), domain.StatusInProgress)
}

func TestValidTransitions_MigratesLegacyInput(t *testing.T) {
	// A goal stored as "completed" offers exactly what an achieved goal offers.
	assert.Equal(t, []domain.GoalStatus{domain.StatusInProgress}, domain.ValidTransitions(domain.GoalStatus("completed")))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, domain.CanTransition(domain.StatusInProgress, domain.StatusBlocked))
	assert.True(t, domain.CanTransition(domain.StatusAchieved, domain.StatusInProgress))
	assert.False(t, domain.CanTransition(domain.StatusYetToStart, domain.StatusAchieved))
	assert.False(t, domain.CanTransition(domain.StatusAchieved, domain.StatusCancelled))
	// Legacy target vocabulary is migrated before the lookup.
	assert.True(t, domain.CanTransition(domain.StatusInProgress, domain.GoalStatus("done")))
}
