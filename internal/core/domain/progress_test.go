package domain_test

import (
	"testing"

	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func milestonesWithStatuses(statuses ...domain.MilestoneStatus) []domain.Milestone {
	ms := make([]domain.Milestone, len(statuses))
	for i, s := range statuses {
		ms[i] = domain.Milestone{MilestoneID: string(rune('a' + i)), Status: s}
	}
	return ms
}

func TestEffectiveProgress_EmptyGoal(t *testing.T) {
	goal := &domain.Goal{}
	assert.Equal(t, 0, domain.EffectiveProgress(goal))
}

func TestEffectiveProgress_AllMilestonesNoLinks(t *testing.T) {
	// Milestones alone cap at 30, not 100.
	goal := &domain.Goal{
		Milestones: milestonesWithStatuses(
			domain.MilestoneCompleted,
			domain.MilestoneCompleted,
			domain.MilestoneCompleted,
		),
	}
	assert.Equal(t, 30, domain.EffectiveProgress(goal))
}

func TestEffectiveProgress_MixedMilestones(t *testing.T) {
	// 2 completed + 1 partial + 1 incomplete: weight 2.5, 30*2.5/4 = 18.75 -> 18.
	goal := &domain.Goal{
		Milestones: milestonesWithStatuses(
			domain.MilestoneCompleted,
			domain.MilestoneCompleted,
			domain.MilestonePartial,
			domain.MilestoneIncomplete,
		),
	}
	assert.Equal(t, 18, domain.EffectiveProgress(goal))
}

func TestEffectiveProgress_JournalLinksOnly(t *testing.T) {
	goal := &domain.Goal{
		JournalLinks: []domain.JournalLink{{JournalEntryID: "e1", ProgressContribution: 90}},
		Milestones:   milestonesWithStatuses(domain.MilestoneIncomplete, domain.MilestoneIncomplete),
	}
	assert.Equal(t, 90, domain.EffectiveProgress(goal))
}

func TestEffectiveProgress_ClampsPerLinkNotRunningSum(t *testing.T) {
	// A single link above 100 is clamped to 100 before summing; two 60s sum
	// to 120 and only the final min(100, ...) applies.
	overLimit := &domain.Goal{
		JournalLinks: []domain.JournalLink{{JournalEntryID: "e1", ProgressContribution: 250}},
	}
	assert.Equal(t, 100, domain.EffectiveProgress(overLimit))

	twoLinks := &domain.Goal{
		JournalLinks: []domain.JournalLink{
			{JournalEntryID: "e1", ProgressContribution: 60},
			{JournalEntryID: "e2", ProgressContribution: 60},
		},
	}
	assert.Equal(t, 100, domain.EffectiveProgress(twoLinks))
}

func TestEffectiveProgress_NegativeLinkClampedToZero(t *testing.T) {
	goal := &domain.Goal{
		JournalLinks: []domain.JournalLink{
			{JournalEntryID: "e1", ProgressContribution: -40},
			{JournalEntryID: "e2", ProgressContribution: 25},
		},
	}
	assert.Equal(t, 25, domain.EffectiveProgress(goal))
}

func TestEffectiveProgress_AlwaysWithinBounds(t *testing.T) {
	goals := []*domain.Goal{
		{},
		{Milestones: milestonesWithStatuses(domain.MilestoneCompleted)},
		{JournalLinks: []domain.JournalLink{{ProgressContribution: 100}, {ProgressContribution: 100}}},
		{
			Milestones:   milestonesWithStatuses(domain.MilestoneCompleted, domain.MilestonePartial),
			JournalLinks: []domain.JournalLink{{ProgressContribution: 95}},
		},
	}
	for _, g := range goals {
		p := domain.EffectiveProgress(g)
		assert.GreaterOrEqual(t, p, 0)
		assert.LessOrEqual(t, p, 100)
	}
}

func TestShouldPromptCompletion(t *testing.T) {
	tests := []struct {
		name string
		goal *domain.Goal
		want bool
	}{
		{
			name: "below 100 never prompts",
			goal: &domain.Goal{
				Status:       domain.StatusInProgress,
				JournalLinks: []domain.JournalLink{{ProgressContribution: 90}},
			},
			want: false,
		},
		{
			name: "at 100 and not achieved prompts",
			goal: &domain.Goal{
				Status:       domain.StatusInProgress,
				JournalLinks: []domain.JournalLink{{ProgressContribution: 100}},
			},
			want: true,
		},
		{
			name: "already achieved does not prompt",
			goal: &domain.Goal{
				Status:       domain.StatusAchieved,
				JournalLinks: []domain.JournalLink{{ProgressContribution: 100}},
			},
			want: false,
		},
		{
			name: "legacy achieved vocabulary does not prompt",
			goal: &domain.Goal{
				Status:       domain.GoalStatus("completed"),
				JournalLinks: []domain.JournalLink{{ProgressContribution: 100}},
			},
			want: false,
		},
		{
			name: "pending-review at 100 prompts",
			goal: &domain.Goal{
				Status:       domain.StatusPendingReview,
				JournalLinks: []domain.JournalLink{{ProgressContribution: 100}},
			},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ShouldPromptCompletion(tt.goal))
		})
	}
}

func TestShouldPromptCompletion_BelowHundredForAnyStatus(t *testing.T) {
	for _, s := range allStatuses {
		goal := &domain.Goal{
			Status:       s,
			JournalLinks: []domain.JournalLink{{ProgressContribution: 99}},
		}
		assert.False(t, domain.ShouldPromptCompletion(goal), "status %s", s)
	}
}

func TestStatusAfterProgress(t *testing.T) {
	tests := []struct {
		name string
		goal *domain.Goal
		want domain.GoalStatus
	}{
		{
			name: "yet-to-start with partial progress auto-advances",
			goal: &domain.Goal{
				Status:       domain.StatusYetToStart,
				JournalLinks: []domain.JournalLink{{ProgressContribution: 10}},
			},
			want: domain.StatusInProgress,
		},
		{
			name: "yet-to-start with zero progress stays",
			goal: &domain.Goal{Status: domain.StatusYetToStart},
			want: domain.StatusYetToStart,
		},
		{
			name: "yet-to-start at 100 is not implicitly achieved",
			goal: &domain.Goal{
				Status:       domain.StatusYetToStart,
				JournalLinks: []domain.JournalLink{{ProgressContribution: 100}},
			},
			want: domain.StatusYetToStart,
		},
		{
			name: "blocked is unaffected by progress",
			goal: &domain.Goal{
				Status:       domain.StatusBlocked,
				JournalLinks: []domain.JournalLink{{ProgressContribution: 50}},
			},
			want: domain.StatusBlocked,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.StatusAfterProgress(tt.goal))
		})
	}
}
