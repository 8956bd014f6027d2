package domain_test

import (
	"testing"

	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMilestone_EffectiveStatus(t *testing.T) {
	tests := []struct {
		name      string
		milestone domain.Milestone
		want      domain.MilestoneStatus
	}{
		{
			name:      "canonical status wins over legacy boolean",
			milestone: domain.Milestone{Status: domain.MilestonePartial, Completed: true},
			want:      domain.MilestonePartial,
		},
		{
			name:      "legacy completed=true falls back to completed",
			milestone: domain.Milestone{Completed: true},
			want:      domain.MilestoneCompleted,
		},
		{
			name:      "legacy completed=false falls back to incomplete",
			milestone: domain.Milestone{Completed: false},
			want:      domain.MilestoneIncomplete,
		},
		{
			name:      "unrecognized status string falls back to boolean",
			milestone: domain.Milestone{Status: domain.MilestoneStatus("half-done"), Completed: true},
			want:      domain.MilestoneCompleted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.milestone.EffectiveStatus())
		})
	}
}

func TestMilestone_Weight(t *testing.T) {
	assert.True(t, decimal.NewFromInt(1).Equal(domain.Milestone{Status: domain.MilestoneCompleted}.Weight()))
	assert.True(t, decimal.NewFromFloat(0.5).Equal(domain.Milestone{Status: domain.MilestonePartial}.Weight()))
	assert.True(t, decimal.Zero.Equal(domain.Milestone{Status: domain.MilestoneIncomplete}.Weight()))
}

func TestMilestone_Toggled_TwoStateCycle(t *testing.T) {
	tests := []struct {
		name      string
		milestone domain.Milestone
		want      domain.MilestoneStatus
	}{
		{"incomplete toggles to completed", domain.Milestone{Status: domain.MilestoneIncomplete}, domain.MilestoneCompleted},
		{"completed toggles to incomplete", domain.Milestone{Status: domain.MilestoneCompleted}, domain.MilestoneIncomplete},
		{"partial toggles to completed, never to partial", domain.Milestone{Status: domain.MilestonePartial}, domain.MilestoneCompleted},
		{"legacy completed boolean toggles to incomplete", domain.Milestone{Completed: true}, domain.MilestoneIncomplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.milestone.Toggled())
		})
	}
}

func TestIsValidMilestoneStatus(t *testing.T) {
	assert.True(t, domain.IsValidMilestoneStatus("incomplete"))
	assert.True(t, domain.IsValidMilestoneStatus("partial"))
	assert.True(t, domain.IsValidMilestoneStatus("completed"))
	assert.False(t, domain.IsValidMilestoneStatus("done"))
	assert.False(t, domain.IsValidMilestoneStatus(""))
}
