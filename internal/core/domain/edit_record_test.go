package domain_test

import (
	"testing"

	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestChangeReason_Templates(t *testing.T) {
	tests := []struct {
		field string
		old   string
		new   string
		want  string
	}{
		{domain.FieldStatus, "in-progress", "achieved", "Status changed from in-progress to achieved"},
		{domain.FieldPriority, "low", "critical", "Priority changed from low to critical"},
		{domain.FieldTitle, "Ship v1", "Ship v2", `Title changed from "Ship v1" to "Ship v2"`},
		{domain.FieldDescription, "a", "b", "Description updated"},
		{domain.FieldTargetDate, "", "2026-09-01", "Target date changed from none to 2026-09-01"},
		{domain.FieldAssignee, "u-1", "", "Assignee changed from u-1 to none"},
		{domain.FieldMilestones, "3", "4", "Milestones changed from 3 to 4"},
		{domain.FieldTags, "a,b", "a,b,c", "Tags updated"},
		{domain.FieldProgress, "40", "75", "Progress adjusted from 40% to 75%"},
		{"visibility", "private", "public", "visibility updated"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ChangeReason(tt.field, tt.old, tt.new))
		})
	}
}

func TestChangeReason_Deterministic(t *testing.T) {
	first := domain.ChangeReason(domain.FieldStatus, "blocked", "in-progress")
	second := domain.ChangeReason(domain.FieldStatus, "blocked", "in-progress")
	assert.Equal(t, first, second)
}
