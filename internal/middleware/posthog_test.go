package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApiEventName(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/api/v1/workspaces", "workspaces"},
		{"/api/v1/workspaces/:workspace_id/goals", "goal"},
		{"/api/v1/workspaces/:workspace_id/goals/:goal_id", "goal"},
		{"/api/v1/workspaces/:workspace_id/goals/:goal_id/status", "goal_status"},
		{"/api/v1/workspaces/:workspace_id/goals/:goal_id/milestones/:milestone_id/toggle", "goal_milestones_toggle"},
		{"/api/v1/workspaces/:workspace_id/goals/:goal_id/links/:journal_entry_id", "goal_links"},
		{"/api/v1/users/:id", "users"},
		{"/auth/login", "login"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, apiEventName(tt.route), "route %q", tt.route)
	}
}
