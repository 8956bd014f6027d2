package services

import (
	"context"
	"log/slog"

	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
	portssvc "github.com/chronicleteam/chronicle_backend/internal/core/ports/services"
	"github.com/chronicleteam/chronicle_backend/internal/utils"
)

// goalNotifier delivers goal lifecycle notifications. Delivery is best-effort:
// a failed or unconfigured sink must never surface back into the mutation that
// triggered the notification, so the methods return nothing and only log.
type goalNotifier struct {
	BaseService
	analytics *utils.PosthogClientWrapper
}

// NewGoalNotifier creates the notification service backed by structured logs
// and the analytics pipeline.
func NewGoalNotifier(analytics *utils.PosthogClientWrapper) portssvc.GoalNotifierSvc {
	return &goalNotifier{
		analytics: analytics,
	}
}

var _ portssvc.GoalNotifierSvc = (*goalNotifier)(nil)

// NotifyStatusChange is invoked after a goal's status change is committed.
func (s *goalNotifier) NotifyStatusChange(ctx context.Context, goal *domain.Goal, previous, next domain.GoalStatus, actorUserID string) {
	s.LogInfo(ctx, "Goal status changed",
		slog.String("goal_id", goal.GoalID),
		slog.String("workspace_id", goal.WorkspaceID),
		slog.String("previous_status", string(previous)),
		slog.String("next_status", string(next)),
		slog.String("actor_user_id", actorUserID))

	if s.analytics == nil || !s.analytics.IsInitialized() || actorUserID == "" {
		return
	}
	s.analytics.Enqueue(actorUserID, "goal_status_changed", map[string]any{
		"goal_id":         goal.GoalID,
		"workspace_id":    goal.WorkspaceID,
		"previous_status": string(previous),
		"next_status":     string(next),
	})
}

// NotifyMilestoneCompleted is invoked after a milestone reaches completed.
func (s *goalNotifier) NotifyMilestoneCompleted(ctx context.Context, goal *domain.Goal, milestone domain.Milestone, actorUserID string) {
	s.LogInfo(ctx, "Milestone completed",
		slog.String("goal_id", goal.GoalID),
		slog.String("workspace_id", goal.WorkspaceID),
		slog.String("milestone_id", milestone.MilestoneID),
		slog.String("actor_user_id", actorUserID))

	if s.analytics == nil || !s.analytics.IsInitialized() || actorUserID == "" {
		return
	}
	s.analytics.Enqueue(actorUserID, "goal_milestone_completed", map[string]any{
		"goal_id":      goal.GoalID,
		"workspace_id": goal.WorkspaceID,
		"milestone_id": milestone.MilestoneID,
	})
}
