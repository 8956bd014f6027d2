package services

import (
	"context"

	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
)

// GoalNotifierSvc is the external notification collaborator. Calls are
// fire-and-forget: implementations must not let delivery failures propagate
// back into the goal workflow, which is why the methods return nothing.
type GoalNotifierSvc interface {
	// NotifyStatusChange is invoked after a goal's status change is committed.
	NotifyStatusChange(ctx context.Context, goal *domain.Goal, previous, next domain.GoalStatus, actorUserID string)

	// NotifyMilestoneCompleted is invoked after a milestone reaches completed.
	NotifyMilestoneCompleted(ctx context.Context, goal *domain.Goal, milestone domain.Milestone, actorUserID string)
}
