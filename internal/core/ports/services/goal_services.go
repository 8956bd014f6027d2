package services

import (
	"context"

	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
	"github.com/chronicleteam/chronicle_backend/internal/dto"
)

// GoalReaderSvc defines read operations for goal data.
type GoalReaderSvc interface {
	// GetGoalByID retrieves a goal with a migrated status and freshly computed
	// effective progress.
	GetGoalByID(ctx context.Context, workspaceID string, goalID string, requestingUserID string) (*domain.Goal, error)

	// ListGoals retrieves a paginated list of goals in a workspace.
	ListGoals(ctx context.Context, workspaceID string, userID string, params dto.ListGoalsParams) (*dto.ListGoalsResponse, error)

	// GetEditHistory retrieves a goal's edit records, newest first.
	GetEditHistory(ctx context.Context, workspaceID string, goalID string, requestingUserID string) ([]domain.EditRecord, error)
}

// GoalWriterSvc defines write operations on the goal itself.
type GoalWriterSvc interface {
	// CreateGoal persists a new goal. Incoming status is migrated to the
	// canonical vocabulary before storage.
	CreateGoal(ctx context.Context, workspaceID string, req dto.CreateGoalRequest, creatorUserID string) (*domain.Goal, error)

	// UpdateGoal applies field edits, producing one edit record per changed field.
	UpdateGoal(ctx context.Context, workspaceID string, goalID string, req dto.UpdateGoalRequest, requestingUserID string) (*domain.Goal, error)

	// UpdateGoalStatus performs a transition-table-validated status change.
	// When the simulated next state reaches 100% and the goal is not yet
	// achieved, it returns apperrors.ErrCompletionConfirmationRequired unless
	// the request carries confirmCompletion; the confirmed commit applies
	// status, progress and completion notes atomically.
	UpdateGoalStatus(ctx context.Context, workspaceID string, goalID string, req dto.UpdateGoalStatusRequest, requestingUserID string) (*domain.Goal, error)

	// AdjustProgress is the explicit override path for the cached progress
	// percentage; the override itself is edit-recorded.
	AdjustProgress(ctx context.Context, workspaceID string, goalID string, req dto.AdjustProgressRequest, requestingUserID string) (*domain.Goal, error)
}

// MilestoneSvc defines operations on a goal's milestones.
type MilestoneSvc interface {
	// AddMilestone creates a milestone under a goal (initially incomplete).
	AddMilestone(ctx context.Context, workspaceID string, goalID string, req dto.CreateMilestoneRequest, requestingUserID string) (*domain.Goal, error)

	// UpdateMilestone edits a milestone directly; this is the only path that
	// may set the partial state.
	UpdateMilestone(ctx context.Context, workspaceID string, goalID string, milestoneID string, req dto.UpdateMilestoneRequest, requestingUserID string) (*domain.Goal, error)

	// ToggleMilestone cycles a milestone between incomplete and completed and
	// recomputes the goal's progress.
	ToggleMilestone(ctx context.Context, workspaceID string, goalID string, milestoneID string, requestingUserID string) (*domain.Goal, error)
}

// JournalLinkSvc defines operations linking journal entries to goals.
type JournalLinkSvc interface {
	// LinkJournalEntry associates a journal entry with a goal; a goal links a
	// given entry at most once.
	LinkJournalEntry(ctx context.Context, workspaceID string, goalID string, req dto.LinkJournalEntryRequest, requestingUserID string) (*domain.Goal, error)

	// UnlinkJournalEntry removes the association and recomputes progress.
	UnlinkJournalEntry(ctx context.Context, workspaceID string, goalID string, journalEntryID string, requestingUserID string) (*domain.Goal, error)
}

// GoalSvcFacade combines all goal-related service interfaces.
type GoalSvcFacade interface {
	GoalReaderSvc
	GoalWriterSvc
	MilestoneSvc
	JournalLinkSvc
}
