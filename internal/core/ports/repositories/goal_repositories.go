package repositories

import (
	"context"
	"time"

	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
)

// GoalReader defines read operations for goal data.
type GoalReader interface {
	// FindGoalByID retrieves a goal with its milestones, journal links and
	// edit history. Status is returned as stored; callers migrate on read.
	FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error)

	// ListGoalsByWorkspace retrieves a paginated list of goals for a workspace
	// using token-based pagination. Returns the goals and a token for the next page.
	ListGoalsByWorkspace(ctx context.Context, workspaceID string, limit int, nextToken *string) ([]domain.Goal, *string, error)

	// ListEditHistory retrieves a goal's edit records ordered by editedAt descending.
	ListEditHistory(ctx context.Context, goalID string) ([]domain.EditRecord, error)
}

// GoalWriter defines write operations for goal data.
type GoalWriter interface {
	// SaveGoal persists a new goal with its initial milestones.
	SaveGoal(ctx context.Context, goal domain.Goal) error

	// UpdateGoalFields updates mutable goal fields and appends the given edit
	// records in a single database transaction.
	UpdateGoalFields(ctx context.Context, goal domain.Goal, records []domain.EditRecord) error

	// CommitStatusChange atomically updates status, cached progress and
	// (optionally) completion notes, appending the edit records in the same
	// database transaction. Either everything is applied or nothing is.
	CommitStatusChange(ctx context.Context, goalID string, status domain.GoalStatus, progress int, completionNotes *string, records []domain.EditRecord, updatedBy string, updatedAt time.Time) error

	// UpdateCachedProgress refreshes the materialized progress percentage.
	UpdateCachedProgress(ctx context.Context, goalID string, progress int, updatedBy string, updatedAt time.Time) error
}

// MilestoneWriter defines write operations for a goal's milestones.
type MilestoneWriter interface {
	// SaveMilestone persists a new milestone under a goal.
	SaveMilestone(ctx context.Context, milestone domain.Milestone) error

	// UpdateMilestone updates a milestone's title, target date and status.
	UpdateMilestone(ctx context.Context, milestone domain.Milestone) error
}

// JournalLinkWriter defines write operations for goal/journal-entry links.
type JournalLinkWriter interface {
	// SaveJournalLink persists a link; returns apperrors.ErrDuplicate when the
	// goal already links the journal entry.
	SaveJournalLink(ctx context.Context, link domain.JournalLink) error

	// DeleteJournalLink removes the link between a goal and a journal entry.
	DeleteJournalLink(ctx context.Context, goalID, journalEntryID string) error
}

// EditHistoryWriter appends edit records outside a field-update transaction.
type EditHistoryWriter interface {
	// AppendEditRecords appends records for a goal. Records are immutable once written.
	AppendEditRecords(ctx context.Context, records []domain.EditRecord) error
}

// GoalRepositoryFacade combines all goal-related repository interfaces.
type GoalRepositoryFacade interface {
	GoalReader
	GoalWriter
	MilestoneWriter
	JournalLinkWriter
	EditHistoryWriter
}

// GoalRepositoryWithTx extends GoalRepositoryFacade with transaction capabilities.
type GoalRepositoryWithTx interface {
	GoalRepositoryFacade
	TransactionManager
}
