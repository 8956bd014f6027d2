package models

import "time"

// Goal represents a row in the goals table. Status is stored as written and
// migrated to the canonical vocabulary on read, so legacy rows keep their
// original strings.
type Goal struct {
	GoalID             string     `db:"goal_id"`
	WorkspaceID        string     `db:"workspace_id"`
	Title              string     `db:"title"`
	Description        string     `db:"description"`
	Category           string     `db:"category"`
	Status             string     `db:"status"`
	Priority           string     `db:"priority"`
	ProgressPercentage int        `db:"progress_percentage"` // materialized view of effective progress
	TargetDate         *time.Time `db:"target_date"`
	AssigneeID         *string    `db:"assignee_id"`
	ReviewerID         *string    `db:"reviewer_id"`
	Tags               []string   `db:"tags"`
	CompletionNotes    *string    `db:"completion_notes"`
	AuditFields
}

// Milestone represents a row in the milestones table. Both the three-state
// status column and the legacy completed boolean are persisted; status may be
// empty for rows written before the three-state model.
type Milestone struct {
	MilestoneID string     `db:"milestone_id"`
	GoalID      string     `db:"goal_id"`
	Title       string     `db:"title"`
	TargetDate  *time.Time `db:"target_date"`
	Status      string     `db:"status"`
	Completed   bool       `db:"completed"`
	Tasks       []byte     `db:"tasks"` // JSONB checklist
	AuditFields
}

// JournalLink represents a row in the goal_journal_links table.
type JournalLink struct {
	JournalEntryID       string    `db:"journal_entry_id"`
	GoalID               string    `db:"goal_id"`
	LinkedAt             time.Time `db:"linked_at"`
	LinkedBy             string    `db:"linked_by"`
	ContributionType     string    `db:"contribution_type"`
	ProgressContribution int       `db:"progress_contribution"`
}

// EditRecord represents a row in the goal_edit_history table. Rows are never
// updated or deleted.
type EditRecord struct {
	EditID   string    `db:"edit_id"`
	GoalID   string    `db:"goal_id"`
	EditedBy string    `db:"edited_by"`
	EditedAt time.Time `db:"edited_at"`
	Field    string    `db:"field"`
	OldValue string    `db:"old_value"`
	NewValue string    `db:"new_value"`
	Reason   string    `db:"reason"`
}
