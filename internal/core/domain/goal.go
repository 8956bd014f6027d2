package domain

import "time"

// GoalPriority defines the urgency of a goal.
type GoalPriority string

const (
	PriorityLow      GoalPriority = "low"
	PriorityMedium   GoalPriority = "medium"
	PriorityHigh     GoalPriority = "high"
	PriorityCritical GoalPriority = "critical"
)

// IsValidPriority reports whether raw is a known goal priority.
func IsValidPriority(raw string) bool {
	switch GoalPriority(raw) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Goal is the central entity of the lifecycle engine. It exclusively owns its
// milestones and edit history; journal entries are external and referenced
// through JournalLink records.
//
// ProgressPercentage is a materialized view of EffectiveProgress over the
// current milestones and journal links. It is cached for display only; any
// direct override must go through the explicit adjust-progress path, which
// records an EditRecord.
type Goal struct {
	GoalID             string        `json:"goalID"`      // Primary Key (e.g., UUID)
	WorkspaceID        string        `json:"workspaceID"` // FK -> workspaces.workspace_id (NON-NULL)
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Category           string        `json:"category"`
	Status             GoalStatus    `json:"status"` // read through MigrateStatus, never assumed canonical
	Priority           GoalPriority  `json:"priority"`
	ProgressPercentage int           `json:"progressPercentage"` // derived, cached
	TargetDate         *time.Time    `json:"targetDate,omitempty"`
	AssigneeID         string        `json:"assigneeID,omitempty"` // UserID reference
	ReviewerID         string        `json:"reviewerID,omitempty"` // UserID reference
	Tags               []string      `json:"tags,omitempty"`
	Milestones         []Milestone   `json:"milestones,omitempty"`      // order meaningful for display only
	JournalLinks       []JournalLink `json:"journalLinks,omitempty"`    // at most one per journal entry ID
	EditHistory        []EditRecord  `json:"editHistory,omitempty"`     // append-only
	CompletionNotes    string        `json:"completionNotes,omitempty"` // set only via the completion confirmation path
	AuditFields
}

// CanonicalStatus returns the goal's status migrated to the current vocabulary.
func (g *Goal) CanonicalStatus() GoalStatus {
	return MigrateStatus(string(g.Status))
}

// AllowedTransitions returns the statuses this goal may move to in one step.
func (g *Goal) AllowedTransitions() []GoalStatus {
	return ValidTransitions(g.CanonicalStatus())
}

// FindMilestone returns the index of the milestone with the given ID, or -1.
func (g *Goal) FindMilestone(milestoneID string) int {
	for i := range g.Milestones {
		if g.Milestones[i].MilestoneID == milestoneID {
			return i
		}
	}
	return -1
}

// HasJournalLink reports whether the goal already links the given journal entry.
func (g *Goal) HasJournalLink(journalEntryID string) bool {
	for i := range g.JournalLinks {
		if g.JournalLinks[i].JournalEntryID == journalEntryID {
			return true
		}
	}
	return false
}
