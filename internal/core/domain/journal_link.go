package domain

import "time"

// ContributionType describes how a linked journal entry relates to the goal.
type ContributionType string

const (
	ContributionMilestone ContributionType = "milestone"
	ContributionProgress  ContributionType = "progress"
	ContributionBlocker   ContributionType = "blocker"
	ContributionUpdate    ContributionType = "update"
)

// JournalLink associates a goal with a journal entry. The journal entry itself
// lives outside this service and is referenced only by ID. A goal links a given
// entry at most once.
type JournalLink struct {
	JournalEntryID       string           `json:"journalEntryID"`
	GoalID               string           `json:"goalID"`
	LinkedAt             time.Time        `json:"linkedAt"`
	LinkedBy             string           `json:"linkedBy"` // UserID reference
	ContributionType     ContributionType `json:"contributionType"`
	ProgressContribution int              `json:"progressContribution"` // percentage points, 0-100
}

// IsValidContributionType reports whether raw is a known contribution type.
func IsValidContributionType(raw string) bool {
	switch ContributionType(raw) {
	case ContributionMilestone, ContributionProgress, ContributionBlocker, ContributionUpdate:
		return true
	}
	return false
}
