package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MilestoneStatus is one of the three discrete completion states of a milestone.
type MilestoneStatus string

const (
	MilestoneIncomplete MilestoneStatus = "incomplete"
	MilestonePartial    MilestoneStatus = "partial"
	MilestoneCompleted  MilestoneStatus = "completed"
)

// Task is a checklist item under a milestone. Tasks inform milestone status in
// the UI but carry no completion weight of their own.
type Task struct {
	TaskID string `json:"taskID"`
	Title  string `json:"title"`
	Done   bool   `json:"done"`
}

// Milestone is a discrete step toward a goal. Status is the canonical
// completion field; Completed is the legacy boolean kept for rows written
// before the three-state model existed.
type Milestone struct {
	MilestoneID string          `json:"milestoneID"` // Primary Key (e.g., UUID)
	GoalID      string          `json:"goalID"`      // FK -> goals.goal_id
	Title       string          `json:"title"`
	TargetDate  *time.Time      `json:"targetDate,omitempty"`
	Status      MilestoneStatus `json:"status,omitempty"` // empty means "fall back to Completed"
	Completed   bool            `json:"completed"`        // legacy boolean
	Tasks       []Task          `json:"tasks,omitempty"`
	AuditFields
}

var milestoneWeights = map[MilestoneStatus]decimal.Decimal{
	MilestoneCompleted:  decimal.NewFromInt(1),
	MilestonePartial:    decimal.NewFromFloat(0.5),
	MilestoneIncomplete: decimal.Zero,
}

// EffectiveStatus resolves the milestone's completion state, falling back to
// the legacy boolean when the canonical field is unset.
func (m Milestone) EffectiveStatus() MilestoneStatus {
	switch m.Status {
	case MilestoneIncomplete, MilestonePartial, MilestoneCompleted:
		return m.Status
	}
	if m.Completed {
		return MilestoneCompleted
	}
	return MilestoneIncomplete
}

// Weight returns the milestone's contribution weight: completed 1.0,
// partial 0.5, incomplete 0.0.
func (m Milestone) Weight() decimal.Decimal {
	return milestoneWeights[m.EffectiveStatus()]
}

// Toggled returns the status after the toggle gesture. The toggle is a
// two-state cycle between incomplete and completed; partial is reachable only
// through direct milestone editing, and toggling a partial milestone completes it.
func (m Milestone) Toggled() MilestoneStatus {
	if m.EffectiveStatus() == MilestoneCompleted {
		return MilestoneIncomplete
	}
	return MilestoneCompleted
}

// IsValidMilestoneStatus reports whether raw is one of the three milestone states.
func IsValidMilestoneStatus(raw string) bool {
	_, ok := milestoneWeights[MilestoneStatus(raw)]
	return ok
}
