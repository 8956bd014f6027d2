package domain

import (
	"fmt"
	"time"
)

// Goal fields that produce edit history records.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldPriority    = "priority"
	FieldStatus      = "status"
	FieldTargetDate  = "targetDate"
	FieldAssignee    = "assignee"
	FieldReviewer    = "reviewer"
	FieldMilestones  = "milestones"
	FieldTags        = "tags"
	FieldProgress    = "progress"
)

// EditRecord is an immutable log entry describing one field-level change to a
// goal. Records are append-only; a multi-field edit produces one record per
// changed field, all sharing the same EditedAt.
type EditRecord struct {
	EditID   string    `json:"editID"` // Primary Key (e.g., UUID)
	GoalID   string    `json:"goalID"` // FK -> goals.goal_id
	EditedBy string    `json:"editedBy"`
	EditedAt time.Time `json:"editedAt"`
	Field    string    `json:"field"`
	OldValue string    `json:"oldValue"`
	NewValue string    `json:"newValue"`
	Reason   string    `json:"reason"`
}

// ChangeReason derives the human-readable reason for an edit deterministically
// from the field and values. Unknown fields fall back to "{field} updated".
func ChangeReason(field, oldValue, newValue string) string {
	switch field {
	case FieldTitle:
		return fmt.Sprintf("Title changed from %q to %q", oldValue, newValue)
	case FieldDescription:
		return "Description updated"
	case FieldCategory:
		return fmt.Sprintf("Category changed from %s to %s", orNone(oldValue), orNone(newValue))
	case FieldPriority:
		return fmt.Sprintf("Priority changed from %s to %s", oldValue, newValue)
	case FieldStatus:
		return fmt.Sprintf("Status changed from %s to %s", oldValue, newValue)
	case FieldTargetDate:
		return fmt.Sprintf("Target date changed from %s to %s", orNone(oldValue), orNone(newValue))
	case FieldAssignee:
		return fmt.Sprintf("Assignee changed from %s to %s", orNone(oldValue), orNone(newValue))
	case FieldReviewer:
		return fmt.Sprintf("Reviewer changed from %s to %s", orNone(oldValue), orNone(newValue))
	case FieldMilestones:
		return fmt.Sprintf("Milestones changed from %s to %s", oldValue, newValue)
	case FieldTags:
		return "Tags updated"
	case FieldProgress:
		return fmt.Sprintf("Progress adjusted from %s%% to %s%%", oldValue, newValue)
	default:
		return field + " updated"
	}
}

func orNone(value string) string {
	if value == "" {
		return "none"
	}
	return value
}
