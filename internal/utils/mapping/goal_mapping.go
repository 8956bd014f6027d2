package mapping

import (
	"encoding/json"

	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
	"github.com/chronicleteam/chronicle_backend/internal/models"
)

// ToModelGoal converts a domain Goal to a model Goal. Child collections
// (milestones, links, history) live in their own tables and are mapped
// separately.
func ToModelGoal(d domain.Goal) models.Goal {
	m := models.Goal{
		GoalID:             d.GoalID,
		WorkspaceID:        d.WorkspaceID,
		Title:              d.Title,
		Description:        d.Description,
		Category:           d.Category,
		Status:             string(d.Status),
		Priority:           string(d.Priority),
		ProgressPercentage: d.ProgressPercentage,
		TargetDate:         d.TargetDate,
		Tags:               d.Tags,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
	if d.AssigneeID != "" {
		m.AssigneeID = &d.AssigneeID
	}
	if d.ReviewerID != "" {
		m.ReviewerID = &d.ReviewerID
	}
	if d.CompletionNotes != "" {
		m.CompletionNotes = &d.CompletionNotes
	}
	return m
}

// ToDomainGoal converts a model Goal to a domain Goal.
func ToDomainGoal(m models.Goal) domain.Goal {
	d := domain.Goal{
		GoalID:             m.GoalID,
		WorkspaceID:        m.WorkspaceID,
		Title:              m.Title,
		Description:        m.Description,
		Category:           m.Category,
		Status:             domain.GoalStatus(m.Status),
		Priority:           domain.GoalPriority(m.Priority),
		ProgressPercentage: m.ProgressPercentage,
		TargetDate:         m.TargetDate,
		Tags:               m.Tags,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
	if m.AssigneeID != nil {
		d.AssigneeID = *m.AssigneeID
	}
	if m.ReviewerID != nil {
		d.ReviewerID = *m.ReviewerID
	}
	if m.CompletionNotes != nil {
		d.CompletionNotes = *m.CompletionNotes
	}
	return d
}

// ToModelMilestone converts a domain Milestone to a model Milestone. Tasks are
// serialized to JSONB; a nil task list is stored as an empty array.
func ToModelMilestone(d domain.Milestone) (models.Milestone, error) {
	tasks := d.Tasks
	if tasks == nil {
		tasks = []domain.Task{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return models.Milestone{}, err
	}
	return models.Milestone{
		MilestoneID: d.MilestoneID,
		GoalID:      d.GoalID,
		Title:       d.Title,
		TargetDate:  d.TargetDate,
		Status:      string(d.Status),
		Completed:   d.Completed,
		Tasks:       raw,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainMilestone converts a model Milestone to a domain Milestone.
func ToDomainMilestone(m models.Milestone) (domain.Milestone, error) {
	d := domain.Milestone{
		MilestoneID: m.MilestoneID,
		GoalID:      m.GoalID,
		Title:       m.Title,
		TargetDate:  m.TargetDate,
		Status:      domain.MilestoneStatus(m.Status),
		Completed:   m.Completed,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	if len(m.Tasks) > 0 {
		if err := json.Unmarshal(m.Tasks, &d.Tasks); err != nil {
			return domain.Milestone{}, err
		}
	}
	return d, nil
}

// ToModelJournalLink converts a domain JournalLink to a model JournalLink.
func ToModelJournalLink(d domain.JournalLink) models.JournalLink {
	return models.JournalLink{
		JournalEntryID:       d.JournalEntryID,
		GoalID:               d.GoalID,
		LinkedAt:             d.LinkedAt,
		LinkedBy:             d.LinkedBy,
		ContributionType:     string(d.ContributionType),
		ProgressContribution: d.ProgressContribution,
	}
}

// ToDomainJournalLink converts a model JournalLink to a domain JournalLink.
func ToDomainJournalLink(m models.JournalLink) domain.JournalLink {
	return domain.JournalLink{
		JournalEntryID:       m.JournalEntryID,
		GoalID:               m.GoalID,
		LinkedAt:             m.LinkedAt,
		LinkedBy:             m.LinkedBy,
		ContributionType:     domain.ContributionType(m.ContributionType),
		ProgressContribution: m.ProgressContribution,
	}
}

// ToModelEditRecord converts a domain EditRecord to a model EditRecord.
func ToModelEditRecord(d domain.EditRecord) models.EditRecord {
	return models.EditRecord{
		EditID:   d.EditID,
		GoalID:   d.GoalID,
		EditedBy: d.EditedBy,
		EditedAt: d.EditedAt,
		Field:    d.Field,
		OldValue: d.OldValue,
		NewValue: d.NewValue,
		Reason:   d.Reason,
	}
}

// ToDomainEditRecord converts a model EditRecord to a domain EditRecord.
func ToDomainEditRecord(m models.EditRecord) domain.EditRecord {
	return domain.EditRecord{
		EditID:   m.EditID,
		GoalID:   m.GoalID,
		EditedBy: m.EditedBy,
		EditedAt: m.EditedAt,
		Field:    m.Field,
		OldValue: m.OldValue,
		NewValue: m.NewValue,
		Reason:   m.Reason,
	}
}
