package dto

import (
	"time"

	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
)

// --- Goal requests ---

// CreateGoalRequest defines data for creating a new goal. Status accepts any
// vocabulary; it is migrated to the canonical one before storage.
type CreateGoalRequest struct {
	Title       string                   `json:"title" binding:"required"`
	Description string                   `json:"description"`
	Category    string                   `json:"category"`
	Priority    string                   `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	Status      string                   `json:"status"`
	TargetDate  *time.Time               `json:"targetDate"`
	Tags        []string                 `json:"tags"`
	Milestones  []CreateMilestoneRequest `json:"milestones"`
}

// UpdateGoalRequest defines the editable goal fields. Pointers differentiate
// omitted fields from zero-value fields; each changed field yields one
// edit-history record.
type UpdateGoalRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	TargetDate  *time.Time `json:"targetDate"`
	AssigneeID  *string    `json:"assigneeID"`
	ReviewerID  *string    `json:"reviewerID"`
	Tags        *[]string  `json:"tags"`
}

// UpdateGoalStatusRequest defines a status change submission. When the change
// would complete the goal, the server demands a re-submission with
// ConfirmCompletion set (optionally carrying CompletionNotes).
type UpdateGoalStatusRequest struct {
	Status            string  `json:"status" binding:"required"`
	ConfirmCompletion bool    `json:"confirmCompletion"`
	CompletionNotes   *string `json:"completionNotes"`
}

// AdjustProgressRequest is the explicit override path for the cached progress
// percentage. Raising progress to 100 triggers the same completion
// confirmation as a status change.
type AdjustProgressRequest struct {
	Progress          *int    `json:"progress" binding:"required,min=0,max=100"`
	ConfirmCompletion bool    `json:"confirmCompletion"`
	CompletionNotes   *string `json:"completionNotes"`
}

// --- Milestone requests ---

// CreateMilestoneRequest defines data for creating a milestone.
type CreateMilestoneRequest struct {
	Title      string     `json:"title" binding:"required"`
	TargetDate *time.Time `json:"targetDate"`
	Status     string     `json:"status" binding:"omitempty,oneof=incomplete partial completed"`
}

// UpdateMilestoneRequest defines direct milestone edits. This is the only path
// that may set the partial state; the toggle gesture never does.
type UpdateMilestoneRequest struct {
	Title      *string    `json:"title"`
	TargetDate *time.Time `json:"targetDate"`
	Status     *string    `json:"status" binding:"omitempty,oneof=incomplete partial completed"`
}

// --- Journal link requests ---

// LinkJournalEntryRequest defines data for linking a journal entry to a goal.
type LinkJournalEntryRequest struct {
	JournalEntryID       string `json:"journalEntryID" binding:"required"`
	ContributionType     string `json:"contributionType" binding:"required,oneof=milestone progress blocker update"`
	ProgressContribution int    `json:"progressContribution" binding:"min=0,max=100"`
}

// --- List params ---

// ListGoalsParams defines query parameters for listing goals.
type ListGoalsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// --- Responses ---

// MilestoneResponse defines the data returned for a milestone.
type MilestoneResponse struct {
	MilestoneID string       `json:"milestoneID"`
	Title       string       `json:"title"`
	TargetDate  *time.Time   `json:"targetDate,omitempty"`
	Status      string       `json:"status"`
	Tasks       []domain.Task `json:"tasks,omitempty"`
}

// JournalLinkResponse defines the data returned for a goal/journal-entry link.
type JournalLinkResponse struct {
	JournalEntryID       string    `json:"journalEntryID"`
	LinkedAt             time.Time `json:"linkedAt"`
	LinkedBy             string    `json:"linkedBy"`
	ContributionType     string    `json:"contributionType"`
	ProgressContribution int       `json:"progressContribution"`
}

// EditRecordResponse defines the data returned for one edit-history entry.
type EditRecordResponse struct {
	EditID   string    `json:"editID"`
	EditedBy string    `json:"editedBy"`
	EditedAt time.Time `json:"editedAt"`
	Field    string    `json:"field"`
	OldValue string    `json:"oldValue"`
	NewValue string    `json:"newValue"`
	Reason   string    `json:"reason"`
}

// GoalResponse defines the data returned for a goal. Status is always
// canonical and AllowedTransitions mirrors the transition table, so clients
// never have to know about legacy vocabularies or the table itself.
type GoalResponse struct {
	GoalID              string                `json:"goalID"`
	WorkspaceID         string                `json:"workspaceID"`
	Title               string                `json:"title"`
	Description         string                `json:"description,omitempty"`
	Category            string                `json:"category,omitempty"`
	Status              string                `json:"status"`
	AllowedTransitions  []string              `json:"allowedTransitions"`
	Priority            string                `json:"priority"`
	ProgressPercentage  int                   `json:"progressPercentage"`
	TargetDate          *time.Time            `json:"targetDate,omitempty"`
	AssigneeID          string                `json:"assigneeID,omitempty"`
	ReviewerID          string                `json:"reviewerID,omitempty"`
	Tags                []string              `json:"tags,omitempty"`
	Milestones          []MilestoneResponse   `json:"milestones"`
	JournalLinks        []JournalLinkResponse `json:"journalLinks"`
	CompletionNotes     string                `json:"completionNotes,omitempty"`
	CompletionSuggested bool                  `json:"completionSuggested,omitempty"`
	CreatedAt           time.Time             `json:"createdAt"`
	CreatedBy           string                `json:"createdBy"`
	LastUpdatedAt       time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy       string                `json:"lastUpdatedBy"`
}

// ListGoalsResponse wraps a paginated list of goals.
type ListGoalsResponse struct {
	Goals     []GoalResponse `json:"goals"`
	NextToken *string        `json:"nextToken,omitempty"`
}

// ToMilestoneResponse converts a domain.Milestone to its response DTO.
func ToMilestoneResponse(m *domain.Milestone) MilestoneResponse {
	return MilestoneResponse{
		MilestoneID: m.MilestoneID,
		Title:       m.Title,
		TargetDate:  m.TargetDate,
		Status:      string(m.EffectiveStatus()),
		Tasks:       m.Tasks,
	}
}

// ToJournalLinkResponse converts a domain.JournalLink to its response DTO.
func ToJournalLinkResponse(l *domain.JournalLink) JournalLinkResponse {
	return JournalLinkResponse{
		JournalEntryID:       l.JournalEntryID,
		LinkedAt:             l.LinkedAt,
		LinkedBy:             l.LinkedBy,
		ContributionType:     string(l.ContributionType),
		ProgressContribution: l.ProgressContribution,
	}
}

// ToEditRecordResponse converts a domain.EditRecord to its response DTO.
func ToEditRecordResponse(r *domain.EditRecord) EditRecordResponse {
	return EditRecordResponse{
		EditID:   r.EditID,
		EditedBy: r.EditedBy,
		EditedAt: r.EditedAt,
		Field:    r.Field,
		OldValue: r.OldValue,
		NewValue: r.NewValue,
		Reason:   r.Reason,
	}
}

// ToGoalResponse converts a domain.Goal to its response DTO.
func ToGoalResponse(g *domain.Goal) GoalResponse {
	status := g.CanonicalStatus()
	transitions := domain.ValidTransitions(status)
	allowed := make([]string, len(transitions))
	for i, t := range transitions {
		allowed[i] = string(t)
	}

	milestones := make([]MilestoneResponse, len(g.Milestones))
	for i := range g.Milestones {
		milestones[i] = ToMilestoneResponse(&g.Milestones[i])
	}
	links := make([]JournalLinkResponse, len(g.JournalLinks))
	for i := range g.JournalLinks {
		links[i] = ToJournalLinkResponse(&g.JournalLinks[i])
	}

	return GoalResponse{
		GoalID:              g.GoalID,
		WorkspaceID:         g.WorkspaceID,
		Title:               g.Title,
		Description:         g.Description,
		Category:            g.Category,
		Status:              string(status),
		AllowedTransitions:  allowed,
		Priority:            string(g.Priority),
		ProgressPercentage:  g.ProgressPercentage,
		TargetDate:          g.TargetDate,
		AssigneeID:          g.AssigneeID,
		ReviewerID:          g.ReviewerID,
		Tags:                g.Tags,
		Milestones:          milestones,
		JournalLinks:        links,
		CompletionNotes:     g.CompletionNotes,
		CompletionSuggested: domain.ShouldPromptCompletion(g),
		CreatedAt:           g.CreatedAt,
		CreatedBy:           g.CreatedBy,
		LastUpdatedAt:       g.LastUpdatedAt,
		LastUpdatedBy:       g.LastUpdatedBy,
	}
}

// ToListGoalsResponse converts a page of goals and its next token to a DTO.
func ToListGoalsResponse(goals []domain.Goal, nextToken *string) ListGoalsResponse {
	out := make([]GoalResponse, len(goals))
	for i := range goals {
		out[i] = ToGoalResponse(&goals[i])
	}
	return ListGoalsResponse{Goals: out, NextToken: nextToken}
}

// ToEditHistoryResponse converts edit records (already newest-first) to DTOs.
func ToEditHistoryResponse(records []domain.EditRecord) []EditRecordResponse {
	out := make([]EditRecordResponse, len(records))
	for i := range records {
		out[i] = ToEditRecordResponse(&records[i])
	}
	return out
}
