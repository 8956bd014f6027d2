package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chronicleteam/chronicle_backend/internal/apperrors"
	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
	portsrepo "github.com/chronicleteam/chronicle_backend/internal/core/ports/repositories"
	portssvc "github.com/chronicleteam/chronicle_backend/internal/core/ports/services"
	"github.com/chronicleteam/chronicle_backend/internal/core/workflow"
	"github.com/chronicleteam/chronicle_backend/internal/dto"
)

// goalService orchestrates the goal lifecycle: status transitions with the
// completion confirmation protocol, milestone and journal-link mutations with
// their progress side effects, and the append-only edit history.
type goalService struct {
	BaseService
	goalRepo portsrepo.GoalRepositoryWithTx
	notifier portssvc.GoalNotifierSvc
	flows    *workflow.Registry
}

// NewGoalService creates a new goal service.
func NewGoalService(goalRepo portsrepo.GoalRepositoryWithTx, workspaceAuthorizer portssvc.WorkspaceAuthorizerSvc, notifier portssvc.GoalNotifierSvc) portssvc.GoalSvcFacade {
	return &goalService{
		BaseService: BaseService{WorkspaceAuthorizer: workspaceAuthorizer},
		goalRepo:    goalRepo,
		notifier:    notifier,
		flows:       workflow.NewRegistry(),
	}
}

var _ portssvc.GoalSvcFacade = (*goalService)(nil)

// fetchGoal loads a goal and verifies it belongs to the requested workspace.
// A goal from another workspace is reported as not found to obscure existence.
func (s *goalService) fetchGoal(ctx context.Context, workspaceID, goalID string) (*domain.Goal, error) {
	goal, err := s.goalRepo.FindGoalByID(ctx, goalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find goal by ID", slog.String("goal_id", goalID))
		}
		return nil, err
	}
	if goal.WorkspaceID != workspaceID {
		s.LogWarn(ctx, "Goal found but belongs to different workspace",
			slog.String("goal_id", goalID),
			slog.String("goal_workspace", goal.WorkspaceID),
			slog.String("requested_workspace", workspaceID))
		return nil, apperrors.ErrNotFound
	}
	return goal, nil
}

// fieldChange is one pending edit-history entry.
type fieldChange struct {
	field    string
	oldValue string
	newValue string
}

// editRecords builds the edit-history batch for a set of field changes. All
// records share the same timestamp. When no actor identity is available the
// batch is skipped entirely rather than recorded with an empty actor.
func editRecords(goalID, actor string, at time.Time, changes ...fieldChange) []domain.EditRecord {
	if actor == "" || len(changes) == 0 {
		return nil
	}
	records := make([]domain.EditRecord, len(changes))
	for i, c := range changes {
		records[i] = domain.EditRecord{
			EditID:   uuid.NewString(),
			GoalID:   goalID,
			EditedBy: actor,
			EditedAt: at,
			Field:    c.field,
			OldValue: c.oldValue,
			NewValue: c.newValue,
			Reason:   domain.ChangeReason(c.field, c.oldValue, c.newValue),
		}
	}
	return records
}

// normalizeGoal migrates the stored status to the canonical vocabulary and
// recomputes the effective progress for display.
func normalizeGoal(goal *domain.Goal) {
	goal.Status = goal.CanonicalStatus()
	goal.ProgressPercentage = domain.EffectiveProgress(goal)
}

// CreateGoal persists a new goal. Incoming status is migrated to the canonical
// vocabulary before storage.
func (s *goalService) CreateGoal(ctx context.Context, workspaceID string, req dto.CreateGoalRequest, creatorUserID string) (*domain.Goal, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, workspaceID, domain.RoleMember); err != nil {
		s.LogWarn(ctx, "Authorization failed for CreateGoal",
			slog.String("user_id", creatorUserID), slog.String("workspace_id", workspaceID))
		return nil, err
	}

	now := time.Now().UTC()
	goalID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	priority := domain.PriorityMedium
	if req.Priority != "" {
		priority = domain.GoalPriority(req.Priority)
	}

	milestones := make([]domain.Milestone, len(req.Milestones))
	for i, m := range req.Milestones {
		status := domain.MilestoneIncomplete
		if m.Status != "" {
			status = domain.MilestoneStatus(m.Status)
		}
		milestones[i] = domain.Milestone{
			MilestoneID: uuid.NewString(),
			GoalID:      goalID,
			Title:       m.Title,
			TargetDate:  m.TargetDate,
			Status:      status,
			Completed:   status == domain.MilestoneCompleted,
			AuditFields: audit,
		}
	}

	goal := domain.Goal{
		GoalID:      goalID,
		WorkspaceID: workspaceID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      domain.MigrateStatus(req.Status),
		Priority:    priority,
		TargetDate:  req.TargetDate,
		Tags:        req.Tags,
		Milestones:  milestones,
		AuditFields: audit,
	}
	goal.ProgressPercentage = domain.EffectiveProgress(&goal)

	if err := s.goalRepo.SaveGoal(ctx, goal); err != nil {
		s.LogError(ctx, err, "Failed to save goal", slog.String("workspace_id", workspaceID))
		return nil, err
	}

	s.LogInfo(ctx, "Goal created successfully",
		slog.String("goal_id", goal.GoalID), slog.String("workspace_id", workspaceID))
	return &goal, nil
}

// GetGoalByID retrieves a single goal, status migrated and progress recomputed.
func (s *goalService) GetGoalByID(ctx context.Context, workspaceID string, goalID string, requestingUserID string) (*domain.Goal, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, workspaceID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	goal, err := s.fetchGoal(ctx, workspaceID, goalID)
	if err != nil {
		return nil, err
	}

	// Seeing the current status clears a stale failure whose retry target no
	// longer applies. Reads never materialize a flow, and a flow that drops
	// back to idle is released.
	if flow := s.flows.Peek(goalID); flow != nil {
		flow.ObserveStatus(goal.CanonicalStatus())
		s.flows.Evict(goalID)
	}

	normalizeGoal(goal)
	return goal, nil
}

// ListGoals retrieves a token-paginated page of goals in a workspace.
func (s *goalService) ListGoals(ctx context.Context, workspaceID string, userID string, params dto.ListGoalsParams) (*dto.ListGoalsResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, workspaceID, domain.RoleReadOnly); err != nil {
		s.LogWarn(ctx, "Authorization failed for ListGoals", slog.String("user_id", userID))
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	goals, nextToken, err := s.goalRepo.ListGoalsByWorkspace(ctx, workspaceID, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list goals", slog.String("workspace_id", workspaceID))
		return nil, fmt.Errorf("failed to retrieve goals: %w", err)
	}

	// List rows carry the cached progress; only the status needs migrating.
	for i := range goals {
		goals[i].Status = goals[i].CanonicalStatus()
	}

	resp := dto.ToListGoalsResponse(goals, nextToken)
	s.LogDebug(ctx, "Goals listed successfully", slog.Int("count", len(goals)))
	return &resp, nil
}

// GetEditHistory retrieves a goal's edit records, newest first.
func (s *goalService) GetEditHistory(ctx context.Context, workspaceID string, goalID string, requestingUserID string) ([]domain.EditRecord, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, workspaceID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if _, err := s.fetchGoal(ctx, workspaceID, goalID); err != nil {
		return nil, err
	}

	records, err := s.goalRepo.ListEditHistory(ctx, goalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list edit history", slog.String("goal_id", goalID))
		return nil, err
	}
	return records, nil
}

// UpdateGoal applies field edits, producing one edit record per changed field.
func (s *goalService) UpdateGoal(ctx context.Context, workspaceID string, goalID string, req dto.UpdateGoalRequest, requestingUserID string) (*domain.Goal, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, workspaceID, domain.RoleMember); err != nil {
		s.LogWarn(ctx, "Authorization failed for UpdateGoal",
			slog.String("user_id", requestingUserID), slog.String("goal_id", goalID))
		return nil, err
	}

	goal, err := s.fetchGoal(ctx, workspaceID, goalID)
	if err != nil {
		return nil, err
	}

	var changes []fieldChange
	if req.Title != nil && *req.Title != goal.Title {
		changes = append(changes, fieldChange{domain.FieldTitle, goal.Title, *req.Title})
		goal.Title = *req.Title
	}
	if req.Description != nil && *req.Description != goal.Description {
		changes = append(changes, fieldChange{domain.FieldDescription, goal.Description, *req.Description})
		goal.Description = *req.Description
	}
	if req.Category != nil && *req.Category != goal.Category {
		changes = append(changes, fieldChange{domain.FieldCategory, goal.Category, *req.Category})
		goal.Category = *req.Category
	}
	if req.Priority != nil && domain.GoalPriority(*req.Priority) != goal.Priority {
		if !domain.IsValidPriority(*req.Priority) {
			return nil, fmt.Errorf("%w: unknown priority %q", apperrors.ErrValidation, *req.Priority)
		}
		changes = append(changes, fieldChange{domain.FieldPriority, string(goal.Priority), *req.Priority})
		goal.Priority = domain.GoalPriority(*req.Priority)
	}
	if req.TargetDate != nil && !timeEqual(req.TargetDate, goal.TargetDate) {
		changes = append(changes, fieldChange{domain.FieldTargetDate, formatDate(goal.TargetDate), formatDate(req.TargetDate)})
		goal.TargetDate = req.TargetDate
	}
	if req.AssigneeID != nil && *req.AssigneeID != goal.AssigneeID {
		changes = append(changes, fieldChange{domain.FieldAssignee, goal.AssigneeID, *req.AssigneeID})
		goal.AssigneeID = *req.AssigneeID
	}
	if req.ReviewerID != nil && *req.ReviewerID != goal.ReviewerID {
		changes = append(changes, fieldChange{domain.FieldReviewer, goal.ReviewerID, *req.ReviewerID})
		goal.ReviewerID = *req.ReviewerID
	}
	if req.Tags != nil && !slices.Equal(*req.Tags, goal.Tags) {
		changes = append(changes, fieldChange{domain.FieldTags, strings.Join(goal.Tags, ","), strings.Join(*req.Tags, ",")})
		goal.Tags = *req.Tags
	}

	if len(changes) == 0 {
		s.LogDebug(ctx, "No fields provided for goal update", slog.String("goal_id", goalID))
		normalizeGoal(goal)
		return goal, nil
	}

	now := time.Now().UTC()
	goal.LastUpdatedAt = now
	goal.LastUpdatedBy = requestingUserID

	records := editRecords(goalID, requestingUserID, now, changes...)
	if err := s.goalRepo.UpdateGoalFields(ctx, *goal, records); err != nil {
		s.LogError(ctx, err, "Failed to update goal fields", slog.String("goal_id", goalID))
		return nil, fmt.Errorf("failed to save goal update: %w", err)
	}

	s.LogInfo(ctx, "Goal updated successfully",
		slog.String("goal_id", goalID), slog.Int("changed_fields", len(changes)))
	goal.EditHistory = append(records, goal.EditHistory...)
	normalizeGoal(goal)
	return goal, nil
}

// UpdateGoalStatus performs a transition-table-validated status change with
// the completion confirmation protocol.
func (s *goalService) UpdateGoalStatus(ctx context.Context, workspaceID string, goalID string, req dto.UpdateGoalStatusRequest, requestingUserID string) (*domain.Goal, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, workspaceID, domain.RoleMember); err != nil {
		s.LogWarn(ctx, "Authorization failed for UpdateGoalStatus",
			slog.String("user_id", requestingUserID), slog.String("goal_id", goalID))
		return nil, err
	}

	goal, err := s.fetchGoal(ctx, workspaceID, goalID)
	if err != nil {
		return nil, err
	}

	current := goal.CanonicalStatus()
	target := domain.MigrateStatus(req.Status)

	flow := s.flows.FlowFor(goalID)
	flow.ObserveStatus(current)
	if err := flow.Begin(target); err != nil {
		s.LogWarn(ctx, "Status update rejected by workflow",
			slog.String("goal_id", goalID), slog.String("target", string(target)))
		return nil, err
	}

	if !domain.CanTransition(current, target) {
		err := fmt.Errorf("%w: cannot move from %s to %s", apperrors.ErrInvalidTransition, current, target)
		flow.Fail(err)
		return nil, err
	}

	// Only a move to achieved completes the goal, so only that target is
	// gated behind confirmation. Nothing is persisted until the commit
	// below, so a cancelled confirmation leaves no trace.
	if target == domain.StatusAchieved && !req.ConfirmCompletion {
		flow.Fail(apperrors.ErrCompletionConfirmationRequired)
		return nil, apperrors.ErrCompletionConfirmationRequired
	}

	next := *goal
	next.Status = target
	progress := domain.EffectiveProgress(&next)
	if target == domain.StatusAchieved {
		progress = 100
	}

	var completionNotes *string
	if target == domain.StatusAchieved && req.CompletionNotes != nil {
		completionNotes = req.CompletionNotes
	}

	now := time.Now().UTC()
	records := editRecords(goalID, requestingUserID, now,
		fieldChange{domain.FieldStatus, string(current), string(target)})

	if err := s.goalRepo.CommitStatusChange(ctx, goalID, target, progress, completionNotes, records, requestingUserID, now); err != nil {
		s.LogError(ctx, err, "Failed to commit status change",
			slog.String("goal_id", goalID), slog.String("target", string(target)))
		flow.Fail(err)
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}
	flow.Succeed()
	s.flows.Evict(goalID)

	goal.Status = target
	goal.ProgressPercentage = progress
	if completionNotes != nil {
		goal.CompletionNotes = *completionNotes
	}
	goal.LastUpdatedAt = now
	goal.LastUpdatedBy = requestingUserID
	goal.EditHistory = append(records, goal.EditHistory...)

	s.LogInfo(ctx, "Goal status updated",
		slog.String("goal_id", goalID),
		slog.String("previous_status", string(current)),
		slog.String("next_status", string(target)))

	if s.notifier != nil {
		s.notifier.NotifyStatusChange(ctx, goal, current, target, requestingUserID)
	}
	return goal, nil
}

// AdjustProgress is the explicit override path for the cached progress
// percentage; the override itself is edit-recorded.
func (s *goalService) AdjustProgress(ctx context.Context, workspaceID string, goalID string, req dto.AdjustProgressRequest, requestingUserID string) (*domain.Goal, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, workspaceID, domain.RoleMember); err != nil {
		return nil, err
	}

	goal, err := s.fetchGoal(ctx, workspaceID, goalID)
	if err != nil {
		return nil, err
	}

	current := goal.CanonicalStatus()
	newProgress := *req.Progress
	oldProgress := goal.ProgressPercentage
	if newProgress == oldProgress {
		return goal, nil
	}

	now := time.Now().UTC()
	changes := []fieldChange{{domain.FieldProgress, fmt.Sprintf("%d", oldProgress), fmt.Sprintf("%d", newProgress)}}

	// Reaching 100% offers completion when the transition table allows it.
	if newProgress >= 100 && current != domain.StatusAchieved && domain.CanTransition(current, domain.StatusAchieved) {
		if !req.ConfirmCompletion {
			return nil, apperrors.ErrCompletionConfirmationRequired
		}
		changes = append(changes, fieldChange{domain.FieldStatus, string(current), string(domain.StatusAchieved)})
		records := editRecords(goalID, requestingUserID, now, changes...)
		if err := s.goalRepo.CommitStatusChange(ctx, goalID, domain.StatusAchieved, 100, req.CompletionNotes, records, requestingUserID, now); err != nil {
			s.LogError(ctx, err, "Failed to commit completion via progress adjustment", slog.String("goal_id", goalID))
			return nil, fmt.Errorf("failed to commit status change: %w", err)
		}
		goal.Status = domain.StatusAchieved
		goal.ProgressPercentage = 100
		if req.CompletionNotes != nil {
			goal.CompletionNotes = *req.CompletionNotes
		}
		goal.LastUpdatedAt = now
		goal.LastUpdatedBy = requestingUserID
		goal.EditHistory = append(records, goal.EditHistory...)
		if s.notifier != nil {
			s.notifier.NotifyStatusChange(ctx, goal, current, domain.StatusAchieved, requestingUserID)
		}
		return goal, nil
	}

	// Partial progress on a yet-to-start goal advances it to in-progress.
	status := current
	if current == domain.StatusYetToStart && newProgress > 0 && newProgress < 100 {
		status = domain.StatusInProgress
		changes = append(changes, fieldChange{domain.FieldStatus, string(current), string(status)})
	}

	records := editRecords(goalID, requestingUserID, now, changes...)
	if err := s.goalRepo.CommitStatusChange(ctx, goalID, status, newProgress, nil, records, requestingUserID, now); err != nil {
		s.LogError(ctx, err, "Failed to adjust goal progress", slog.String("goal_id", goalID))
		return nil, fmt.Errorf("failed to adjust progress: %w", err)
	}

	if status != current && s.notifier != nil {
		s.notifier.NotifyStatusChange(ctx, goal, current, status, requestingUserID)
	}

	goal.Status = status
	goal.ProgressPercentage = newProgress
	goal.LastUpdatedAt = now
	goal.LastUpdatedBy = requestingUserID
	goal.EditHistory = append(records, goal.EditHistory...)

	s.LogInfo(ctx, "Goal progress adjusted",
		slog.String("goal_id", goalID),
		slog.Int("old_progress", oldProgress),
		slog.Int("new_progress", newProgress))
	return goal, nil
}

// AddMilestone creates a milestone under a goal.
func (s *goalService) AddMilestone(ctx context.Context, workspaceID string, goalID string, req dto.CreateMilestoneRequest, requestingUserID string) (*domain.Goal, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, workspaceID, domain.RoleMember); err != nil {
		return nil, err
	}

	goal, err := s.fetchGoal(ctx, workspaceID, goalID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	status := domain.MilestoneIncomplete
	if req.Status != "" {
		status = domain.MilestoneStatus(req.Status)
	}
	milestone := domain.Milestone{
		MilestoneID: uuid.NewString(),
		GoalID:      goalID,
		Title:       req.Title,
		TargetDate:  req.TargetDate,
		Status:      status,
		Completed:   status == domain.MilestoneCompleted,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}

	if err := s.goalRepo.SaveMilestone(ctx, milestone); err != nil {
		s.LogError(ctx, err, "Failed to save milestone", slog.String("goal_id", goalID))
		return nil, err
	}
	goal.Milestones = append(goal.Milestones, milestone)

	records := editRecords(goalID, requestingUserID, now,
		fieldChange{domain.FieldMilestones, "", milestone.Title})
	if len(records) > 0 {
		if err := s.goalRepo.AppendEditRecords(ctx, records); err != nil {
			s.LogError(ctx, err, "Failed to append milestone edit record", slog.String("goal_id", goalID))
		}
		goal.EditHistory = append(records, goal.EditHistory...)
	}

	if err := s.applyProgressSideEffects(ctx, goal, requestingUserID, now); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Milestone added",
		slog.String("goal_id", goalID), slog.String("milestone_id", milestone.MilestoneID))
	normalizeGoal(goal)
	return goal, nil
}

// UpdateMilestone edits a milestone directly. This is the only path that may
// set the partial state.
func (s *goalService) UpdateMilestone(ctx context.Context, workspaceID string, goalID string, milestoneID string, req dto.UpdateMilestoneRequest, requestingUserID string) (*domain.Goal, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, workspaceID, domain.RoleMember); err != nil {
		return nil, err
	}

	goal, err := s.fetchGoal(ctx, workspaceID, goalID)
	if err != nil {
		return nil, err
	}

	idx := goal.FindMilestone(milestoneID)
	if idx < 0 {
		return nil, apperrors.ErrNotFound
	}
	milestone := &goal.Milestones[idx]
	previousStatus := milestone.EffectiveStatus()

	updated := false
	if req.Title != nil && *req.Title != milestone.Title {
		milestone.Title = *req.Title
		updated = true
	}
	if req.TargetDate != nil && !timeEqual(req.TargetDate, milestone.TargetDate) {
		milestone.TargetDate = req.TargetDate
		updated = true
	}
	if req.Status != nil {
		if !domain.IsValidMilestoneStatus(*req.Status) {
			return nil, fmt.Errorf("%w: unknown milestone status %q", apperrors.ErrValidation, *req.Status)
		}
		if domain.MilestoneStatus(*req.Status) != previousStatus {
			milestone.Status = domain.MilestoneStatus(*req.Status)
			milestone.Completed = milestone.Status == domain.MilestoneCompleted
			updated = true
		}
	}
	if !updated {
		normalizeGoal(goal)
		return goal, nil
	}

	now := time.Now().UTC()
	milestone.LastUpdatedAt = now
	milestone.LastUpdatedBy = requestingUserID

	if err := s.goalRepo.UpdateMilestone(ctx, *milestone); err != nil {
		s.LogError(ctx, err, "Failed to update milestone",
			slog.String("goal_id", goalID), slog.String("milestone_id", milestoneID))
		return nil, err
	}

	newStatus := milestone.EffectiveStatus()
	if newStatus != previousStatus {
		records := editRecords(goalID, requestingUserID, now,
			fieldChange{domain.FieldMilestones, string(previousStatus), string(newStatus)})
		if len(records) > 0 {
			if err := s.goalRepo.AppendEditRecords(ctx, records); err != nil {
				s.LogError(ctx, err, "Failed to append milestone edit record", slog.String("goal_id", goalID))
			}
			goal.EditHistory = append(records, goal.EditHistory...)
		}
	}

	if err := s.applyProgressSideEffects(ctx, goal, requestingUserID, now); err != nil {
		return nil, err
	}

	if newStatus == domain.MilestoneCompleted && previousStatus != domain.MilestoneCompleted && s.notifier != nil {
		s.notifier.NotifyMilestoneCompleted(ctx, goal, *milestone, requestingUserID)
	}

	normalizeGoal(goal)
	return goal, nil
}

// ToggleMilestone cycles a milestone between incomplete and completed and
// recomputes the goal's progress. A partial milestone toggles to completed.
func (s *goalService) ToggleMilestone(ctx context.Context, workspaceID string, goalID string, milestoneID string, requestingUserID string) (*domain.Goal, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, workspaceID, domain.RoleMember); err != nil {
		return nil, err
	}

	goal, err := s.fetchGoal(ctx, workspaceID, goalID)
	if err != nil {
		return nil, err
	}

	idx := goal.FindMilestone(milestoneID)
	if idx < 0 {
		return nil, apperrors.ErrNotFound
	}
	milestone := &goal.Milestones[idx]

	previousStatus := milestone.EffectiveStatus()
	newStatus := milestone.Toggled()

	now := time.Now().UTC()
	milestone.Status = newStatus
	milestone.Completed = newStatus == domain.MilestoneCompleted
	milestone.LastUpdatedAt = now
	milestone.LastUpdatedBy = requestingUserID

	if err := s.goalRepo.UpdateMilestone(ctx, *milestone); err != nil {
		s.LogError(ctx, err, "Failed to toggle milestone",
			slog.String("goal_id", goalID), slog.String("milestone_id", milestoneID))
		return nil, err
	}

	records := editRecords(goalID, requestingUserID, now,
		fieldChange{domain.FieldMilestones, string(previousStatus), string(newStatus)})
	if len(records) > 0 {
		if err := s.goalRepo.AppendEditRecords(ctx, records); err != nil {
			s.LogError(ctx, err, "Failed to append milestone edit record", slog.String("goal_id", goalID))
		}
		goal.EditHistory = append(records, goal.EditHistory...)
	}

	if err := s.applyProgressSideEffects(ctx, goal, requestingUserID, now); err != nil {
		return nil, err
	}

	if newStatus == domain.MilestoneCompleted && s.notifier != nil {
		s.notifier.NotifyMilestoneCompleted(ctx, goal, *milestone, requestingUserID)
	}

	s.LogInfo(ctx, "Milestone toggled",
		slog.String("goal_id", goalID),
		slog.String("milestone_id", milestoneID),
		slog.String("new_status", string(newStatus)))
	normalizeGoal(goal)
	return goal, nil
}

// LinkJournalEntry associates a journal entry with a goal. A goal links a
// given entry at most once.
func (s *goalService) LinkJournalEntry(ctx context.Context, workspaceID string, goalID string, req dto.LinkJournalEntryRequest, requestingUserID string) (*domain.Goal, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, workspaceID, domain.RoleMember); err != nil {
		return nil, err
	}

	goal, err := s.fetchGoal(ctx, workspaceID, goalID)
	if err != nil {
		return nil, err
	}

	if goal.HasJournalLink(req.JournalEntryID) {
		return nil, fmt.Errorf("%w: journal entry %s is already linked to goal %s", apperrors.ErrDuplicate, req.JournalEntryID, goalID)
	}

	now := time.Now().UTC()
	link := domain.JournalLink{
		JournalEntryID:       req.JournalEntryID,
		GoalID:               goalID,
		LinkedAt:             now,
		LinkedBy:             requestingUserID,
		ContributionType:     domain.ContributionType(req.ContributionType),
		ProgressContribution: req.ProgressContribution,
	}

	if err := s.goalRepo.SaveJournalLink(ctx, link); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save journal link", slog.String("goal_id", goalID))
		}
		return nil, err
	}
	goal.JournalLinks = append(goal.JournalLinks, link)

	if err := s.applyProgressSideEffects(ctx, goal, requestingUserID, now); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry linked to goal",
		slog.String("goal_id", goalID), slog.String("journal_entry_id", req.JournalEntryID))
	normalizeGoal(goal)
	return goal, nil
}

// UnlinkJournalEntry removes the association and recomputes progress.
func (s *goalService) UnlinkJournalEntry(ctx context.Context, workspaceID string, goalID string, journalEntryID string, requestingUserID string) (*domain.Goal, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, workspaceID, domain.RoleMember); err != nil {
		return nil, err
	}

	goal, err := s.fetchGoal(ctx, workspaceID, goalID)
	if err != nil {
		return nil, err
	}

	if !goal.HasJournalLink(journalEntryID) {
		return nil, apperrors.ErrNotFound
	}

	if err := s.goalRepo.DeleteJournalLink(ctx, goalID, journalEntryID); err != nil {
		s.LogError(ctx, err, "Failed to delete journal link",
			slog.String("goal_id", goalID), slog.String("journal_entry_id", journalEntryID))
		return nil, err
	}

	goal.JournalLinks = slices.DeleteFunc(goal.JournalLinks, func(l domain.JournalLink) bool {
		return l.JournalEntryID == journalEntryID
	})

	now := time.Now().UTC()
	if err := s.applyProgressSideEffects(ctx, goal, requestingUserID, now); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry unlinked from goal",
		slog.String("goal_id", goalID), slog.String("journal_entry_id", journalEntryID))
	normalizeGoal(goal)
	return goal, nil
}

// applyProgressSideEffects recomputes the effective progress, refreshes its
// materialized value and applies the implied status change (a yet-to-start
// goal with partial progress becomes in-progress). Advancing to achieved is
// never implicit; it goes through the completion confirmation.
func (s *goalService) applyProgressSideEffects(ctx context.Context, goal *domain.Goal, actor string, now time.Time) error {
	progress := domain.EffectiveProgress(goal)
	current := goal.CanonicalStatus()
	implied := domain.StatusAfterProgress(goal)

	if implied != current {
		records := editRecords(goal.GoalID, actor, now,
			fieldChange{domain.FieldStatus, string(current), string(implied)})
		if err := s.goalRepo.CommitStatusChange(ctx, goal.GoalID, implied, progress, nil, records, actor, now); err != nil {
			s.LogError(ctx, err, "Failed to commit implied status change", slog.String("goal_id", goal.GoalID))
			return fmt.Errorf("failed to commit status change: %w", err)
		}
		goal.Status = implied
		goal.ProgressPercentage = progress
		goal.EditHistory = append(records, goal.EditHistory...)
		if s.notifier != nil {
			s.notifier.NotifyStatusChange(ctx, goal, current, implied, actor)
		}
		return nil
	}

	if progress != goal.ProgressPercentage {
		if err := s.goalRepo.UpdateCachedProgress(ctx, goal.GoalID, progress, actor, now); err != nil {
			s.LogError(ctx, err, "Failed to update cached progress", slog.String("goal_id", goal.GoalID))
			return fmt.Errorf("failed to update progress: %w", err)
		}
		goal.ProgressPercentage = progress
	}
	return nil
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
