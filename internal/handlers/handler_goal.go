package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/chronicleteam/chronicle_backend/internal/apperrors"
	portssvc "github.com/chronicleteam/chronicle_backend/internal/core/ports/services"
	"github.com/chronicleteam/chronicle_backend/internal/dto"
	"github.com/chronicleteam/chronicle_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// goalHandler handles HTTP requests related to goals, their milestones,
// journal links and edit history.
type goalHandler struct {
	goalService portssvc.GoalSvcFacade
}

// newGoalHandler creates a new goalHandler.
func newGoalHandler(gs portssvc.GoalSvcFacade) *goalHandler {
	return &goalHandler{
		goalService: gs,
	}
}

// registerGoalRoutes registers goal routes nested under a specific workspace.
func registerGoalRoutes(group *gin.RouterGroup, goalService portssvc.GoalSvcFacade) {
	h := newGoalHandler(goalService)

	goals := group.Group("/goals")
	{
		goals.POST("", h.createGoal)
		goals.GET("", h.listGoals)
		goals.GET("/:goal_id", h.getGoal)
		goals.PUT("/:goal_id", h.updateGoal)
		goals.GET("/:goal_id/history", h.getEditHistory)
		goals.PUT("/:goal_id/status", h.updateGoalStatus)
		goals.PUT("/:goal_id/progress", h.adjustProgress)

		goals.POST("/:goal_id/milestones", h.addMilestone)
		goals.PUT("/:goal_id/milestones/:milestone_id", h.updateMilestone)
		goals.POST("/:goal_id/milestones/:milestone_id/toggle", h.toggleMilestone)

		goals.POST("/:goal_id/links", h.linkJournalEntry)
		goals.DELETE("/:goal_id/links/:journal_entry_id", h.unlinkJournalEntry)
	}
}

// respondGoalError maps service errors from goal mutations onto HTTP responses.
// Completion confirmation is a conflict the client resolves by re-submitting
// with confirmCompletion set, so the payload carries a completionRequired flag.
func respondGoalError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrCompletionConfirmationRequired):
		c.JSON(http.StatusConflict, gin.H{
			"error":              "This change will mark the goal as achieved. Confirm completion to proceed.",
			"completionRequired": true,
		})
	case errors.Is(err, apperrors.ErrUpdateInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "Another update for this goal is still in progress"})
	case errors.Is(err, apperrors.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": apperrors.FailureMessage(apperrors.CausePermission)})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.FailureMessage(apperrors.ClassifyFailure(err))})
	}
}

// goalRequestContext extracts the path and identity values every goal
// endpoint needs. Returns ok=false after writing the error response.
func goalRequestContext(c *gin.Context, logger *slog.Logger) (workspaceID, goalID, userID string, ok bool) {
	workspaceID = c.Param("workspace_id")
	goalID = c.Param("goal_id")
	userID, found := middleware.GetUserIDFromContext(c)
	if !found {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", "", false
	}
	return workspaceID, goalID, userID, true
}

// createGoal godoc
// @Summary Create a new goal
// @Description Creates a goal in the workspace. Incoming status may use legacy vocabulary; it is stored canonically.
// @Tags goals
// @Accept  json
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   goal body dto.CreateGoalRequest true "Goal details"
// @Success 201 {object} dto.GoalResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to create goal"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/goals [post]
func (h *goalHandler) createGoal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateGoal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	workspaceID, _, userID, ok := goalRequestContext(c, logger)
	if !ok {
		return
	}

	goal, err := h.goalService.CreateGoal(c.Request.Context(), workspaceID, req, userID)
	if err != nil {
		respondGoalError(c, logger, err, "Failed to create goal in service")
		return
	}

	logger.Info("Goal created successfully", slog.String("goal_id", goal.GoalID), slog.String("workspace_id", workspaceID))
	c.JSON(http.StatusCreated, dto.ToGoalResponse(goal))
}

// listGoals godoc
// @Summary List goals in a workspace
// @Description Retrieves a paginated list of goals; pass nextToken from a previous page to continue.
// @Tags goals
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   limit query int false "Max goals to return (default 20)"
// @Param   nextToken query string false "Pagination token from a previous response"
// @Success 200 {object} dto.ListGoalsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list goals"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/goals [get]
func (h *goalHandler) listGoals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListGoalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	workspaceID, _, userID, ok := goalRequestContext(c, logger)
	if !ok {
		return
	}

	resp, err := h.goalService.ListGoals(c.Request.Context(), workspaceID, userID, params)
	if err != nil {
		respondGoalError(c, logger, err, "Failed to list goals in service")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getGoal godoc
// @Summary Get a goal
// @Description Retrieves a goal with canonical status, allowed transitions and freshly computed progress.
// @Tags goals
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   goal_id path string true "Goal ID"
// @Success 200 {object} dto.GoalResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Goal not found"
// @Failure 500 {object} map[string]string "Failed to get goal"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/goals/{goal_id} [get]
func (h *goalHandler) getGoal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	workspaceID, goalID, userID, ok := goalRequestContext(c, logger)
	if !ok {
		return
	}

	goal, err := h.goalService.GetGoalByID(c.Request.Context(), workspaceID, goalID, userID)
	if err != nil {
		respondGoalError(c, logger, err, "Failed to get goal from service")
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalResponse(goal))
}

// updateGoal godoc
// @Summary Update goal fields
// @Description Applies field edits to a goal. Each changed field produces one edit-history record.
// @Tags goals
// @Accept  json
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   goal_id path string true "Goal ID"
// @Param   goal body dto.UpdateGoalRequest true "Fields to update"
// @Success 200 {object} dto.GoalResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Goal not found"
// @Failure 500 {object} map[string]string "Failed to update goal"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/goals/{goal_id} [put]
func (h *goalHandler) updateGoal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateGoal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	workspaceID, goalID, userID, ok := goalRequestContext(c, logger)
	if !ok {
		return
	}

	goal, err := h.goalService.UpdateGoal(c.Request.Context(), workspaceID, goalID, req, userID)
	if err != nil {
		respondGoalError(c, logger, err, "Failed to update goal in service")
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalResponse(goal))
}

// getEditHistory godoc
// @Summary Get goal edit history
// @Description Retrieves the goal's edit records, newest first.
// @Tags goals
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   goal_id path string true "Goal ID"
// @Success 200 {array} dto.EditRecordResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Goal not found"
// @Failure 500 {object} map[string]string "Failed to get edit history"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/goals/{goal_id}/history [get]
func (h *goalHandler) getEditHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	workspaceID, goalID, userID, ok := goalRequestContext(c, logger)
	if !ok {
		return
	}

	records, err := h.goalService.GetEditHistory(c.Request.Context(), workspaceID, goalID, userID)
	if err != nil {
		respondGoalError(c, logger, err, "Failed to get edit history from service")
		return
	}

	c.JSON(http.StatusOK, dto.ToEditHistoryResponse(records))
}

// updateGoalStatus godoc
// @Summary Change goal status
// @Description Performs a transition-table-validated status change. A change that completes the goal returns 409 with completionRequired=true until re-submitted with confirmCompletion.
// @Tags goals
// @Accept  json
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   goal_id path string true "Goal ID"
// @Param   status body dto.UpdateGoalStatusRequest true "Target status"
// @Success 200 {object} dto.GoalResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Goal not found"
// @Failure 409 {object} map[string]interface{} "Completion confirmation required or update in flight"
// @Failure 422 {object} map[string]string "Transition not allowed"
// @Failure 500 {object} map[string]string "Failed to update status"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/goals/{goal_id}/status [put]
func (h *goalHandler) updateGoalStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateGoalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateGoalStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	workspaceID, goalID, userID, ok := goalRequestContext(c, logger)
	if !ok {
		return
	}

	goal, err := h.goalService.UpdateGoalStatus(c.Request.Context(), workspaceID, goalID, req, userID)
	if err != nil {
		respondGoalError(c, logger, err, "Failed to update goal status in service")
		return
	}

	logger.Info("Goal status updated", slog.String("goal_id", goalID), slog.String("status", string(goal.CanonicalStatus())))
	c.JSON(http.StatusOK, dto.ToGoalResponse(goal))
}

// adjustProgress godoc
// @Summary Adjust goal progress
// @Description Explicitly overrides the goal's progress percentage. Raising progress to 100 triggers the completion confirmation flow.
// @Tags goals
// @Accept  json
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   goal_id path string true "Goal ID"
// @Param   progress body dto.AdjustProgressRequest true "New progress value"
// @Success 200 {object} dto.GoalResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Goal not found"
// @Failure 409 {object} map[string]interface{} "Completion confirmation required"
// @Failure 500 {object} map[string]string "Failed to adjust progress"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/goals/{goal_id}/progress [put]
func (h *goalHandler) adjustProgress(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AdjustProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AdjustProgress", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	workspaceID, goalID, userID, ok := goalRequestContext(c, logger)
	if !ok {
		return
	}

	goal, err := h.goalService.AdjustProgress(c.Request.Context(), workspaceID, goalID, req, userID)
	if err != nil {
		respondGoalError(c, logger, err, "Failed to adjust goal progress in service")
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalResponse(goal))
}

// addMilestone godoc
// @Summary Add a milestone to a goal
// @Description Creates a milestone under the goal and recomputes the goal's progress.
// @Tags milestones
// @Accept  json
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   goal_id path string true "Goal ID"
// @Param   milestone body dto.CreateMilestoneRequest true "Milestone details"
// @Success 201 {object} dto.GoalResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Goal not found"
// @Failure 500 {object} map[string]string "Failed to add milestone"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/goals/{goal_id}/milestones [post]
func (h *goalHandler) addMilestone(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddMilestone", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	workspaceID, goalID, userID, ok := goalRequestContext(c, logger)
	if !ok {
		return
	}

	goal, err := h.goalService.AddMilestone(c.Request.Context(), workspaceID, goalID, req, userID)
	if err != nil {
		respondGoalError(c, logger, err, "Failed to add milestone in service")
		return
	}

	c.JSON(http.StatusCreated, dto.ToGoalResponse(goal))
}

// updateMilestone godoc
// @Summary Update a milestone
// @Description Edits a milestone directly. This is the only path that may set the partial state.
// @Tags milestones
// @Accept  json
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   goal_id path string true "Goal ID"
// @Param   milestone_id path string true "Milestone ID"
// @Param   milestone body dto.UpdateMilestoneRequest true "Fields to update"
// @Success 200 {object} dto.GoalResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Goal or milestone not found"
// @Failure 500 {object} map[string]string "Failed to update milestone"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/goals/{goal_id}/milestones/{milestone_id} [put]
func (h *goalHandler) updateMilestone(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	milestoneID := c.Param("milestone_id")

	var req dto.UpdateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateMilestone", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	workspaceID, goalID, userID, ok := goalRequestContext(c, logger)
	if !ok {
		return
	}

	goal, err := h.goalService.UpdateMilestone(c.Request.Context(), workspaceID, goalID, milestoneID, req, userID)
	if err != nil {
		respondGoalError(c, logger, err, "Failed to update milestone in service")
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalResponse(goal))
}

// toggleMilestone godoc
// @Summary Toggle a milestone
// @Description Cycles a milestone between incomplete and completed. A partial milestone toggles to completed.
// @Tags milestones
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   goal_id path string true "Goal ID"
// @Param   milestone_id path string true "Milestone ID"
// @Success 200 {object} dto.GoalResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Goal or milestone not found"
// @Failure 500 {object} map[string]string "Failed to toggle milestone"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/goals/{goal_id}/milestones/{milestone_id}/toggle [post]
func (h *goalHandler) toggleMilestone(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	milestoneID := c.Param("milestone_id")

	workspaceID, goalID, userID, ok := goalRequestContext(c, logger)
	if !ok {
		return
	}

	goal, err := h.goalService.ToggleMilestone(c.Request.Context(), workspaceID, goalID, milestoneID, userID)
	if err != nil {
		respondGoalError(c, logger, err, "Failed to toggle milestone in service")
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalResponse(goal))
}

// linkJournalEntry godoc
// @Summary Link a journal entry to a goal
// @Description Associates a journal entry with the goal. A goal links a given entry at most once.
// @Tags journal-links
// @Accept  json
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   goal_id path string true "Goal ID"
// @Param   link body dto.LinkJournalEntryRequest true "Link details"
// @Success 201 {object} dto.GoalResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Goal not found"
// @Failure 409 {object} map[string]string "Entry already linked"
// @Failure 500 {object} map[string]string "Failed to link journal entry"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/goals/{goal_id}/links [post]
func (h *goalHandler) linkJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.LinkJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for LinkJournalEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	workspaceID, goalID, userID, ok := goalRequestContext(c, logger)
	if !ok {
		return
	}

	goal, err := h.goalService.LinkJournalEntry(c.Request.Context(), workspaceID, goalID, req, userID)
	if err != nil {
		respondGoalError(c, logger, err, "Failed to link journal entry in service")
		return
	}

	c.JSON(http.StatusCreated, dto.ToGoalResponse(goal))
}

// unlinkJournalEntry godoc
// @Summary Unlink a journal entry from a goal
// @Description Removes the association and recomputes the goal's progress.
// @Tags journal-links
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   goal_id path string true "Goal ID"
// @Param   journal_entry_id path string true "Journal Entry ID"
// @Success 200 {object} dto.GoalResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Goal or link not found"
// @Failure 500 {object} map[string]string "Failed to unlink journal entry"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/goals/{goal_id}/links/{journal_entry_id} [delete]
func (h *goalHandler) unlinkJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalEntryID := c.Param("journal_entry_id")

	workspaceID, goalID, userID, ok := goalRequestContext(c, logger)
	if !ok {
		return
	}

	goal, err := h.goalService.UnlinkJournalEntry(c.Request.Context(), workspaceID, goalID, journalEntryID, userID)
	if err != nil {
		respondGoalError(c, logger, err, "Failed to unlink journal entry in service")
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalResponse(goal))
}
