package dto

import (
	"time"

	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
)

// --- Workspace DTOs ---

// CreateWorkspaceRequest defines data for creating a new workspace.
type CreateWorkspaceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// WorkspaceResponse defines data returned for a workspace.
type WorkspaceResponse struct {
	WorkspaceID   string    `json:"workspaceID"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID
}

// ToWorkspaceResponse converts domain.Workspace to DTO.
func ToWorkspaceResponse(w *domain.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		WorkspaceID:   w.WorkspaceID,
		Name:          w.Name,
		Description:   w.Description,
		CreatedAt:     w.CreatedAt,
		CreatedBy:     w.CreatedBy,
		LastUpdatedAt: w.LastUpdatedAt,
		LastUpdatedBy: w.LastUpdatedBy,
	}
}

// ListWorkspacesResponse wraps a list of workspaces.
type ListWorkspacesResponse struct {
	Workspaces []WorkspaceResponse `json:"workspaces"`
}

// ToListWorkspacesResponse converts a slice of domain.Workspace to DTO.
func ToListWorkspacesResponse(ws []domain.Workspace) ListWorkspacesResponse {
	list := make([]WorkspaceResponse, len(ws))
	for i := range ws {
		list[i] = ToWorkspaceResponse(&ws[i])
	}
	return ListWorkspacesResponse{Workspaces: list}
}

// --- Workspace membership DTOs ---

// AddUserToWorkspaceRequest defines data for adding a user to a workspace.
type AddUserToWorkspaceRequest struct {
	UserID string                   `json:"userID" binding:"required"`
	Role   domain.UserWorkspaceRole `json:"role" binding:"required,oneof=ADMIN MEMBER READONLY"`
}

// UserWorkspaceResponse defines data returned about a user's membership.
type UserWorkspaceResponse struct {
	UserID      string                   `json:"userID"`
	WorkspaceID string                   `json:"workspaceID"`
	Role        domain.UserWorkspaceRole `json:"role"`
	JoinedAt    time.Time                `json:"joinedAt"`
}
