package services

import (
	"context"

	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
)

// WorkspaceReaderSvc defines read operations for workspace data.
type WorkspaceReaderSvc interface {
	// FindWorkspaceByID retrieves a specific workspace by its ID.
	FindWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error)

	// ListUserWorkspaces retrieves workspaces a user belongs to.
	ListUserWorkspaces(ctx context.Context, userID string) ([]domain.Workspace, error)
}

// WorkspaceWriterSvc defines write operations for workspace data.
type WorkspaceWriterSvc interface {
	// CreateWorkspace persists a new workspace and makes the creator its admin.
	CreateWorkspace(ctx context.Context, name, description, creatorUserID string) (*domain.Workspace, error)
}

// WorkspaceMembershipSvc defines operations for managing workspace membership.
type WorkspaceMembershipSvc interface {
	// AddUserToWorkspace adds a user to a workspace with a specific role.
	// Only workspace admins can add users.
	AddUserToWorkspace(ctx context.Context, addingUserID, targetUserID, workspaceID string, role domain.UserWorkspaceRole) error
}

// WorkspaceAuthorizerSvc defines operations for workspace authorization.
type WorkspaceAuthorizerSvc interface {
	// AuthorizeUserAction checks if a user has required permissions for a workspace.
	AuthorizeUserAction(ctx context.Context, userID, workspaceID string, requiredRole domain.UserWorkspaceRole) error
}

// WorkspaceSvcFacade combines all workspace-related service interfaces.
type WorkspaceSvcFacade interface {
	WorkspaceReaderSvc
	WorkspaceWriterSvc
	WorkspaceMembershipSvc
	WorkspaceAuthorizerSvc
}
