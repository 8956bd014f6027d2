package repositories

import (
	"context"

	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
)

// WorkspaceReader defines read operations for workspace data.
type WorkspaceReader interface {
	// FindWorkspaceByID retrieves a specific workspace by its ID.
	FindWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error)

	// ListWorkspacesByUserID retrieves all workspaces a user belongs to.
	ListWorkspacesByUserID(ctx context.Context, userID string) ([]domain.Workspace, error)
}

// WorkspaceWriter defines write operations for workspace data.
type WorkspaceWriter interface {
	// SaveWorkspace persists a new workspace.
	SaveWorkspace(ctx context.Context, workspace domain.Workspace) error
}

// WorkspaceMembershipManager defines operations for managing workspace memberships.
type WorkspaceMembershipManager interface {
	// AddUserToWorkspace adds a user to a workspace with a specific role.
	AddUserToWorkspace(ctx context.Context, membership domain.UserWorkspace) error

	// FindUserWorkspaceRole retrieves the role of a user in a workspace.
	FindUserWorkspaceRole(ctx context.Context, userID, workspaceID string) (*domain.UserWorkspace, error)
}

// WorkspaceRepositoryFacade combines all workspace-related repository interfaces.
type WorkspaceRepositoryFacade interface {
	WorkspaceReader
	WorkspaceWriter
	WorkspaceMembershipManager
}
