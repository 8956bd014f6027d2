package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/chronicleteam/chronicle_backend/internal/apperrors"
	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
	portsrepo "github.com/chronicleteam/chronicle_backend/internal/core/ports/repositories"
	portssvc "github.com/chronicleteam/chronicle_backend/internal/core/ports/services"
)

// Membership roles change rarely; a short TTL keeps the authorization check
// off the database on the goal mutation hot path without letting revocations
// linger for long.
const (
	roleCacheTTL     = 2 * time.Minute
	roleCacheCleanup = 5 * time.Minute
)

// workspaceService implements the WorkspaceSvcFacade interface
type workspaceService struct {
	BaseService
	workspaceRepo portsrepo.WorkspaceRepositoryFacade
	roleCache     *cache.Cache
}

// NewWorkspaceService creates a new workspace service with the provided dependencies
func NewWorkspaceService(workspaceRepo portsrepo.WorkspaceRepositoryFacade) portssvc.WorkspaceSvcFacade {
	return &workspaceService{
		workspaceRepo: workspaceRepo,
		roleCache:     cache.New(roleCacheTTL, roleCacheCleanup),
	}
}

// Ensure workspaceService implements the WorkspaceSvcFacade interface
var _ portssvc.WorkspaceSvcFacade = (*workspaceService)(nil)

// FindWorkspaceByID retrieves a workspace by its ID
func (s *workspaceService) FindWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error) {
	workspace, err := s.workspaceRepo.FindWorkspaceByID(ctx, workspaceID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find workspace by ID",
				slog.String("workspace_id", workspaceID))
		}
		return nil, err
	}

	s.LogDebug(ctx, "Workspace retrieved successfully",
		slog.String("workspace_id", workspace.WorkspaceID))
	return workspace, nil
}

// ListUserWorkspaces retrieves all workspaces a user belongs to
func (s *workspaceService) ListUserWorkspaces(ctx context.Context, userID string) ([]domain.Workspace, error) {
	workspaces, err := s.workspaceRepo.ListWorkspacesByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list workspaces for user",
			slog.String("user_id", userID))
		return nil, err
	}

	if workspaces == nil {
		return []domain.Workspace{}, nil
	}

	s.LogDebug(ctx, "Workspaces listed successfully",
		slog.Int("count", len(workspaces)),
		slog.String("user_id", userID))
	return workspaces, nil
}

// CreateWorkspace creates a new workspace and adds the creator as its admin
func (s *workspaceService) CreateWorkspace(ctx context.Context, name, description, creatorUserID string) (*domain.Workspace, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: workspace name is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	workspace := domain.Workspace{
		WorkspaceID: uuid.NewString(),
		Name:        name,
		Description: description,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.workspaceRepo.SaveWorkspace(ctx, workspace); err != nil {
		s.LogError(ctx, err, "Failed to save workspace",
			slog.String("workspace_id", workspace.WorkspaceID))
		return nil, err
	}

	// Add creator as an admin to the new workspace
	if err := s.AddUserToWorkspace(ctx, creatorUserID, creatorUserID, workspace.WorkspaceID, domain.RoleAdmin); err != nil {
		s.LogError(ctx, err, "Failed to add creator as admin to new workspace",
			slog.String("workspace_id", workspace.WorkspaceID),
			slog.String("user_id", creatorUserID))
		// The workspace itself was created; membership can be repaired by an admin
	}

	s.LogInfo(ctx, "Workspace created successfully",
		slog.String("workspace_id", workspace.WorkspaceID),
		slog.String("creator_id", creatorUserID))
	return &workspace, nil
}

// AddUserToWorkspace adds a user to a workspace with a specific role
func (s *workspaceService) AddUserToWorkspace(ctx context.Context, addingUserID, targetUserID, workspaceID string, role domain.UserWorkspaceRole) error {
	// Self-assignment is permitted (e.g., creator adding self as admin)
	if addingUserID != targetUserID {
		if err := s.AuthorizeUserAction(ctx, addingUserID, workspaceID, domain.RoleAdmin); err != nil {
			s.LogError(ctx, err, "User not authorized to add members to workspace",
				slog.String("adding_user_id", addingUserID),
				slog.String("workspace_id", workspaceID))
			return err
		}
	}

	membership := domain.UserWorkspace{
		UserID:      targetUserID,
		WorkspaceID: workspaceID,
		Role:        role,
		JoinedAt:    time.Now().UTC(),
	}

	if err := s.workspaceRepo.AddUserToWorkspace(ctx, membership); err != nil {
		s.LogError(ctx, err, "Failed to add user to workspace",
			slog.String("target_user_id", targetUserID),
			slog.String("workspace_id", workspaceID))
		return err
	}

	// Membership changed, drop any stale cached role
	s.roleCache.Delete(roleCacheKey(targetUserID, workspaceID))

	s.LogInfo(ctx, "User added to workspace successfully",
		slog.String("target_user_id", targetUserID),
		slog.String("workspace_id", workspaceID),
		slog.String("role", string(role)))
	return nil
}

// AuthorizeUserAction checks if a user has required permissions for a workspace
func (s *workspaceService) AuthorizeUserAction(ctx context.Context, userID, workspaceID string, requiredRole domain.UserWorkspaceRole) error {
	role, err := s.lookupRole(ctx, userID, workspaceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "User not a member of workspace",
				slog.String("user_id", userID),
				slog.String("workspace_id", workspaceID))
			return apperrors.ErrForbidden
		}
		s.LogError(ctx, err, "Failed to find user workspace role",
			slog.String("user_id", userID),
			slog.String("workspace_id", workspaceID))
		return err
	}

	if !hasRequiredRole(role, requiredRole) {
		s.LogDebug(ctx, "User does not have required role",
			slog.String("user_id", userID),
			slog.String("workspace_id", workspaceID),
			slog.String("user_role", string(role)),
			slog.String("required_role", string(requiredRole)))
		return apperrors.ErrForbidden
	}

	return nil
}

// lookupRole resolves a user's role in a workspace, consulting the cache first.
func (s *workspaceService) lookupRole(ctx context.Context, userID, workspaceID string) (domain.UserWorkspaceRole, error) {
	key := roleCacheKey(userID, workspaceID)
	if cached, found := s.roleCache.Get(key); found {
		return cached.(domain.UserWorkspaceRole), nil
	}

	membership, err := s.workspaceRepo.FindUserWorkspaceRole(ctx, userID, workspaceID)
	if err != nil {
		return "", err
	}

	s.roleCache.Set(key, membership.Role, cache.DefaultExpiration)
	return membership.Role, nil
}

func roleCacheKey(userID, workspaceID string) string {
	return userID + "|" + workspaceID
}

// hasRequiredRole checks if the user's role meets or exceeds the required role
func hasRequiredRole(userRole, requiredRole domain.UserWorkspaceRole) bool {
	if userRole == domain.RoleRemoved {
		return false
	}
	switch requiredRole {
	case domain.RoleReadOnly:
		return userRole == domain.RoleReadOnly || userRole == domain.RoleMember || userRole == domain.RoleAdmin
	case domain.RoleMember:
		return userRole == domain.RoleMember || userRole == domain.RoleAdmin
	case domain.RoleAdmin:
		return userRole == domain.RoleAdmin
	default:
		return false
	}
}
