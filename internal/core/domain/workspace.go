package domain

import "time"

// Workspace is an isolated environment containing goals, journal entries and
// their members.
type Workspace struct {
	WorkspaceID string `json:"workspaceID"` // Primary Key (e.g., UUID)
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}

// UserWorkspaceRole defines the possible roles a user can have within a workspace.
type UserWorkspaceRole string

const (
	RoleAdmin    UserWorkspaceRole = "ADMIN"
	RoleMember   UserWorkspaceRole = "MEMBER"
	RoleReadOnly UserWorkspaceRole = "READONLY"
	RoleRemoved  UserWorkspaceRole = "REMOVED"
)

// UserWorkspace represents the membership of a User in a Workspace.
type UserWorkspace struct {
	UserID      string            `json:"userID"`      // FK -> users.user_id
	UserName    string            `json:"userName"`
	WorkspaceID string            `json:"workspaceID"` // FK -> workspaces.workspace_id
	Role        UserWorkspaceRole `json:"role"`
	JoinedAt    time.Time         `json:"joinedAt"`
}
