package mapping

import (
	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
	"github.com/chronicleteam/chronicle_backend/internal/models"
)

// ToModelWorkspace converts a domain Workspace to a model Workspace
func ToModelWorkspace(d domain.Workspace) models.Workspace {
	return models.Workspace{
		WorkspaceID: d.WorkspaceID,
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainWorkspace converts a model Workspace to a domain Workspace
func ToDomainWorkspace(m models.Workspace) domain.Workspace {
	return domain.Workspace{
		WorkspaceID: m.WorkspaceID,
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainUserWorkspace converts a model UserWorkspace to a domain UserWorkspace
func ToDomainUserWorkspace(m models.UserWorkspace) domain.UserWorkspace {
	return domain.UserWorkspace{
		UserID:      m.UserID,
		WorkspaceID: m.WorkspaceID,
		Role:        domain.UserWorkspaceRole(m.Role),
		JoinedAt:    m.JoinedAt,
	}
}
