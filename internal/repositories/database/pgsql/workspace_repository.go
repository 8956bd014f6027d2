package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/chronicleteam/chronicle_backend/internal/apperrors"
	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
	portsrepo "github.com/chronicleteam/chronicle_backend/internal/core/ports/repositories"
	"github.com/chronicleteam/chronicle_backend/internal/models"
	"github.com/chronicleteam/chronicle_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxWorkspaceRepository struct {
	db *pgxpool.Pool
}

func newPgxWorkspaceRepository(db *pgxpool.Pool) portsrepo.WorkspaceRepositoryFacade {
	return &PgxWorkspaceRepository{db: db}
}

// Ensure PgxWorkspaceRepository implements portsrepo.WorkspaceRepositoryFacade
var _ portsrepo.WorkspaceRepositoryFacade = (*PgxWorkspaceRepository)(nil)

const workspaceColumns = `workspace_id, name, description, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanWorkspaceRow(row pgx.Row) (models.Workspace, error) {
	var m models.Workspace
	err := row.Scan(
		&m.WorkspaceID,
		&m.Name,
		&m.Description,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxWorkspaceRepository) SaveWorkspace(ctx context.Context, workspace domain.Workspace) error {
	m := mapping.ToModelWorkspace(workspace)
	query := `
		INSERT INTO workspaces (` + workspaceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db.Exec(ctx, query,
		m.WorkspaceID,
		m.Name,
		m.Description,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save workspace %s: %w", workspace.WorkspaceID, err)
	}
	return nil
}

func (r *PgxWorkspaceRepository) FindWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error) {
	query := `SELECT ` + workspaceColumns + ` FROM workspaces WHERE workspace_id = $1 AND is_active;`
	m, err := scanWorkspaceRow(r.db.QueryRow(ctx, query, workspaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find workspace by ID %s: %w", workspaceID, err)
	}
	d := mapping.ToDomainWorkspace(m)
	return &d, nil
}

func (r *PgxWorkspaceRepository) ListWorkspacesByUserID(ctx context.Context, userID string) ([]domain.Workspace, error) {
	query := `
		SELECT w.workspace_id, w.name, w.description, w.is_active, w.created_at, w.created_by, w.last_updated_at, w.last_updated_by
		FROM workspaces w
		JOIN user_workspaces uw ON uw.workspace_id = w.workspace_id
		WHERE uw.user_id = $1 AND uw.role != 'REMOVED' AND w.is_active
		ORDER BY w.created_at ASC;
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workspaces for user %s: %w", userID, err)
	}
	defer rows.Close()

	workspaces := make([]domain.Workspace, 0)
	for rows.Next() {
		m, scanErr := scanWorkspaceRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan workspace row: %w", scanErr)
		}
		workspaces = append(workspaces, mapping.ToDomainWorkspace(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workspace rows: %w", err)
	}
	return workspaces, nil
}

func (r *PgxWorkspaceRepository) AddUserToWorkspace(ctx context.Context, membership domain.UserWorkspace) error {
	// Membership rows are upserted so role changes reuse the same path.
	query := `
		INSERT INTO user_workspaces (user_id, workspace_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, workspace_id) DO UPDATE SET role = EXCLUDED.role;
	`
	_, err := r.db.Exec(ctx, query,
		membership.UserID,
		membership.WorkspaceID,
		string(membership.Role),
		membership.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add user %s to workspace %s: %w", membership.UserID, membership.WorkspaceID, err)
	}
	return nil
}

func (r *PgxWorkspaceRepository) FindUserWorkspaceRole(ctx context.Context, userID, workspaceID string) (*domain.UserWorkspace, error) {
	query := `
		SELECT uw.user_id, u.name, uw.workspace_id, uw.role, uw.joined_at
		FROM user_workspaces uw
		JOIN users u ON u.user_id = uw.user_id
		WHERE uw.user_id = $1 AND uw.workspace_id = $2;
	`
	var m models.UserWorkspace
	var userName string
	err := r.db.QueryRow(ctx, query, userID, workspaceID).Scan(
		&m.UserID,
		&userName,
		&m.WorkspaceID,
		&m.Role,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find role for user %s in workspace %s: %w", userID, workspaceID, err)
	}

	membership := mapping.ToDomainUserWorkspace(m)
	membership.UserName = userName
	return &membership, nil
}
