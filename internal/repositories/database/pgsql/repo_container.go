package pgsql

import (
	portsrepo "github.com/chronicleteam/chronicle_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	goalRepo := newPgxGoalRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	workspaceRepo := newPgxWorkspaceRepository(dbPool)

	return portsrepo.RepositoryProvider{
		GoalRepo:      goalRepo,
		UserRepo:      userRepo,
		WorkspaceRepo: workspaceRepo,
	}
}
