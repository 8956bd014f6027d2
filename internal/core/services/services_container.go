package services

import (
	portsrepo "github.com/chronicleteam/chronicle_backend/internal/core/ports/repositories"
	portssvc "github.com/chronicleteam/chronicle_backend/internal/core/ports/services"
	"github.com/chronicleteam/chronicle_backend/internal/utils"
	"github.com/chronicleteam/chronicle_backend/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, analytics *utils.PosthogClientWrapper) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Workspace service first since other services depend on its authorizer
	container.Workspace = NewWorkspaceService(repos.WorkspaceRepo)
	workspaceAuthorizer := container.Workspace.(portssvc.WorkspaceAuthorizerSvc)

	container.Notifier = NewGoalNotifier(analytics)
	container.Goal = NewGoalService(repos.GoalRepo, workspaceAuthorizer, container.Notifier)
	container.User = NewUserService(repos.UserRepo)
	container.TokenService = NewTokenService(cfg, container.User)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.GoalSvcFacade      = (*goalService)(nil)
	_ portssvc.WorkspaceSvcFacade = (*workspaceService)(nil)
)
