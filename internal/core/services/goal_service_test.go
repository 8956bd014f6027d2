package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/chronicleteam/chronicle_backend/internal/apperrors"
	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
	portsrepo "github.com/chronicleteam/chronicle_backend/internal/core/ports/repositories"
	portssvc "github.com/chronicleteam/chronicle_backend/internal/core/ports/services"
	"github.com/chronicleteam/chronicle_backend/internal/core/services"
	"github.com/chronicleteam/chronicle_backend/internal/dto"
)

// --- Mock GoalRepository ---
type MockGoalRepository struct {
	mock.Mock
}

var _ portsrepo.GoalRepositoryWithTx = (*MockGoalRepository)(nil)

func (m *MockGoalRepository) FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error) {
	args := m.Called(ctx, goalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockGoalRepository) ListGoalsByWorkspace(ctx context.Context, workspaceID string, limit int, nextToken *string) ([]domain.Goal, *string, error) {
	args := m.Called(ctx, workspaceID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Goal), returnedNextToken, args.Error(2)
}

func (m *MockGoalRepository) ListEditHistory(ctx context.Context, goalID string) ([]domain.EditRecord, error) {
	args := m.Called(ctx, goalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EditRecord), args.Error(1)
}

func (m *MockGoalRepository) SaveGoal(ctx context.Context, goal domain.Goal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *MockGoalRepository) UpdateGoalFields(ctx context.Context, goal domain.Goal, records []domain.EditRecord) error {
	args := m.Called(ctx, goal, records)
	return args.Error(0)
}

func (m *MockGoalRepository) CommitStatusChange(ctx context.Context, goalID string, status domain.GoalStatus, progress int, completionNotes *string, records []domain.EditRecord, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, goalID, status, progress, completionNotes, records, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockGoalRepository) UpdateCachedProgress(ctx context.Context, goalID string, progress int, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, goalID, progress, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockGoalRepository) SaveMilestone(ctx context.Context, milestone domain.Milestone) error {
	args := m.Called(ctx, milestone)
	return args.Error(0)
}

func (m *MockGoalRepository) UpdateMilestone(ctx context.Context, milestone domain.Milestone) error {
	args := m.Called(ctx, milestone)
	return args.Error(0)
}

func (m *MockGoalRepository) SaveJournalLink(ctx context.Context, link domain.JournalLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockGoalRepository) DeleteJournalLink(ctx context.Context, goalID, journalEntryID string) error {
	args := m.Called(ctx, goalID, journalEntryID)
	return args.Error(0)
}

func (m *MockGoalRepository) AppendEditRecords(ctx context.Context, records []domain.EditRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockGoalRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockGoalRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockGoalRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock WorkspaceAuthorizer ---
type MockWorkspaceAuthorizer struct {
	mock.Mock
}

var _ portssvc.WorkspaceAuthorizerSvc = (*MockWorkspaceAuthorizer)(nil)

func (m *MockWorkspaceAuthorizer) AuthorizeUserAction(ctx context.Context, userID, workspaceID string, requiredRole domain.UserWorkspaceRole) error {
	args := m.Called(ctx, userID, workspaceID, requiredRole)
	return args.Error(0)
}

// --- Mock GoalNotifier ---
type MockGoalNotifier struct {
	mock.Mock
}

var _ portssvc.GoalNotifierSvc = (*MockGoalNotifier)(nil)

func (m *MockGoalNotifier) NotifyStatusChange(ctx context.Context, goal *domain.Goal, previous, next domain.GoalStatus, actorUserID string) {
	m.Called(ctx, goal, previous, next, actorUserID)
}

func (m *MockGoalNotifier) NotifyMilestoneCompleted(ctx context.Context, goal *domain.Goal, milestone domain.Milestone, actorUserID string) {
	m.Called(ctx, goal, milestone, actorUserID)
}

// --- Test Suite Setup ---
type GoalServiceTestSuite struct {
	suite.Suite
	mockGoalRepo   *MockGoalRepository
	mockAuthorizer *MockWorkspaceAuthorizer
	mockNotifier   *MockGoalNotifier
	service        portssvc.GoalSvcFacade
	workspaceID    string
	userID         string
}

func (suite *GoalServiceTestSuite) SetupTest() {
	suite.mockGoalRepo = new(MockGoalRepository)
	suite.mockAuthorizer = new(MockWorkspaceAuthorizer)
	suite.mockNotifier = new(MockGoalNotifier)
	suite.service = services.NewGoalService(suite.mockGoalRepo, suite.mockAuthorizer, suite.mockNotifier)

	suite.workspaceID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *GoalServiceTestSuite) newGoal(status domain.GoalStatus) *domain.Goal {
	now := time.Now().UTC().Add(-time.Hour)
	return &domain.Goal{
		GoalID:      uuid.NewString(),
		WorkspaceID: suite.workspaceID,
		Title:       "Ship onboarding revamp",
		Status:      status,
		Priority:    domain.PriorityMedium,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     suite.userID,
			LastUpdatedAt: now,
			LastUpdatedBy: suite.userID,
		},
	}
}

func (suite *GoalServiceTestSuite) authorize(role domain.UserWorkspaceRole) {
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.workspaceID, role).Return(nil)
}

// --- CreateGoal ---

func (suite *GoalServiceTestSuite) TestCreateGoal_Success() {
	ctx := context.Background()
	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("SaveGoal", mock.Anything, mock.AnythingOfType("domain.Goal")).Return(nil).Once()

	created, err := suite.service.CreateGoal(ctx, suite.workspaceID, dto.CreateGoalRequest{
		Title:  "Learn Spanish",
		Status: "not-started", // legacy vocabulary
		Milestones: []dto.CreateMilestoneRequest{
			{Title: "Finish A1 course"},
		},
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(created.GoalID)
	suite.Equal(domain.StatusYetToStart, created.Status)
	suite.Equal(domain.PriorityMedium, created.Priority)
	suite.Len(created.Milestones, 1)
	suite.Equal(domain.MilestoneIncomplete, created.Milestones[0].EffectiveStatus())
	suite.Equal(0, created.ProgressPercentage)
	suite.mockGoalRepo.AssertExpectations(suite.T())
}

func (suite *GoalServiceTestSuite) TestCreateGoal_Unauthorized() {
	ctx := context.Background()
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.workspaceID, domain.RoleMember).Return(apperrors.ErrForbidden).Once()

	_, err := suite.service.CreateGoal(ctx, suite.workspaceID, dto.CreateGoalRequest{Title: "x"}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockGoalRepo.AssertNotCalled(suite.T(), "SaveGoal", mock.Anything, mock.Anything)
}

// --- GetGoalByID ---

func (suite *GoalServiceTestSuite) TestGetGoalByID_MigratesLegacyStatus() {
	ctx := context.Background()
	goal := suite.newGoal("completed") // legacy vocabulary in storage
	suite.authorize(domain.RoleReadOnly)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()

	got, err := suite.service.GetGoalByID(ctx, suite.workspaceID, goal.GoalID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusAchieved, got.Status)
}

func (suite *GoalServiceTestSuite) TestGetGoalByID_WrongWorkspaceIsNotFound() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusInProgress)
	goal.WorkspaceID = uuid.NewString()
	suite.authorize(domain.RoleReadOnly)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()

	_, err := suite.service.GetGoalByID(ctx, suite.workspaceID, goal.GoalID, suite.userID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- UpdateGoal ---

func (suite *GoalServiceTestSuite) TestUpdateGoal_RecordsOneEditPerChangedField() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusInProgress)
	goal.Category = "health"
	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()

	var savedRecords []domain.EditRecord
	suite.mockGoalRepo.On("UpdateGoalFields", mock.Anything, mock.AnythingOfType("domain.Goal"), mock.AnythingOfType("[]domain.EditRecord")).
		Run(func(args mock.Arguments) {
			savedRecords = args.Get(2).([]domain.EditRecord)
		}).Return(nil).Once()

	newTitle := "Ship onboarding revamp v2"
	newCategory := "career"
	_, err := suite.service.UpdateGoal(ctx, suite.workspaceID, goal.GoalID, dto.UpdateGoalRequest{
		Title:    &newTitle,
		Category: &newCategory,
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(savedRecords, 2)
	// Batch shares one timestamp
	suite.Equal(savedRecords[0].EditedAt, savedRecords[1].EditedAt)
	suite.Equal(domain.FieldTitle, savedRecords[0].Field)
	suite.Equal(domain.FieldCategory, savedRecords[1].Field)
	suite.Equal("Category changed from health to career", savedRecords[1].Reason)
}

func (suite *GoalServiceTestSuite) TestUpdateGoal_NoChangesNoRecords() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusInProgress)
	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()

	sameTitle := goal.Title
	_, err := suite.service.UpdateGoal(ctx, suite.workspaceID, goal.GoalID, dto.UpdateGoalRequest{Title: &sameTitle}, suite.userID)

	suite.Require().NoError(err)
	suite.mockGoalRepo.AssertNotCalled(suite.T(), "UpdateGoalFields", mock.Anything, mock.Anything, mock.Anything)
}

// --- UpdateGoalStatus ---

func (suite *GoalServiceTestSuite) TestUpdateGoalStatus_ValidTransition() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusInProgress)
	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()
	suite.mockGoalRepo.On("CommitStatusChange", mock.Anything, goal.GoalID, domain.StatusBlocked, 0, (*string)(nil), mock.AnythingOfType("[]domain.EditRecord"), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("NotifyStatusChange", mock.Anything, mock.Anything, domain.StatusInProgress, domain.StatusBlocked, suite.userID).Once()

	updated, err := suite.service.UpdateGoalStatus(ctx, suite.workspaceID, goal.GoalID, dto.UpdateGoalStatusRequest{Status: "blocked"}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusBlocked, updated.Status)
	suite.mockGoalRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *GoalServiceTestSuite) TestUpdateGoalStatus_InvalidTransitionRejected() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusYetToStart)
	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()

	_, err := suite.service.UpdateGoalStatus(ctx, suite.workspaceID, goal.GoalID, dto.UpdateGoalStatusRequest{Status: "achieved"}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.mockGoalRepo.AssertNotCalled(suite.T(), "CommitStatusChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *GoalServiceTestSuite) TestUpdateGoalStatus_AchieveRequiresConfirmation() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusInProgress)
	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()

	_, err := suite.service.UpdateGoalStatus(ctx, suite.workspaceID, goal.GoalID, dto.UpdateGoalStatusRequest{Status: "achieved"}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrCompletionConfirmationRequired)
	// The rejected attempt persists nothing; the simulated state is discarded.
	suite.mockGoalRepo.AssertNotCalled(suite.T(), "CommitStatusChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *GoalServiceTestSuite) TestUpdateGoalStatus_CancelAtFullProgressNeedsNoConfirmation() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusInProgress)
	goal.JournalLinks = []domain.JournalLink{{
		JournalEntryID:       uuid.NewString(),
		GoalID:               goal.GoalID,
		ContributionType:     domain.ContributionProgress,
		ProgressContribution: 100,
	}}
	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()
	suite.mockGoalRepo.On("CommitStatusChange", mock.Anything, goal.GoalID, domain.StatusCancelled, 100, (*string)(nil), mock.AnythingOfType("[]domain.EditRecord"), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("NotifyStatusChange", mock.Anything, mock.Anything, domain.StatusInProgress, domain.StatusCancelled, suite.userID).Once()

	// Only the achieved target completes a goal; cancelling at 100% progress
	// commits directly.
	updated, err := suite.service.UpdateGoalStatus(ctx, suite.workspaceID, goal.GoalID, dto.UpdateGoalStatusRequest{Status: "cancelled"}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCancelled, updated.Status)
	suite.mockGoalRepo.AssertExpectations(suite.T())
}

func (suite *GoalServiceTestSuite) TestUpdateGoalStatus_ConfirmedAchieveCommitsAtomically() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusInProgress)
	notes := "Shipped to all users"
	suite.authorize(domain.RoleMember)
	// Confirmation-required rejection then the confirmed resubmission
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Twice()
	suite.mockGoalRepo.On("CommitStatusChange", mock.Anything, goal.GoalID, domain.StatusAchieved, 100, &notes, mock.AnythingOfType("[]domain.EditRecord"), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("NotifyStatusChange", mock.Anything, mock.Anything, domain.StatusInProgress, domain.StatusAchieved, suite.userID).Once()

	_, err := suite.service.UpdateGoalStatus(ctx, suite.workspaceID, goal.GoalID, dto.UpdateGoalStatusRequest{Status: "achieved"}, suite.userID)
	suite.Require().ErrorIs(err, apperrors.ErrCompletionConfirmationRequired)

	updated, err := suite.service.UpdateGoalStatus(ctx, suite.workspaceID, goal.GoalID, dto.UpdateGoalStatusRequest{
		Status:            "achieved",
		ConfirmCompletion: true,
		CompletionNotes:   &notes,
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusAchieved, updated.Status)
	suite.Equal(100, updated.ProgressPercentage)
	suite.Equal(notes, updated.CompletionNotes)
	suite.mockGoalRepo.AssertExpectations(suite.T())
}

func (suite *GoalServiceTestSuite) TestUpdateGoalStatus_PermissionFailureAllowsSameTargetRetry() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusInProgress)
	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Twice()
	suite.mockGoalRepo.On("CommitStatusChange", mock.Anything, goal.GoalID, domain.StatusBlocked, 0, (*string)(nil), mock.AnythingOfType("[]domain.EditRecord"), suite.userID, mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrForbidden).Once()
	suite.mockGoalRepo.On("CommitStatusChange", mock.Anything, goal.GoalID, domain.StatusBlocked, 0, (*string)(nil), mock.AnythingOfType("[]domain.EditRecord"), suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockNotifier.On("NotifyStatusChange", mock.Anything, mock.Anything, domain.StatusInProgress, domain.StatusBlocked, suite.userID).Once()

	_, err := suite.service.UpdateGoalStatus(ctx, suite.workspaceID, goal.GoalID, dto.UpdateGoalStatusRequest{Status: "blocked"}, suite.userID)
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	// Same target is resubmitted unchanged after a failure.
	updated, err := suite.service.UpdateGoalStatus(ctx, suite.workspaceID, goal.GoalID, dto.UpdateGoalStatusRequest{Status: "blocked"}, suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusBlocked, updated.Status)
	suite.mockGoalRepo.AssertExpectations(suite.T())
}

func (suite *GoalServiceTestSuite) TestUpdateGoalStatus_ReopenAchievedGoal() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusAchieved)
	goal.ProgressPercentage = 100
	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()
	suite.mockGoalRepo.On("CommitStatusChange", mock.Anything, goal.GoalID, domain.StatusInProgress, mock.AnythingOfType("int"), (*string)(nil), mock.AnythingOfType("[]domain.EditRecord"), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("NotifyStatusChange", mock.Anything, mock.Anything, domain.StatusAchieved, domain.StatusInProgress, suite.userID).Once()

	updated, err := suite.service.UpdateGoalStatus(ctx, suite.workspaceID, goal.GoalID, dto.UpdateGoalStatusRequest{Status: "in-progress"}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusInProgress, updated.Status)
}

// --- AdjustProgress ---

func (suite *GoalServiceTestSuite) TestAdjustProgress_AutoAdvancesFromYetToStart() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusYetToStart)
	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()
	suite.mockGoalRepo.On("CommitStatusChange", mock.Anything, goal.GoalID, domain.StatusInProgress, 40, (*string)(nil), mock.AnythingOfType("[]domain.EditRecord"), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("NotifyStatusChange", mock.Anything, mock.Anything, domain.StatusYetToStart, domain.StatusInProgress, suite.userID).Once()

	progress := 40
	updated, err := suite.service.AdjustProgress(ctx, suite.workspaceID, goal.GoalID, dto.AdjustProgressRequest{Progress: &progress}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusInProgress, updated.Status)
	suite.Equal(40, updated.ProgressPercentage)
}

func (suite *GoalServiceTestSuite) TestAdjustProgress_To100RequiresConfirmation() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusInProgress)
	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()

	progress := 100
	_, err := suite.service.AdjustProgress(ctx, suite.workspaceID, goal.GoalID, dto.AdjustProgressRequest{Progress: &progress}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrCompletionConfirmationRequired)
	suite.mockGoalRepo.AssertNotCalled(suite.T(), "CommitStatusChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Milestones ---

func (suite *GoalServiceTestSuite) TestToggleMilestone_CompletesAndRecomputesProgress() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusInProgress)
	goal.Milestones = []domain.Milestone{
		{MilestoneID: uuid.NewString(), GoalID: goal.GoalID, Title: "Draft", Status: domain.MilestoneIncomplete},
		{MilestoneID: uuid.NewString(), GoalID: goal.GoalID, Title: "Review", Status: domain.MilestoneIncomplete},
	}
	target := goal.Milestones[0].MilestoneID

	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()
	suite.mockGoalRepo.On("UpdateMilestone", mock.Anything, mock.AnythingOfType("domain.Milestone")).Return(nil).Once()
	suite.mockGoalRepo.On("AppendEditRecords", mock.Anything, mock.AnythingOfType("[]domain.EditRecord")).Return(nil).Once()
	// 30 * 1.0 / 2 = 15
	suite.mockGoalRepo.On("UpdateCachedProgress", mock.Anything, goal.GoalID, 15, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("NotifyMilestoneCompleted", mock.Anything, mock.Anything, mock.AnythingOfType("domain.Milestone"), suite.userID).Once()

	updated, err := suite.service.ToggleMilestone(ctx, suite.workspaceID, goal.GoalID, target, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.MilestoneCompleted, updated.Milestones[0].EffectiveStatus())
	suite.Equal(15, updated.ProgressPercentage)
	suite.mockGoalRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *GoalServiceTestSuite) TestToggleMilestone_PartialTogglesToCompleted() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusInProgress)
	goal.Milestones = []domain.Milestone{
		{MilestoneID: uuid.NewString(), GoalID: goal.GoalID, Title: "Draft", Status: domain.MilestonePartial},
	}
	target := goal.Milestones[0].MilestoneID

	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()
	suite.mockGoalRepo.On("UpdateMilestone", mock.Anything, mock.AnythingOfType("domain.Milestone")).Return(nil).Once()
	suite.mockGoalRepo.On("AppendEditRecords", mock.Anything, mock.AnythingOfType("[]domain.EditRecord")).Return(nil).Once()
	suite.mockGoalRepo.On("UpdateCachedProgress", mock.Anything, goal.GoalID, 30, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("NotifyMilestoneCompleted", mock.Anything, mock.Anything, mock.AnythingOfType("domain.Milestone"), suite.userID).Once()

	updated, err := suite.service.ToggleMilestone(ctx, suite.workspaceID, goal.GoalID, target, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.MilestoneCompleted, updated.Milestones[0].EffectiveStatus())
}

func (suite *GoalServiceTestSuite) TestToggleMilestone_NotFound() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusInProgress)
	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()

	_, err := suite.service.ToggleMilestone(ctx, suite.workspaceID, goal.GoalID, uuid.NewString(), suite.userID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Journal links ---

func (suite *GoalServiceTestSuite) TestLinkJournalEntry_DuplicateRejected() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusInProgress)
	entryID := uuid.NewString()
	goal.JournalLinks = []domain.JournalLink{
		{JournalEntryID: entryID, GoalID: goal.GoalID, ContributionType: domain.ContributionProgress, ProgressContribution: 10},
	}

	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()

	_, err := suite.service.LinkJournalEntry(ctx, suite.workspaceID, goal.GoalID, dto.LinkJournalEntryRequest{
		JournalEntryID:       entryID,
		ContributionType:     "progress",
		ProgressContribution: 20,
	}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockGoalRepo.AssertNotCalled(suite.T(), "SaveJournalLink", mock.Anything, mock.Anything)
}

func (suite *GoalServiceTestSuite) TestLinkJournalEntry_RecomputesProgress() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusInProgress)
	entryID := uuid.NewString()

	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()
	suite.mockGoalRepo.On("SaveJournalLink", mock.Anything, mock.AnythingOfType("domain.JournalLink")).Return(nil).Once()
	suite.mockGoalRepo.On("UpdateCachedProgress", mock.Anything, goal.GoalID, 25, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.LinkJournalEntry(ctx, suite.workspaceID, goal.GoalID, dto.LinkJournalEntryRequest{
		JournalEntryID:       entryID,
		ContributionType:     "progress",
		ProgressContribution: 25,
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(25, updated.ProgressPercentage)
	suite.True(updated.HasJournalLink(entryID))
}

func (suite *GoalServiceTestSuite) TestUnlinkJournalEntry_UnknownLinkNotFound() {
	ctx := context.Background()
	goal := suite.newGoal(domain.StatusInProgress)
	suite.authorize(domain.RoleMember)
	suite.mockGoalRepo.On("FindGoalByID", mock.Anything, goal.GoalID).Return(goal, nil).Once()

	_, err := suite.service.UnlinkJournalEntry(ctx, suite.workspaceID, goal.GoalID, uuid.NewString(), suite.userID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestGoalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GoalServiceTestSuite))
}
