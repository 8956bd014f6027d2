package workflow_test

import (
	"errors"
	"testing"

	"github.com/chronicleteam/chronicle_backend/internal/apperrors"
	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
	"github.com/chronicleteam/chronicle_backend/internal/core/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFlow_HappyPath(t *testing.T) {
	flow := workflow.NewStatusFlow()
	assert.Equal(t, workflow.PhaseIdle, flow.Phase())

	require.NoError(t, flow.Begin(domain.StatusBlocked))
	assert.Equal(t, workflow.PhaseUpdating, flow.Phase())

	flow.Succeed()
	assert.Equal(t, workflow.PhaseIdle, flow.Phase())
	_, retained := flow.RetryTarget()
	assert.False(t, retained)
}

func TestStatusFlow_GuardsReentrantSubmission(t *testing.T) {
	flow := workflow.NewStatusFlow()
	require.NoError(t, flow.Begin(domain.StatusBlocked))

	err := flow.Begin(domain.StatusCancelled)
	assert.ErrorIs(t, err, apperrors.ErrUpdateInFlight)
	assert.Equal(t, workflow.PhaseUpdating, flow.Phase())
}

func TestStatusFlow_DisabledRefusesSubmission(t *testing.T) {
	flow := workflow.NewStatusFlow()
	flow.SetDisabled(true)
	assert.ErrorIs(t, flow.Begin(domain.StatusBlocked), apperrors.ErrForbidden)

	flow.SetDisabled(false)
	assert.NoError(t, flow.Begin(domain.StatusBlocked))
}

func TestStatusFlow_FailureRetainsTargetForRetry(t *testing.T) {
	// Scenario: transition to blocked rejected with a "forbidden" message.
	flow := workflow.NewStatusFlow()
	require.NoError(t, flow.Begin(domain.StatusBlocked))
	flow.Fail(errors.New("update rejected: forbidden"))

	assert.Equal(t, workflow.PhaseFailed, flow.Phase())

	cause, message := flow.Failure()
	assert.Equal(t, apperrors.CausePermission, cause)
	assert.NotEmpty(t, message)

	// Retry re-submits blocked, not any other status.
	target, ok := flow.RetryTarget()
	require.True(t, ok)
	assert.Equal(t, domain.StatusBlocked, target)

	require.NoError(t, flow.Begin(target))
	assert.Equal(t, workflow.PhaseUpdating, flow.Phase())
	flow.Succeed()
	assert.Equal(t, workflow.PhaseIdle, flow.Phase())
}

func TestStatusFlow_ClassificationDoesNotAffectRetry(t *testing.T) {
	causes := []error{
		errors.New("network unreachable"),
		errors.New("permission denied"),
		errors.New("validation failed"),
		errors.New("something exploded"),
	}
	for _, cause := range causes {
		flow := workflow.NewStatusFlow()
		require.NoError(t, flow.Begin(domain.StatusCancelled))
		flow.Fail(cause)

		target, ok := flow.RetryTarget()
		require.True(t, ok, "cause %v", cause)
		assert.Equal(t, domain.StatusCancelled, target)
		assert.NoError(t, flow.Begin(target))
	}
}

func TestStatusFlow_ObserveStatusClearsStaleFailure(t *testing.T) {
	flow := workflow.NewStatusFlow()
	flow.ObserveStatus(domain.StatusInProgress)
	require.NoError(t, flow.Begin(domain.StatusBlocked))
	flow.Fail(errors.New("network timeout"))

	// Re-reading the unchanged status keeps the retry target.
	flow.ObserveStatus(domain.StatusInProgress)
	assert.Equal(t, workflow.PhaseFailed, flow.Phase())

	// The goal reaching the failed target is not stale either.
	flow.ObserveStatus(domain.StatusBlocked)
	assert.Equal(t, workflow.PhaseFailed, flow.Phase())

	// Another actor moved the goal elsewhere: failure is stale, clear it.
	flow.ObserveStatus(domain.StatusPendingReview)
	assert.Equal(t, workflow.PhaseIdle, flow.Phase())
	_, ok := flow.RetryTarget()
	assert.False(t, ok)
}

func TestStatusFlow_ObserveMigratesLegacyVocabulary(t *testing.T) {
	flow := workflow.NewStatusFlow()
	require.NoError(t, flow.Begin(domain.GoalStatus("done")))
	flow.Fail(errors.New("boom"))

	// "completed" migrates to achieved, same as the failed target "done".
	flow.ObserveStatus(domain.GoalStatus("completed"))
	assert.Equal(t, workflow.PhaseFailed, flow.Phase())
}

func TestOfferedTargets_MatchTransitionTable(t *testing.T) {
	achieved := &domain.Goal{Status: domain.StatusAchieved}
	assert.Equal(t, []domain.GoalStatus{domain.StatusInProgress}, workflow.OfferedTargets(achieved))

	legacy := &domain.Goal{Status: domain.GoalStatus("on-hold")}
	assert.Equal(t, []domain.GoalStatus{domain.StatusInProgress, domain.StatusCancelled}, workflow.OfferedTargets(legacy))
}

func TestRegistry_OneFlowPerGoal(t *testing.T) {
	registry := workflow.NewRegistry()
	first := registry.FlowFor("goal-1")
	second := registry.FlowFor("goal-1")
	other := registry.FlowFor("goal-2")

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
}

func TestRegistry_PeekNeverCreates(t *testing.T) {
	registry := workflow.NewRegistry()

	assert.Nil(t, registry.Peek("goal-1"))
	assert.Equal(t, 0, registry.Size())

	flow := registry.FlowFor("goal-1")
	assert.Same(t, flow, registry.Peek("goal-1"))
	assert.Equal(t, 1, registry.Size())
}

func TestRegistry_EvictReleasesIdleFlowsOnly(t *testing.T) {
	registry := workflow.NewRegistry()

	// A completed update leaves nothing behind.
	done := registry.FlowFor("goal-done")
	require.NoError(t, done.Begin(domain.StatusBlocked))
	done.Succeed()
	registry.Evict("goal-done")
	assert.Nil(t, registry.Peek("goal-done"))

	// A failed update keeps its retry state registered.
	failed := registry.FlowFor("goal-failed")
	require.NoError(t, failed.Begin(domain.StatusBlocked))
	failed.Fail(errors.New("network fetch failed"))
	registry.Evict("goal-failed")
	assert.Same(t, failed, registry.Peek("goal-failed"))

	// An in-flight update is never evicted from under its caller.
	updating := registry.FlowFor("goal-updating")
	require.NoError(t, updating.Begin(domain.StatusBlocked))
	registry.Evict("goal-updating")
	assert.Same(t, updating, registry.Peek("goal-updating"))

	assert.Equal(t, 2, registry.Size())
}
