// Package workflow models the lifecycle of a single goal status change,
// independent of the goal's own status field. One StatusFlow exists per goal
// per client; it guards against overlapping submissions, keeps the last failed
// target around for one-click retry, and clears stale failures when the goal's
// observed status moves on without us.
package workflow

import (
	"sync"

	"github.com/chronicleteam/chronicle_backend/internal/apperrors"
	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
)

// Phase is the lifecycle phase of a status update attempt.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseUpdating Phase = "updating"
	PhaseFailed   Phase = "failed"
)

// StatusFlow is a small finite-state machine over Idle -> Updating ->
// {Idle, Failed}, with Failed -> Updating on retry. It carries no goal state
// beyond the attempted target status.
type StatusFlow struct {
	mu       sync.Mutex
	phase    Phase
	disabled bool

	// target is the status being submitted while Updating, and the retained
	// last-failed target while Failed.
	target  domain.GoalStatus
	cause   apperrors.FailureCause
	message string

	// lastObserved is the goal status seen on the previous ObserveStatus call,
	// used to distinguish an external change from a mere re-read.
	lastObserved domain.GoalStatus
}

// NewStatusFlow returns a flow in the Idle phase.
func NewStatusFlow() *StatusFlow {
	return &StatusFlow{phase: PhaseIdle}
}

// Begin moves the flow into Updating for the given target. It is a guarded
// no-op returning ErrUpdateInFlight when a submission is already in flight,
// and ErrForbidden when the flow is externally disabled. Beginning from Failed
// is the retry path.
func (f *StatusFlow) Begin(target domain.GoalStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.disabled {
		return apperrors.ErrForbidden
	}
	if f.phase == PhaseUpdating {
		return apperrors.ErrUpdateInFlight
	}

	f.phase = PhaseUpdating
	f.target = domain.MigrateStatus(string(target))
	return nil
}

// Succeed moves the flow back to Idle and clears any failure state.
func (f *StatusFlow) Succeed() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phase = PhaseIdle
	f.target = ""
	f.cause = ""
	f.message = ""
}

// Fail moves the flow into Failed, retaining the attempted target so a retry
// re-submits the same status. The error is classified only to pick the
// user-facing message; classification never changes retry behaviour.
func (f *StatusFlow) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phase = PhaseFailed
	f.cause = apperrors.ClassifyFailure(err)
	f.message = apperrors.FailureMessage(f.cause)
}

// ObserveStatus reacts to the goal's externally observed status. A retained
// failure is cleared when the observed status changes to anything other than
// the last-failed target, covering the case where another actor already
// advanced the status. Re-reading an unchanged status keeps the failure, so
// the retry target survives ordinary refreshes.
func (f *StatusFlow) ObserveStatus(current domain.GoalStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()

	observed := domain.MigrateStatus(string(current))
	changed := observed != f.lastObserved
	f.lastObserved = observed

	if f.phase != PhaseFailed {
		return
	}
	if changed && observed != f.target {
		f.phase = PhaseIdle
		f.target = ""
		f.cause = ""
		f.message = ""
	}
}

// SetDisabled externally enables or disables the flow. While disabled, Begin
// refuses new submissions; an in-flight submission is left to finish.
func (f *StatusFlow) SetDisabled(disabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabled = disabled
}

// Phase returns the current lifecycle phase.
func (f *StatusFlow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// RetryTarget returns the retained target of the last failed submission. The
// boolean is false unless the flow is in Failed.
func (f *StatusFlow) RetryTarget() (domain.GoalStatus, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != PhaseFailed {
		return "", false
	}
	return f.target, true
}

// Failure returns the classified cause and user-facing message of the last
// failed submission, or zero values when not in Failed.
func (f *StatusFlow) Failure() (apperrors.FailureCause, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != PhaseFailed {
		return "", ""
	}
	return f.cause, f.message
}

// OfferedTargets returns the statuses the workflow may offer for the given
// goal: exactly the transition table over the migrated current status.
func OfferedTargets(g *domain.Goal) []domain.GoalStatus {
	return g.AllowedTransitions()
}

// Registry hands out one StatusFlow per goal ID.
type Registry struct {
	mu    sync.Mutex
	flows map[string]*StatusFlow
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{flows: make(map[string]*StatusFlow)}
}

// FlowFor returns the flow for the given goal, creating it on first use.
func (r *Registry) FlowFor(goalID string) *StatusFlow {
	r.mu.Lock()
	defer r.mu.Unlock()
	flow, ok := r.flows[goalID]
	if !ok {
		flow = NewStatusFlow()
		r.flows[goalID] = flow
	}
	return flow
}

// Peek returns the flow for the given goal without creating one. Read paths
// use it so a plain goal fetch never grows the registry.
func (r *Registry) Peek(goalID string) *StatusFlow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flows[goalID]
}

// Evict drops the goal's flow when it is idle. An idle flow holds no retry
// state, so recreating it later is indistinguishable from keeping it; only
// Updating and Failed flows stay registered.
func (r *Registry) Evict(goalID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	flow, ok := r.flows[goalID]
	if !ok {
		return
	}
	if flow.Phase() == PhaseIdle {
		delete(r.flows, goalID)
	}
}

// Size returns the number of registered flows.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}
