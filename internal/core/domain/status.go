package domain

import "strings"

// GoalStatus is one of the six canonical lifecycle states of a goal.
// Stored data may still carry older vocabularies; every read must pass
// through MigrateStatus rather than assume the value is canonical.
type GoalStatus string

const (
	StatusYetToStart    GoalStatus = "yet-to-start"
	StatusInProgress    GoalStatus = "in-progress"
	StatusBlocked       GoalStatus = "blocked"
	StatusPendingReview GoalStatus = "pending-review"
	StatusAchieved      GoalStatus = "achieved"
	StatusCancelled     GoalStatus = "cancelled"
)

var canonicalStatuses = map[GoalStatus]struct{}{
	StatusYetToStart:    {},
	StatusInProgress:    {},
	StatusBlocked:       {},
	StatusPendingReview: {},
	StatusAchieved:      {},
	StatusCancelled:     {},
}

// legacyStatusAliases maps historical status vocabularies onto the current one.
// Data written under old vocabularies is normalized on every read instead of
// through a one-time backfill.
var legacyStatusAliases = map[string]GoalStatus{
	"not-started": StatusYetToStart,
	"not_started": StatusYetToStart,
	"notstarted":  StatusYetToStart,
	"todo":        StatusYetToStart,
	"open":        StatusYetToStart,
	"new":         StatusYetToStart,
	"planned":     StatusYetToStart,

	"active":      StatusInProgress,
	"ongoing":     StatusInProgress,
	"started":     StatusInProgress,
	"in_progress": StatusInProgress,
	"in progress": StatusInProgress,
	"inprogress":  StatusInProgress,

	"on-hold": StatusBlocked,
	"on_hold": StatusBlocked,
	"paused":  StatusBlocked,
	"stuck":   StatusBlocked,

	"in-review":       StatusPendingReview,
	"in_review":       StatusPendingReview,
	"review":          StatusPendingReview,
	"under-review":    StatusPendingReview,
	"awaiting-review": StatusPendingReview,
	"pending_review":  StatusPendingReview,

	"completed":    StatusAchieved,
	"complete":     StatusAchieved,
	"done":         StatusAchieved,
	"finished":     StatusAchieved,
	"accomplished": StatusAchieved,

	"abandoned": StatusCancelled,
	"dropped":   StatusCancelled,
	"archived":  StatusCancelled,
	"canceled":  StatusCancelled,
}

// MigrateStatus maps any stored status string onto the canonical vocabulary.
// It is total: unrecognized input falls back to StatusYetToStart, and it is
// idempotent on already-canonical values.
func MigrateStatus(raw string) GoalStatus {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := canonicalStatuses[GoalStatus(normalized)]; ok {
		return GoalStatus(normalized)
	}
	if mapped, ok := legacyStatusAliases[normalized]; ok {
		return mapped
	}
	return StatusYetToStart
}

// IsValidStatus reports whether raw is already one of the six canonical values.
func IsValidStatus(raw string) bool {
	_, ok := canonicalStatuses[GoalStatus(raw)]
	return ok
}

// validTransitions is the fixed adjacency of allowed status moves.
// Achieved and cancelled are not terminal: both reopen to in-progress so a
// reworked goal does not need a new goal entity.
var validTransitions = map[GoalStatus][]GoalStatus{
	StatusYetToStart:    {StatusInProgress, StatusCancelled},
	StatusInProgress:    {StatusBlocked, StatusPendingReview, StatusAchieved, StatusCancelled},
	StatusBlocked:       {StatusInProgress, StatusCancelled},
	StatusPendingReview: {StatusInProgress, StatusAchieved, StatusCancelled},
	StatusAchieved:      {StatusInProgress},
	StatusCancelled:     {StatusInProgress},
}

// ValidTransitions returns the statuses reachable from the given status in one
// step. The input is migrated first, so legacy values are handled transparently.
func ValidTransitions(status GoalStatus) []GoalStatus {
	targets := validTransitions[MigrateStatus(string(status))]
	out := make([]GoalStatus, len(targets))
	copy(out, targets)
	return out
}

// CanTransition reports whether the transition table permits from -> to.
func CanTransition(from, to GoalStatus) bool {
	to = MigrateStatus(string(to))
	for _, target := range ValidTransitions(from) {
		if target == to {
			return true
		}
	}
	return false
}
