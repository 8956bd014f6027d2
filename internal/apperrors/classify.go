package apperrors

import (
	"errors"
	"strings"
)

// FailureCause buckets a failed goal mutation for user-facing messaging.
// Classification never changes retry behaviour; every cause is retryable by
// re-submitting the same target.
type FailureCause string

const (
	CauseNetwork    FailureCause = "network"
	CausePermission FailureCause = "permission"
	CauseValidation FailureCause = "validation"
	CauseUnknown    FailureCause = "unknown"
)

// ClassifyFailure maps an error onto a FailureCause by sentinel match first,
// then by substring match on the message. Unrecognized errors are CauseUnknown.
func ClassifyFailure(err error) FailureCause {
	if err == nil {
		return CauseUnknown
	}

	switch {
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrUnauthorized):
		return CausePermission
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidTransition):
		return CauseValidation
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "network"), strings.Contains(msg, "fetch"):
		return CauseNetwork
	case strings.Contains(msg, "permission"), strings.Contains(msg, "forbidden"):
		return CausePermission
	case strings.Contains(msg, "validation"), strings.Contains(msg, "invalid"):
		return CauseValidation
	default:
		return CauseUnknown
	}
}

// FailureMessage returns the user-facing message for a classified failure.
func FailureMessage(cause FailureCause) string {
	switch cause {
	case CauseNetwork:
		return "Network error. Please check your connection and try again."
	case CausePermission:
		return "You don't have permission to update this goal."
	case CauseValidation:
		return "The requested change is not valid for this goal."
	default:
		return "Failed to update the goal. Please try again."
	}
}
