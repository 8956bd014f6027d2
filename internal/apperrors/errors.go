package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the authenticated user is not allowed to perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates the request lacks valid authentication credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrRefreshTokenExpired indicates the presented refresh token is past its expiry.
var ErrRefreshTokenExpired = errors.New("refresh token expired")

// ErrInvalidTransition indicates a goal status change not permitted by the transition table.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrCompletionConfirmationRequired indicates the pending mutation would complete the
// goal and must be confirmed (with optional completion notes) before it is committed.
var ErrCompletionConfirmationRequired = errors.New("completion confirmation required")

// ErrUpdateInFlight indicates another mutation for the same goal is still awaiting
// its result; re-entrant submission is rejected rather than queued.
var ErrUpdateInFlight = errors.New("goal update already in flight")

// AppError wraps an underlying error with an HTTP-ish status code and a message
// suitable for logging at the repository/service boundary.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped error for errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}
