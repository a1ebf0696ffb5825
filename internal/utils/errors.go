package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrRateLimitExceeded      = errors.New("rate_limit_exceeded")
	ErrExternalServiceFailure = errors.New("external_service_failure")
	ErrDispatchTimeout        = errors.New("dispatch_timeout")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Details    any
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, appErr.Details, appErr.Err)
	} else {
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
