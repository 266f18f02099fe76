// Package apperr defines the error kinds shared across domain services.
// Handlers translate these to HTTP status codes at the edge; services and
// repositories wrap them with fmt.Errorf + %w and callers match with
// errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation covers rejected input, such as a duplicate username or
	// an unknown enum value.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials covers unknown logins, disabled accounts, and
	// password mismatches. Callers must not be able to distinguish which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated means the request carried no valid token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the caller is authenticated but lacks the role or
	// ownership required for the operation.
	ErrForbidden = errors.New("forbidden")

	ErrNotFound = errors.New("not found")

	// ErrPreconditionFailed signals a missing prerequisite state, such as
	// generating a report from a scan that has not been analyzed.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrInvalidState signals an illegal state transition, such as
	// validating a report that is no longer pending.
	ErrInvalidState = errors.New("invalid state")

	ErrEmptyMessage = errors.New("message cannot be empty")

	// ErrAnalysisFailed means the AI provider call errored or returned
	// output that failed schema validation. Recoverable: callers may retry.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrAIService is the chat-turn equivalent of ErrAnalysisFailed: the
	// user's message was persisted but no reply could be produced.
	ErrAIService = errors.New("ai service error")
)

// StatusCode maps an error chain to the HTTP status handlers respond with.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrPreconditionFailed):
		return http.StatusPreconditionFailed
	case errors.Is(err, ErrAnalysisFailed), errors.Is(err, ErrAIService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
