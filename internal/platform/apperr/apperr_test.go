package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrValidation, http.StatusBadRequest},
		{ErrEmptyMessage, http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidState, http.StatusConflict},
		{ErrPreconditionFailed, http.StatusPreconditionFailed},
		{ErrAnalysisFailed, http.StatusBadGateway},
		{ErrAIService, http.StatusBadGateway},
		{errors.New("something else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusCode(tc.err); got != tc.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestStatusCodeUnwrapsChains(t *testing.T) {
	err := fmt.Errorf("validate report: %w", fmt.Errorf("%w: report already validated", ErrInvalidState))
	if got := StatusCode(err); got != http.StatusConflict {
		t.Errorf("wrapped error: got %d, want 409", got)
	}
}
