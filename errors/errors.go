package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrParticipantExists   = fmt.Errorf("participant already exists")
	ErrParticipantNotFound = fmt.Errorf("participant not found")
	ErrMissingIdentity     = fmt.Errorf("missing identity header")
	ErrUnknownSender       = fmt.Errorf("sender is not a live participant")
	ErrWorkerPanic         = fmt.Errorf("worker panic")
)

// ValidationError carries every schema violation of a request, in the
// order the schema declares its rules. The full list travels to the caller
// so one round trip reports everything that is wrong.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "; ")
}

// NewValidationError wraps a non-empty violation list.
func NewValidationError(violations []string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// HTTPStatus maps a service error to its transport status code.
// Unknown errors are storage/infrastructure failures and surface as 500.
func HTTPStatus(err error) int {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusUnprocessableEntity
	}
	switch {
	case errors.Is(err, ErrParticipantExists):
		return http.StatusConflict
	case errors.Is(err, ErrParticipantNotFound), errors.Is(err, ErrMissingIdentity):
		return http.StatusNotFound
	case errors.Is(err, ErrUnknownSender):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
