package client

import (
	"errors"
	"fmt"
	"net/http"

	"mission-desk/internal/dto"
)

var (
	// ErrNotFound marks the 404 answers that are valid states: no exam, no plan, no report yet.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the backend rejects the token; the session is invalidated.
	ErrUnauthorized  = errors.New("unauthorized")
	ErrSessionClosed = errors.New("session closed")

	ErrPrecondition      = errors.New("precondition failed")
	ErrIllegalTransition = errors.New("illegal state transition")
	ErrActionInProgress  = errors.New("action already in progress")
	ErrExamLoad          = errors.New("failed to load exam")
)

// APIError is a non-successful backend answer.
type APIError struct {
	Status  int
	Code    string
	Message string
	Errors  []dto.FieldError
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Unwrap lets callers test 404 and 401 answers with errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	}
	return nil
}

func preconditionf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// userMessage turns err into the text shown in an error region.
func userMessage(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrSessionClosed):
		return "Your session has ended, please log in again."
	case errors.Is(err, ErrPrecondition), errors.Is(err, ErrIllegalTransition), errors.Is(err, ErrActionInProgress):
		return err.Error()
	default:
		return "Something went wrong, please retry."
	}
}
