package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds returned by the interview services. Callers match them with
// errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrCollaborator = errors.New("collaborator failure")
	ErrForbidden    = errors.New("forbidden")
)

// ServiceError carries a message meant for the caller next to the kind and
// the underlying cause.
type ServiceError struct {
	Kind    error
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Is(target error) bool {
	return target == e.Kind
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func notFound(format string, args ...interface{}) error {
	return &ServiceError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...interface{}) error {
	return &ServiceError{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...interface{}) error {
	return &ServiceError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func collaboratorFailure(message string, err error) error {
	return &ServiceError{Kind: ErrCollaborator, Message: message, Err: err}
}

// StatusCode maps an error onto the HTTP status the API answers with.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrCollaborator):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text safe to show a client for err.
func PublicMessage(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		if se.Kind == ErrCollaborator {
			return se.Message
		}
		return se.Error()
	}
	return "Internal server error"
}
