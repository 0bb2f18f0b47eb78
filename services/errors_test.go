package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", invalid("bad input"), http.StatusBadRequest},
		{"forbidden", authorize(Principal{ID: "u"}), http.StatusForbidden},
		{"not found", notFound("interview %s not found", "x"), http.StatusNotFound},
		{"conflict", conflict("already answered"), http.StatusConflict},
		{"collaborator", collaboratorFailure("failed to evaluate answer", errStub), http.StatusBadGateway},
		{"wrapped", fmt.Errorf("outer: %w", notFound("gone")), http.StatusNotFound},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"domain error", notFound("interview %s not found", "abc"), "interview abc not found"},
		{"collaborator hides cause", collaboratorFailure("failed to generate questions", errStub), "failed to generate questions"},
		{"unexpected", errors.New("pq: connection refused"), "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PublicMessage(tt.err); got != tt.want {
				t.Errorf("PublicMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServiceErrorUnwrap(t *testing.T) {
	err := collaboratorFailure("failed to evaluate answer", errStub)
	if !errors.Is(err, ErrCollaborator) {
		t.Error("expected collaborator kind")
	}
	if !errors.Is(err, errStub) {
		t.Error("expected cause to be reachable")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("unexpected not found kind")
	}
}
