package services

import (
	"context"

	"github.com/SRIDEV20/AI-powered-interview-simulator/models"
)

// Principal is the authenticated caller of an interview operation.
type Principal struct {
	ID     string
	Active bool
}

type principalKey struct{}

func PrincipalFromUser(user *models.User) Principal {
	return Principal{ID: user.ID, Active: user.IsActive}
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// authorize rejects inactive principals.
func authorize(p Principal) error {
	if p.ID == "" {
		return &ServiceError{Kind: ErrForbidden, Message: "missing principal"}
	}
	if !p.Active {
		return &ServiceError{Kind: ErrForbidden, Message: "user account is inactive"}
	}
	return nil
}
