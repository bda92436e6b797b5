package auth

import (
	"context"

	"github.com/google/uuid"
)

// Principal is the authenticated account making a request.
type Principal struct {
	ID       uuid.UUID
	Username string
	IsActive bool
}

type principalKey struct{}

// WithPrincipal stores the principal on the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored on the context.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
