package middleware

import (
	"context"

	"github.com/google/uuid"
)

// Principal is the authenticated caller as established by Auth.
type Principal struct {
	UserID   uuid.UUID
	AccessID string
	// Subscriber reflects the token at issue time; the database stays authoritative.
	Subscriber bool
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext reports false for anonymous requests.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.UserID != uuid.Nil
}
