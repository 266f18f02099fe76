package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const principalKey contextKey = "auth_principal"

// Principal is the authenticated caller resolved from a session token.
type Principal struct {
	AccountID uuid.UUID
	Username  string
	Role      string
}

// Roles recognized by the platform.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// IsClinician reports whether the principal may act on any patient's data.
func (p Principal) IsClinician() bool {
	return p.Role == RoleDoctor || p.Role == RoleAdmin
}

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the authenticated principal. The second
// return value is false when the request was not authenticated.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
