package auth

import (
	"context"
	"net/http"

	"github.com/hongminglow/lab-portal/internal/apperr"
	"github.com/hongminglow/lab-portal/internal/http/respond"
	"github.com/hongminglow/lab-portal/internal/models"
)

// Identity is the authenticated subject of a request.
type Identity struct {
	UserID int64
	Role   models.Role
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached by the gate, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// RequireRole checks the request identity against min. On failure it writes
// the rejection (401 without identity, 403 below min) and returns false.
func RequireRole(w http.ResponseWriter, r *http.Request, min models.Role) (Identity, bool) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, apperr.MissingToken, "authentication required")
		return Identity{}, false
	}
	if !id.Role.AtLeast(min) {
		respond.Error(w, apperr.InsufficientRole, min.String()+" role required")
		return Identity{}, false
	}
	return id, true
}
