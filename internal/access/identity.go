// Package access decides who may call what. The authentication middleware
// turns a bearer token into an Identity stored on the request context, and
// the policy functions check that identity before any privileged operation
// touches storage.
package access

import (
	"context"
	"net/http"

	apperrors "dancebook/pkg/errors"
	"dancebook/pkg/model"
)

// Identity is the authenticated caller of one request.
type Identity struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

func IdentityOf(account *model.Account) *Identity {
	if account == nil {
		return nil
	}
	return &Identity{
		AccountID: account.ID,
		Username:  account.Username,
		Role:      account.Role,
	}
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// CallerID names the caller of r for request-scoped caches, "" when anonymous.
func CallerID(r *http.Request) string {
	if id := FromContext(r.Context()); id != nil {
		return id.AccountID
	}
	return ""
}

// FromContext returns nil for anonymous requests.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}

func RequireAuthenticated(id *Identity) error {
	if id == nil || id.AccountID == "" {
		return apperrors.Unauthorized("Authentication required")
	}
	return nil
}

func RequireRole(id *Identity, role string) error {
	if err := RequireAuthenticated(id); err != nil {
		return err
	}
	if id.Role != role {
		return apperrors.Forbidden("Requires the " + role + " role")
	}
	return nil
}

func RequireOrganiser(id *Identity) error {
	return RequireRole(id, model.RoleOrganiser)
}
