package domain

import (
	"context"
	"slices"
)

// Identity is the caller resolved for a single request. A nil *Identity is
// the anonymous caller.
type Identity struct {
	AccountID string
	Email     string
	Name      string
	Roles     []Role
	Active    bool
}

// IdentityFromAccount snapshots the fields of the account that
// authorization decisions depend on.
func IdentityFromAccount(a *Account) *Identity {
	return &Identity{
		AccountID: a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Roles:     slices.Clone(a.Roles),
		Active:    a.Active,
	}
}

// HasRole reports whether the identity holds role. Safe on nil.
func (i *Identity) HasRole(role Role) bool {
	if i == nil {
		return false
	}
	return slices.Contains(i.Roles, role)
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored in ctx, or nil for anonymous callers.
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}
