package service

import (
	"github.com/example/usermanagement/internal/core/domain"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	Denied Decision = iota
	Allowed
)

func (d Decision) String() string {
	if d == Allowed {
		return "allowed"
	}
	return "denied"
}

// RequireRole allows an active identity holding role. A nil identity is
// always denied. Decisions are never cached; callers evaluate per operation.
func RequireRole(id *domain.Identity, role domain.Role) Decision {
	if id == nil || !id.Active || !id.HasRole(role) {
		return Denied
	}
	return Allowed
}

// RequireSelfOrRole allows an active identity acting on its own account
// (matched by email) or one that passes RequireRole.
func RequireSelfOrRole(id *domain.Identity, targetEmail string, role domain.Role) Decision {
	if id == nil || !id.Active {
		return Denied
	}
	if targetEmail != "" && domain.NormalizeEmail(targetEmail) == domain.NormalizeEmail(id.Email) {
		return Allowed
	}
	return RequireRole(id, role)
}

// authorize converts a guard decision into the error the HTTP layer maps to
// 401 or 403.
func authorize(id *domain.Identity, d Decision) error {
	if d == Allowed {
		return nil
	}
	if id == nil {
		return domain.ErrUnauthenticated
	}
	return domain.ErrAccessDenied
}
