package domain

import (
	"slices"
	"strings"
	"time"
)

// Role is a privilege level an account can hold.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.IsValid()
}

// NormalizeRoles returns a sorted, de-duplicated role set that always
// contains RoleUser. Unknown roles are dropped.
func NormalizeRoles(roles ...Role) []Role {
	out := []Role{RoleUser}
	for _, r := range roles {
		if r.IsValid() && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	slices.Sort(out)
	return out
}

// Account is a registered principal. PasswordHash never leaves the process.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	Age          *int      `json:"age,omitempty"`
	Roles        []Role    `json:"roles"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasRole reports whether the account holds role.
func (a *Account) HasRole(role Role) bool {
	return slices.Contains(a.Roles, role)
}

// RoleNames returns the roles as plain strings, the shape stored in token claims.
func (a *Account) RoleNames() []string {
	names := make([]string, len(a.Roles))
	for i, r := range a.Roles {
		names[i] = string(r)
	}
	return names
}

// AccountStats summarises the account population.
type AccountStats struct {
	Total    int64 `json:"totalUsers"`
	Active   int64 `json:"activeUsers"`
	Inactive int64 `json:"inactiveUsers"`
}

// NormalizeEmail lowercases and trims an email so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
