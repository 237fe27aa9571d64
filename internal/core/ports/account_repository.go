package ports

import (
	"context"
	"time"

	"github.com/example/usermanagement/internal/core/domain"
)

// ListAccountsFilter narrows List results. Zero values mean "no filter".
type ListAccountsFilter struct {
	Active *bool  // nil = any
	Name   string // case-insensitive substring match on name
	MinAge *int   // inclusive
	MaxAge *int   // inclusive
}

// ProfileChanges is a field-scoped account write. Fields outside it, the
// password hash and roles, are never touched. A nil Active leaves the stored
// flag alone, and a nil Age or empty Phone clears the value.
type ProfileChanges struct {
	Name      string
	Email     string
	Phone     string
	Age       *int
	Active    *bool
	UpdatedAt time.Time
}

// AccountRepository is the credential store. It exclusively owns account
// records. Lookups that miss return domain.ErrAccountNotFound.
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Create atomically checks email uniqueness and inserts. A collision
	// returns a *domain.DuplicateEmailError. On success the account's ID is set.
	Create(ctx context.Context, account *domain.Account) error
	// UpdateProfile writes only the fields in changes, re-checking email
	// uniqueness when the email changed, and returns the stored account.
	UpdateProfile(ctx context.Context, id string, changes ProfileChanges) (*domain.Account, error)
	// SetPasswordHash replaces the credential and nothing else.
	SetPasswordHash(ctx context.Context, id, hash string, at time.Time) error
	SetActive(ctx context.Context, id string, active bool) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListAccountsFilter) ([]*domain.Account, error)
	// Count returns the number of accounts; a non-nil active narrows by flag.
	Count(ctx context.Context, active *bool) (int64, error)
}
