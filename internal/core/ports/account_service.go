package ports

import (
	"context"

	"github.com/example/usermanagement/internal/core/domain"
)

// CreateAccountInput carries an administrative account creation.
type CreateAccountInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Age      *int
	Roles    []domain.Role
}

// UpdateAccountInput carries a profile update. A nil Active leaves the
// flag unchanged.
type UpdateAccountInput struct {
	Name   string
	Email  string
	Phone  string
	Age    *int
	Active *bool
}

// AccountService manages account records on behalf of the HTTP layer.
type AccountService interface {
	Create(ctx context.Context, actor *domain.Identity, in CreateAccountInput) (*domain.Account, error)
	Get(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, filter ListAccountsFilter) ([]*domain.Account, error)
	Update(ctx context.Context, actor *domain.Identity, id string, in UpdateAccountInput) (*domain.Account, error)
	ChangePassword(ctx context.Context, actor *domain.Identity, id, current, next string) error
	Activate(ctx context.Context, actor *domain.Identity, id string) (*domain.Account, error)
	Deactivate(ctx context.Context, actor *domain.Identity, id string) (*domain.Account, error)
	Delete(ctx context.Context, actor *domain.Identity, id string) error
	Stats(ctx context.Context) (domain.AccountStats, error)
}
