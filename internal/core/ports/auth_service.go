package ports

import (
	"context"

	"github.com/example/usermanagement/internal/core/domain"
)

// RegisterInput carries a self-registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Age      *int
}

// AuthService authenticates callers and issues tokens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
	Register(ctx context.Context, in RegisterInput) (*domain.Account, string, error)
	Validate(ctx context.Context, rawToken string) (*domain.Account, error)
	IssueFor(ctx context.Context, email string) (string, *domain.Account, error)
	IssueForIdentity(ctx context.Context, id *domain.Identity) (string, *domain.Account, error)
}
