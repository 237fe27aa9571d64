package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/example/usermanagement/internal/core/domain"
	"github.com/example/usermanagement/internal/core/ports"
)

// DefaultAccounts are created on first start so a fresh deployment has an
// administrator to log in with.
var DefaultAccounts = []ports.CreateAccountInput{
	{
		Name:     "Administrator",
		Email:    "admin@example.com",
		Password: "admin123",
		Phone:    "(11) 99999-9999",
		Age:      intPtr(30),
		Roles:    []domain.Role{domain.RoleUser, domain.RoleAdmin},
	},
	{
		Name:     "Regular User",
		Email:    "user@example.com",
		Password: "user123",
		Phone:    "(11) 98888-8888",
		Age:      intPtr(25),
		Roles:    []domain.Role{domain.RoleUser},
	},
}

// SeedDefaults creates each of accounts that does not exist yet and
// returns how many were created. Running it twice is harmless.
func SeedDefaults(ctx context.Context, repo ports.AccountRepository, accounts ports.AccountService, seeds []ports.CreateAccountInput, log zerolog.Logger) (int, error) {
	created := 0
	for _, in := range seeds {
		exists, err := repo.ExistsByEmail(ctx, domain.NormalizeEmail(in.Email))
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", in.Email, err)
		}
		if exists {
			log.Debug().Str("email", in.Email).Msg("seed account already present")
			continue
		}

		if _, err := accounts.Create(ctx, nil, in); err != nil {
			return created, fmt.Errorf("seed %s: %w", in.Email, err)
		}
		created++
		log.Info().Str("email", in.Email).Msg("seed account created")
	}
	return created, nil
}

func intPtr(v int) *int { return &v }
