package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/example/usermanagement/internal/core/domain"
	"github.com/example/usermanagement/internal/core/ports"
	"github.com/example/usermanagement/internal/core/token"
)

// AuthService implements login, registration and token issuance.
type AuthService struct {
	repo     ports.AccountRepository
	accounts ports.AccountService
	hasher   ports.PasswordHasher
	codec    ports.TokenCodec
	limiter  ports.LoginLimiter
	log      zerolog.Logger

	// decoyOnce/decoyHash back the password check run for unknown emails,
	// so both login failures cost one hash comparison.
	decoyOnce sync.Once
	decoyHash string
}

// NewAuthService wires the authenticator. limiter may be nil, which
// disables throttling.
func NewAuthService(
	repo ports.AccountRepository,
	accounts ports.AccountService,
	hasher ports.PasswordHasher,
	codec ports.TokenCodec,
	limiter ports.LoginLimiter,
	log zerolog.Logger,
) *AuthService {
	if limiter == nil {
		limiter = noopLimiter{}
	}
	return &AuthService{
		repo:     repo,
		accounts: accounts,
		hasher:   hasher,
		codec:    codec,
		limiter:  limiter,
		log:      log,
	}
}

// Login checks email and password and returns a token embedding the
// account's roles. Unknown email, wrong password and inactive account are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	blocked, err := s.limiter.Blocked(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login limiter unavailable, continuing")
	} else if blocked {
		return "", nil, domain.ErrTooManyAttempts
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			_ = s.hasher.Compare(s.decoy(), password)
			s.recordFailure(ctx, email)
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if s.hasher.Compare(account.PasswordHash, password) != nil || !account.Active {
		s.recordFailure(ctx, email)
		return "", nil, domain.ErrInvalidCredentials
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to reset login limiter")
	}

	tok, err := s.issue(account)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Str("account_id", account.ID).Msg("login succeeded")
	return tok, account, nil
}

// decoy returns a hash produced by the configured hasher for a password no
// account has, computed on first use.
func (s *AuthService) decoy() string {
	s.decoyOnce.Do(func() {
		h, err := s.hasher.Hash("decoy-password-for-unknown-accounts")
		if err != nil {
			s.log.Warn().Err(err).Msg("decoy hash unavailable")
			return
		}
		s.decoyHash = h
	})
	return s.decoyHash
}

// Register creates a USER account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, string, error) {
	account, err := s.accounts.Create(ctx, nil, ports.CreateAccountInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Phone:    in.Phone,
		Age:      in.Age,
		Roles:    []domain.Role{domain.RoleUser},
	})
	if err != nil {
		return nil, "", err
	}

	tok, err := s.issue(account)
	if err != nil {
		return nil, "", err
	}
	return account, tok, nil
}

// Validate verifies rawToken and returns the account it currently refers to.
func (s *AuthService) Validate(ctx context.Context, rawToken string) (*domain.Account, error) {
	claims, err := s.codec.Verify(rawToken)
	if err != nil {
		s.log.Debug().Err(err).Msg("token validation failed")
		return nil, err
	}

	account, err := s.repo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.log.Debug().Msg("token validation failed: subject no longer exists")
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("validate token: %w", err)
	}
	if !account.Active {
		s.log.Debug().Str("account_id", account.ID).Msg("token validation failed: account inactive")
		return nil, fmt.Errorf("%w: account inactive", domain.ErrTokenInvalid)
	}
	return account, nil
}

// IssueFor mints a token for the account with email on behalf of an
// administrator. Unlike Login it reports a missing account explicitly.
func (s *AuthService) IssueFor(ctx context.Context, email string) (string, *domain.Account, error) {
	account, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return "", nil, err
	}

	tok, err := s.issue(account)
	if err != nil {
		return "", nil, err
	}
	return tok, account, nil
}

// IssueForIdentity mints a fresh token for the authenticated caller.
func (s *AuthService) IssueForIdentity(ctx context.Context, id *domain.Identity) (string, *domain.Account, error) {
	if id == nil {
		return "", nil, domain.ErrUnauthenticated
	}
	return s.IssueFor(ctx, id.Email)
}

func (s *AuthService) issue(account *domain.Account) (string, error) {
	tok, err := s.codec.Issue(account.Email, token.Extra{
		Roles:     account.RoleNames(),
		AccountID: account.ID,
	})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}

type noopLimiter struct{}

func (noopLimiter) Blocked(context.Context, string) (bool, error) { return false, nil }
func (noopLimiter) RecordFailure(context.Context, string) error   { return nil }
func (noopLimiter) Reset(context.Context, string) error           { return nil }
