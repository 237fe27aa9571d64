package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/usermanagement/internal/core/domain"
	"github.com/example/usermanagement/internal/core/ports"
)

func TestAuthService_Register_Success(t *testing.T) {
	f := newFixture(t, nil)

	account, tok, err := f.auth.Register(context.Background(), ports.RegisterInput{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "pass123",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if account.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", account.Email)
	}
	if account.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if !slices.Equal(account.Roles, []domain.Role{domain.RoleUser}) {
		t.Fatalf("unexpected roles: %v", account.Roles)
	}
	if !account.Active {
		t.Fatalf("expected new account to be active")
	}

	claims, err := f.codec.Verify(tok)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Subject != "alice@example.com" || claims.UserID != account.ID {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newFixture(t, nil)
	in := ports.RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "pass123"}

	if _, _, err := f.auth.Register(context.Background(), in); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	in.Email = "BOB@example.com"
	_, _, err := f.auth.Register(context.Background(), in)
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	var dup *domain.DuplicateEmailError
	if !errors.As(err, &dup) || dup.Email != "bob@example.com" {
		t.Fatalf("expected DuplicateEmailError for bob@example.com, got %v", err)
	}
	if n, _ := f.repo.Count(context.Background(), nil); n != 1 {
		t.Fatalf("expected store to hold 1 account, got %d", n)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newFixture(t, nil)

	cases := []ports.RegisterInput{
		{Name: "", Email: "x@example.com", Password: "pass123"},
		{Name: "X", Email: "", Password: "pass123"},
		{Name: "X", Email: "x@example.com", Password: "123"},
		{Name: "X", Email: "x@example.com", Password: "pass123", Phone: "abc"},
	}
	for _, in := range cases {
		if _, _, err := f.auth.Register(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}
}

func TestAuthService_Login_SeededAdmin(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := SeedDefaults(context.Background(), f.repo, f.accounts, DefaultAccounts, f.auth.log); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	tok, account, err := f.auth.Login(context.Background(), "admin@example.com", "admin123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if account.Email != "admin@example.com" {
		t.Fatalf("unexpected account: %+v", account)
	}

	claims, err := f.codec.Verify(tok)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if !slices.Contains(claims.Roles, "ADMIN") || !slices.Contains(claims.Roles, "USER") {
		t.Fatalf("expected USER and ADMIN in roles claim, got %v", claims.Roles)
	}
	if claims.Subject != "admin@example.com" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	f := newFixture(t, nil)
	a := f.mustCreate(t, "dave@example.com")
	if _, err := f.repo.SetActive(context.Background(), f.mustCreate(t, "eve@example.com").ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", a.Email, "badpass"},
		{"unknown email", "ghost@example.com", "password1"},
		{"inactive account", "eve@example.com", "password1"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.auth.Login(context.Background(), tc.email, tc.password)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	limiter := newStubLimiter(3)
	f := newFixture(t, limiter)
	f.mustCreate(t, "frank@example.com")

	for i := 0; i < 3; i++ {
		if _, _, err := f.auth.Login(context.Background(), "frank@example.com", "nope"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	if _, _, err := f.auth.Login(context.Background(), "frank@example.com", "password1"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	limiter.failures = map[string]int{"frank@example.com": 2}
	if _, _, err := f.auth.Login(context.Background(), "frank@example.com", "password1"); err != nil {
		t.Fatalf("expected login to succeed below the limit, got %v", err)
	}
	if limiter.resets != 1 || limiter.failures["frank@example.com"] != 0 {
		t.Fatalf("expected success to reset the counter")
	}
}

func TestAuthService_Validate_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	f.mustCreate(t, "grace@example.com")
	tok, _, err := f.auth.Login(context.Background(), "grace@example.com", "password1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		account, err := f.auth.Validate(context.Background(), tok)
		if err != nil {
			t.Fatalf("validate #%d failed: %v", i, err)
		}
		if account.Email != "grace@example.com" {
			t.Fatalf("unexpected account %q", account.Email)
		}
	}
	if n, _ := f.repo.Count(context.Background(), nil); n != 1 {
		t.Fatalf("validate must not change the store, found %d accounts", n)
	}
}

func TestAuthService_Validate_Rejects(t *testing.T) {
	f := newFixture(t, nil)
	a := f.mustCreate(t, "henry@example.com")
	tok, _, err := f.auth.Login(context.Background(), a.Email, "password1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := f.auth.Validate(context.Background(), "garbage"); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}

	if _, err := f.repo.SetActive(context.Background(), a.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := f.auth.Validate(context.Background(), tok); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected inactive account to invalidate token, got %v", err)
	}

	if err := f.repo.Delete(context.Background(), a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.auth.Validate(context.Background(), tok); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected deleted account to invalidate token, got %v", err)
	}

	f.clock.now = f.clock.now.Add(2 * time.Hour)
	if _, err := f.auth.Validate(context.Background(), tok); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthService_IssueFor(t *testing.T) {
	f := newFixture(t, nil)
	a := f.mustCreate(t, "ivy@example.com", domain.RoleAdmin)

	tok, account, err := f.auth.IssueFor(context.Background(), "IVY@example.com")
	if err != nil {
		t.Fatalf("IssueFor failed: %v", err)
	}
	if account.ID != a.ID {
		t.Fatalf("unexpected account %+v", account)
	}
	if _, err := f.codec.Verify(tok); err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}

	if _, _, err := f.auth.IssueFor(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	if _, _, err := f.auth.IssueForIdentity(context.Background(), nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, got, err := f.auth.IssueForIdentity(context.Background(), identityOf(a)); err != nil || got.ID != a.ID {
		t.Fatalf("IssueForIdentity: %v %+v", err, got)
	}
}

// countingHasher records how many comparisons Login performs.
type countingHasher struct {
	stubHasher
	hashes   int
	compares int
}

func (h *countingHasher) Hash(pw string) (string, error) {
	h.hashes++
	return h.stubHasher.Hash(pw)
}

func (h *countingHasher) Compare(hash, pw string) error {
	h.compares++
	return h.stubHasher.Compare(hash, pw)
}

func TestAuthService_Login_UnknownEmailStillComparesPassword(t *testing.T) {
	f := newFixture(t, nil)
	f.mustCreate(t, "frank@example.com")

	hasher := &countingHasher{}
	auth := NewAuthService(f.repo, f.accounts, hasher, f.codec, nil, zerolog.Nop())

	for i := 0; i < 2; i++ {
		_, _, err := auth.Login(context.Background(), "ghost@example.com", "password1")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}
	if hasher.compares != 2 {
		t.Fatalf("unknown email ran %d comparisons, want 2", hasher.compares)
	}
	if hasher.hashes != 1 {
		t.Fatalf("decoy hash computed %d times, want 1", hasher.hashes)
	}

	_, _, err := auth.Login(context.Background(), "frank@example.com", "badpass")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if hasher.compares != 3 {
		t.Fatalf("wrong password ran %d total comparisons, want 3", hasher.compares)
	}
}
