package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/usermanagement/internal/core/domain"
	"github.com/example/usermanagement/internal/core/ports"
	"github.com/example/usermanagement/internal/core/token"
)

type stubAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	nextID   int
	findErr  error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	clone.Roles = append([]domain.Role(nil), a.Roles...)
	return &clone
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return domain.NewDuplicateEmail(account.Email)
		}
	}
	r.nextID++
	account.ID = fmt.Sprintf("acc-%d", r.nextID)
	r.accounts[account.ID] = cloneAccount(account)
	return nil
}

func (r *stubAccountRepo) UpdateProfile(_ context.Context, id string, ch ports.ProfileChanges) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	for other, b := range r.accounts {
		if other != id && b.Email == ch.Email {
			return nil, domain.NewDuplicateEmail(ch.Email)
		}
	}
	a.Name, a.Email, a.Phone, a.Age, a.UpdatedAt = ch.Name, ch.Email, ch.Phone, ch.Age, ch.UpdatedAt
	if ch.Active != nil {
		a.Active = *ch.Active
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) SetPasswordHash(_ context.Context, id, hash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.PasswordHash, a.UpdatedAt = hash, at
	return nil
}

func (r *stubAccountRepo) SetActive(_ context.Context, id string, active bool) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Active = active
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *stubAccountRepo) List(_ context.Context, f ports.ListAccountsFilter) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Account
	for _, a := range r.accounts {
		if f.Active != nil && a.Active != *f.Active {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.MinAge != nil && (a.Age == nil || *a.Age < *f.MinAge) {
			continue
		}
		if f.MaxAge != nil && (a.Age == nil || *a.Age > *f.MaxAge) {
			continue
		}
		out = append(out, cloneAccount(a))
	}
	return out, nil
}

func (r *stubAccountRepo) Count(_ context.Context, active *bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.accounts {
		if active == nil || a.Active == *active {
			n++
		}
	}
	return n, nil
}

// stubHasher keeps tests fast; bcrypt is covered by the crypto package.
type stubHasher struct{}

func (stubHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }

func (stubHasher) Compare(hash, pw string) error {
	if hash != "hashed:"+pw {
		return errors.New("mismatch")
	}
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.AccountEvent
}

func (s *recordingSink) Enqueue(ev domain.AccountEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) types() []domain.AccountEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AccountEventType, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Type
	}
	return out
}

type stubLimiter struct {
	failures map[string]int
	max      int
	resets   int
}

func newStubLimiter(max int) *stubLimiter {
	return &stubLimiter{failures: make(map[string]int), max: max}
}

func (l *stubLimiter) Blocked(_ context.Context, key string) (bool, error) {
	return l.failures[key] >= l.max, nil
}

func (l *stubLimiter) RecordFailure(_ context.Context, key string) error {
	l.failures[key]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, key string) error {
	delete(l.failures, key)
	l.resets++
	return nil
}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type fixture struct {
	repo     *stubAccountRepo
	sink     *recordingSink
	clock    *fixedClock
	codec    *token.Codec
	accounts *AccountService
	auth     *AuthService
	resolver *IdentityResolver
}

func newFixture(t *testing.T, limiter ports.LoginLimiter) *fixture {
	t.Helper()

	clock := &fixedClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec, err := token.NewCodec(token.Config{Secret: "test-secret", Validity: time.Hour, Now: clock.Now})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	repo := newStubAccountRepo()
	sink := &recordingSink{}
	accounts := NewAccountService(repo, stubHasher{}, sink, DefaultPhoneRegion, zerolog.Nop())
	accounts.now = clock.Now

	return &fixture{
		repo:     repo,
		sink:     sink,
		clock:    clock,
		codec:    codec,
		accounts: accounts,
		auth:     NewAuthService(repo, accounts, stubHasher{}, codec, limiter, zerolog.Nop()),
		resolver: NewIdentityResolver(codec, repo, zerolog.Nop()),
	}
}

// mustCreate stores an account directly through the service with a trusted caller.
func (f *fixture) mustCreate(t *testing.T, email string, roles ...domain.Role) *domain.Account {
	t.Helper()
	a, err := f.accounts.Create(context.Background(), nil, ports.CreateAccountInput{
		Name:     strings.Split(email, "@")[0],
		Email:    email,
		Password: "password1",
		Roles:    roles,
	})
	if err != nil {
		t.Fatalf("create %s: %v", email, err)
	}
	return a
}

func identityOf(a *domain.Account) *domain.Identity {
	return domain.IdentityFromAccount(a)
}
