package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/usermanagement/internal/core/domain"
	"github.com/example/usermanagement/internal/core/ports"
)

const minPasswordLength = 6

// AccountService owns the account lifecycle: creation, profile updates,
// activation, credential changes and deletion.
type AccountService struct {
	repo        ports.AccountRepository
	hasher      ports.PasswordHasher
	events      ports.AccountEventSink
	phoneRegion string
	now         func() time.Time
	log         zerolog.Logger
}

// NewAccountService wires the service. events may be nil.
func NewAccountService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	events ports.AccountEventSink,
	phoneRegion string,
	log zerolog.Logger,
) *AccountService {
	if events == nil {
		events = discardSink{}
	}
	if phoneRegion == "" {
		phoneRegion = DefaultPhoneRegion
	}
	return &AccountService{
		repo:        repo,
		hasher:      hasher,
		events:      events,
		phoneRegion: phoneRegion,
		now:         time.Now,
		log:         log,
	}
}

// Create registers a new account. A nil actor is a trusted internal caller
// (self-registration or seeding); otherwise the actor must be an ADMIN.
func (s *AccountService) Create(ctx context.Context, actor *domain.Identity, in ports.CreateAccountInput) (*domain.Account, error) {
	if actor != nil {
		if err := authorize(actor, RequireRole(actor, domain.RoleAdmin)); err != nil {
			return nil, err
		}
	}

	email := domain.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", domain.ErrInvalidInput)
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	if err := checkAge(in.Age); err != nil {
		return nil, err
	}
	phone, err := normalizePhone(in.Phone, s.phoneRegion)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	if exists {
		return nil, domain.NewDuplicateEmail(email)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	account := &domain.Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        phone,
		Age:          in.Age,
		Roles:        domain.NormalizeRoles(in.Roles...),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The repository re-checks uniqueness atomically; the lookup above only
	// spares a hash computation in the common case.
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", account.ID).Strs("roles", account.RoleNames()).Msg("account created")
	s.emit(domain.EventAccountCreated, account, actor)
	return account, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *AccountService) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
}

// List returns accounts matching filter.
func (s *AccountService) List(ctx context.Context, filter ports.ListAccountsFilter) ([]*domain.Account, error) {
	if filter.MinAge != nil && filter.MaxAge != nil && *filter.MinAge > *filter.MaxAge {
		return nil, fmt.Errorf("%w: minAge must not exceed maxAge", domain.ErrInvalidInput)
	}
	filter.Name = strings.TrimSpace(filter.Name)
	return s.repo.List(ctx, filter)
}

// Update replaces the profile of account id. The actor must own the
// account or be an ADMIN, and only an ADMIN may flip the active flag.
func (s *AccountService) Update(ctx context.Context, actor *domain.Identity, id string, in ports.UpdateAccountInput) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, RequireSelfOrRole(actor, account.Email, domain.RoleAdmin)); err != nil {
		return nil, err
	}

	activeChanged := in.Active != nil && *in.Active != account.Active
	if activeChanged {
		if err := authorize(actor, RequireRole(actor, domain.RoleAdmin)); err != nil {
			return nil, err
		}
	}

	email := domain.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", domain.ErrInvalidInput)
	}
	if err := checkAge(in.Age); err != nil {
		return nil, err
	}
	phone, err := normalizePhone(in.Phone, s.phoneRegion)
	if err != nil {
		return nil, err
	}

	if email != account.Email {
		exists, err := s.repo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("update account: %w", err)
		}
		if exists {
			return nil, domain.NewDuplicateEmail(email)
		}
	}

	changes := ports.ProfileChanges{
		Name:      name,
		Email:     email,
		Phone:     phone,
		Age:       in.Age,
		UpdatedAt: s.now().UTC(),
	}
	// The flag is only written when this caller changes it, so a concurrent
	// Deactivate is never overwritten by the value read above.
	if activeChanged {
		changes.Active = in.Active
	}

	updated, err := s.repo.UpdateProfile(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	s.emit(domain.EventAccountUpdated, updated, actor)
	if activeChanged {
		s.emit(activationEvent(updated.Active), updated, actor)
	}
	return updated, nil
}

// ChangePassword replaces the credential of account id. Owners must prove
// the current password; an ADMIN acting on another account does not.
func (s *AccountService) ChangePassword(ctx context.Context, actor *domain.Identity, id, current, next string) error {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(actor, RequireSelfOrRole(actor, account.Email, domain.RoleAdmin)); err != nil {
		return err
	}
	if err := checkPassword(next); err != nil {
		return err
	}

	if domain.NormalizeEmail(actor.Email) == account.Email {
		if s.hasher.Compare(account.PasswordHash, current) != nil {
			return domain.ErrInvalidCredentials
		}
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.SetPasswordHash(ctx, account.ID, hash, s.now().UTC()); err != nil {
		return err
	}

	s.emit(domain.EventAccountPasswordChanged, account, actor)
	return nil
}

func (s *AccountService) Activate(ctx context.Context, actor *domain.Identity, id string) (*domain.Account, error) {
	return s.setActive(ctx, actor, id, true)
}

func (s *AccountService) Deactivate(ctx context.Context, actor *domain.Identity, id string) (*domain.Account, error) {
	return s.setActive(ctx, actor, id, false)
}

func (s *AccountService) setActive(ctx context.Context, actor *domain.Identity, id string, active bool) (*domain.Account, error) {
	if err := authorize(actor, RequireRole(actor, domain.RoleAdmin)); err != nil {
		return nil, err
	}

	account, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", id).Bool("active", active).Msg("account activation changed")
	s.emit(activationEvent(active), account, actor)
	return account, nil
}

// Delete permanently removes account id. There is no tombstone.
func (s *AccountService) Delete(ctx context.Context, actor *domain.Identity, id string) error {
	if err := authorize(actor, RequireRole(actor, domain.RoleAdmin)); err != nil {
		return err
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("account_id", id).Msg("account deleted")
	s.emit(domain.EventAccountDeleted, account, actor)
	return nil
}

// Stats counts active and inactive accounts.
func (s *AccountService) Stats(ctx context.Context) (domain.AccountStats, error) {
	active, inactive := true, false

	activeCount, err := s.repo.Count(ctx, &active)
	if err != nil {
		return domain.AccountStats{}, fmt.Errorf("count active accounts: %w", err)
	}
	inactiveCount, err := s.repo.Count(ctx, &inactive)
	if err != nil {
		return domain.AccountStats{}, fmt.Errorf("count inactive accounts: %w", err)
	}

	return domain.AccountStats{
		Total:    activeCount + inactiveCount,
		Active:   activeCount,
		Inactive: inactiveCount,
	}, nil
}

func (s *AccountService) emit(t domain.AccountEventType, account *domain.Account, actor *domain.Identity) {
	ev := domain.AccountEvent{
		Type:       t,
		AccountID:  account.ID,
		Email:      account.Email,
		OccurredAt: s.now().UTC(),
	}
	if actor != nil {
		ev.ActorEmail = actor.Email
	}
	s.events.Enqueue(ev)
}

func activationEvent(active bool) domain.AccountEventType {
	if active {
		return domain.EventAccountActivated
	}
	return domain.EventAccountDeactivated
}

func checkPassword(pw string) error {
	if len(pw) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	return nil
}

func checkAge(age *int) error {
	if age != nil && (*age < 0 || *age > 150) {
		return fmt.Errorf("%w: age must be between 0 and 150", domain.ErrInvalidInput)
	}
	return nil
}

type discardSink struct{}

func (discardSink) Enqueue(domain.AccountEvent) {}
