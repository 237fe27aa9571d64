// Package memory is a process-local credential store used for development,
// the offline CLI and tests. State is lost on exit.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/usermanagement/internal/core/domain"
	"github.com/example/usermanagement/internal/core/ports"
)

// AccountRepository keeps accounts in a map guarded by a single mutex, which
// also makes Create's check-and-insert atomic.
type AccountRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.Account
	byEmail map[string]string
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:    make(map[string]*domain.Account),
		byEmail: make(map[string]string),
	}
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func (r *AccountRepository) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return clone(a), nil
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *AccountRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[account.Email]; taken {
		return domain.NewDuplicateEmail(account.Email)
	}

	account.ID = uuid.NewString()
	r.byID[account.ID] = clone(account)
	r.byEmail[account.Email] = account.ID
	return nil
}

func (r *AccountRepository) UpdateProfile(_ context.Context, id string, changes ports.ProfileChanges) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if changes.Email != a.Email {
		if _, taken := r.byEmail[changes.Email]; taken {
			return nil, domain.NewDuplicateEmail(changes.Email)
		}
		delete(r.byEmail, a.Email)
		r.byEmail[changes.Email] = id
	}

	a.Name = changes.Name
	a.Email = changes.Email
	a.Phone = changes.Phone
	a.Age = nil
	if changes.Age != nil {
		age := *changes.Age
		a.Age = &age
	}
	if changes.Active != nil {
		a.Active = *changes.Active
	}
	a.UpdatedAt = changes.UpdatedAt
	return clone(a), nil
}

func (r *AccountRepository) SetPasswordHash(_ context.Context, id, hash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.PasswordHash = hash
	a.UpdatedAt = at
	return nil
}

func (r *AccountRepository) SetActive(_ context.Context, id string, active bool) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Active = active
	a.UpdatedAt = time.Now().UTC()
	return clone(a), nil
}

func (r *AccountRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.byEmail, a.Email)
	delete(r.byID, id)
	return nil
}

// List returns matching accounts ordered by creation time.
func (r *AccountRepository) List(_ context.Context, f ports.ListAccountsFilter) ([]*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name := strings.ToLower(f.Name)
	out := make([]*domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		if f.Active != nil && a.Active != *f.Active {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(a.Name), name) {
			continue
		}
		if (f.MinAge != nil || f.MaxAge != nil) && a.Age == nil {
			continue
		}
		if f.MinAge != nil && *a.Age < *f.MinAge {
			continue
		}
		if f.MaxAge != nil && *a.Age > *f.MaxAge {
			continue
		}
		out = append(out, clone(a))
	}

	slices.SortFunc(out, func(a, b *domain.Account) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Email, b.Email)
	})
	return out, nil
}

func (r *AccountRepository) Count(_ context.Context, active *bool) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if active == nil {
		return int64(len(r.byID)), nil
	}
	var n int64
	for _, a := range r.byID {
		if a.Active == *active {
			n++
		}
	}
	return n, nil
}

func clone(a *domain.Account) *domain.Account {
	c := *a
	c.Roles = slices.Clone(a.Roles)
	if a.Age != nil {
		age := *a.Age
		c.Age = &age
	}
	return &c
}
