package account

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

func NewInMemoryStore() Store {
	return &memoryStore{accounts: map[string]Account{}}
}

func (m *memoryStore) Create(ctx context.Context, a Account) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.accounts {
		if x.Email == a.Email {
			return Account{}, ErrEmailInUse
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	m.accounts[a.ID] = a
	return a, nil
}

func (m *memoryStore) GetByID(ctx context.Context, id string) (Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) GetByEmail(ctx context.Context, email string) (Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

func (m *memoryStore) Update(ctx context.Context, a Account) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[a.ID]; !ok {
		return Account{}, ErrNotFound
	}
	m.accounts[a.ID] = a
	return a, nil
}

func (m *memoryStore) List(ctx context.Context) ([]Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	sortByCreated(out)
	return out, nil
}

func (m *memoryStore) ListByRole(ctx context.Context, role Role) ([]Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Account{}
	for _, a := range m.accounts {
		if a.Role == role {
			out = append(out, a)
		}
	}
	sortByCreated(out)
	return out, nil
}

func sortByCreated(accts []Account) {
	sort.Slice(accts, func(i, j int) bool {
		if accts[i].CreatedAt.Equal(accts[j].CreatedAt) {
			return accts[i].ID < accts[j].ID
		}
		return accts[i].CreatedAt.Before(accts[j].CreatedAt)
	})
}
