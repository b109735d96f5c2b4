package identity

import (
	"context"
	"sync"
	"time"

	"github.com/kobopay/kobopay/internal/apperr"
	"github.com/kobopay/kobopay/internal/wallet"
)

type memoryRepository struct {
	mu      sync.RWMutex
	users   map[string]User
	byEmail map[string]string
	wallets *wallet.MemoryRepository
}

// NewMemoryRepository builds an in-memory user store for testing, sharing the
// given wallet store so provisioning stays all-or-nothing.
func NewMemoryRepository(wallets *wallet.MemoryRepository) Repository {
	return &memoryRepository{
		users:   make(map[string]User),
		byEmail: make(map[string]string),
		wallets: wallets,
	}
}

func (r *memoryRepository) CreateWithWallet(ctx context.Context, user User, w wallet.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return apperr.New(apperr.KindConflict, "user with this email already exists")
	}
	// Wallet first: if the account number collides, no user is left behind.
	if err := r.wallets.Create(ctx, w); err != nil {
		return err
	}
	r.users[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return User{}, apperr.New(apperr.KindNotFound, "user not found")
	}
	return r.users[id], nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, apperr.New(apperr.KindNotFound, "user not found")
	}
	return user, nil
}

func (r *memoryRepository) UpdateProfile(_ context.Context, id string, update ProfileUpdate) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, apperr.New(apperr.KindNotFound, "user not found")
	}
	if update.Email != nil && *update.Email != user.Email {
		if _, exists := r.byEmail[*update.Email]; exists {
			return User{}, apperr.New(apperr.KindConflict, "user with this email already exists")
		}
		delete(r.byEmail, user.Email)
		user.Email = *update.Email
		r.byEmail[user.Email] = user.ID
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return user, nil
}
