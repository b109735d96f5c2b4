package wallet

import (
	"context"
	"sync"

	"github.com/kobopay/kobopay/internal/apperr"
)

// MemoryRepository is an in-memory wallet store for tests. It enforces the
// same uniqueness rules as the PostgreSQL schema: one wallet per user, one
// wallet per account number.
type MemoryRepository struct {
	mu       sync.RWMutex
	byID     map[string]Wallet
	byUser   map[string]string
	byNumber map[string]string
}

// NewMemoryRepository constructs an empty in-memory wallet store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:     make(map[string]Wallet),
		byUser:   make(map[string]string),
		byNumber: make(map[string]string),
	}
}

// Create inserts a wallet, failing on user or account-number duplication.
func (r *MemoryRepository) Create(_ context.Context, w Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byNumber[w.AccountNumber]; exists {
		return ErrAccountNumberTaken
	}
	if _, exists := r.byUser[w.UserID]; exists {
		return apperr.New(apperr.KindConflict, "user already owns a wallet")
	}
	r.byID[w.ID] = w
	r.byUser[w.UserID] = w.ID
	r.byNumber[w.AccountNumber] = w.ID
	return nil
}

// Delete removes a wallet. Used to unwind a provisioning unit in tests.
func (r *MemoryRepository) Delete(_ context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	delete(r.byUser, w.UserID)
	delete(r.byNumber, w.AccountNumber)
}

func (r *MemoryRepository) GetByUserID(_ context.Context, userID string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUser[userID]
	if !ok {
		return Wallet{}, apperr.New(apperr.KindNotFound, "wallet not found")
	}
	return r.byID[id], nil
}

func (r *MemoryRepository) GetByAccountNumber(_ context.Context, accountNumber string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byNumber[accountNumber]
	if !ok {
		return Wallet{}, apperr.New(apperr.KindNotFound, "wallet not found")
	}
	return r.byID[id], nil
}

func (r *MemoryRepository) ExistsAccountNumber(_ context.Context, accountNumber string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.byNumber[accountNumber]
	return exists, nil
}

// replace swaps a wallet under the store lock. Only the in-memory engine uses
// it, with its own serialization already held.
func (r *MemoryRepository) replace(w Wallet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[w.ID] = w
}
