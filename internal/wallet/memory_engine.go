package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kobopay/kobopay/internal/apperr"
	"github.com/kobopay/kobopay/internal/ledger"
)

// MemoryEngine implements Engine against the in-memory stores. A single mutex
// serializes all mutations, which is coarser than the per-row locking of the
// PostgreSQL engine but observably equivalent for tests.
type MemoryEngine struct {
	mu      chan struct{}
	wallets *MemoryRepository
	entries *ledger.MemoryStore
}

// NewMemoryEngine builds an engine over the given in-memory stores.
func NewMemoryEngine(wallets *MemoryRepository, entries *ledger.MemoryStore) *MemoryEngine {
	mu := make(chan struct{}, 1)
	mu <- struct{}{}
	return &MemoryEngine{mu: mu, wallets: wallets, entries: entries}
}

// lock acquires the engine mutex, honoring context cancellation the way a
// blocked row lock would.
func (e *MemoryEngine) lock(ctx context.Context) error {
	select {
	case <-e.mu:
		return nil
	case <-ctx.Done():
		return apperr.Wrap(apperr.KindAborted, "lock wallet", ctx.Err())
	}
}

func (e *MemoryEngine) unlock() { e.mu <- struct{}{} }

func (e *MemoryEngine) Fund(ctx context.Context, accountNumber string, amount decimal.Decimal, description string) (ledger.Entry, error) {
	if err := validateAmount(amount); err != nil {
		return ledger.Entry{}, err
	}
	if err := e.lock(ctx); err != nil {
		return ledger.Entry{}, err
	}
	defer e.unlock()

	w, err := e.wallets.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return ledger.Entry{}, err
	}
	w.Balance = w.Balance.Add(amount)
	w.UpdatedAt = time.Now().UTC()
	e.wallets.replace(w)
	return e.append(ctx, w, ledger.TypeFund, amount, description)
}

func (e *MemoryEngine) Deduct(ctx context.Context, userID string, amount decimal.Decimal, description string) (ledger.Entry, error) {
	if err := validateAmount(amount); err != nil {
		return ledger.Entry{}, err
	}
	if err := e.lock(ctx); err != nil {
		return ledger.Entry{}, err
	}
	defer e.unlock()

	w, err := e.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return ledger.Entry{}, err
	}
	if w.Balance.LessThan(amount) {
		return ledger.Entry{}, apperr.New(apperr.KindInsufficientFunds, "insufficient balance")
	}
	w.Balance = w.Balance.Sub(amount)
	w.UpdatedAt = time.Now().UTC()
	e.wallets.replace(w)
	return e.append(ctx, w, ledger.TypeDeduct, amount, description)
}

func (e *MemoryEngine) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	w, err := e.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return w.Balance, nil
}

func (e *MemoryEngine) append(ctx context.Context, w Wallet, entryType ledger.EntryType, amount decimal.Decimal, description string) (ledger.Entry, error) {
	entry := ledger.Entry{
		ID:          uuid.NewString(),
		WalletID:    w.ID,
		UserID:      w.UserID,
		Type:        entryType,
		Amount:      amount,
		Status:      ledger.StatusSuccess,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.entries.Append(ctx, entry); err != nil {
		return ledger.Entry{}, apperr.Internal(err)
	}
	return entry, nil
}
