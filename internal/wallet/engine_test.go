package wallet

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kobopay/kobopay/internal/apperr"
	"github.com/kobopay/kobopay/internal/ledger"
)

func newTestEngine(t *testing.T, balance string) (*MemoryEngine, *ledger.MemoryStore, Wallet) {
	t.Helper()
	wallets := NewMemoryRepository()
	entries := ledger.NewMemoryStore()
	w := Wallet{
		ID:            "wallet-1",
		UserID:        "user-1",
		Balance:       decimal.RequireFromString(balance),
		AccountNumber: "9371234567",
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if err := wallets.Create(context.Background(), w); err != nil {
		t.Fatalf("seed wallet: %v", err)
	}
	return NewMemoryEngine(wallets, entries), entries, w
}

func TestFundThenDeductConservesBalance(t *testing.T) {
	engine, entries, w := newTestEngine(t, "0.00")
	ctx := context.Background()

	if _, err := engine.Fund(ctx, w.AccountNumber, decimal.RequireFromString("150.25"), "deposit"); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if _, err := engine.Deduct(ctx, w.UserID, decimal.RequireFromString("50.25"), "purchase"); err != nil {
		t.Fatalf("deduct: %v", err)
	}

	balance, err := engine.Balance(ctx, w.UserID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got := balance.StringFixed(2); got != "100.00" {
		t.Fatalf("expected balance 100.00, got %s", got)
	}
	if got := len(entries.All()); got != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", got)
	}
}

func TestConcurrentFundsAllLand(t *testing.T) {
	engine, entries, w := newTestEngine(t, "0.00")
	ctx := context.Background()

	const workers = 32
	amount := decimal.RequireFromString("5.00")

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Fund(ctx, w.AccountNumber, amount, "deposit")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("fund: %v", err)
		}
	}

	balance, err := engine.Balance(ctx, w.UserID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	want := amount.Mul(decimal.NewFromInt(workers))
	if !balance.Equal(want) {
		t.Fatalf("expected balance %s, got %s", want, balance)
	}

	recorded := entries.All()
	if len(recorded) != workers {
		t.Fatalf("expected %d ledger entries, got %d", workers, len(recorded))
	}
	for _, e := range recorded {
		if e.Status != ledger.StatusSuccess || e.Type != ledger.TypeFund {
			t.Fatalf("unexpected entry %+v", e)
		}
	}
}

func TestDeductInsufficientLeavesStateUntouched(t *testing.T) {
	engine, entries, w := newTestEngine(t, "10.00")
	ctx := context.Background()

	_, err := engine.Deduct(ctx, w.UserID, decimal.RequireFromString("10.01"), "purchase")
	if !apperr.IsKind(err, apperr.KindInsufficientFunds) {
		t.Fatalf("expected insufficient_funds, got %v", err)
	}

	balance, err := engine.Balance(ctx, w.UserID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got := balance.StringFixed(2); got != "10.00" {
		t.Fatalf("expected balance unchanged at 10.00, got %s", got)
	}
	if got := len(entries.All()); got != 0 {
		t.Fatalf("expected no ledger entries, got %d", got)
	}
}

func TestAmountValidation(t *testing.T) {
	engine, _, w := newTestEngine(t, "100.00")
	ctx := context.Background()

	cases := map[string]string{
		"zero":           "0.00",
		"negative":       "-5.00",
		"sub cent scale": "1.005",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			amount := decimal.RequireFromString(raw)
			if _, err := engine.Fund(ctx, w.AccountNumber, amount, ""); !apperr.IsKind(err, apperr.KindInvalidAmount) {
				t.Fatalf("fund: expected invalid_amount, got %v", err)
			}
			if _, err := engine.Deduct(ctx, w.UserID, amount, ""); !apperr.IsKind(err, apperr.KindInvalidAmount) {
				t.Fatalf("deduct: expected invalid_amount, got %v", err)
			}
		})
	}
}

func TestMutationsAgainstUnknownWallet(t *testing.T) {
	engine, _, _ := newTestEngine(t, "0.00")
	ctx := context.Background()
	amount := decimal.RequireFromString("5.00")

	if _, err := engine.Fund(ctx, "9379999999", amount, ""); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("fund: expected not_found, got %v", err)
	}
	if _, err := engine.Deduct(ctx, "nobody", amount, ""); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("deduct: expected not_found, got %v", err)
	}
}
