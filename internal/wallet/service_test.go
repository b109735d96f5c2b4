package wallet

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kobopay/kobopay/internal/ledger"
	"github.com/kobopay/kobopay/internal/logging"
)

func newTestService(t *testing.T) (*Service, *MemoryRepository, Wallet) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	wallets := NewMemoryRepository()
	entries := ledger.NewMemoryStore()
	w := Wallet{
		ID:            "wallet-1",
		UserID:        "user-1",
		Balance:       decimal.RequireFromString("25.00"),
		AccountNumber: "9370000001",
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, wallets.Create(context.Background(), w))

	engine := NewMemoryEngine(wallets, entries)
	svc := NewService(wallets, engine, entries, cache, time.Minute, nil, logging.Discard())
	return svc, wallets, w
}

func TestBalanceServedFromCache(t *testing.T) {
	svc, wallets, w := newTestService(t)
	ctx := context.Background()

	balance, err := svc.Balance(ctx, w.UserID)
	require.NoError(t, err)
	require.Equal(t, "25.00", balance.StringFixed(2))

	// Change the stored balance behind the service's back. The cached value
	// must keep winning until a mutation invalidates it.
	w.Balance = decimal.RequireFromString("999.00")
	wallets.replace(w)

	balance, err = svc.Balance(ctx, w.UserID)
	require.NoError(t, err)
	require.Equal(t, "25.00", balance.StringFixed(2))
}

func TestMutationsInvalidateCachedBalance(t *testing.T) {
	svc, _, w := newTestService(t)
	ctx := context.Background()

	balance, err := svc.Balance(ctx, w.UserID)
	require.NoError(t, err)
	require.Equal(t, "25.00", balance.StringFixed(2))

	entry, err := svc.Fund(ctx, w.AccountNumber, decimal.RequireFromString("75.00"))
	require.NoError(t, err)
	require.Equal(t, ledger.TypeFund, entry.Type)

	balance, err = svc.Balance(ctx, w.UserID)
	require.NoError(t, err)
	require.Equal(t, "100.00", balance.StringFixed(2))

	_, err = svc.Deduct(ctx, w.UserID, decimal.RequireFromString("40.00"))
	require.NoError(t, err)

	balance, err = svc.Balance(ctx, w.UserID)
	require.NoError(t, err)
	require.Equal(t, "60.00", balance.StringFixed(2))
}

func TestEntriesListsMostRecentFirst(t *testing.T) {
	svc, _, w := newTestService(t)
	ctx := context.Background()

	_, err := svc.Fund(ctx, w.AccountNumber, decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	_, err = svc.Deduct(ctx, w.UserID, decimal.RequireFromString("5.00"))
	require.NoError(t, err)

	entries, err := svc.Entries(ctx, w.UserID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}
