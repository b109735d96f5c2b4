package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kobopay/kobopay/internal/apperr"
	"github.com/kobopay/kobopay/internal/ledger"
	"github.com/kobopay/kobopay/internal/logging"
	"github.com/kobopay/kobopay/internal/wallet"
)

type failingProvider struct{ err error }

func (p failingProvider) Purchase(context.Context, PurchaseInput) (PurchaseReceipt, error) {
	return PurchaseReceipt{}, p.err
}

type countingProvider struct{ calls int }

func (p *countingProvider) Purchase(context.Context, PurchaseInput) (PurchaseReceipt, error) {
	p.calls++
	return PurchaseReceipt{Reference: "ref-1", Status: "approved"}, nil
}

type failingRepository struct{ err error }

func (r failingRepository) Create(context.Context, BillPayment) error {
	return r.err
}

func (r failingRepository) ListByUser(context.Context, string, int) ([]BillPayment, error) {
	return nil, nil
}

func newTestBilling(t *testing.T, balance string, provider Provider, repo Repository) (*Service, *wallet.Service, *ledger.MemoryStore, wallet.Wallet) {
	t.Helper()
	wallets := wallet.NewMemoryRepository()
	entries := ledger.NewMemoryStore()
	w := wallet.Wallet{
		ID:            "wallet-1",
		UserID:        "user-1",
		Balance:       decimal.RequireFromString(balance),
		AccountNumber: "9370000001",
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, wallets.Create(context.Background(), w))

	engine := wallet.NewMemoryEngine(wallets, entries)
	walletSvc := wallet.NewService(wallets, engine, entries, nil, 0, nil, logging.Discard())
	if repo == nil {
		repo = NewMemoryRepository()
	}
	svc := NewService(walletSvc, repo, provider, nil, logging.Discard())
	return svc, walletSvc, entries, w
}

func TestPayDebitsWalletAndRecordsPayment(t *testing.T) {
	svc, walletSvc, _, w := newTestBilling(t, "100.00", nil, nil)
	ctx := context.Background()

	payment, err := svc.Pay(ctx, PayInput{
		UserID:   w.UserID,
		Type:     TypeAirtime,
		Customer: "08030000000",
		Amount:   decimal.RequireFromString("40.00"),
	})
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, payment.Status)
	require.NotEmpty(t, payment.Reference)

	balance, err := walletSvc.Balance(ctx, w.UserID)
	require.NoError(t, err)
	require.Equal(t, "60.00", balance.StringFixed(2))

	history, err := svc.History(ctx, w.UserID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, payment.ID, history[0].ID)
}

func TestPayInsufficientFundsRecordsFailedPayment(t *testing.T) {
	svc, walletSvc, _, w := newTestBilling(t, "10.00", nil, nil)
	ctx := context.Background()

	_, err := svc.Pay(ctx, PayInput{
		UserID: w.UserID,
		Type:   TypeData,
		Amount: decimal.RequireFromString("40.00"),
	})
	require.True(t, apperr.IsKind(err, apperr.KindInsufficientFunds), "got %v", err)

	balance, err := walletSvc.Balance(ctx, w.UserID)
	require.NoError(t, err)
	require.Equal(t, "10.00", balance.StringFixed(2))

	history, err := svc.History(ctx, w.UserID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, StatusFailed, history[0].Status)
}

func TestPayInsufficientFundsNeverReachesVendor(t *testing.T) {
	provider := &countingProvider{}
	svc, _, _, w := newTestBilling(t, "10.00", provider, nil)

	_, err := svc.Pay(context.Background(), PayInput{
		UserID: w.UserID,
		Type:   TypeAirtime,
		Amount: decimal.RequireFromString("40.00"),
	})
	require.True(t, apperr.IsKind(err, apperr.KindInsufficientFunds), "got %v", err)
	require.Zero(t, provider.calls, "vendor must not see an order the wallet cannot cover")
}

func TestPayRejectsUnknownBillType(t *testing.T) {
	svc, _, _, w := newTestBilling(t, "100.00", nil, nil)

	_, err := svc.Pay(context.Background(), PayInput{
		UserID: w.UserID,
		Type:   BillType("cable"),
		Amount: decimal.RequireFromString("40.00"),
	})
	require.True(t, apperr.IsKind(err, apperr.KindNotFound), "got %v", err)
}

func TestPayVendorFailureRefundsWallet(t *testing.T) {
	vendorErr := errors.New("vendor timeout")
	svc, walletSvc, entries, w := newTestBilling(t, "100.00", failingProvider{err: vendorErr}, nil)
	ctx := context.Background()

	_, err := svc.Pay(ctx, PayInput{
		UserID: w.UserID,
		Type:   TypeElectricity,
		Amount: decimal.RequireFromString("40.00"),
	})
	require.True(t, apperr.IsKind(err, apperr.KindAborted), "got %v", err)
	require.ErrorIs(t, err, vendorErr)

	balance, err := walletSvc.Balance(ctx, w.UserID)
	require.NoError(t, err)
	require.Equal(t, "100.00", balance.StringFixed(2))

	// The aborted purchase leaves both sides in the ledger: the deduct that
	// secured the funds and the compensating refund.
	recorded := entries.All()
	require.Len(t, recorded, 2)
	require.Equal(t, ledger.TypeDeduct, recorded[0].Type)
	require.Equal(t, ledger.TypeFund, recorded[1].Type)

	history, err := svc.History(ctx, w.UserID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, StatusFailed, history[0].Status)
}

func TestPayRecordFailureIsNotReportedAsSuccess(t *testing.T) {
	storeErr := errors.New("bill store down")
	svc, _, _, w := newTestBilling(t, "100.00", nil, failingRepository{err: storeErr})

	payment, err := svc.Pay(context.Background(), PayInput{
		UserID: w.UserID,
		Type:   TypeAirtime,
		Amount: decimal.RequireFromString("40.00"),
	})
	require.Error(t, err)
	require.ErrorIs(t, err, storeErr)
	require.True(t, apperr.IsKind(err, apperr.KindInternal), "got %v", err)
	require.Empty(t, payment.ID)
}
