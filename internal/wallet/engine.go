package wallet

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kobopay/kobopay/internal/apperr"
	"github.com/kobopay/kobopay/internal/ledger"
)

// Engine executes fund and deduct requests as atomic, serialized balance
// mutations. Every mutation writes the new balance and its ledger entry in one
// unit: both commit or neither does. Mutations against the same wallet
// serialize; different wallets proceed in parallel.
type Engine interface {
	// Fund credits the wallet addressed by account number.
	Fund(ctx context.Context, accountNumber string, amount decimal.Decimal, description string) (ledger.Entry, error)
	// Deduct debits the wallet owned by the given user, rejecting amounts
	// exceeding the balance without any write.
	Deduct(ctx context.Context, userID string, amount decimal.Decimal, description string) (ledger.Entry, error)
	// Balance is a plain read of the current balance for the user's wallet.
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
}

// validateAmount enforces the shared precondition of both mutations: strictly
// positive, at most two decimal places.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.New(apperr.KindInvalidAmount, "amount must be greater than zero")
	}
	if amount.Exponent() < -2 {
		return apperr.New(apperr.KindInvalidAmount, "amount precision exceeds two decimal places")
	}
	return nil
}
