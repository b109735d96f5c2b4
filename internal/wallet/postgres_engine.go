package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kobopay/kobopay/internal/apperr"
	"github.com/kobopay/kobopay/internal/ledger"
)

// PostgresEngine serializes balance mutations with row-level locks: the wallet
// row is selected FOR UPDATE, so a concurrent mutation of the same wallet
// blocks until this unit commits or rolls back and then observes the committed
// balance, never a torn or pre-commit value.
type PostgresEngine struct {
	db      *pgxpool.Pool
	entries *ledger.PostgresStore
}

// NewPostgresEngine builds the transaction engine on a PostgreSQL pool.
func NewPostgresEngine(db *pgxpool.Pool, entries *ledger.PostgresStore) *PostgresEngine {
	return &PostgresEngine{db: db, entries: entries}
}

// Fund credits the wallet addressed by account number.
func (e *PostgresEngine) Fund(ctx context.Context, accountNumber string, amount decimal.Decimal, description string) (ledger.Entry, error) {
	if err := validateAmount(amount); err != nil {
		return ledger.Entry{}, err
	}
	return e.mutate(ctx, `SELECT id, user_id, balance::text FROM wallets WHERE account_number = $1 FOR UPDATE`,
		accountNumber, ledger.TypeFund, amount, description)
}

// Deduct debits the wallet owned by the given user.
func (e *PostgresEngine) Deduct(ctx context.Context, userID string, amount decimal.Decimal, description string) (ledger.Entry, error) {
	if err := validateAmount(amount); err != nil {
		return ledger.Entry{}, err
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ledger.Entry{}, apperr.New(apperr.KindNotFound, "wallet not found")
	}
	return e.mutate(ctx, `SELECT id, user_id, balance::text FROM wallets WHERE user_id = $1 FOR UPDATE`,
		uid, ledger.TypeDeduct, amount, description)
}

// Balance reads the current balance without locking.
func (e *PostgresEngine) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return decimal.Zero, apperr.New(apperr.KindNotFound, "wallet not found")
	}
	var balance string
	err = e.db.QueryRow(ctx, `SELECT balance::text FROM wallets WHERE user_id = $1`, uid).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperr.New(apperr.KindNotFound, "wallet not found")
		}
		return decimal.Zero, apperr.Internal(err)
	}
	out, err := decimal.NewFromString(balance)
	if err != nil {
		return decimal.Zero, apperr.Internal(fmt.Errorf("parse balance: %w", err))
	}
	return out, nil
}

// mutate runs one atomic unit: lock row, validate, write balance, append entry.
func (e *PostgresEngine) mutate(ctx context.Context, lockQuery string, key any, entryType ledger.EntryType, amount decimal.Decimal, description string) (ledger.Entry, error) {
	tx, err := e.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ledger.Entry{}, apperr.Wrap(apperr.KindAborted, "begin transaction", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var (
		walletID uuid.UUID
		userID   uuid.UUID
		current  string
	)
	if err := tx.QueryRow(ctx, lockQuery, key).Scan(&walletID, &userID, &current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Entry{}, apperr.New(apperr.KindNotFound, "wallet not found")
		}
		if ctx.Err() != nil {
			return ledger.Entry{}, apperr.Wrap(apperr.KindAborted, "lock wallet row", err)
		}
		return ledger.Entry{}, apperr.Internal(err)
	}

	balance, err := decimal.NewFromString(current)
	if err != nil {
		return ledger.Entry{}, apperr.Internal(fmt.Errorf("parse balance: %w", err))
	}

	var newBalance decimal.Decimal
	switch entryType {
	case ledger.TypeFund:
		newBalance = balance.Add(amount)
	case ledger.TypeDeduct:
		if balance.LessThan(amount) {
			// Lock released by rollback with no write.
			return ledger.Entry{}, apperr.New(apperr.KindInsufficientFunds, "insufficient balance")
		}
		newBalance = balance.Sub(amount)
	default:
		return ledger.Entry{}, apperr.Internal(fmt.Errorf("unknown entry type %q", entryType))
	}

	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = $1, updated_at = $2 WHERE id = $3`,
		newBalance.StringFixed(2), time.Now().UTC(), walletID); err != nil {
		return ledger.Entry{}, apperr.Internal(err)
	}

	entry := ledger.Entry{
		ID:          uuid.NewString(),
		WalletID:    walletID.String(),
		UserID:      userID.String(),
		Type:        entryType,
		Amount:      amount,
		Status:      ledger.StatusSuccess,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.entries.InsertTx(ctx, tx, entry); err != nil {
		return ledger.Entry{}, apperr.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		// Nothing is visible to other transactions on a failed commit, so the
		// caller may safely retry the whole request.
		return ledger.Entry{}, apperr.Wrap(apperr.KindAborted, "commit balance mutation", err)
	}
	return entry, nil
}
