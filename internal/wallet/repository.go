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
)

// ErrAccountNumberTaken reports an account-number uniqueness violation at the
// persistence layer. Callers treat it as a generation collision and retry with
// a fresh candidate.
var ErrAccountNumberTaken = errors.New("account number already in use")

// Repository is the read side of the wallet store. Balance mutation goes
// through the Engine only.
type Repository interface {
	GetByUserID(ctx context.Context, userID string) (Wallet, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (Wallet, error)
	ExistsAccountNumber(ctx context.Context, accountNumber string) (bool, error)
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const walletColumns = `id, user_id, balance::text, account_number, created_at, updated_at`

// GetByUserID fetches the wallet owned by the given user.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (Wallet, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Wallet{}, apperr.New(apperr.KindNotFound, "wallet not found")
	}
	row := r.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, uid)
	return scanWallet(row)
}

// GetByAccountNumber fetches a wallet by its external account number.
func (r *PostgresRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (Wallet, error) {
	row := r.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE account_number = $1`, accountNumber)
	return scanWallet(row)
}

// ExistsAccountNumber probes for an existing wallet with the candidate number.
// The unique constraint on wallets.account_number remains the authority; this
// probe only shortcuts obvious collisions before an insert is attempted.
func (r *PostgresRepository) ExistsAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE account_number = $1)`, accountNumber).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// InsertTx inserts a wallet inside the caller's transaction. Used by the
// provisioning unit so the wallet commits together with its owning user.
func InsertTx(ctx context.Context, tx pgx.Tx, w Wallet) error {
	walletID, err := uuid.Parse(w.ID)
	if err != nil {
		return fmt.Errorf("parse wallet id: %w", err)
	}
	userID, err := uuid.Parse(w.UserID)
	if err != nil {
		return fmt.Errorf("parse user id: %w", err)
	}
	_, err = tx.Exec(ctx, `INSERT INTO wallets (id, user_id, balance, account_number, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		walletID, userID, w.Balance.StringFixed(2), w.AccountNumber, w.CreatedAt.UTC(), w.UpdatedAt.UTC())
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (Wallet, error) {
	var (
		id        uuid.UUID
		userID    uuid.UUID
		balance   string
		createdAt time.Time
		updatedAt time.Time
		w         Wallet
	)
	if err := row.Scan(&id, &userID, &balance, &w.AccountNumber, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, apperr.New(apperr.KindNotFound, "wallet not found")
		}
		return Wallet{}, err
	}
	w.ID = id.String()
	w.UserID = userID.String()
	w.CreatedAt = createdAt.UTC()
	w.UpdatedAt = updatedAt.UTC()
	var err error
	if w.Balance, err = decimal.NewFromString(balance); err != nil {
		return Wallet{}, fmt.Errorf("parse balance: %w", err)
	}
	return w, nil
}
