package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository persists bill payment records.
type Repository interface {
	Create(ctx context.Context, payment BillPayment) error
	ListByUser(ctx context.Context, userID string, limit int) ([]BillPayment, error)
}

// PostgresRepository stores bill payments in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a bill payment record.
func (r *PostgresRepository) Create(ctx context.Context, payment BillPayment) error {
	id, err := uuid.Parse(payment.ID)
	if err != nil {
		return fmt.Errorf("parse bill payment id: %w", err)
	}
	userID, err := uuid.Parse(payment.UserID)
	if err != nil {
		return fmt.Errorf("parse user id: %w", err)
	}
	walletID, err := uuid.Parse(payment.WalletID)
	if err != nil {
		return fmt.Errorf("parse wallet id: %w", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO bill_payments (id, user_id, wallet_id, bill_type, amount, reference, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, userID, walletID, string(payment.Type), payment.Amount.StringFixed(2),
		payment.Reference, string(payment.Status), payment.CreatedAt.UTC())
	return err
}

// ListByUser returns the most recent bill payments for a user.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]BillPayment, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, wallet_id, bill_type, amount::text, reference, status, created_at
        FROM bill_payments WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, uid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []BillPayment
	for rows.Next() {
		var (
			id        uuid.UUID
			uidVal    uuid.UUID
			walletID  uuid.UUID
			billType  string
			amount    string
			status    string
			createdAt time.Time
			p         BillPayment
		)
		if err := rows.Scan(&id, &uidVal, &walletID, &billType, &amount, &p.Reference, &status, &createdAt); err != nil {
			return nil, err
		}
		p.ID = id.String()
		p.UserID = uidVal.String()
		p.WalletID = walletID.String()
		p.Type = BillType(billType)
		p.Status = Status(status)
		p.CreatedAt = createdAt.UTC()
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// MemoryRepository is an in-memory bill payment store for tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	payments []BillPayment
}

// NewMemoryRepository constructs an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(_ context.Context, payment BillPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, payment)
	return nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string, limit int) ([]BillPayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	var out []BillPayment
	for i := len(r.payments) - 1; i >= 0 && len(out) < limit; i-- {
		if r.payments[i].UserID == userID {
			out = append(out, r.payments[i])
		}
	}
	return out, nil
}
