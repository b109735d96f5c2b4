package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore persists ledger entries in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a ledger entry store backed by PostgreSQL.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// InsertTx appends an entry inside the caller's transaction so the entry
// commits or rolls back together with the wallet mutation it records.
func (s *PostgresStore) InsertTx(ctx context.Context, tx pgx.Tx, entry Entry) error {
	entryID, err := uuid.Parse(entry.ID)
	if err != nil {
		return fmt.Errorf("parse entry id: %w", err)
	}
	walletID, err := uuid.Parse(entry.WalletID)
	if err != nil {
		return fmt.Errorf("parse wallet id: %w", err)
	}
	userID, err := uuid.Parse(entry.UserID)
	if err != nil {
		return fmt.Errorf("parse user id: %w", err)
	}
	_, err = tx.Exec(ctx, `INSERT INTO ledger_entries (id, wallet_id, user_id, type, amount, status, description, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entryID, walletID, userID, string(entry.Type), entry.Amount.StringFixed(2),
		string(entry.Status), entry.Description, entry.CreatedAt.UTC())
	return err
}

// ListByUser returns the most recent entries for a user.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `SELECT id, wallet_id, user_id, type, amount::text, status, COALESCE(description, ''), created_at
        FROM ledger_entries WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, uid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			id        uuid.UUID
			walletID  uuid.UUID
			uidVal    uuid.UUID
			entryType string
			amount    string
			status    string
			createdAt time.Time
			e         Entry
		)
		if err := rows.Scan(&id, &walletID, &uidVal, &entryType, &amount, &status, &e.Description, &createdAt); err != nil {
			return nil, err
		}
		e.ID = id.String()
		e.WalletID = walletID.String()
		e.UserID = uidVal.String()
		e.Type = EntryType(entryType)
		e.Status = EntryStatus(status)
		e.CreatedAt = createdAt.UTC()
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
