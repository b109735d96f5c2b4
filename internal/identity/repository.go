package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kobopay/kobopay/internal/apperr"
	"github.com/kobopay/kobopay/internal/wallet"
)

// Repository persists users. CreateWithWallet is the provisioning unit: the
// user and their wallet commit together or not at all.
type Repository interface {
	CreateWithWallet(ctx context.Context, user User, w wallet.Wallet) error
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (User, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, first_name, last_name, email, password_hash, role, created_at, updated_at`

// CreateWithWallet inserts the user and wallet in one transaction. A raced
// duplicate email surfaces as Conflict; an account-number collision surfaces
// as wallet.ErrAccountNumberTaken so the caller can retry with a fresh
// candidate.
func (r *PostgresRepository) CreateWithWallet(ctx context.Context, user User, w wallet.Wallet) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return fmt.Errorf("parse user id: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperr.Wrap(apperr.KindAborted, "begin provisioning", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	_, err = tx.Exec(ctx, `INSERT INTO users (id, first_name, last_name, email, password_hash, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		userID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Role,
		user.CreatedAt.UTC(), user.UpdatedAt.UTC())
	if err != nil {
		return mapUniqueViolation(err)
	}

	if err := wallet.InsertTx(ctx, tx, w); err != nil {
		return mapUniqueViolation(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Wrap(apperr.KindAborted, "commit provisioning", err)
	}
	return nil
}

// FindByEmail fetches a user by email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, apperr.New(apperr.KindNotFound, "user not found")
	}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// UpdateProfile applies the allow-listed profile fields and returns the
// updated user.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, apperr.New(apperr.KindNotFound, "user not found")
	}
	row := r.db.QueryRow(ctx, `UPDATE users SET
            first_name = COALESCE($2, first_name),
            last_name  = COALESCE($3, last_name),
            email      = COALESCE($4, email),
            updated_at = $5
        WHERE id = $1
        RETURNING `+userColumns, userID, update.FirstName, update.LastName, update.Email, time.Now().UTC())
	user, err := scanUser(row)
	if err != nil {
		return User{}, mapUniqueViolationUser(err)
	}
	return user, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "wallets_account_number_key":
			return wallet.ErrAccountNumberTaken
		case "users_email_key":
			return apperr.New(apperr.KindConflict, "user with this email already exists")
		default:
			return apperr.Wrap(apperr.KindConflict, "duplicate record", err)
		}
	}
	return err
}

func mapUniqueViolationUser(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.New(apperr.KindConflict, "user with this email already exists")
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		updatedAt time.Time
		user      User
	)
	if err := row.Scan(&id, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash, &user.Role, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.New(apperr.KindNotFound, "user not found")
		}
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	user.UpdatedAt = updatedAt.UTC()
	return user, nil
}
