package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/kobopay/kobopay/internal/apperr"
	"github.com/kobopay/kobopay/internal/wallet"
)

// ErrInvalidCredentials rejects a login with a wrong email or password without
// revealing which of the two was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// A collision on insert means another provisioning won the same candidate
// between our probe and our commit; a fresh candidate resolves it.
const maxProvisionAttempts = 3

// Service manages user lifecycle and wallet provisioning.
type Service struct {
	repo       Repository
	wallets    wallet.Repository
	generator  *wallet.AccountNumberGenerator
	bcryptCost int
	logger     *slog.Logger
}

// NewService creates an identity service.
func NewService(repo Repository, wallets wallet.Repository, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		wallets:    wallets,
		generator:  wallet.NewAccountNumberGenerator(wallets),
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register provisions a user together with a zero-balance wallet. The pair is
// written in one unit: no user without a wallet or wallet without a user is
// ever observable, whatever fails along the way.
func (s *Service) Register(ctx context.Context, reg Registration) (User, wallet.Wallet, error) {
	email := strings.ToLower(strings.TrimSpace(reg.Email))

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return User{}, wallet.Wallet{}, apperr.New(apperr.KindConflict, "user with this email already exists")
	} else if !apperr.IsKind(err, apperr.KindNotFound) {
		return User{}, wallet.Wallet{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return User{}, wallet.Wallet{}, apperr.Internal(err)
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.NewString(),
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for attempt := 0; attempt < maxProvisionAttempts; attempt++ {
		accountNumber, err := s.generator.Generate(ctx)
		if err != nil {
			return User{}, wallet.Wallet{}, err
		}
		w := wallet.Wallet{
			ID:            uuid.NewString(),
			UserID:        user.ID,
			Balance:       decimal.Zero,
			AccountNumber: accountNumber,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		err = s.repo.CreateWithWallet(ctx, user, w)
		if errors.Is(err, wallet.ErrAccountNumberTaken) {
			s.logger.Warn("account number collision, retrying", "attempt", attempt+1)
			continue
		}
		if err != nil {
			return User{}, wallet.Wallet{}, err
		}
		return user, w, nil
	}
	return User{}, wallet.Wallet{}, apperr.New(apperr.KindAborted, "wallet provisioning exhausted account number retries")
}

// Authenticate verifies email and password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Get fetches a user by identifier.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile applies an allow-listed profile update.
func (s *Service) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (User, error) {
	if update.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*update.Email))
		update.Email = &normalized
	}
	return s.repo.UpdateProfile(ctx, id, update)
}
