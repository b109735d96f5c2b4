package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/kobopay/kobopay/internal/ledger"
	"github.com/kobopay/kobopay/internal/notification"
)

const balanceCachePrefix = "wallet:balance:v1:"

// Service exposes wallet operations on top of the transaction engine, with a
// short-lived Redis cache on the balance read path. The cache is invalidated
// on every mutation; the engine and its store remain the only authority.
type Service struct {
	repo     Repository
	engine   Engine
	entries  ledger.Store
	cache    *redis.Client
	cacheTTL time.Duration
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService builds a wallet service. cache and notifier may be nil.
func NewService(repo Repository, engine Engine, entries ledger.Store, cache *redis.Client, cacheTTL time.Duration, notifier notification.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, engine: engine, entries: entries, cache: cache, cacheTTL: cacheTTL, notifier: notifier, logger: logger}
}

// Get returns the wallet owned by a user.
func (s *Service) Get(ctx context.Context, userID string) (Wallet, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Balance returns the current balance for the user's wallet.
func (s *Service) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	if cached, ok := s.cachedBalance(ctx, userID); ok {
		return cached, nil
	}
	balance, err := s.engine.Balance(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	s.storeBalance(ctx, userID, balance)
	return balance, nil
}

// Fund credits the wallet addressed by account number.
func (s *Service) Fund(ctx context.Context, accountNumber string, amount decimal.Decimal) (ledger.Entry, error) {
	entry, err := s.engine.Fund(ctx, accountNumber, amount, "wallet funding")
	if err != nil {
		return ledger.Entry{}, err
	}
	s.invalidateBalance(ctx, entry.UserID)
	s.notify(ctx, notification.Message{
		Kind:   notification.KindWalletFunded,
		UserID: entry.UserID,
		Body:   fmt.Sprintf("wallet funded with %s", amount.StringFixed(2)),
	})
	return entry, nil
}

// Deduct debits the wallet owned by the given user.
func (s *Service) Deduct(ctx context.Context, userID string, amount decimal.Decimal) (ledger.Entry, error) {
	entry, err := s.engine.Deduct(ctx, userID, amount, "wallet deduction")
	if err != nil {
		return ledger.Entry{}, err
	}
	s.invalidateBalance(ctx, userID)
	s.notify(ctx, notification.Message{
		Kind:   notification.KindWalletDebited,
		UserID: userID,
		Body:   fmt.Sprintf("wallet debited by %s", amount.StringFixed(2)),
	})
	return entry, nil
}

// Entries lists recent ledger entries for the user's wallet.
func (s *Service) Entries(ctx context.Context, userID string, limit int) ([]ledger.Entry, error) {
	return s.entries.ListByUser(ctx, userID, limit)
}

func (s *Service) cachedBalance(ctx context.Context, userID string) (decimal.Decimal, bool) {
	if s.cache == nil {
		return decimal.Zero, false
	}
	val, err := s.cache.Get(ctx, balanceCachePrefix+userID).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("balance cache read failed", "user_id", userID, "error", err)
		}
		return decimal.Zero, false
	}
	balance, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false
	}
	return balance, true
}

func (s *Service) storeBalance(ctx context.Context, userID string, balance decimal.Decimal) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, balanceCachePrefix+userID, balance.StringFixed(2), s.cacheTTL).Err(); err != nil {
		s.logger.Warn("balance cache write failed", "user_id", userID, "error", err)
	}
}

func (s *Service) invalidateBalance(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, balanceCachePrefix+userID).Err(); err != nil {
		s.logger.Warn("balance cache invalidation failed", "user_id", userID, "error", err)
	}
}

func (s *Service) notify(ctx context.Context, msg notification.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("notification failed", "kind", msg.Kind, "error", err)
	}
}
