package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kobopay/kobopay/internal/apperr"
	"github.com/kobopay/kobopay/internal/notification"
	"github.com/kobopay/kobopay/internal/wallet"
)

// Service pays bills out of a user's wallet. The wallet debit runs through the
// ledger engine so it carries the same atomicity and locking guarantees as any
// other deduct; the bill record documents the attempt either way.
type Service struct {
	wallets  *wallet.Service
	repo     Repository
	provider Provider
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService constructs a billing service.
func NewService(wallets *wallet.Service, repo Repository, provider Provider, notifier notification.Notifier, logger *slog.Logger) *Service {
	if provider == nil {
		provider = StaticProvider{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{wallets: wallets, repo: repo, provider: provider, notifier: notifier, logger: logger}
}

// PayInput captures a bill payment request.
type PayInput struct {
	UserID   string
	Type     BillType
	Customer string
	Amount   decimal.Decimal
}

// Pay debits the wallet, then purchases the bill from the vendor. The deduct
// runs first so the vendor only ever sees orders backed by collected money; a
// vendor failure is compensated with a refund entry. A deduct rejected for
// insufficient funds is recorded as a failed payment and the rejection is
// returned unchanged.
func (s *Service) Pay(ctx context.Context, input PayInput) (BillPayment, error) {
	if !ValidType(input.Type) {
		return BillPayment{}, apperr.New(apperr.KindNotFound, fmt.Sprintf("unknown bill type %q", input.Type))
	}

	w, err := s.wallets.Get(ctx, input.UserID)
	if err != nil {
		return BillPayment{}, err
	}

	payment := BillPayment{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		WalletID:  w.ID,
		Type:      input.Type,
		Amount:    input.Amount,
		Status:    StatusSuccess,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := s.wallets.Deduct(ctx, input.UserID, input.Amount); err != nil {
		if apperr.IsKind(err, apperr.KindInsufficientFunds) {
			payment.Status = StatusFailed
			if recErr := s.repo.Create(ctx, payment); recErr != nil {
				s.logger.Error("record failed bill payment", "error", recErr)
			}
		}
		return BillPayment{}, err
	}

	receipt, err := s.provider.Purchase(ctx, PurchaseInput{Type: input.Type, Customer: input.Customer, Amount: input.Amount})
	if err != nil {
		// The collected funds are returned with a compensating entry; the
		// ledger keeps both sides of the aborted purchase.
		if _, refundErr := s.wallets.Fund(ctx, w.AccountNumber, input.Amount); refundErr != nil {
			s.logger.Error("refund after vendor failure", "account_number", w.AccountNumber, "error", refundErr)
		}
		payment.Status = StatusFailed
		if recErr := s.repo.Create(ctx, payment); recErr != nil {
			s.logger.Error("record failed bill payment", "error", recErr)
		}
		return BillPayment{}, apperr.Wrap(apperr.KindAborted, "bill vendor unavailable", err)
	}
	payment.Reference = receipt.Reference

	if err := s.repo.Create(ctx, payment); err != nil {
		// Debit and vendor delivery are committed; without the record the
		// caller must not be told the payment succeeded.
		return BillPayment{}, apperr.Wrap(apperr.KindInternal, "record bill payment", err)
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:   notification.KindBillPaid,
			UserID: input.UserID,
			Body:   fmt.Sprintf("%s bill of %s paid, ref %s", input.Type, input.Amount.StringFixed(2), payment.Reference),
		})
	}
	return payment, nil
}

// History lists recent bill payments for a user.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]BillPayment, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}
