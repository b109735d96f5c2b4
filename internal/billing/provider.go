package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Provider represents a connector to an external bill vendor (telco, disco).
type Provider interface {
	Purchase(ctx context.Context, input PurchaseInput) (PurchaseReceipt, error)
}

// PurchaseInput carries the vendor-facing details of a bill purchase.
type PurchaseInput struct {
	Type     BillType
	Customer string
	Amount   decimal.Decimal
}

// PurchaseReceipt captures the simulated response from the vendor.
type PurchaseReceipt struct {
	Reference string
	Status    string
}

// StaticProvider simulates a successful vendor integration.
type StaticProvider struct{}

// Purchase approves the bill purchase with a synthetic reference.
func (StaticProvider) Purchase(_ context.Context, _ PurchaseInput) (PurchaseReceipt, error) {
	return PurchaseReceipt{Reference: uuid.NewString(), Status: "approved"}, nil
}
