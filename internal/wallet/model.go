package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the persisted balance record owned 1:1 by a user. The account
// number is the externally addressable identifier used for funding, distinct
// from the internal id.
type Wallet struct {
	ID            string
	UserID        string
	Balance       decimal.Decimal
	AccountNumber string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
