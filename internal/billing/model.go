package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillType identifies the kind of bill being paid.
type BillType string

// Status records the final outcome of a bill payment attempt.
type Status string

const (
	TypeAirtime     BillType = "airtime"
	TypeElectricity BillType = "electricity"
	TypeData        BillType = "data"

	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ValidType reports whether t is a supported bill type.
func ValidType(t BillType) bool {
	switch t {
	case TypeAirtime, TypeElectricity, TypeData:
		return true
	}
	return false
}

// BillPayment records one bill payment attempt, successful or not.
type BillPayment struct {
	ID        string
	UserID    string
	WalletID  string
	Type      BillType
	Amount    decimal.Decimal
	Reference string
	Status    Status
	CreatedAt time.Time
}
