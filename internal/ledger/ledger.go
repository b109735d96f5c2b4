package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType identifies the direction of a balance-changing operation.
type EntryType string

// EntryStatus records whether the operation committed.
type EntryStatus string

const (
	TypeFund   EntryType = "fund"
	TypeDeduct EntryType = "deduct"

	StatusSuccess EntryStatus = "success"
	StatusFailed  EntryStatus = "failed"
)

// Entry is one immutable record of a balance-changing event. Corrections are
// modeled as new compensating entries, never in-place edits.
type Entry struct {
	ID          string
	WalletID    string
	UserID      string
	Type        EntryType
	Amount      decimal.Decimal
	Status      EntryStatus
	Description string
	CreatedAt   time.Time
}

// Store is the append-only ledger entry store. Appending inside an engine
// transaction goes through the engine; Store covers the read path and the
// in-memory test double.
type Store interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error)
}
