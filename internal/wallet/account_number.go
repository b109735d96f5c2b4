package wallet

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/kobopay/kobopay/internal/apperr"
)

const (
	// AccountNumberPrefix is the fixed institution prefix of every account
	// number; the full number is the prefix plus seven zero-padded digits.
	AccountNumberPrefix = "937"

	suffixSpace         = 10_000_000
	maxGenerateAttempts = 8
)

// ExistenceChecker probes the wallet store for an already-issued number.
type ExistenceChecker interface {
	ExistsAccountNumber(ctx context.Context, accountNumber string) (bool, error)
}

// AccountNumberGenerator issues candidate account numbers that are unique at
// the moment of checking. The residual check-then-insert race is closed by the
// unique constraint on the store; a constraint violation on insert is handled
// by the caller as a collision, not a fatal error.
type AccountNumberGenerator struct {
	store ExistenceChecker
	randN func(int) int
}

// NewAccountNumberGenerator builds a generator probing the given store.
func NewAccountNumberGenerator(store ExistenceChecker) *AccountNumberGenerator {
	return &AccountNumberGenerator{store: store, randN: rand.Intn}
}

// Generate returns a free candidate account number. The attempt cap is a hard
// bound; given the keyspace it is unreachable unless the number space is
// nearly full, which is an operational condition, not a caller error.
func (g *AccountNumberGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		candidate := AccountNumberPrefix + fmt.Sprintf("%07d", g.randN(suffixSpace))
		exists, err := g.store.ExistsAccountNumber(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", apperr.New(apperr.KindResourceExhausted, "account number space exhausted")
}
