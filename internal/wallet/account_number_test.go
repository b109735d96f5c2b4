package wallet

import (
	"context"
	"regexp"
	"testing"

	"github.com/kobopay/kobopay/internal/apperr"
)

var accountNumberPattern = regexp.MustCompile(`^937\d{7}$`)

func TestGenerateProducesWellFormedNumbers(t *testing.T) {
	gen := NewAccountNumberGenerator(NewMemoryRepository())

	for i := 0; i < 100; i++ {
		number, err := gen.Generate(context.Background())
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !accountNumberPattern.MatchString(number) {
			t.Fatalf("account number %q does not match %s", number, accountNumberPattern)
		}
	}
}

func TestGenerateSkipsTakenNumbers(t *testing.T) {
	repo := NewMemoryRepository()
	taken := Wallet{ID: "w1", UserID: "u1", AccountNumber: "9370000007"}
	if err := repo.Create(context.Background(), taken); err != nil {
		t.Fatalf("seed wallet: %v", err)
	}

	gen := NewAccountNumberGenerator(repo)
	// First candidate collides with the seeded wallet, second is free.
	seq := []int{7, 42}
	gen.randN = func(int) int {
		n := seq[0]
		if len(seq) > 1 {
			seq = seq[1:]
		}
		return n
	}

	number, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if number != "9370000042" {
		t.Fatalf("expected retry to yield 9370000042, got %q", number)
	}
}

type alwaysTaken struct{}

func (alwaysTaken) ExistsAccountNumber(context.Context, string) (bool, error) {
	return true, nil
}

func TestGenerateGivesUpWhenSpaceIsFull(t *testing.T) {
	gen := NewAccountNumberGenerator(alwaysTaken{})

	_, err := gen.Generate(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !apperr.IsKind(err, apperr.KindResourceExhausted) {
		t.Fatalf("expected resource_exhausted, got %v", apperr.KindOf(err))
	}
}
