package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfTagged(t *testing.T) {
	err := New(KindInsufficientFunds, "insufficient balance")
	if KindOf(err) != KindInsufficientFunds {
		t.Fatalf("expected insufficient_funds, got %s", KindOf(err))
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := New(KindNotFound, "wallet not found")
	wrapped := fmt.Errorf("deduct: %w", base)
	if KindOf(wrapped) != KindNotFound {
		t.Fatalf("expected not_found through wrap, got %s", KindOf(wrapped))
	}
	if !IsKind(wrapped, KindNotFound) {
		t.Fatal("IsKind should match through wrapping")
	}
}

func TestUntaggedDefaultsToInternal(t *testing.T) {
	if KindOf(errors.New("connection refused")) != KindInternal {
		t.Fatal("untagged errors must classify as internal")
	}
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("pool exhausted")
	err := Internal(cause)
	if !errors.Is(err, cause) {
		t.Fatal("cause must remain reachable for operator logs")
	}
	if err.Message != "internal error" {
		t.Fatalf("external message must stay generic, got %q", err.Message)
	}
}
