package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an expected failure so the HTTP boundary can map it to a
// transport status without inspecting message text.
type Kind int

const (
	// KindInternal covers unexpected failures (persistence down, bugs). No
	// detail is exposed to callers; operators get the wrapped error.
	KindInternal Kind = iota
	// KindInvalidAmount rejects non-positive or malformed amounts.
	KindInvalidAmount
	// KindNotFound indicates no wallet/user exists for the given key.
	KindNotFound
	// KindInsufficientFunds rejects a deduct exceeding the balance.
	KindInsufficientFunds
	// KindConflict covers duplicate email registrations and contention that
	// exhausted its retries; the caller may retry the whole request.
	KindConflict
	// KindAborted signals a transaction that could not commit. Safe to retry;
	// no partial write is visible.
	KindAborted
	// KindResourceExhausted means the account-number space yielded no free
	// candidate within the retry cap. Operational alert, not caller error.
	KindResourceExhausted
)

func (k Kind) String() string {
	switch k {
	case KindInvalidAmount:
		return "invalid_amount"
	case KindNotFound:
		return "not_found"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindConflict:
		return "conflict"
	case KindAborted:
		return "aborted"
	case KindResourceExhausted:
		return "resource_exhausted"
	default:
		return "internal"
	}
}

// Error is the tagged error carried between the domain and the HTTP boundary.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a tagged error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap tags an underlying error while keeping it reachable via errors.Is/As.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Internal wraps an unexpected failure. The message shown externally is
// generic; err is retained for logs only.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf extracts the kind from err, defaulting to KindInternal for untagged
// errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
