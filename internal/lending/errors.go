package lending

import "errors"

// Business-rule errors surfaced by the lending service. Each maps to a
// distinct HTTP status so callers can tell "nothing happened, safe to
// retry" apart from state conflicts. Storage failures are never folded
// into these; they propagate wrapped as-is.
var (
	// ErrNotFound means a referenced user, book, record or fine is absent.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable means the book exists but has no copies to lend.
	ErrUnavailable = errors.New("no copies available")

	// ErrInvalidInput means a malformed due date, status or payment method.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState means the record or fine is not in the required
	// state: returning an already-returned loan, paying a paid fine.
	ErrInvalidState = errors.New("invalid state")
)
