package ledger

import "errors"

// Kind classifies why an action was rejected. Every rejection aborts the
// whole action; the kind only selects the message surfaced to the caller.
type Kind int

const (
	// KindValidation covers malformed input: non-positive amounts,
	// symbol or precision mismatches, oversized memos.
	KindValidation Kind = iota + 1

	// KindAuthorization covers a caller lacking the required authority.
	KindAuthorization

	// KindStateConflict covers inputs that contradict current ledger state:
	// duplicate create, double freeze/pause, overdrawn balance, exceeding
	// max-supply, closing a nonzero balance.
	KindStateConflict

	// KindOverflow covers amounts at or beyond the representable bound,
	// detected before any mutation is applied.
	KindOverflow
)

// String returns the metric label for the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindStateConflict:
		return "state_conflict"
	case KindOverflow:
		return "overflow"
	default:
		return "unknown"
	}
}

// Error is a rejected action: a kind plus the human-readable reason string.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

// KindOf extracts the rejection kind from err, or 0 if err is not a ledger error.
func KindOf(err error) Kind {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind
	}
	return 0
}

func errValidation(reason string) *Error {
	return &Error{Kind: KindValidation, Reason: reason}
}

func errAuthorization(reason string) *Error {
	return &Error{Kind: KindAuthorization, Reason: reason}
}

func errState(reason string) *Error {
	return &Error{Kind: KindStateConflict, Reason: reason}
}

func errOverflow(reason string) *Error {
	return &Error{Kind: KindOverflow, Reason: reason}
}
