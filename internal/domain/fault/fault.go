// Package fault defines the ledger's error taxonomy. Every core operation
// fails with exactly one of four kinds:
//
//   - Validation: bad input shape or range; a caller mistake, never retried.
//   - State: the operation is not valid for the entity's current status.
//   - Conflict: transient lock/version contention on a loan; retryable.
//   - Integrity: an invariant would be violated; indicates a bug or data
//     corruption and is never silently corrected.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a ledger failure.
type Kind int

const (
	KindValidation Kind = iota
	KindState
	KindConflict
	KindIntegrity
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindState:
		return "STATE"
	case KindConflict:
		return "CONFLICT"
	case KindIntegrity:
		return "INTEGRITY"
	default:
		return "UNKNOWN"
	}
}

// Error is a classified ledger failure with a human-readable reason.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// Kind returns the taxonomy kind.
func (e *Error) Kind() Kind { return e.kind }

// Unwrap exposes the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.err }

// Validation builds a KindValidation error.
func Validation(format string, args ...any) error {
	return &Error{kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

// State builds a KindState error.
func State(format string, args ...any) error {
	return &Error{kind: KindState, msg: fmt.Sprintf(format, args...)}
}

// Conflict builds a KindConflict error.
func Conflict(format string, args ...any) error {
	return &Error{kind: KindConflict, msg: fmt.Sprintf(format, args...)}
}

// Integrity builds a KindIntegrity error.
func Integrity(format string, args ...any) error {
	return &Error{kind: KindIntegrity, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), err: err}
}

// IsKind reports whether err (or anything it wraps) is a fault of the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.kind == kind
	}
	return false
}

// IsRetryable reports whether err represents transient contention.
func IsRetryable(err error) bool {
	return IsKind(err, KindConflict)
}
