package money

import (
	"errors"
	"fmt"
)

// Kind is the error taxonomy from SPEC_FULL.md §7. The money kernel only
// ever produces InvalidArgument and ConditionSuppressed; the remaining
// kinds (SourceTransient, SourceFailed, CandidateRejected, DeliveryFailed,
// Fatal) belong to higher layers but share this type so callers can
// errors.Is/As uniformly across the whole engine.
type Kind string

const (
	KindInvalidArgument    Kind = "invalid_argument"
	KindConditionSuppressed Kind = "condition_suppressed"
	KindSourceTransient    Kind = "source_transient"
	KindSourceFailed       Kind = "source_failed"
	KindCandidateRejected  Kind = "candidate_rejected"
	KindDeliveryFailed     Kind = "delivery_failed"
	KindFatal              Kind = "fatal"
)

// Error wraps a Kind with a message and optional underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is supports errors.Is(err, ErrInvalidArgument)-style matching: it
// reports true when the target is a *Error of the same Kind, whatever its
// Message. IsKind below does the same check against a bare Kind value.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs a new *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs a new *Error of the given kind, wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Sentinel values usable with errors.Is(err, money.ErrInvalidArgument).
var (
	ErrInvalidArgument     = &Error{Kind: KindInvalidArgument}
	ErrConditionSuppressed = &Error{Kind: KindConditionSuppressed}
)

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
