// Package piraterr implements the engine's error taxonomy: a small set of
// error kinds that tick handlers, network ingestion, and persistence all
// propagate through, rather than ad hoc error strings.
package piraterr

import (
	"errors"
	"fmt"
)

// Kind is the error taxonomy. It is not a type hierarchy: callers branch on
// Kind via errors.Is/As, never on the message text.
type Kind int

const (
	// NotFound means a referenced id has no entry in the Entity Store.
	NotFound Kind = iota
	// InvariantViolated means applying a mutation would break a documented
	// invariant (capacity overflow, role uniqueness, illegal state
	// transition).
	InvariantViolated
	// PreconditionFailed means the operation itself is well-formed but the
	// world isn't in a state that allows it (already in a game, travelling).
	PreconditionFailed
	// NetworkRejected means an inbound peer message failed validation.
	NetworkRejected
	// CodecError means persistence or envelope decoding failed.
	CodecError
	// ClockSkew is the rare, ignored case of a clock observation that looks
	// inconsistent with monotonic progress.
	ClockSkew
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case InvariantViolated:
		return "invariant_violated"
	case PreconditionFailed:
		return "precondition_failed"
	case NetworkRejected:
		return "network_rejected"
	case CodecError:
		return "codec_error"
	case ClockSkew:
		return "clock_skew"
	default:
		return "unknown"
	}
}

// Error is the concrete error value propagated by fallible world mutations.
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

// Is lets errors.Is(err, target) match when target is (or wraps) a *Error
// of the same Kind, e.g. errors.Is(err, piraterr.New(piraterr.NotFound, "")).
// A bare Kind is not an error value; use KindOf to branch on it directly.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the Kind of err if it is (or wraps) a *Error, and ok=false
// otherwise, so callers can decide whether a failure is popup-worthy (§7:
// "an Error popup callback when user-visible") versus log-worthy.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// NotFoundf is a convenience constructor mirroring the Entity Store's
// get_or_err.
func NotFoundf(format string, args ...interface{}) *Error {
	return New(NotFound, format, args...)
}
