package domain

import "fmt"

// ResultState tells why a collaborator value is or is not present.
type ResultState uint8

const (
	// StateOK the value was fetched.
	StateOK ResultState = iota
	// StateUnavailable the venue does not provide the value (unlisted asset, unsupported endpoint).
	StateUnavailable
	// StateFailed the call failed.
	StateFailed
)

func (s ResultState) String() string {
	switch s {
	case StateOK:
		return "ok"
	case StateUnavailable:
		return "unavailable"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Result is a tagged collaborator result, so "zero because unavailable"
// stays distinguishable from a genuine zero.
type Result[T any] struct {
	State  ResultState
	Value  T
	Reason error
}

// Ok wraps a fetched value.
func Ok[T any](v T) Result[T] {
	return Result[T]{State: StateOK, Value: v}
}

// Unavailable marks a value the venue cannot provide.
func Unavailable[T any](reason error) Result[T] {
	return Result[T]{State: StateUnavailable, Reason: reason}
}

// Failed marks a value whose fetch failed.
func Failed[T any](reason error) Result[T] {
	return Result[T]{State: StateFailed, Reason: reason}
}

// ResultOf converts a (value, error) pair. Errors matching ErrUnavailable or
// ErrUnsupported map to StateUnavailable, everything else to StateFailed.
func ResultOf[T any](v T, err error) Result[T] {
	if err == nil {
		return Ok(v)
	}
	if IsUnavailable(err) {
		return Unavailable[T](err)
	}

	return Failed[T](err)
}

// IsOK reports whether the value was fetched.
func (r Result[T]) IsOK() bool {
	return r.State == StateOK
}

// OrElse returns the value when present, fallback otherwise.
func (r Result[T]) OrElse(fallback T) T {
	if r.State == StateOK {
		return r.Value
	}
	return fallback
}

// Unwrap converts back to the (value, error) form.
func (r Result[T]) Unwrap() (T, error) {
	if r.State == StateOK {
		return r.Value, nil
	}
	if r.Reason == nil {
		var zero T
		return zero, ErrUnavailable
	}

	var zero T
	return zero, r.Reason
}
