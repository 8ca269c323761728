package fetch

import (
	"context"
	"errors"
)

// Sentinel errors recognised by the hook.
var (
	// ErrCancelled marks a call abandoned by its caller. Transports that do not
	// surface context.Canceled may return it instead.
	ErrCancelled = errors.New("request cancelled")

	// ErrTimeout wraps a call that exceeded Options.Timeout.
	ErrTimeout = errors.New("request timed out")
)

// IsCancellation reports whether err means the call was abandoned rather than failed.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// State is a snapshot of what a hook has published.
type State[R any] struct {
	// Response is the last successful payload, nil when absent.
	Response *R

	// Error is the last real failure, nil when absent.
	Error error

	// IsLoading is true while the authoritative dispatch is in flight.
	IsLoading bool

	// IsExecuted is true once any dispatch has started.
	IsExecuted bool
}

// initialState mirrors a freshly mounted view: loading, nothing executed yet.
func initialState[R any]() State[R] {
	return State[R]{IsLoading: true}
}

// HasResponse reports whether a response is present.
func (s State[R]) HasResponse() bool {
	return s.Response != nil
}

// Settled reports whether the hook has run and is idle.
func (s State[R]) Settled() bool {
	return s.IsExecuted && !s.IsLoading
}
