package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/opengovern/frontend/internal/workspace"
)

// Caller issues one call. ctx carries the dispatch's cancellation signal and
// workspace is the resolved addressing context.
type Caller[P, R any] func(ctx context.Context, workspace string, d Descriptor[P]) (R, error)

type refetchKey struct{}

// IsRefetch reports whether ctx belongs to a call started by ExecuteNow or
// ExecuteNowWith rather than by mounting or a descriptor change.
func IsRefetch(ctx context.Context) bool {
	refetch, _ := ctx.Value(refetchKey{}).(bool)
	return refetch
}

// validator is implemented by payloads that can reject themselves before a call.
type validator interface {
	Validate() error
}

// Hook manages one remote-data dependency. All methods are safe for concurrent use.
type Hook[P, R any] struct {
	call Caller[P, R]
	cfg  settings

	// mu guards everything below. Dispatch and settlement both run under it,
	// so the handle swap and the state writes never interleave.
	mu       sync.Mutex
	baseline Descriptor[P]
	state    State[R]
	handle   *Handle
	seq      uint64
	closed   bool
	updates  chan State[R]

	inflight sync.WaitGroup
}

// New creates a hook for call, evaluated first with initial. With auto-execute
// on (the default) the initial descriptor is dispatched immediately.
func New[P, R any](call Caller[P, R], initial Descriptor[P], opts ...Option) *Hook[P, R] {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Hook[P, R]{
		call:     call,
		cfg:      cfg,
		baseline: initial,
		state:    initialState[R](),
		updates:  make(chan State[R], 1),
	}

	if cfg.autoExecute {
		h.mu.Lock()
		h.dispatchLocked(initial, false)
		h.mu.Unlock()
	}
	return h
}

// Update evaluates the hook with d. When d differs from the baseline by value it
// becomes the new baseline and, with auto-execute on, replaces any in-flight call.
// It reports whether a dispatch happened.
func (h *Hook[P, R]) Update(d Descriptor[P]) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.updateLocked(d)
}

// UpdatePayload is Update with the baseline's options and a new payload.
func (h *Hook[P, R]) UpdatePayload(payload P) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.updateLocked(h.baseline.WithPayload(payload))
}

func (h *Hook[P, R]) updateLocked(d Descriptor[P]) bool {
	if h.closed || Equal(h.baseline, d) {
		return false
	}
	h.baseline = d
	if !h.cfg.autoExecute {
		return false
	}
	return h.dispatchLocked(d, false)
}

// SetAutoExecute switches auto-execute. Turning it on dispatches the baseline,
// as a changed descriptor would. It reports whether a dispatch happened.
func (h *Hook[P, R]) SetAutoExecute(auto bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.cfg.autoExecute == auto {
		return false
	}
	h.cfg.autoExecute = auto
	if !auto {
		return false
	}
	return h.dispatchLocked(h.baseline, false)
}

// ExecuteNow dispatches the baseline descriptor, replacing any in-flight call
// even when nothing changed. The call context is marked with IsRefetch.
func (h *Hook[P, R]) ExecuteNow() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dispatchLocked(h.baseline, true)
}

// ExecuteNowWith dispatches d once without touching the baseline used for
// change detection. The call context is marked with IsRefetch.
func (h *Hook[P, R]) ExecuteNowWith(d Descriptor[P]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dispatchLocked(d, true)
}

// State returns a snapshot of the published state.
func (h *Hook[P, R]) State() State[R] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Baseline returns the descriptor the hook was last evaluated with.
func (h *Hook[P, R]) Baseline() Descriptor[P] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.baseline
}

// Updates streams state changes. The channel holds only the latest state; a
// slow reader skips intermediate states but never sees them out of order.
// It is closed by Close.
func (h *Hook[P, R]) Updates() <-chan State[R] {
	return h.updates
}

// Wait blocks until every call goroutine started so far has returned.
// Do not call it concurrently with a dispatch that may start new calls.
func (h *Hook[P, R]) Wait() {
	h.inflight.Wait()
}

// Close tears the hook down: the held handle is cancelled, nothing further is
// dispatched or published, and Updates is closed. Close is idempotent.
func (h *Hook[P, R]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	h.handle.Cancel()
	close(h.updates)
}

// dispatchLocked runs the dispatch protocol. h.mu must be held. refetch marks
// explicit dispatches, which callers may use to skip cached responses.
func (h *Hook[P, R]) dispatchLocked(d Descriptor[P], refetch bool) bool {
	if h.closed {
		return false
	}

	log := h.cfg.logger.With().Str("hook", h.cfg.name).Logger()

	if h.cfg.credentials != nil && !h.cfg.credentials.HasCredential() {
		log.Debug().Msg("no credential attached, dispatch skipped")
		return false
	}

	h.handle.Cancel()
	handle := NewHandle(h.cfg.parent)
	h.handle = handle
	h.seq++
	seq := h.seq

	h.state.IsLoading = true
	h.state.IsExecuted = true
	h.state.Error = nil
	h.publishLocked()

	ws, err := h.prepare(d)
	if err != nil {
		log.Warn().Err(err).Uint64("dispatch", seq).Msg("dispatch failed before call")
		h.state.Error = err
		h.state.Response = nil
		h.state.IsLoading = false
		h.publishLocked()
		handle.release()
		return true
	}

	log.Debug().Uint64("dispatch", seq).Str("workspace", ws).Msg("dispatching")

	h.inflight.Add(1)
	go h.run(handle, seq, ws, d, refetch)
	return true
}

// prepare performs the pre-call steps that may fail synchronously.
func (h *Hook[P, R]) prepare(d Descriptor[P]) (string, error) {
	ws, err := workspace.Resolve(h.cfg.override, h.cfg.ambient)
	if err != nil {
		return "", fmt.Errorf("resolving workspace: %w", err)
	}
	if v, ok := any(d.Payload).(validator); ok {
		if err := v.Validate(); err != nil {
			return "", fmt.Errorf("invalid request: %w", err)
		}
	}
	return ws, nil
}

func (h *Hook[P, R]) run(handle *Handle, seq uint64, ws string, d Descriptor[P], refetch bool) {
	defer h.inflight.Done()
	defer handle.release()

	ctx := handle.Context()
	if refetch {
		ctx = context.WithValue(ctx, refetchKey{}, true)
	}
	if d.Options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Options.Timeout)
		defer cancel()
	}

	resp, err := h.call(ctx, ws, d)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !handle.Cancelled() {
		err = fmt.Errorf("%w after %s: %w", ErrTimeout, d.Options.Timeout, err)
	}
	h.settle(handle, seq, resp, err)
}

// settle publishes a call's outcome unless the call has been superseded or cancelled.
func (h *Hook[P, R]) settle(handle *Handle, seq uint64, resp R, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	log := h.cfg.logger.With().Str("hook", h.cfg.name).Uint64("dispatch", seq).Logger()

	if h.closed || handle != h.handle || handle.Cancelled() {
		log.Debug().Msg("dropping result of superseded dispatch")
		return
	}
	if err != nil && IsCancellation(err) {
		log.Debug().Err(err).Msg("dispatch cancelled")
		return
	}

	if err != nil {
		log.Warn().Err(err).Msg("dispatch failed")
		h.state.Error = err
		h.state.Response = nil
	} else {
		log.Debug().Msg("dispatch succeeded")
		h.state.Response = &resp
		h.state.Error = nil
	}
	h.state.IsLoading = false
	h.publishLocked()
}

// publishLocked replaces whatever is buffered in updates with the current state.
// Only writers holding h.mu touch the buffer, so the send never blocks.
func (h *Hook[P, R]) publishLocked() {
	select {
	case <-h.updates:
	default:
	}
	select {
	case h.updates <- h.state:
	default:
	}
}
