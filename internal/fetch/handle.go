package fetch

import (
	"context"
	"sync/atomic"
)

// Handle is the cancellation handle tied to exactly one dispatch.
type Handle struct {
	ctx       context.Context
	cancel    context.CancelFunc
	cancelled atomic.Bool
}

// NewHandle creates a live handle whose context derives from parent.
func NewHandle(parent context.Context) *Handle {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Handle{ctx: ctx, cancel: cancel}
}

// Cancel marks the dispatch abandoned and aborts its context.
// Cancelling a nil, settled or already cancelled handle is a no-op.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.cancelled.Store(true)
	h.cancel()
}

// Cancelled reports whether Cancel has been called.
func (h *Handle) Cancelled() bool {
	return h != nil && h.cancelled.Load()
}

// Context returns the context carried by the outbound call.
func (h *Handle) Context() context.Context {
	return h.ctx
}

// release frees the context without marking the handle cancelled.
func (h *Handle) release() {
	h.cancel()
}
