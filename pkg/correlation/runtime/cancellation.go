package runtime

import "sync/atomic"

// CancelToken is a cooperative cancellation flag, polled at loop boundaries
// (per window in TWSE, per identity in IBCE) rather than delivered as an
// exception. A nil *CancelToken is always non-cancelled, so callers may
// pass one optionally.
type CancelToken struct {
	cancelled atomic.Bool
}

// NewCancelToken returns a fresh, non-cancelled token.
func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// RequestCancel flags the token. Safe to call more than once, and safe to
// call concurrently with IsCancelled.
func (t *CancelToken) RequestCancel() {
	if t == nil {
		return
	}
	t.cancelled.Store(true)
}

// IsCancelled reports whether RequestCancel has been called.
func (t *CancelToken) IsCancelled() bool {
	if t == nil {
		return false
	}
	return t.cancelled.Load()
}
