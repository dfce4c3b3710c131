package dom

// AbortSignal notifies interested parties that an operation was aborted.
// Listeners registered with an aborted signal are removed when it fires.
type AbortSignal struct {
	aborted   bool
	reason    any
	callbacks []func()
}

// Aborted returns true if the signal's controller has aborted.
func (s *AbortSignal) Aborted() bool {
	return s.aborted
}

// Reason returns the abort reason, or nil if not aborted.
func (s *AbortSignal) Reason() any {
	return s.reason
}

// onAbort registers a callback to run when the signal aborts. If the signal
// has already aborted, the callback runs immediately.
func (s *AbortSignal) onAbort(fn func()) {
	if s.aborted {
		fn()
		return
	}
	s.callbacks = append(s.callbacks, fn)
}

// AbortController produces an AbortSignal and aborts it on demand.
type AbortController struct {
	signal *AbortSignal
}

// NewAbortController creates a controller with a fresh, unaborted signal.
func NewAbortController() *AbortController {
	return &AbortController{signal: &AbortSignal{}}
}

// Signal returns the controller's signal.
func (c *AbortController) Signal() *AbortSignal {
	return c.signal
}

// Abort aborts the signal with the given reason. Idempotent; only the first
// call's reason is kept.
func (c *AbortController) Abort(reason any) {
	s := c.signal
	if s.aborted {
		return
	}
	s.aborted = true
	s.reason = reason
	callbacks := s.callbacks
	s.callbacks = nil
	for _, fn := range callbacks {
		fn()
	}
}
