package csp

import (
	"context"
	"sync"
)

// Signal is a one-shot abort broadcast. It starts live and transitions to
// aborted exactly once; listeners registered via OnAbort are invoked at
// that transition and never again.
type Signal struct {
	mu        sync.Mutex
	aborted   bool
	reason    error
	listeners map[int]func()
	nextID    int
}

func newSignal() *Signal {
	return &Signal{listeners: make(map[int]func())}
}

// Aborted reports whether the signal has fired.
func (s *Signal) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

// Reason returns the error the signal aborted with, or nil if it hasn't.
func (s *Signal) Reason() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Listeners reports the number of currently registered abort listeners.
// This is the observability primitive context.Context lacks and the
// reason Signal exists alongside it.
func (s *Signal) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// OnAbort registers fn to run when the signal aborts. If the signal has
// already aborted, fn runs synchronously before OnAbort returns. The
// returned remove func detaches the listener; it is idempotent and safe
// to call even after fn has already run.
func (s *Signal) OnAbort(fn func()) (remove func()) {
	s.mu.Lock()
	if s.aborted {
		s.mu.Unlock()
		fn()
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Signal) abort(reason error) {
	s.mu.Lock()
	if s.aborted {
		s.mu.Unlock()
		return
	}
	if reason == nil {
		reason = ErrAborted
	}
	s.aborted = true
	s.reason = reason
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listeners = make(map[int]func())
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Controller owns a Signal and is the only way to fire it from outside
// this package.
type Controller struct {
	*Signal
}

// NewController creates a live signal together with the controller that
// can abort it.
func NewController() *Controller {
	return &Controller{Signal: newSignal()}
}

// Abort fires the signal. Subsequent calls are no-ops.
func (c *Controller) Abort(reason error) {
	c.Signal.abort(reason)
}

// LinkedAbort derives a child signal that aborts when upstream aborts or
// when the returned abort func is called, whichever comes first. It
// attaches exactly one listener to upstream and detaches it once the
// child settles, so chains of LinkedAbort calls don't accumulate
// listeners on a long-lived ancestor.
func LinkedAbort(upstream *Signal) (child *Signal, abort func()) {
	child = newSignal()
	var detach func()
	if upstream != nil {
		detach = upstream.OnAbort(func() {
			child.abort(upstream.Reason())
		})
	}
	return child, func() {
		child.abort(ErrAborted)
		if detach != nil {
			detach()
		}
	}
}

// FromContext bridges ctx into a Signal: the signal aborts when ctx is
// done. If ctx is nil or carries no deadline/cancellation (Done() == nil),
// the returned signal never aborts through this bridge. The returned
// detach func must be called once the caller no longer needs the bridge;
// it stops the background goroutine watching ctx.Done() without affecting
// a signal that already aborted.
func FromContext(ctx context.Context) (sig *Signal, detach func()) {
	sig = newSignal()
	if ctx == nil {
		return sig, func() {}
	}
	done := ctx.Done()
	if done == nil {
		return sig, func() {}
	}
	select {
	case <-done:
		sig.abort(contextCause(ctx))
		return sig, func() {}
	default:
	}

	stop := make(chan struct{})
	go func() {
		select {
		case <-done:
			sig.abort(contextCause(ctx))
		case <-stop:
		}
	}()
	var once sync.Once
	return sig, func() { once.Do(func() { close(stop) }) }
}

func contextCause(ctx context.Context) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}
	return ctx.Err()
}
