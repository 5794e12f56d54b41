package csp

import (
	"sync/atomic"

	"go.uber.org/zap"
)

const (
	completionPending int32 = iota
	completionSettled
)

// CancellableCompletion is a one-shot settlement token bound to an
// optional abort Signal. The executor runs synchronously and is handed
// resolve/reject closures plus returns an optional cleanupOnAbort func.
// Whichever of {resolve, reject, signal abort} happens first wins;
// cleanupOnAbort runs at most once, and only on the abort path. Listener
// registration on sig is always detached once the completion settles, by
// the time Wait returns.
type CancellableCompletion[T any] struct {
	state  atomic.Int32
	result T
	err    error
	done   chan struct{}
	remove func()
	logger *zap.Logger
	label  string
}

// CompletionOption configures a CancellableCompletion's diagnostics.
type CompletionOption func(*completionConfig)

type completionConfig struct {
	logger *zap.Logger
	label  string
}

// WithCompletionLogger overrides the logger used to report a panicking
// cleanupOnAbort callback. Defaults to the package logger set via
// SetLogger.
func WithCompletionLogger(l *zap.Logger) CompletionOption {
	return func(c *completionConfig) { c.logger = l }
}

// WithCompletionLabel sets the component name attached to any logged
// cleanup panic.
func WithCompletionLabel(label string) CompletionOption {
	return func(c *completionConfig) { c.label = label }
}

// NewCancellableCompletion runs executor synchronously with resolve and
// reject closures. If executor returns without having settled the
// completion and sig is non-nil, an abort listener is attached so the
// completion settles with ErrAborted when sig fires, invoking the
// returned cleanupOnAbort exactly once.
func NewCancellableCompletion[T any](sig *Signal, executor func(resolve func(T), reject func(error)) (cleanupOnAbort func()), opts ...CompletionOption) *CancellableCompletion[T] {
	cfg := completionConfig{label: "CancellableCompletion"}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &CancellableCompletion[T]{
		done:   make(chan struct{}),
		logger: cfg.logger,
		label:  cfg.label,
	}

	resolve := func(v T) {
		if c.state.CompareAndSwap(completionPending, completionSettled) {
			c.result = v
			close(c.done)
		}
	}
	reject := func(err error) {
		if c.state.CompareAndSwap(completionPending, completionSettled) {
			c.err = err
			close(c.done)
		}
	}

	if sig != nil && sig.Aborted() {
		reject(ErrAborted)
		return c
	}

	cleanup := executor(resolve, reject)

	if c.state.Load() == completionSettled || sig == nil {
		return c
	}

	c.remove = sig.OnAbort(func() {
		if c.state.CompareAndSwap(completionPending, completionSettled) {
			c.err = ErrAborted
			close(c.done)
			safeCleanup(c.logger, c.label, cleanup)
		}
	})

	return c
}

// Wait blocks until the completion settles and returns its value or
// error. It is safe to call Wait more than once or from more than one
// goroutine; all callers observe the same result.
func (c *CancellableCompletion[T]) Wait() (T, error) {
	<-c.done
	if c.remove != nil {
		c.remove()
	}
	return c.result, c.err
}

// Settled reports whether the completion has already resolved or
// rejected.
func (c *CancellableCompletion[T]) Settled() bool {
	return c.state.Load() == completionSettled
}

func (c *CancellableCompletion[T]) doneChan() <-chan struct{} {
	return c.done
}
