package flow

import (
	"context"
	"iter"

	"github.com/baxromumarov/csp"
)

// Range adapts in to a Go 1.23 range-over-func iterator: it yields values
// from in until in closes, ctx is done, or the loop body stops ranging.
// Stopping the range early does not close in.
func Range[T any](ctx context.Context, in *csp.Channel[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok, err := in.Receive(ctx)
			if err != nil || !ok {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Pull is the explicit next/stop form of Range, for call sites that
// cannot use a range-over-func loop directly. next returns (zero, false)
// once in closes or ctx is done; stop releases resources and must always
// be called.
func Pull[T any](ctx context.Context, in *csp.Channel[T]) (next func() (T, bool), stop func()) {
	return iter.Pull(Range(ctx, in))
}

// Drain reads and discards every value from in until it closes or ctx is
// done. Use it to unblock a producer sending into in during shutdown.
func Drain[T any](ctx context.Context, in *csp.Channel[T]) {
	for {
		_, ok, err := in.Receive(ctx)
		if err != nil || !ok {
			return
		}
	}
}
