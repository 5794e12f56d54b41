package flow

import (
	"context"

	"github.com/baxromumarov/csp"
)

// MapReadable transforms values received from in by applying fn, sending
// results to the returned channel. The output channel closes once in
// closes or ctx is done.
func MapReadable[T, U any](ctx context.Context, in *csp.Channel[T], fn func(T) U) *csp.Channel[U] {
	out := csp.NewChannel[U](0, csp.WithName("flow.MapReadable"))

	go func() {
		defer out.Close()
		for {
			v, ok, err := in.Receive(ctx)
			if err != nil || !ok {
				return
			}
			if sendErr := out.Send(ctx, fn(v)); sendErr != nil {
				return
			}
		}
	}()

	return out
}

// FilterReadable passes values received from in to the returned channel
// only when keep returns true. The output channel closes once in closes
// or ctx is done.
func FilterReadable[T any](ctx context.Context, in *csp.Channel[T], keep func(T) bool) *csp.Channel[T] {
	out := csp.NewChannel[T](0, csp.WithName("flow.FilterReadable"))

	go func() {
		defer out.Close()
		for {
			v, ok, err := in.Receive(ctx)
			if err != nil || !ok {
				return
			}
			if !keep(v) {
				continue
			}
			if sendErr := out.Send(ctx, v); sendErr != nil {
				return
			}
		}
	}()

	return out
}

// MapWritable returns a channel that applies fn to every value sent to
// it and forwards the result to out. Closing the returned channel closes
// out once the forwarding goroutine drains.
func MapWritable[T, U any](ctx context.Context, out *csp.Channel[U], fn func(T) U) *csp.Channel[T] {
	in := csp.NewChannel[T](0, csp.WithName("flow.MapWritable"))

	go func() {
		defer out.Close()
		for {
			v, ok, err := in.Receive(ctx)
			if err != nil || !ok {
				return
			}
			if sendErr := out.Send(ctx, fn(v)); sendErr != nil {
				return
			}
		}
	}()

	return in
}
