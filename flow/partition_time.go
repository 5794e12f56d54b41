package flow

import (
	"context"
	"time"

	"github.com/baxromumarov/csp"
)

// FlushReason indicates why a Batch was emitted.
type FlushReason int

const (
	// FlushSize means the batch reached the configured max size.
	FlushSize FlushReason = iota
	// FlushIdle means idle elapsed since the most recently received item.
	FlushIdle
	// FlushClose means the input channel closed with a partial batch
	// remaining, or ctx was done.
	FlushClose
)

// Batch holds a flushed group of items and the reason it was flushed.
type Batch[T any] struct {
	Items  []T
	Reason FlushReason
}

// PartitionTime groups values received from in into batches of up to
// size elements, flushing early once idle elapses since the most
// recently received item in the current batch. The output channel closes
// once in closes or ctx is done. A partial batch is flushed first when in
// closes; when ctx is done, it is delivered only if a receiver is already
// waiting on the output channel.
//
// PartitionTime panics if size <= 0 or idle <= 0.
func PartitionTime[T any](ctx context.Context, in *csp.Channel[T], size int, idle time.Duration) *csp.Channel[Batch[T]] {
	if size <= 0 {
		panic("flow: PartitionTime requires size > 0")
	}
	if idle <= 0 {
		panic("flow: PartitionTime requires idle > 0")
	}

	out := csp.NewChannel[Batch[T]](0, csp.WithName("flow.PartitionTime"))

	go func() {
		defer out.Close()

		batch := make([]T, 0, size)

		flush := func(reason FlushReason) bool {
			if len(batch) == 0 {
				return true
			}
			if err := out.Send(ctx, Batch[T]{Items: batch, Reason: reason}); err != nil {
				return false
			}
			batch = make([]T, 0, size)
			return true
		}

		for {
			arms := []csp.Arm{csp.SelectableArm("recv", in.RaceReceive())}
			if len(batch) > 0 {
				arms = append(arms, csp.SelectableArm("idle", csp.RaceTimeout(idle)))
			}

			res, err := csp.Select(ctx, arms...)
			if err != nil {
				flush(FlushClose)
				return
			}

			switch res.Type {
			case "idle":
				if !flush(FlushIdle) {
					return
				}
			case "recv":
				rr := res.Value.(csp.ReceiveResult[T])
				if !rr.Ok {
					flush(FlushClose)
					return
				}
				batch = append(batch, rr.Value)
				if len(batch) >= size {
					if !flush(FlushSize) {
						return
					}
				}
			}
		}
	}()

	return out
}
