package flow

import (
	"context"
	"strconv"

	"github.com/baxromumarov/csp"
)

const ctxArmKey = "ctx"

// Merge fans multiple input channels into a single output channel,
// selecting fairly among whichever inputs are ready on each step. The
// output channel closes once every input has closed or ctx is done; it
// never closes an input.
func Merge[T any](ctx context.Context, ins ...*csp.Channel[T]) *csp.Channel[T] {
	out := csp.NewChannel[T](0, csp.WithName("flow.Merge"))

	if len(ins) == 0 {
		out.Close()
		return out
	}

	go func() {
		defer out.Close()

		active := make([]*csp.Channel[T], len(ins))
		copy(active, ins)

		for len(active) > 0 {
			arms := make([]csp.Arm, 0, len(active)+1)
			for i, ch := range active {
				arms = append(arms, csp.SelectableArm(strconv.Itoa(i), ch.RaceReceive()))
			}
			arms = append(arms, csp.SelectableArm(ctxArmKey, csp.RaceAbortSignal(ctx)))

			res, err := csp.Select(ctx, arms...)
			if err != nil || res.Type == ctxArmKey {
				return
			}

			idx, convErr := strconv.Atoi(res.Type)
			if convErr != nil {
				return
			}
			rr := res.Value.(csp.ReceiveResult[T])
			if !rr.Ok {
				active = append(active[:idx], active[idx+1:]...)
				continue
			}
			if sendErr := out.Send(ctx, rr.Value); sendErr != nil {
				return
			}
		}
	}()

	return out
}
