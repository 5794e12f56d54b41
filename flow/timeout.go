package flow

import (
	"context"
	"time"

	"github.com/baxromumarov/csp"
)

// Timeout returns a channel that receives a single tick after d elapses,
// then closes. Passing it alongside other channels as a Select arm
// (ch.RaceReceive()) bounds a race by a duration instead of a full
// context. Closing or cancelling ctx before d elapses closes the
// returned channel without a tick.
//
// Timeout panics if d <= 0.
func Timeout(ctx context.Context, d time.Duration) *csp.Channel[time.Time] {
	if d <= 0 {
		panic("flow: Timeout requires d > 0")
	}

	out := csp.NewChannel[time.Time](1, csp.WithName("flow.Timeout"))

	go func() {
		defer out.Close()
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case t := <-timer.C:
			_, _ = out.TrySend(t)
		case <-ctx.Done():
		}
	}()

	return out
}
