package flow_test

import (
	"context"
	"testing"
	"time"

	"github.com/baxromumarov/csp"
	"github.com/baxromumarov/csp/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFansInAllInputs(t *testing.T) {
	ctx := context.Background()
	a := csp.NewChannel[int](1)
	b := csp.NewChannel[int](1)

	out := flow.Merge(ctx, a, b)

	require.NoError(t, a.Send(ctx, 1))
	require.NoError(t, b.Send(ctx, 2))
	a.Close()
	b.Close()

	got := map[int]bool{}
	for i := 0; i < 2; i++ {
		v, ok, err := out.Receive(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		got[v] = true
	}
	assert.True(t, got[1])
	assert.True(t, got[2])

	_, ok, err := out.Receive(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "output should close once every input has closed")
}

func TestMergeNoInputsClosesImmediately(t *testing.T) {
	out := flow.Merge[int](context.Background())
	_, ok, err := out.Receive(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMergeStopsOnContextCancellation(t *testing.T) {
	a := csp.NewChannel[int](0)
	ctx, cancel := context.WithCancel(context.Background())

	out := flow.Merge(ctx, a)
	cancel()

	select {
	case <-closedSignal(out):
	case <-time.After(time.Second):
		t.Fatal("Merge output did not close after context cancellation")
	}
}

func closedSignal(ch *csp.Channel[int]) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, ok, err := ch.Receive(context.Background())
			if err != nil || !ok {
				return
			}
		}
	}()
	return done
}
