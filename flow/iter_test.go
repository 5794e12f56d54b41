package flow_test

import (
	"context"
	"testing"

	"github.com/baxromumarov/csp"
	"github.com/baxromumarov/csp/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeYieldsUntilClose(t *testing.T) {
	ctx := context.Background()
	in := csp.NewChannel[int](0)

	go func() {
		require.NoError(t, in.Send(ctx, 1))
		require.NoError(t, in.Send(ctx, 2))
		in.Close()
	}()

	var got []int
	for v := range flow.Range(ctx, in) {
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2}, got)
}

func TestRangeStopsEarlyWithoutClosingInput(t *testing.T) {
	ctx := context.Background()
	in := csp.NewChannel[int](2)
	require.NoError(t, in.Send(ctx, 1))
	require.NoError(t, in.Send(ctx, 0))

	for v := range flow.Range(ctx, in) {
		if v == 1 {
			break
		}
	}
	assert.False(t, in.Closed())
}

func TestPullNextStop(t *testing.T) {
	ctx := context.Background()
	in := csp.NewChannel[int](0)
	go func() {
		require.NoError(t, in.Send(ctx, 9))
		in.Close()
	}()

	next, stop := flow.Pull(ctx, in)
	defer stop()

	v, ok := next()
	require.True(t, ok)
	assert.Equal(t, 9, v)

	_, ok = next()
	assert.False(t, ok)
}

func TestDrainConsumesEverything(t *testing.T) {
	ctx := context.Background()
	in := csp.NewChannel[int](2)
	require.NoError(t, in.Send(ctx, 1))
	require.NoError(t, in.Send(ctx, 2))
	in.Close()

	flow.Drain(ctx, in)

	_, ok, err := in.Receive(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
