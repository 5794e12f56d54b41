package flow_test

import (
	"context"
	"testing"

	"github.com/baxromumarov/csp"
	"github.com/baxromumarov/csp/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapReadableTransformsValues(t *testing.T) {
	ctx := context.Background()
	in := csp.NewChannel[int](0)
	out := flow.MapReadable(ctx, in, func(v int) string {
		if v == 1 {
			return "one"
		}
		return "other"
	})

	go func() {
		require.NoError(t, in.Send(ctx, 1))
		in.Close()
	}()

	v, ok, err := out.Receive(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "one", v)

	_, ok, err = out.Receive(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilterReadableDropsRejectedValues(t *testing.T) {
	ctx := context.Background()
	in := csp.NewChannel[int](0)
	out := flow.FilterReadable(ctx, in, func(v int) bool { return v%2 == 0 })

	go func() {
		require.NoError(t, in.Send(ctx, 1))
		require.NoError(t, in.Send(ctx, 2))
		in.Close()
	}()

	v, ok, err := out.Receive(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok, err = out.Receive(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMapWritableForwardsTransformedValues(t *testing.T) {
	ctx := context.Background()
	out := csp.NewChannel[string](1)
	in := flow.MapWritable[int, string](ctx, out, func(v int) string {
		return "n"
	})

	require.NoError(t, in.Send(ctx, 5))
	v, ok, err := out.Receive(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "n", v)
}
