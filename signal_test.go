package csp_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/baxromumarov/csp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerAbortFiresListenersOnce(t *testing.T) {
	ctrl := csp.NewController()

	var calls int
	remove := ctrl.OnAbort(func() { calls++ })
	_ = remove

	ctrl.Abort(nil)
	ctrl.Abort(nil)

	assert.Equal(t, 1, calls)
	assert.True(t, ctrl.Aborted())
	assert.ErrorIs(t, ctrl.Reason(), csp.ErrAborted)
}

func TestSignalOnAbortAfterFireRunsSynchronously(t *testing.T) {
	ctrl := csp.NewController()
	myErr := errors.New("boom")
	ctrl.Abort(myErr)

	var called bool
	remove := ctrl.OnAbort(func() { called = true })
	remove()

	assert.True(t, called)
	assert.ErrorIs(t, ctrl.Reason(), myErr)
}

func TestSignalListenerCountReflectsActiveRegistrations(t *testing.T) {
	ctrl := csp.NewController()
	assert.Equal(t, 0, ctrl.Listeners())

	remove1 := ctrl.OnAbort(func() {})
	remove2 := ctrl.OnAbort(func() {})
	assert.Equal(t, 2, ctrl.Listeners())

	remove1()
	assert.Equal(t, 1, ctrl.Listeners())
	remove2()
	assert.Equal(t, 0, ctrl.Listeners())
}

func TestLinkedAbortPropagatesFromUpstream(t *testing.T) {
	upstream := csp.NewController()
	child, abort := csp.LinkedAbort(upstream.Signal)
	defer abort()

	assert.False(t, child.Aborted())
	upstream.Abort(nil)
	assert.True(t, child.Aborted())
}

func TestLinkedAbortOwnAbortDoesNotAffectUpstream(t *testing.T) {
	upstream := csp.NewController()
	child, abort := csp.LinkedAbort(upstream.Signal)

	abort()
	assert.True(t, child.Aborted())
	assert.False(t, upstream.Aborted())
}

func TestFromContextBridgesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sig, detach := csp.FromContext(ctx)
	defer detach()

	assert.False(t, sig.Aborted())
	cancel()

	require.Eventually(t, sig.Aborted, time.Second, time.Millisecond)
}

func TestFromContextAlreadyDoneAbortsImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sig, detach := csp.FromContext(ctx)
	defer detach()

	assert.True(t, sig.Aborted())
}

func TestFromContextWithoutCancellationNeverAborts(t *testing.T) {
	sig, detach := csp.FromContext(context.Background())
	defer detach()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, sig.Aborted())
}
