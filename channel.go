package csp

import (
	"container/list"
	"context"
	"sync"

	"go.uber.org/zap"
)

type sendResultMsg struct {
	err error
}

type sendWaiter[T any] struct {
	value   T
	ch      chan sendResultMsg
	settled bool
}

type recvResultMsg[T any] struct {
	value T
	ok    bool
}

type recvWaiter[T any] struct {
	ch      chan recvResultMsg[T]
	settled bool
}

// Channel is a typed rendezvous point with an optional fixed-size FIFO
// buffer. A Channel with capacity 0 is an unbuffered rendezvous channel:
// Send blocks until a matching Receive is ready and vice versa. A
// Channel with capacity N queues up to N values before Send blocks.
//
// Channel is safe for concurrent use by any number of goroutines.
type Channel[T any] struct {
	mu sync.Mutex

	cap         int
	buf         *ring[T]
	sendWaiters *list.List // of *sendWaiter[T]
	recvWaiters *list.List // of *recvWaiter[T]

	readableWaiters *wakeSet
	writableWaiters *wakeSet

	closed bool

	name   string
	logger *zap.Logger
}

// NewChannel creates a Channel with the given buffer capacity. Capacity 0
// produces an unbuffered rendezvous channel.
func NewChannel[T any](capacity int, opts ...ChannelOption) *Channel[T] {
	if capacity < 0 {
		panic("csp: channel capacity must be non-negative")
	}
	cfg := defaultChannelConfig()
	cfg.capacity = capacity
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Channel[T]{
		cap:             capacity,
		buf:             newRing[T](capacity),
		sendWaiters:     list.New(),
		recvWaiters:     list.New(),
		readableWaiters: newWakeSet(),
		writableWaiters: newWakeSet(),
		name:            cfg.name,
		logger:          cfg.logger,
	}
}

// Name returns the channel's diagnostic name.
func (c *Channel[T]) Name() string {
	return c.name
}

// Cap returns the channel's buffer capacity.
func (c *Channel[T]) Cap() int {
	return c.cap
}

// Send blocks until v is accepted: handed directly to a waiting receiver,
// appended to the buffer, or the channel closes or ctx is done. It
// returns ErrClosedSend if the channel is or becomes closed, or ctx.Err()
// if ctx is done first.
func (c *Channel[T]) Send(ctx context.Context, v T) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosedSend
	}

	if c.recvWaiters.Len() > 0 {
		e := c.recvWaiters.Front()
		c.recvWaiters.Remove(e)
		w := e.Value.(*recvWaiter[T])
		w.settled = true
		w.ch <- recvResultMsg[T]{value: v, ok: true}
		c.mu.Unlock()
		return nil
	}

	c.readableWaiters.wakeOne()

	if c.buf.write(v) {
		c.mu.Unlock()
		return nil
	}

	if err := ctx.Err(); err != nil {
		c.mu.Unlock()
		return err
	}

	w := &sendWaiter[T]{value: v, ch: make(chan sendResultMsg, 1)}
	elem := c.sendWaiters.PushBack(w)
	c.mu.Unlock()

	select {
	case res := <-w.ch:
		return res.err
	case <-ctx.Done():
		c.mu.Lock()
		if !w.settled {
			w.settled = true
			c.sendWaiters.Remove(elem)
			c.mu.Unlock()
			return ctx.Err()
		}
		c.mu.Unlock()
		res := <-w.ch
		return res.err
	}
}

// TrySend attempts to deliver v without blocking. ok is true if v was
// handed to a waiting receiver or appended to the buffer. If the channel
// is closed, ok is false and err is ErrClosedSend.
func (c *Channel[T]) TrySend(v T) (ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, ErrClosedSend
	}

	if c.recvWaiters.Len() > 0 {
		e := c.recvWaiters.Front()
		c.recvWaiters.Remove(e)
		w := e.Value.(*recvWaiter[T])
		w.settled = true
		w.ch <- recvResultMsg[T]{value: v, ok: true}
		return true, nil
	}

	c.readableWaiters.wakeOne()

	if c.buf.write(v) {
		return true, nil
	}

	return false, nil
}

// Receive blocks until a value is available, the channel closes, or ctx
// is done. ok is false when the channel is drained and closed; err is
// non-nil only when ctx is done first.
func (c *Channel[T]) Receive(ctx context.Context) (value T, ok bool, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	if v, got, closedEmpty := c.tryReceiveLocked(); got || closedEmpty {
		c.mu.Unlock()
		return v, got, nil
	}

	if cErr := ctx.Err(); cErr != nil {
		c.mu.Unlock()
		var zero T
		return zero, false, cErr
	}

	c.writableWaiters.wakeOne()

	w := &recvWaiter[T]{ch: make(chan recvResultMsg[T], 1)}
	elem := c.recvWaiters.PushBack(w)
	c.mu.Unlock()

	select {
	case res := <-w.ch:
		return res.value, res.ok, nil
	case <-ctx.Done():
		c.mu.Lock()
		if !w.settled {
			w.settled = true
			c.recvWaiters.Remove(elem)
			c.mu.Unlock()
			var zero T
			return zero, false, ctx.Err()
		}
		c.mu.Unlock()
		res := <-w.ch
		return res.value, res.ok, nil
	}
}

// TryReceive attempts to take a value without blocking. ok is true when a
// value was obtained. If ok is false, closed distinguishes a drained,
// closed channel (closed == true, always empty from now on) from a
// channel that is simply empty right now (closed == false).
func (c *Channel[T]) TryReceive() (value T, ok bool, closed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tryReceiveLocked()
}

func (c *Channel[T]) tryReceiveLocked() (value T, ok bool, closed bool) {
	var zero T

	if c.cap == 0 {
		if c.sendWaiters.Len() > 0 {
			e := c.sendWaiters.Front()
			c.sendWaiters.Remove(e)
			w := e.Value.(*sendWaiter[T])
			w.settled = true
			v := w.value
			w.ch <- sendResultMsg{err: nil}
			return v, true, false
		}
		if c.closed {
			return zero, false, true
		}
		return zero, false, false
	}

	if c.buf.length == 0 {
		if c.closed {
			return zero, false, true
		}
		return zero, false, false
	}

	v, _ := c.buf.read()
	if c.sendWaiters.Len() > 0 {
		e := c.sendWaiters.Front()
		c.sendWaiters.Remove(e)
		w := e.Value.(*sendWaiter[T])
		w.settled = true
		c.buf.write(w.value)
		w.ch <- sendResultMsg{err: nil}
	} else {
		c.writableWaiters.wakeOne()
	}
	return v, true, false
}

// Close marks the channel closed. Buffered values already queued remain
// available to Receive/TryReceive. Every blocked Send fails with
// ErrClosedSend; every blocked Receive settles with ok == false. Every
// readable and writable waiter is woken. Close is idempotent.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true

	for e := c.recvWaiters.Front(); e != nil; e = e.Next() {
		w := e.Value.(*recvWaiter[T])
		w.settled = true
		w.ch <- recvResultMsg[T]{ok: false}
	}
	c.recvWaiters.Init()

	for e := c.sendWaiters.Front(); e != nil; e = e.Next() {
		w := e.Value.(*sendWaiter[T])
		w.settled = true
		w.ch <- sendResultMsg{err: ErrClosedSend}
	}
	c.sendWaiters.Init()

	c.readableWaiters.wakeAll()
	c.writableWaiters.wakeAll()
	c.mu.Unlock()
}

// Closed reports whether Close has been called.
func (c *Channel[T]) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// WaitUntilReadable blocks until a Receive on the channel would not
// block: a value is buffered, a sender is waiting, or the channel is
// closed. tag is returned unchanged on success; it exists so callers
// racing several readiness waits can tell which one fired.
func (c *Channel[T]) WaitUntilReadable(ctx context.Context, tag any) (any, error) {
	sig, detach := FromContext(ctx)
	defer detach()

	cc := NewCancellableCompletion[any](sig, func(resolve func(any), reject func(error)) func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || c.buf.length > 0 || c.sendWaiters.Len() > 0 {
			resolve(tag)
			return nil
		}
		id := c.readableWaiters.add(func() { resolve(tag) })
		return func() {
			c.mu.Lock()
			c.readableWaiters.remove(id)
			c.mu.Unlock()
		}
	}, WithCompletionLogger(c.logger), WithCompletionLabel("Channel("+c.name+").WaitUntilReadable"))

	return cc.Wait()
}

// WaitUntilWritable blocks until a Send on the channel would not block:
// the buffer has room, a receiver is waiting, or the channel is closed
// (a closed channel is always "writable" in the sense that Send returns
// immediately, albeit with ErrClosedSend).
func (c *Channel[T]) WaitUntilWritable(ctx context.Context, tag any) (any, error) {
	sig, detach := FromContext(ctx)
	defer detach()

	cc := NewCancellableCompletion[any](sig, func(resolve func(any), reject func(error)) func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		writable := c.closed || c.buf.length < c.cap || c.recvWaiters.Len() > 0
		if writable {
			resolve(tag)
			return nil
		}
		id := c.writableWaiters.add(func() { resolve(tag) })
		return func() {
			c.mu.Lock()
			c.writableWaiters.remove(id)
			c.mu.Unlock()
		}
	}, WithCompletionLogger(c.logger), WithCompletionLabel("Channel("+c.name+").WaitUntilWritable"))

	return cc.Wait()
}

// ReadableWaitsCount reports how many goroutines are currently parked in
// WaitUntilReadable (or a RaceReceive select arm) on this channel.
func (c *Channel[T]) ReadableWaitsCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readableWaiters.len()
}

// WritableWaitsCount reports how many goroutines are currently parked in
// WaitUntilWritable (or a RaceSend select arm) on this channel.
func (c *Channel[T]) WritableWaitsCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writableWaiters.len()
}

// ReceiveResult is the value a RaceReceive arm commits on a Select. Ok is
// false when the channel was closed and drained.
type ReceiveResult[T any] struct {
	Value T
	Ok    bool
}

// SendResult is the value a RaceSend arm commits on a Select. Err is
// ErrClosedSend if the channel was closed; nil on a successful delivery.
type SendResult struct {
	Err error
}

type raceReceive[T any] struct {
	ch *Channel[T]
}

// RaceReceive returns a Selectable arm for use with Select that commits a
// ReceiveResult[T] when a value becomes available or the channel closes.
func (c *Channel[T]) RaceReceive() Selectable {
	return raceReceive[T]{ch: c}
}

func (raceReceive[T]) selectable() {}

func (r raceReceive[T]) wait(sig *Signal, tag any) *CancellableCompletion[any] {
	c := r.ch
	return NewCancellableCompletion[any](sig, func(resolve func(any), reject func(error)) func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || c.buf.length > 0 || c.sendWaiters.Len() > 0 {
			resolve(tag)
			return nil
		}
		id := c.readableWaiters.add(func() { resolve(tag) })
		return func() {
			c.mu.Lock()
			c.readableWaiters.remove(id)
			c.mu.Unlock()
		}
	}, WithCompletionLogger(c.logger), WithCompletionLabel("Channel("+c.name+").RaceReceive"))
}

func (r raceReceive[T]) attempt() (any, bool) {
	v, ok, closed := r.ch.TryReceive()
	if ok {
		return ReceiveResult[T]{Value: v, Ok: true}, true
	}
	if closed {
		return ReceiveResult[T]{Ok: false}, true
	}
	return nil, false
}

type raceSend[T any] struct {
	ch    *Channel[T]
	value T
}

// RaceSend returns a Selectable arm for use with Select that commits a
// SendResult once v has been delivered or the channel is found closed.
func (c *Channel[T]) RaceSend(v T) Selectable {
	return raceSend[T]{ch: c, value: v}
}

func (raceSend[T]) selectable() {}

func (r raceSend[T]) wait(sig *Signal, tag any) *CancellableCompletion[any] {
	c := r.ch
	return NewCancellableCompletion[any](sig, func(resolve func(any), reject func(error)) func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		writable := c.closed || c.buf.length < c.cap || c.recvWaiters.Len() > 0
		if writable {
			resolve(tag)
			return nil
		}
		id := c.writableWaiters.add(func() { resolve(tag) })
		return func() {
			c.mu.Lock()
			c.writableWaiters.remove(id)
			c.mu.Unlock()
		}
	}, WithCompletionLogger(c.logger), WithCompletionLabel("Channel("+c.name+").RaceSend"))
}

func (r raceSend[T]) attempt() (any, bool) {
	ok, err := r.ch.TrySend(r.value)
	if ok {
		return SendResult{}, true
	}
	if err != nil {
		return SendResult{Err: err}, true
	}
	return nil, false
}
