// Package csp provides CSP-style channels, a fair multi-way select, and a
// cancellation primitive they share.
//
// Channels are typed rendezvous points with an optional fixed-size FIFO
// buffer. They support blocking [Channel.Send]/[Channel.Receive],
// non-blocking [Channel.TrySend]/[Channel.TryReceive], readiness waits
// ([Channel.WaitUntilReadable], [Channel.WaitUntilWritable]), and
// selectable forms ([Channel.RaceReceive], [Channel.RaceSend]) for use
// with [Select].
//
// # Select
//
// [Select] races a heterogeneous set of arms — selectable channel
// operations, plain completions, and completion factories — and commits
// exactly one. Arms are shuffled before racing so ties break uniformly,
// and a steal (another goroutine consumes the value between wake and
// commit) causes that arm to re-arm and retry rather than falsely
// resolving.
//
// # Cancellation
//
// [CancellableCompletion] is the one-shot settlement primitive that the
// readiness waits and every [Select] arm are built on. It binds to an
// optional [Signal] and guarantees the signal's listener is detached on
// settlement, and that any cleanup callback runs at most once. [Signal]
// is this package's native abort broadcast; [FromContext] bridges a
// context.Context into one for [Channel.WaitUntilReadable],
// [Channel.WaitUntilWritable] and [Select]. [Channel.Send] and
// [Channel.Receive] park on a private waiter channel and watch the
// context directly.
//
// # Composition
//
// The github.com/baxromumarov/csp/flow subpackage builds higher-level
// pipelines on top of Channel and Select: fan-in merge, time-partitioned
// batching, timeout channels, and map adapters.
package csp
