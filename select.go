package csp

import (
	"context"
	"fmt"
	"math/rand/v2"
	"reflect"
)

// Selectable is something Select can race: a channel operation that can
// be attempted optimistically once its wait completes. Only this package
// can implement Selectable; use Channel.RaceReceive / Channel.RaceSend or
// the RaceAbortSignal / RaceTimeout / RaceNever helpers to obtain one.
type Selectable interface {
	wait(sig *Signal, tag any) *CancellableCompletion[any]
	attempt() (any, bool)
	selectable()
}

type armKind int

const (
	armSelectable armKind = iota
	armCompletion
	armFactory
)

// Arm is one branch of a Select call.
type Arm struct {
	Key        string
	kind       armKind
	sel        Selectable
	completion *CancellableCompletion[any]
	factory    func(sig *Signal) *CancellableCompletion[any]
}

// SelectableArm races a channel operation (Channel.RaceReceive,
// Channel.RaceSend, or a helper like RaceTimeout).
func SelectableArm(key string, s Selectable) Arm {
	return Arm{Key: key, kind: armSelectable, sel: s}
}

// CompletionArm races an already-constructed completion. Unlike a
// selectable arm, winning a completion arm commits unconditionally: there
// is no attempt/steal step.
func CompletionArm(key string, c *CancellableCompletion[any]) Arm {
	return Arm{Key: key, kind: armCompletion, completion: c}
}

// FactoryArm races a completion built fresh for this Select call. The
// factory receives the Select's internal abort signal, so its work can be
// cancelled the moment another arm wins.
func FactoryArm(key string, factory func(sig *Signal) *CancellableCompletion[any]) Arm {
	return Arm{Key: key, kind: armFactory, factory: factory}
}

// Result is the outcome of a successful Select: which arm won and the
// value it committed.
type Result struct {
	Type  string
	Value any
}

// Select races every arm and commits exactly one. Arms are shuffled
// before racing so repeated ties between simultaneously-ready arms don't
// systematically favor earlier positions. If a selectable arm's wait
// resolves but its attempt finds the value already taken by a concurrent
// goroutine (a steal), that arm is re-armed and the race continues.
//
// Select returns ErrAborted if ctx is done before any arm commits, or a
// *SelectFailure if a winning arm's attempt panics or a completion or
// factory arm rejects with an error other than ErrAborted.
func Select(ctx context.Context, arms ...Arm) (Result, error) {
	if len(arms) == 0 {
		panic("csp: Select requires at least one arm")
	}
	for i, a := range arms {
		if a.Key == "" {
			panic(fmt.Sprintf("csp: Select arm[%d] has an empty key", i))
		}
	}

	outerSig, detachCtx := FromContext(ctx)
	defer detachCtx()
	sig, abortSig := LinkedAbort(outerSig)
	defer abortSig()

	order := make([]int, len(arms))
	for i := range order {
		order[i] = i
	}
	rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	pending := make([]*CancellableCompletion[any], len(arms))
	for _, idx := range order {
		pending[idx] = armWait(arms[idx], sig)
	}

	for {
		cases := make([]reflect.SelectCase, len(order))
		for i, idx := range order {
			cases[i] = reflect.SelectCase{
				Dir:  reflect.SelectRecv,
				Chan: reflect.ValueOf(pending[idx].doneChan()),
			}
		}
		chosen, _, _ := reflect.Select(cases)
		idx := order[chosen]
		arm := arms[idx]
		winner := pending[idx]

		val, err := winner.Wait()
		if err != nil {
			if err == ErrAborted {
				return Result{}, ErrAborted
			}
			return Result{}, &SelectFailure{Arm: arm.Key, Cause: err}
		}

		if arm.kind != armSelectable {
			return Result{Type: arm.Key, Value: val}, nil
		}

		av, ok, aerr := callAttempt(arm.sel)
		if aerr != nil {
			return Result{}, &SelectFailure{Arm: arm.Key, Cause: aerr}
		}
		if ok {
			return Result{Type: arm.Key, Value: av}, nil
		}

		// Steal: another goroutine consumed the readiness between wake
		// and attempt. Re-arm this position and keep racing.
		pending[idx] = armWait(arm, sig)
	}
}

func armWait(arm Arm, sig *Signal) *CancellableCompletion[any] {
	switch arm.kind {
	case armSelectable:
		return arm.sel.wait(sig, arm.Key)
	case armCompletion:
		return arm.completion
	case armFactory:
		return arm.factory(sig)
	default:
		panic("csp: unknown arm kind")
	}
}

func callAttempt(s Selectable) (val any, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	val, ok = s.attempt()
	return
}
