package main

import (
	"context"
	"fmt"
	"time"

	"github.com/baxromumarov/csp"
)

func main() {
	rendezvous()
	fairSelect()
}

// rendezvous demonstrates an unbuffered channel: the send doesn't
// complete until a receiver is ready for it.
func rendezvous() {
	ch := csp.NewChannel[string](0, csp.WithName("greeting"))
	ctx := context.Background()

	go func() {
		if err := ch.Send(ctx, "hello"); err != nil {
			fmt.Println("send failed:", err)
		}
	}()

	v, ok, err := ch.Receive(ctx)
	if err != nil {
		fmt.Println("receive failed:", err)
		return
	}
	fmt.Printf("rendezvous: ok=%v value=%q\n", ok, v)
}

// fairSelect races two producers against a timeout and reports which arm
// won. Run it a few times and both producers show up as winners roughly
// evenly, since Select shuffles arm order on every call.
func fairSelect() {
	ctx := context.Background()
	a := csp.NewChannel[int](1, csp.WithName("a"))
	b := csp.NewChannel[int](1, csp.WithName("b"))

	_, _ = a.TrySend(1)
	_, _ = b.TrySend(2)

	res, err := csp.Select(ctx,
		csp.SelectableArm("a", a.RaceReceive()),
		csp.SelectableArm("b", b.RaceReceive()),
		csp.SelectableArm("timeout", csp.RaceTimeout(time.Second)),
	)
	if err != nil {
		fmt.Println("select failed:", err)
		return
	}
	fmt.Printf("fairSelect: winner=%s value=%+v\n", res.Type, res.Value)
}
