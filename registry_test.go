package actix

import (
	"testing"

	"go.uber.org/goleak"
)

// counterService demonstrates the Service[A] pattern: DefaultService
// has no Context to register handlers against, so registration happens
// in OnStarted instead, per RegisterHandler's documented "or its
// on_started hook" escape hatch.
type counterService struct {
	hits int
}

func (counterService) DefaultService() *counterService { return &counterService{} }

func (a *counterService) OnStarted(actor *counterService, ctx *Context[counterService]) {
	RegisterHandler(ctx, func(a *counterService, _ bumpService, _ *Context[counterService]) MessageResponse[int] {
		a.hits++
		return Immediate(a.hits)
	})
}

type bumpService struct {
	Reply[int]
}

func Test_ServiceOfReturnsTheSameAddressOnRepeatedCalls(t *testing.T) {
	defer goleak.VerifyNone(t)

	arb := NewArbiter("test")

	first := ServiceOf[counterService](arb, DefaultMailboxCapacity)
	second := ServiceOf[counterService](arb, DefaultMailboxCapacity)

	if !first.Connected() || !second.Connected() {
		t.Fatal("ServiceOf returned a disconnected Address")
	}

	got := awaitRequest(t, Send[Local, counterService](first, bumpService{}))
	if got != 1 {
		t.Errorf("first bump: got %d, want 1", got)
	}

	got = awaitRequest(t, Send[Local, counterService](second, bumpService{}))
	if got != 2 {
		t.Errorf("second bump via the address returned by the second ServiceOf call: got %d, want 2 (same underlying actor)", got)
	}

	first.Close()
	second.Close()
	if err := arb.Wait(); err != nil {
		t.Errorf("Wait: %v", err)
	}
}
