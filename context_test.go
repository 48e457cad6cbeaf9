package actix

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type sumMsg struct {
	Reply[int]
	A, B int
}

type echoActor struct {
	started  bool
	stopped  bool
	lastSeen int
}

func newEchoActor(ctx *Context[echoActor]) *echoActor {
	RegisterHandler(ctx, func(a *echoActor, m sumMsg, _ *Context[echoActor]) MessageResponse[int] {
		a.lastSeen = m.A + m.B
		return Immediate(a.lastSeen)
	})
	return &echoActor{}
}

func (a *echoActor) OnStarted(actor *echoActor, ctx *Context[echoActor]) { a.started = true }
func (a *echoActor) OnStopped(actor *echoActor, ctx *Context[echoActor]) { a.stopped = true }

func awaitRequest[R any](t *testing.T, req *Request[R]) R {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := req.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return v
}

func Test_SendDeliversImmediateReply(t *testing.T) {
	defer goleak.VerifyNone(t)

	arb := NewArbiter("test")
	addr := Spawn[echoActor](arb, DefaultMailboxCapacity, newEchoActor)

	got := awaitRequest(t, Send[Local, echoActor](addr, sumMsg{A: 10, B: 5}))
	if got != 15 {
		t.Errorf("Send reply: got %d, want 15", got)
	}

	addr.Close()
	if err := arb.Wait(); err != nil {
		t.Errorf("Wait: %v", err)
	}
}

func Test_LifecycleHooksRunOnStartAndStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	arb := NewArbiter("test")
	var actorRef *echoActor
	addr := Spawn[echoActor](arb, DefaultMailboxCapacity, func(ctx *Context[echoActor]) *echoActor {
		a := newEchoActor(ctx)
		actorRef = a
		return a
	})

	awaitRequest(t, Send[Local, echoActor](addr, sumMsg{A: 1, B: 1}))

	addr.Close()
	if err := arb.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if !actorRef.started {
		t.Error("on_started never ran")
	}
	if !actorRef.stopped {
		t.Error("on_stopped never ran")
	}
}

func Test_NoHandlerRegisteredReturnsErrNoHandler(t *testing.T) {
	defer goleak.VerifyNone(t)

	type unregistered struct{ Reply[int] }

	arb := NewArbiter("test")
	addr := Spawn[echoActor](arb, DefaultMailboxCapacity, newEchoActor)

	req := Send[Local, echoActor](addr, unregistered{})
	_, err := req.Get(context.Background())
	if err != ErrNoHandler {
		t.Errorf("Get on unregistered message: got %v, want ErrNoHandler", err)
	}

	addr.Close()
	_ = arb.Wait()
}

func Test_MailboxClosesOnceSendersReachZero(t *testing.T) {
	defer goleak.VerifyNone(t)

	arb := NewArbiter("test")
	addr := Spawn[echoActor](arb, DefaultMailboxCapacity, newEchoActor)

	addr.Close()
	if err := arb.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if addr.Connected() {
		t.Error("Address still Connected after its Context stopped")
	}
}

type streamActor struct {
	items []int
}

func Test_AddStreamDeliversItemsInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	ch := make(chan int)
	arb := NewArbiter("test")

	type getAll struct {
		Reply[[]int]
	}

	addr := Spawn[streamActor](arb, DefaultMailboxCapacity, func(ctx *Context[streamActor]) *streamActor {
		RegisterHandler(ctx, func(a *streamActor, _ getAll, _ *Context[streamActor]) MessageResponse[[]int] {
			return Immediate(append([]int(nil), a.items...))
		})
		AddStream(ctx, ch, func(a *streamActor, item int, _ *Context[streamActor]) {
			a.items = append(a.items, item)
		})
		return &streamActor{}
	})

	for i := 0; i < 5; i++ {
		ch <- i
	}
	close(ch)
	time.Sleep(50 * time.Millisecond)

	got := awaitRequest(t, Send[Local, streamActor](addr, getAll{}))
	if len(got) != 5 {
		t.Fatalf("stream items: got %v, want 5 items", got)
	}
	for i, v := range got {
		if v != i {
			t.Errorf("stream item %d: got %d, want %d", i, v, i)
		}
	}

	addr.Close()
	_ = arb.Wait()
}
