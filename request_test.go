package actix

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func Test_RequestCancelResolvesGetImmediately(t *testing.T) {
	defer goleak.VerifyNone(t)

	arb := NewArbiter("test")
	addr := Spawn[echoActor](arb, DefaultMailboxCapacity, newEchoActor)

	req := Send[Local, echoActor](addr, sumMsg{A: 1, B: 1})
	req.Cancel()

	_, err := req.Get(context.Background())
	if err != ErrRequestCancelled {
		t.Errorf("Get after Cancel: got %v, want ErrRequestCancelled", err)
	}

	addr.Close()
	_ = arb.Wait()
}

func Test_RequestGetRespectsCallerDeadline(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	arb := NewArbiter("test")
	addr := Spawn[echoActor](arb, 1, func(ctx *Context[echoActor]) *echoActor {
		a := newEchoActor(ctx)
		RegisterHandler(ctx, func(_ *echoActor, _ blockMsg, _ *Context[echoActor]) MessageResponse[struct{}] {
			<-release
			return Immediate(struct{}{})
		})
		return a
	})

	req := Send[Local, echoActor](addr, blockMsg{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := req.Get(ctx)
	if err != context.DeadlineExceeded {
		t.Errorf("Get with an expired deadline: got %v, want DeadlineExceeded", err)
	}

	close(release)
	addr.Close()
	_ = arb.Wait()
}
