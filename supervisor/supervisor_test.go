package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/proman21/actix"
)

type bump struct {
	actix.Reply[int]
}

type crash struct {
	actix.Reply[struct{}]
}

type counterActor struct {
	count int
}

func newCounterActor(ctx *actix.Context[counterActor]) *counterActor {
	actix.RegisterHandler(ctx, func(a *counterActor, _ bump, _ *actix.Context[counterActor]) actix.MessageResponse[int] {
		a.count++
		return actix.Immediate(a.count)
	})
	actix.RegisterHandler(ctx, func(a *counterActor, _ crash, _ *actix.Context[counterActor]) actix.MessageResponse[struct{}] {
		panic("boom")
	})
	return &counterActor{}
}

func awaitInt(t *testing.T, req *actix.Request[int]) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := req.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return v
}

func Test_SupervisorMustRestartWorkerFollowingPanic(t *testing.T) {
	defer goleak.VerifyNone(t)

	arb := actix.NewArbiter("test")
	sup, err := NewSupervisorWithOptions[counterActor](arb, newCounterActor)
	if err != nil {
		t.Fatalf("NewSupervisorWithOptions: %v", err)
	}
	addr := sup.Run()

	if got := awaitInt(t, actix.Send[actix.Local, counterActor](addr, bump{})); got != 1 {
		t.Errorf("bump before crash: got %d, want 1", got)
	}

	crashReq := actix.Send[actix.Local, counterActor](addr, crash{})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	_, err = crashReq.Get(ctx)
	cancel()
	if !errors.Is(err, actix.ErrMailboxClosed) {
		t.Errorf("crash Request.Get: got %v, want ErrMailboxClosed", err)
	}
	<-time.After(100 * time.Millisecond)

	if !addr.Connected() {
		t.Error("Address disconnected after a supervised crash - restart should have kept it alive")
	}

	if got := awaitInt(t, actix.Send[actix.Local, counterActor](addr, bump{})); got != 1 {
		t.Errorf("bump after restart: got %d, want 1 (fresh actor state)", got)
	}

	if sup.RestartCount() != 1 {
		t.Error("supervisor did not restart after the panic", sup.RestartCount())
	}

	addr.Close()
	sup.Wait()
	if err := arb.Stop(); err != nil {
		t.Errorf("arb.Stop: %v", err)
	}
}

func Test_SupervisorMustNotRestartAfterCleanStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	arb := actix.NewArbiter("test")
	sup, err := NewSupervisorWithOptions[counterActor](arb, newCounterActor)
	if err != nil {
		t.Fatalf("NewSupervisorWithOptions: %v", err)
	}
	addr := sup.Run()

	awaitInt(t, actix.Send[actix.Local, counterActor](addr, bump{}))

	sup.Stop()
	addr.Close()
	sup.Wait()

	if sup.RestartCount() != 0 {
		t.Error("supervisor restarted after a clean stop", sup.RestartCount())
	}

	if err := arb.Stop(); err != nil {
		t.Errorf("arb.Stop: %v", err)
	}
}

func Test_SupervisorMustNotifyCallerWithWait(t *testing.T) {
	defer goleak.VerifyNone(t)

	arb := actix.NewArbiter("test")
	sup, err := NewSupervisorWithOptions[counterActor](arb, newCounterActor)
	if err != nil {
		t.Fatalf("NewSupervisorWithOptions: %v", err)
	}
	addr := sup.Run()

	waitComplete := false
	go func() {
		sup.Wait()
		waitComplete = true
	}()

	<-time.After(50 * time.Millisecond)
	addr.Close()
	<-time.After(100 * time.Millisecond)

	if !waitComplete {
		t.Error("Wait never completed after the actor ran out of senders")
	}

	if err := arb.Stop(); err != nil {
		t.Errorf("arb.Stop: %v", err)
	}
}
