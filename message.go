package actix

import "context"

// Message is implemented by every value that can travel through a
// mailbox. R is the type of the reply the handler produces. Concrete
// message types embed Reply[R] to satisfy this with no boilerplate:
//
//	type Sum struct {
//		actix.Reply[int]
//		A, B int
//	}
type Message[R any] interface {
	isActixMessage(R)
}

// Reply embeds into a message type to declare its reply type R. It has
// no behaviour of its own; it exists purely so the Go compiler can
// infer R from M at Send / Recipient.Send call sites.
type Reply[R any] struct{}

func (Reply[R]) isActixMessage(R) {}

// LifecycleState is one of the four states an actor's Context passes
// through over its life.
type LifecycleState int

const (
	// StateStarted is the transient state a Context occupies while its
	// actor's on_started hook is running.
	StateStarted LifecycleState = iota
	// StateRunning is the steady state: the mailbox is drained and
	// handlers are dispatched.
	StateRunning
	// StateStopping is entered once termination has been requested; the
	// actor's on_stopping hook may veto the transition to Stopped.
	StateStopping
	// StateStopped is terminal; the Context's poll loop has exited.
	StateStopped
)

func (s LifecycleState) String() string {
	switch s {
	case StateStarted:
		return "Started"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// StoppingOutcome is returned by an actor's on_stopping hook to decide
// whether the Context proceeds to Stopped or keeps running.
type StoppingOutcome int

const (
	// StopContinue proceeds to on_stopped / StateStopped.
	StopContinue StoppingOutcome = iota
	// StopVeto keeps the Context in StateStopping; a later stop() call
	// re-enters the same check.
	StopVeto
)

// Starter is implemented by actors that need setup logic run before the
// first message is dispatched. on_started strictly precedes the first
// Handler invocation.
type Starter[A any] interface {
	OnStarted(actor *A, ctx *Context[A])
}

// StoppingHook is implemented by actors that want a chance to veto
// shutdown (e.g. to drain an in-flight request) before on_stopped runs.
type StoppingHook[A any] interface {
	OnStopping(actor *A, ctx *Context[A]) StoppingOutcome
}

// Stopper is implemented by actors that need teardown logic once no
// further messages will be dispatched.
type Stopper[A any] interface {
	OnStopped(actor *A, ctx *Context[A])
}

// Restarter is implemented by actors that want to observe a supervised
// restart; it runs on the freshly constructed Context, before the new
// actor value starts handling messages.
type Restarter[A any] interface {
	Restarting(actor *A, ctx *Context[A])
}

// StreamHandler describes an actor-side handler for stream items.
// AddStream does not look this interface up: it delivers each item to
// the handle function it is given, whose signature HandleStreamItem
// matches.
type StreamHandler[A any, T any] interface {
	HandleStreamItem(actor *A, item T, ctx *Context[A])
}

// responseKind tags which shape a MessageResponse carries.
type responseKind int

const (
	responseImmediate responseKind = iota
	responseFuture
	responseActorFuture
)

// MessageResponse is what a Handler returns: either an immediate value,
// a plain future the arbiter polls to completion, or an actor-future
// that additionally receives *A on every poll step.
type MessageResponse[R any] struct {
	kind     responseKind
	value    R
	fut      func(context.Context) (R, error)
	actorFut func(context.Context, any) (R, error)
}

// Immediate wraps a value that's already known; no further polling is
// scheduled and the reply (if any) is sent before the handler returns.
func Immediate[R any](v R) MessageResponse[R] {
	return MessageResponse[R]{kind: responseImmediate, value: v}
}

// Future wraps a plain future: f is run on a goroutine owned by the
// Context and does not get actor access; its completion is applied back
// on the Context's single dispatch loop.
func Future[R any](f func(ctx context.Context) (R, error)) MessageResponse[R] {
	return MessageResponse[R]{kind: responseFuture, fut: f}
}

// ActorFuture wraps a future that receives *A on each step; the Context
// guarantees no other handler runs concurrently with it. Use this when
// the continuation needs to read or mutate actor state once the
// asynchronous part of the work completes.
func ActorFuture[A any, R any](f func(ctx context.Context, actor *A) (R, error)) MessageResponse[R] {
	return MessageResponse[R]{
		kind: responseActorFuture,
		actorFut: func(ctx context.Context, a any) (R, error) {
			return f(ctx, a.(*A))
		},
	}
}
