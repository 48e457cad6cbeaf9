package actix

import (
	"context"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/proman21/actix/logger"
)

// Arbiter is a cooperative event-loop host: every actor's Context that
// is spawned onto one Arbiter shares that Arbiter's goroutine pool for
// bookkeeping (though each Context still runs its dispatch loop on its
// own goroutine - Go gives every goroutine its own stack cheaply, so
// an N-actors-per-OS-thread constraint isn't needed to get the same
// cooperative-scheduling *contract*: no two handlers of the same actor
// ever run concurrently, actors on the same Arbiter share a lifecycle).
// What the Arbiter actually owns is identity (name, registry) and
// shutdown: stopping an Arbiter waits for every Context spawned on it
// to finish its own stop sequence.
type Arbiter struct {
	id   uuid.UUID
	name string

	group  *errgroup.Group
	gctx   context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	registry  map[reflect.Type]*serviceSlot
	terminate []func()
}

// serviceSlot lazily builds exactly one value per registered type: the
// sync.Once means a create func that itself calls Spawn (which also
// needs Arbiter.mu, to record its Terminate closure) never deadlocks
// against the registry lookup that triggered it.
type serviceSlot struct {
	once  sync.Once
	value any
}

// NewArbiter starts a new Arbiter under the given name (used only for
// logging/diagnostics).
func NewArbiter(name string) *Arbiter {
	gctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(gctx)
	return &Arbiter{
		id:     uuid.New(),
		name:   name,
		group:  group,
		gctx:   gctx,
		cancel: cancel,
	}
}

// ID returns the Arbiter's identity.
func (ar *Arbiter) ID() uuid.UUID { return ar.id }

// Name returns the diagnostic name this Arbiter was started with.
func (ar *Arbiter) Name() string { return ar.name }

// runContext schedules ctx's dispatch loop on the Arbiter's errgroup,
// so Stop/Wait can observe every actor spawned on this Arbiter exiting.
func (ar *Arbiter) runContext(run func() error) {
	ar.group.Go(func() error {
		if err := run(); err != nil {
			logger.Warnf("arbiter %s: actor context exited with error: %v", ar.name, err)
			return err
		}
		return nil
	})
}

// Stop requests every Context running on this Arbiter to terminate
// immediately, then waits for them all to exit, returning the first
// error any of them reported (a handler panic recovered by Context.Run),
// in the errgroup style.
func (ar *Arbiter) Stop() error {
	ar.cancel()

	ar.mu.Lock()
	fns := append([]func(){}, ar.terminate...)
	ar.mu.Unlock()

	for _, f := range fns {
		f()
	}
	return ar.group.Wait()
}

// Wait blocks until every Context spawned on this Arbiter has exited on
// its own (via Stop/Terminate or running out of senders), returning the
// first error among them, if any.
func (ar *Arbiter) Wait() error {
	return ar.group.Wait()
}

// Spawn starts a new actor of type A on this Arbiter: it builds fresh
// Mailboxes, constructs a Context over them, invokes construct to build
// the actor value (construct may mint its own Address from ctx before
// returning), then runs the Context's dispatch loop on its own
// goroutine, tracked by the Arbiter.
func Spawn[A any](arb *Arbiter, capacity int, construct func(ctx *Context[A]) *A) Address[Local, A] {
	mb := NewMailboxes[A](capacity)
	ctx := NewContext[A](arb, mb)
	actor := construct(ctx)
	ctx.SetActor(actor)
	addr := ctx.Address()

	arb.mu.Lock()
	arb.terminate = append(arb.terminate, ctx.Terminate)
	arb.mu.Unlock()

	arb.runContext(ctx.Run)
	return addr
}

// Execute runs f once on this Arbiter's behalf, outside of any actor's
// Context, useful for one-off setup work: submitting a plain closure to
// the Arbiter's tracked goroutine group.
func (ar *Arbiter) Execute(f func()) {
	ar.group.Go(func() error {
		f()
		return nil
	})
}

// SpawnFn is an alias for Execute.
func (ar *Arbiter) SpawnFn(f func()) { ar.Execute(f) }

// getOrCreateService returns the registered value for t, building it
// with create (and storing the result) on the first request. Slot
// lookup/insertion is guarded by ar.mu, but create itself runs outside
// that lock (under the slot's own sync.Once) - create typically calls
// Spawn, which needs ar.mu itself to record its Terminate closure.
func (ar *Arbiter) getOrCreateService(t reflect.Type, create func() any) any {
	ar.mu.Lock()
	if ar.registry == nil {
		ar.registry = make(map[reflect.Type]*serviceSlot)
	}
	slot, ok := ar.registry[t]
	if !ok {
		slot = &serviceSlot{}
		ar.registry[t] = slot
	}
	ar.mu.Unlock()

	slot.once.Do(func() { slot.value = create() })
	return slot.value
}
