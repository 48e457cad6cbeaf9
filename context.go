package actix

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/proman21/actix/logger"
)

// SpawnHandle identifies a sub-future started via Context.Spawn,
// Context.RunLater, Context.RunInterval, or AddStream, so it can later
// be cancelled with Context.CancelFuture.
type SpawnHandle struct {
	id uint64
}

// Context is the per-actor execution driver: the single goroutine that
// owns one actor value, drains its mailbox(es), and runs its lifecycle
// hooks and sub-futures. There is exactly one Context per live actor
// instance; a Supervisor discards and rebuilds one on every restart
// while keeping the actor's Mailboxes (and therefore its Address)
// intact.
type Context[A any] struct {
	id      uuid.UUID
	arbiter *Arbiter
	self    *Mailboxes[A]

	actor    *A
	state    LifecycleState
	handlers map[reflect.Type]dispatchEntry[A]

	localBox *mailbox[envelope[A]]

	events chan func()

	handleSeq uint64
	cancels   map[uint64]func()
	inflight  int

	waiting            bool
	stopRequested      bool
	terminateRequested bool
}

// NewContext builds a Context bound to mb, installing itself as the
// instance mb's Address/Recipient handles currently resolve to. The
// actor value itself is attached afterwards via SetActor, mirroring the
// original's two-phase construction: the factory receives the Context
// (and can mint its own Address from it) before the actor exists.
func NewContext[A any](arb *Arbiter, mb *Mailboxes[A]) *Context[A] {
	c := &Context[A]{
		id:       uuid.New(),
		arbiter:  arb,
		self:     mb,
		handlers: make(map[reflect.Type]dispatchEntry[A]),
		localBox: mb.local,
		events:   make(chan func(), 256),
		cancels:  make(map[uint64]func()),
	}
	mb.install(c)
	return c
}

// SetActor attaches the actor value this Context drives. Must be called
// once, before Run.
func (c *Context[A]) SetActor(a *A) { c.actor = a }

// ID returns the identity this Context was constructed with. A restart
// produces a new Context with a new ID, even though its Mailboxes (and
// therefore Address) is unchanged - useful for correlating log lines
// across a crash/restart boundary.
func (c *Context[A]) ID() uuid.UUID { return c.id }

// State reports where in Started/Running/Stopping/Stopped this Context
// currently is.
func (c *Context[A]) State() LifecycleState { return c.state }

// Address mints a Local handle to this actor's mailbox.
func (c *Context[A]) Address() Address[Local, A] { return c.self.Address() }

// AddressSync mints a Sync handle, created with capacity buffer slots
// (only used the first time a Sync handle is requested).
func (c *Context[A]) AddressSync(capacity int) Address[Sync, A] {
	return c.self.AddressSync(capacity)
}

func (c *Context[A]) lookup(msg any) (dispatchEntry[A], bool) {
	e, ok := c.handlers[reflect.TypeOf(msg)]
	return e, ok
}

func (c *Context[A]) nextHandle() SpawnHandle {
	c.handleSeq++
	return SpawnHandle{id: c.handleSeq}
}

// Spawn runs f on its own goroutine, with no actor access; cancelling
// its handle cancels the context.Context passed to f, a cooperative
// signal f must itself observe. Use this for work that doesn't touch
// actor state directly and reports back only through messages it sends
// to this (or another) actor's Address.
func (c *Context[A]) Spawn(f func(context.Context)) SpawnHandle {
	h := c.nextHandle()
	pollCtx, cancel := context.WithCancel(context.Background())
	c.cancels[h.id] = cancel
	c.inflight++
	go func() {
		f(pollCtx)
		c.events <- func() {
			delete(c.cancels, h.id)
			c.inflight--
		}
	}()
	return h
}

// SpawnActorFuture runs f with direct, exclusive access to the actor,
// synchronously on the Context's own dispatch loop: f simply runs to
// completion before the loop moves on, which is observably equivalent
// to interleaved incremental polling for any f that doesn't itself
// need to yield mid-flight.
func (c *Context[A]) SpawnActorFuture(f func(context.Context, *A)) {
	f(context.Background(), c.actor)
}

// spawnReply backs a Future-kind MessageResponse: runs body on its own
// goroutine (no actor access) and folds its completion into the event
// stream so the dispatch loop's accounting of in-flight work stays
// correct.
func (c *Context[A]) spawnReply(body func(context.Context)) {
	c.inflight++
	go func() {
		body(context.Background())
		c.events <- func() { c.inflight-- }
	}()
}

// spawnActorReply backs an ActorFuture-kind MessageResponse. Because
// typedEnvelope.handle already runs on this Context's own goroutine,
// running body inline is exactly "the actor-future gets exclusive actor
// access for its one poll step".
func (c *Context[A]) spawnActorReply(body func(context.Context, *A)) {
	body(context.Background(), c.actor)
}

// RunLater schedules f to run once, with actor access, after d has
// elapsed. The handle can be cancelled any time before it fires.
func (c *Context[A]) RunLater(d time.Duration, f func(context.Context, *A)) SpawnHandle {
	h := c.nextHandle()
	timer := time.AfterFunc(d, func() {
		c.events <- func() {
			if _, live := c.cancels[h.id]; !live {
				return
			}
			delete(c.cancels, h.id)
			f(context.Background(), c.actor)
		}
	})
	c.cancels[h.id] = func() { timer.Stop() }
	return h
}

// RunInterval schedules f to run repeatedly, with actor access, every d
// until cancelled or the Context stops.
func (c *Context[A]) RunInterval(d time.Duration, f func(context.Context, *A)) SpawnHandle {
	h := c.nextHandle()
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				c.events <- func() {
					if _, live := c.cancels[h.id]; live {
						f(context.Background(), c.actor)
					}
				}
			case <-done:
				return
			}
		}
	}()
	c.cancels[h.id] = func() {
		ticker.Stop()
		close(done)
	}
	return h
}

// CancelFuture drops the sub-future identified by h. For a Spawn future
// this cancels the context.Context passed to f, which f must observe
// itself; a RunLater callback not yet run, a RunInterval's further
// ticks, and an AddStream's further items are simply dropped.
func (c *Context[A]) CancelFuture(h SpawnHandle) {
	if cancel, ok := c.cancels[h.id]; ok {
		cancel()
		delete(c.cancels, h.id)
	}
}

// Wait suspends mailbox draining and runs f, with actor access, to
// completion before resuming normal dispatch. Because f runs directly
// on the dispatch loop, no further message can be processed until it
// returns - suspension falls out of the single-goroutine model rather
// than needing a separate gate.
func (c *Context[A]) Wait(f func(context.Context, *A)) {
	c.waiting = true
	f(context.Background(), c.actor)
	c.waiting = false
}

// Stop requests a graceful shutdown: on_stopping runs, and if it
// doesn't veto, on_stopped follows and the Context exits.
func (c *Context[A]) Stop() {
	c.stopRequested = true
	c.wake()
}

// Terminate requests an immediate shutdown, skipping on_stopping
// entirely.
func (c *Context[A]) Terminate() {
	c.terminateRequested = true
	c.wake()
}

func (c *Context[A]) wake() {
	select {
	case c.events <- func() {}:
	default:
	}
}

// AddStream forwards every item read off stream to handle, with actor
// access, one at a time on the dispatch loop, until stream closes or
// the returned handle is cancelled.
func AddStream[A any, T any](ctx *Context[A], stream <-chan T, handle func(actor *A, item T, ctx *Context[A])) SpawnHandle {
	h := ctx.nextHandle()
	stopped := make(chan struct{})
	ctx.cancels[h.id] = func() {
		select {
		case <-stopped:
		default:
			close(stopped)
		}
	}
	go func() {
		for {
			select {
			case item, ok := <-stream:
				if !ok {
					return
				}
				it := item
				select {
				case ctx.events <- func() { handle(ctx.actor, it, ctx) }:
				case <-stopped:
					return
				}
			case <-stopped:
				return
			}
		}
	}()
	return h
}

// Run drives the Context's lifecycle and dispatch loop to completion.
// It runs on_started, alternates draining queued events and both
// mailboxes until a stop condition holds, then runs the
// on_stopping/on_stopped sequence. A panic escaping a handler is
// recovered here and returned as an error, poisoning this Context -
// recovery from the crash itself is the Supervisor's job, one layer up.
func (c *Context[A]) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("actix: actor %s panicked: %v", c.id, r)
			logger.Errorf("context %s: %v", c.id, err)
		}
	}()

	c.state = StateStarted
	if s, ok := any(c.actor).(Starter[A]); ok {
		s.OnStarted(c.actor, c)
	}
	c.state = StateRunning

	const drainBatch = 32
	for {
		c.drainEvents()

		if !c.waiting {
			c.drainMailbox(c.localBox, drainBatch)
			if c.self.sync != nil {
				c.drainMailbox(c.self.sync, drainBatch)
			}
		}

		if c.shouldStop() {
			break
		}

		c.awaitWork()
	}

	c.shutdown()
	return nil
}

func (c *Context[A]) drainEvents() {
	for {
		select {
		case ev := <-c.events:
			ev()
		default:
			return
		}
	}
}

func (c *Context[A]) drainMailbox(box *mailbox[envelope[A]], limit int) {
	for i := 0; i < limit; i++ {
		select {
		case env, ok := <-box.receive():
			if !ok {
				return
			}
			c.dispatch(env)
		default:
			return
		}
	}
}

// dispatch runs env.handle, failing env's own reply with
// ErrMailboxClosed and re-panicking if the handler panics - the
// re-panic lets Run's recover still observe and report the crash,
// while failWith ensures whichever Request was waiting on this
// envelope's reply doesn't hang forever waiting for one that a dead
// handler can no longer send.
func (c *Context[A]) dispatch(env envelope[A]) {
	defer func() {
		if r := recover(); r != nil {
			env.failWith(ErrMailboxClosed)
			panic(r)
		}
	}()
	env.handle(c.actor, c)
}

func (c *Context[A]) shouldStop() bool {
	if c.terminateRequested {
		return true
	}
	if c.stopRequested {
		return c.inflight == 0
	}
	return !c.self.SendersAlive() && c.inflight == 0
}

func (c *Context[A]) syncReceiveChan() <-chan envelope[A] {
	if c.self.sync == nil {
		return nil
	}
	return c.self.sync.receive()
}

func (c *Context[A]) awaitWork() {
	select {
	case ev := <-c.events:
		ev()
	case env, ok := <-c.localBox.receive():
		if ok {
			c.dispatch(env)
		}
	case env, ok := <-c.syncReceiveChan():
		if ok {
			c.dispatch(env)
		}
	case <-c.localBox.drained:
		// Wakes the loop to re-check shouldStop once the last sender
		// has gone; no envelope to handle.
	case <-c.syncDrainedChan():
	}
}

func (c *Context[A]) syncDrainedChan() <-chan struct{} {
	if c.self.sync == nil {
		return nil
	}
	return c.self.sync.drained
}

func (c *Context[A]) shutdown() {
	c.state = StateStopping
	if !c.terminateRequested {
		for {
			outcome := StopContinue
			if h, ok := any(c.actor).(StoppingHook[A]); ok {
				outcome = h.OnStopping(c.actor, c)
			}
			if outcome != StopVeto || c.terminateRequested {
				break
			}
			// Vetoed: block for progress on a sub-future (or a fresh
			// Stop/Terminate call) rather than busy-looping on_stopping.
			ev := <-c.events
			ev()
		}
	}

	c.state = StateStopped
	if s, ok := any(c.actor).(Stopper[A]); ok {
		s.OnStopped(c.actor, c)
	}
	c.localBox.closeForReceiver()
	if c.self.sync != nil {
		c.self.sync.closeForReceiver()
	}
}
