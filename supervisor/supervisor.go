// Package supervisor restarts a crashed actor in place: the same
// Mailboxes (and therefore the same Address every other actor already
// holds) survives across however many times the underlying actor value
// itself is thrown away and rebuilt from its Factory.
package supervisor

import (
	"sync"

	"github.com/proman21/actix"
)

// Factory builds a fresh actor value given the Context it will run
// under. It is called once on construction and again on every restart,
// so it must be safe to invoke more than once - typically it just
// returns a zero-valued *A plus whatever one-time setup the actor needs
// from ctx (e.g. registering handlers).
type Factory[A any] func(ctx *actix.Context[A]) *A

// Supervisor watches one actor slot and restarts it, preserving its
// Address, whenever its Context.Run exits with an error (a recovered
// panic). A clean exit - Run returning nil, whether from Stop/Terminate
// or simply running out of senders - is not a crash, and the Supervisor
// stops supervising rather than restarting.
type Supervisor[A any] struct {
	mtx      sync.RWMutex
	factory  Factory[A]
	arbiter  *actix.Arbiter
	capacity int
	mb       *actix.Mailboxes[A]
	restarts int
	wg       sync.WaitGroup
}

// Option configures a Supervisor before it starts running.
type Option[A any] func(*Supervisor[A]) error

// WithMailboxCapacity sets the local mailbox's capacity (0 for
// unbounded); it only has effect if given before Run starts the first
// Context.
func WithMailboxCapacity[A any](capacity int) Option[A] {
	return func(s *Supervisor[A]) error {
		s.capacity = capacity
		return nil
	}
}

// NewSupervisorWithOptions configures a new Supervisor for actors built
// by factory, applying any options supplied.
func NewSupervisorWithOptions[A any](arb *actix.Arbiter, factory Factory[A], opts ...Option[A]) (*Supervisor[A], error) {
	s := &Supervisor[A]{
		factory:  factory,
		arbiter:  arb,
		capacity: actix.DefaultMailboxCapacity,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// StartIn builds a Supervisor for actors built by factory and starts it
// immediately on arb's own goroutine pool, via Arbiter.Execute, rather
// than a bare goroutine the caller's own stack would own - shipping the
// factory closure to another arbiter's thread, where it is instantiated.
// The Mailboxes (and therefore the returned Address) are built
// synchronously so the caller can start sending immediately, even
// though the first actor instance is constructed asynchronously on arb.
func StartIn[A any](arb *actix.Arbiter, factory Factory[A], opts ...Option[A]) (*Supervisor[A], actix.Address[actix.Local, A], error) {
	s, err := NewSupervisorWithOptions[A](arb, factory, opts...)
	if err != nil {
		return nil, actix.Address[actix.Local, A]{}, err
	}

	s.mb = actix.NewMailboxes[A](s.capacity)
	addr := s.mb.Address()

	s.wg.Add(1)
	arb.Execute(func() {
		defer s.wg.Done()
		s.superviseLoop()
	})

	return s, addr, nil
}

func (s *Supervisor[A]) incRestarts() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.restarts++
}

// RestartCount reports how many times the actor has been rebuilt after
// a crash.
func (s *Supervisor[A]) RestartCount() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.restarts
}

// Run starts supervising: it builds the Mailboxes, constructs and runs
// the first Context, and returns the Address immediately. The Context's
// dispatch loop, and every subsequent restart, run on their own
// goroutine tracked by Wait.
func (s *Supervisor[A]) Run() actix.Address[actix.Local, A] {
	s.mb = actix.NewMailboxes[A](s.capacity)
	addr := s.mb.Address()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.superviseLoop()
	}()

	return addr
}

func (s *Supervisor[A]) superviseLoop() {
	for {
		s.mtx.RLock()
		restarted := s.restarts > 0
		s.mtx.RUnlock()

		ctx := actix.NewContext[A](s.arbiter, s.mb)
		actor := s.factory(ctx)
		ctx.SetActor(actor)

		if restarted {
			if r, ok := any(actor).(actix.Restarter[A]); ok {
				r.Restarting(actor, ctx)
			}
		}

		err := ctx.Run()
		if err == nil {
			// Clean exit: Stop/Terminate was called, or the mailbox ran
			// out of senders. Either way this is not a crash.
			return
		}

		if !s.mb.SendersAlive() {
			return
		}

		s.incRestarts()
	}
}

// Stop requests a graceful shutdown of whichever incarnation of the
// actor is currently running; once it exits cleanly, the Supervisor
// stops (it does not restart after a Stop/Terminate-induced exit).
func (s *Supervisor[A]) Stop() {
	if c := s.mb.ActiveContext(); c != nil {
		c.Stop()
	}
}

// Terminate requests an immediate shutdown, as Stop but skipping
// on_stopping.
func (s *Supervisor[A]) Terminate() {
	if c := s.mb.ActiveContext(); c != nil {
		c.Terminate()
	}
}

// Wait blocks until the supervised actor has stopped for good (no more
// restarts will be attempted).
func (s *Supervisor[A]) Wait() {
	s.wg.Wait()
}
