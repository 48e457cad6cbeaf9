package actix

import (
	"sync"

	"github.com/google/uuid"

	"github.com/proman21/actix/logger"
)

// System is the process-wide coordinator: it owns the main Arbiter plus
// any child Arbiters started under it, and gives every one of them a
// single broadcast shutdown signal (SystemExit) instead of requiring
// callers to track and stop each Arbiter by hand.
type System struct {
	id   uuid.UUID
	name string

	mu       sync.Mutex
	main     *Arbiter
	children []*Arbiter

	exitOnce sync.Once
	exitCode int
	exitCh   chan struct{}
}

// NewSystem starts a System with its main Arbiter already running.
func NewSystem(name string) *System {
	sys := &System{
		id:     uuid.New(),
		name:   name,
		main:   NewArbiter(name + "-main"),
		exitCh: make(chan struct{}),
	}
	return sys
}

// ID returns the System's identity.
func (s *System) ID() uuid.UUID { return s.id }

// Arbiter returns the System's main Arbiter, the one actors are
// typically spawned onto unless a dedicated child is started for
// isolation.
func (s *System) Arbiter() *Arbiter { return s.main }

// NewArbiter starts and registers a child Arbiter under this System, so
// it participates in SystemExit.
func (s *System) NewArbiter(name string) *Arbiter {
	ar := NewArbiter(name)
	s.mu.Lock()
	s.children = append(s.children, ar)
	s.mu.Unlock()
	return ar
}

// SystemExit broadcasts a stop to the main Arbiter and every child
// Arbiter started under this System, and records code as the System's
// exit code. Only the first call has effect; later calls are no-ops.
func (s *System) SystemExit(code int) {
	s.exitOnce.Do(func() {
		s.exitCode = code
		logger.Infof("system %s: exit requested with code %d", s.name, code)

		s.mu.Lock()
		children := append([]*Arbiter(nil), s.children...)
		s.mu.Unlock()

		var wg sync.WaitGroup
		stop := func(ar *Arbiter) {
			defer wg.Done()
			if err := ar.Stop(); err != nil {
				logger.Warnf("system %s: arbiter %s stopped with error: %v", s.name, ar.Name(), err)
			}
		}

		wg.Add(1 + len(children))
		go stop(s.main)
		for _, ar := range children {
			go stop(ar)
		}
		wg.Wait()

		close(s.exitCh)
	})
}

// ExitCode blocks until SystemExit has been called, then returns the
// code it was called with.
func (s *System) ExitCode() int {
	<-s.exitCh
	return s.exitCode
}

// Done returns a channel closed once SystemExit has completed stopping
// every Arbiter under this System.
func (s *System) Done() <-chan struct{} {
	return s.exitCh
}
