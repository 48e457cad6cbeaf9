package actix

import "reflect"

// Service is implemented by an actor type that can bootstrap its own
// default instance for the registry: code anywhere can ask for "the"
// address of a service actor without having to thread it through every
// constructor, and the first asker pays for starting it.
type Service[A any] interface {
	// DefaultService constructs the actor the registry should start
	// the first time it's asked for.
	DefaultService() *A
}

// ServiceOf returns the registered Address for actor type A on arb,
// starting one via its Service.DefaultService if this is the first
// request. Subsequent calls on the same Arbiter return the same
// Address. Capacity controls the mailbox size used only the first time
// A is started on this Arbiter.
func ServiceOf[A Service[A]](arb *Arbiter, capacity int) Address[Local, A] {
	t := reflect.TypeOf((*A)(nil)).Elem()
	v := arb.getOrCreateService(t, func() any {
		return Spawn[A](arb, capacity, func(ctx *Context[A]) *A {
			var zero A
			return zero.DefaultService()
		})
	})
	return v.(Address[Local, A])
}
