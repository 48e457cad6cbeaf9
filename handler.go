package actix

import "reflect"

// HandlerFunc is the capability an actor of type A has for a message
// type M with reply type R: given exclusive access to the actor, the
// message, and its Context, it produces a MessageResponse.
type HandlerFunc[A any, M Message[R], R any] func(actor *A, msg M, ctx *Context[A]) MessageResponse[R]

// dispatchEntry is the type-erased form of a registered HandlerFunc: it
// knows how to turn a boxed message into an envelope[A] without the
// caller needing to know M or R. Go has no trait objects, so the
// erasure happens through a reflect.Type-keyed map built once when
// handlers are registered, rather than once per send.
type dispatchEntry[A any] struct {
	// build takes the concrete message value and an optional reply
	// channel wrapped as any (so this struct need not be generic over
	// R), and returns an envelope ready to be queued.
	build func(msg any, reply any) envelope[A]
}

// RegisterHandler installs the capability for A to handle M, to be
// called from an actor's construction (or its on_started hook) before
// any Address to it escapes. Registering the same message type twice
// replaces the previous handler.
func RegisterHandler[A any, M Message[R], R any](ctx *Context[A], fn HandlerFunc[A, M, R]) {
	t := reflect.TypeOf((*M)(nil)).Elem()
	ctx.handlers[t] = dispatchEntry[A]{
		build: func(msg any, reply any) envelope[A] {
			var replyCh chan requestResult[R]
			if reply != nil {
				replyCh = reply.(chan requestResult[R])
			}
			return &typedEnvelope[A, M, R]{
				msg:     msg.(M),
				reply:   replyCh,
				handler: fn,
			}
		},
	}
}
