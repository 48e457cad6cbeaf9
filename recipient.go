package actix

// Recipient is an Address with the actor type forgotten: a cloneable
// handle that knows only how to deliver one message type M and collect
// its reply R. K carries the same Local/Sync promise as the Address it
// was projected from. Internally it's just the three send operations
// closed over the concrete actor type at construction time - Go has no
// trait objects, so this is the generics-friendly equivalent of boxing
// a `Box<dyn Subscriber<M>>`.
type Recipient[K Kind, M Message[R], R any] struct {
	doSend    func(M) error
	trySend   func(M) error
	send      func(M) *Request[R]
	connected func() bool
	close     func()
}

// NewRecipient projects addr down to the single message type M,
// forgetting the actor type A. Like Address, it pins one share of the
// mailbox's sender count (released via Close) so the actor doesn't
// treat itself as senderless while a Recipient to it is still held.
func NewRecipient[K Kind, A any, M Message[R], R any](addr Address[K, A]) Recipient[K, M, R] {
	addr.box.addSender()
	return Recipient[K, M, R]{
		doSend: func(msg M) error {
			env, err := envelopeFor[A](addr.target, msg, nil)
			if err != nil {
				return err
			}
			return addr.box.doSend(env)
		},
		trySend: func(msg M) error {
			env, err := envelopeFor[A](addr.target, msg, nil)
			if err != nil {
				return err
			}
			if sendErr := addr.box.trySend(env); sendErr != nil {
				return &SendError[M]{Msg: msg, Err: sendErr}
			}
			return nil
		},
		send: func(msg M) *Request[R] {
			return Send[K, A, M, R](addr, msg)
		},
		connected: func() bool {
			return addr.box.connectedState()
		},
		close: func() {
			addr.box.dropSender()
		},
	}
}

// DoSend fires msg at the recipient's actor without waiting for a
// reply; it fails only if the actor has no handler registered for M or
// the mailbox has closed.
func (r Recipient[K, M, R]) DoSend(msg M) error {
	return r.doSend(msg)
}

// TrySend fires msg if there's room in the mailbox, handing it back via
// SendError otherwise.
func (r Recipient[K, M, R]) TrySend(msg M) error {
	return r.trySend(msg)
}

// Send fires msg and returns a Request resolving to the reply.
func (r Recipient[K, M, R]) Send(msg M) *Request[R] {
	return r.send(msg)
}

// Connected reports whether the Context on the receiving end is still
// alive.
func (r Recipient[K, M, R]) Connected() bool {
	return r.connected()
}

// Close releases this handle's share of the mailbox's sender count,
// matching Address.Close. Once the last Address/Recipient to an actor
// is closed, its Context observes zero senders and begins stopping.
func (r Recipient[K, M, R]) Close() {
	r.close()
}
