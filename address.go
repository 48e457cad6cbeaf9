package actix

// Address is a cloneable, typed handle to an actor's mailbox. K pins
// whether it promises Local (same-goroutine) or Sync (cross-goroutine)
// semantics to its holder; A is the actor type, used only to look up
// registered handlers - it never appears in the wire-level envelope.
//
// target is the Mailboxes, not the Context, that owns box: a Context
// can be torn down and rebuilt by a Supervisor while box and target
// live on, which is exactly what keeps an Address connected across a
// restart.
type Address[K Kind, A any] struct {
	target *Mailboxes[A]
	box    *mailbox[envelope[A]]
}

func newAddress[K Kind, A any](target *Mailboxes[A], box *mailbox[envelope[A]]) Address[K, A] {
	box.addSender()
	return Address[K, A]{target: target, box: box}
}

// Clone returns a new handle to the same mailbox; cloning increments
// the mailbox's sender count.
func (a Address[K, A]) Clone() Address[K, A] {
	a.box.addSender()
	return a
}

// Connected reports whether the Context on the receiving end is still
// alive.
func (a Address[K, A]) Connected() bool {
	return a.box.connectedState()
}

// Close releases this handle's share of the mailbox's sender count.
// Once the last Address/Recipient to an actor is closed, the Context
// observes zero senders and begins stopping.
func (a Address[K, A]) Close() {
	a.box.dropSender()
}

// envelopeFor type-checks msg against A's registered handlers and boxes
// it into the envelope[A] the mailbox transports, wiring reply (if
// non-nil) as the handler's output slot.
func envelopeFor[A any, M Message[R], R any](target *Mailboxes[A], msg M, reply any) (envelope[A], error) {
	entry, ok := target.lookup(msg)
	if !ok {
		return nil, ErrNoHandler
	}
	return entry.build(msg, reply), nil
}

// DoSend fires msg at addr's actor without waiting for a reply and
// without backpressure; it fails only if A has no handler registered
// for M or the mailbox has closed.
func DoSend[K Kind, A any, M Message[R], R any](addr Address[K, A], msg M) error {
	env, err := envelopeFor[A](addr.target, msg, nil)
	if err != nil {
		return err
	}
	return addr.box.doSend(env)
}

// TrySend fires msg at addr's actor if there's room in the mailbox,
// handing the message back via SendError otherwise.
func TrySend[K Kind, A any, M Message[R], R any](addr Address[K, A], msg M) error {
	env, err := envelopeFor[A](addr.target, msg, nil)
	if err != nil {
		return err
	}
	if sendErr := addr.box.trySend(env); sendErr != nil {
		return &SendError[M]{Msg: msg, Err: sendErr}
	}
	return nil
}

// Send fires msg at addr's actor and returns a Request resolving to
// the handler's reply.
func Send[K Kind, A any, M Message[R], R any](addr Address[K, A], msg M) *Request[R] {
	resultCh := make(chan requestResult[R], 1)
	env, err := envelopeFor[A](addr.target, msg, (chan requestResult[R])(resultCh))
	if err != nil {
		resultCh <- requestResult[R]{err: err}
		return newRequest[R](resultCh, addr.box.closed)
	}

	if sendErr := addr.box.trySend(env); sendErr == nil {
		return newRequest[R](resultCh, addr.box.closed)
	} else if sendErr == ErrMailboxClosed {
		return newRequest[R](resultCh, addr.box.closed)
	}

	// Bounded mailbox momentarily Full: queue a pending slot rather
	// than blocking the caller, honouring Request cancellation if it
	// happens before the slot frees up.
	req := newRequest[R](resultCh, addr.box.closed)
	go func() {
		select {
		case addr.box.ch <- env:
		case <-addr.box.closed:
		case <-req.cancel:
		}
	}()
	return req
}
