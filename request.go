package actix

import (
	"context"
	"sync"
)

// requestResult is what an envelope's reply channel actually carries:
// a value plus an error slot, so a failed Future/ActorFuture response
// can be distinguished from a successful one without needing a second
// channel per Request.
type requestResult[R any] struct {
	val R
	err error
}

// Request is the future of an actor's reply to one specific message.
// Polling happens via Get, which blocks (respecting its ctx argument)
// until either the envelope has been handled and replied to, or the
// target mailbox has closed.
type Request[R any] struct {
	result     <-chan requestResult[R]
	closed     <-chan struct{}
	cancel     chan struct{}
	cancelOnce sync.Once
}

// Get blocks until the reply arrives, the target mailbox closes, Cancel
// is called, or ctx is done, whichever happens first.
func (r *Request[R]) Get(ctx context.Context) (R, error) {
	var zero R
	select {
	case <-r.cancel:
		return zero, ErrRequestCancelled
	default:
	}
	select {
	case res, ok := <-r.result:
		if !ok {
			return zero, ErrMailboxClosed
		}
		return res.val, res.err
	case <-r.closed:
		return zero, ErrMailboxClosed
	case <-r.cancel:
		return zero, ErrRequestCancelled
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Cancel drops the pending reply: any Get call racing with it resolves
// with ErrRequestCancelled instead of blocking further. If the envelope
// had not yet been handed to the mailbox (it was queued on the bounded-
// retry goroutine Send starts when the mailbox was momentarily Full),
// Cancel also stops that goroutine from enqueuing it at all; otherwise
// the handler still runs to completion, but nothing is left listening
// for its reply.
func (r *Request[R]) Cancel() {
	r.cancelOnce.Do(func() { close(r.cancel) })
}

func newRequest[R any](result <-chan requestResult[R], closed <-chan struct{}) *Request[R] {
	return &Request[R]{result: result, closed: closed, cancel: make(chan struct{})}
}
