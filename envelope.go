package actix

import (
	"context"

	"github.com/proman21/actix/logger"
)

// envelope is the type-erased carrier every message travels through a
// mailbox as. Its sole operation applies the bundled message to the
// actor and routes the handler's MessageResponse to the reply channel,
// if any. No envelope type is ever part of the public API: producers
// only ever see Address/Recipient/Request.
type envelope[A any] interface {
	handle(actor *A, ctx *Context[A])
	failWith(err error)
}

// typedEnvelope is the concrete envelope[A] synthesized for each (A, M,
// R) triple the first time RegisterHandler is called for that message
// type. Invariant: once handle runs, exactly one of {reply sent, reply
// channel left unsent and garbage collected} occurs - a dropped
// receiver simply makes the send below a harmless no-op.
type typedEnvelope[A any, M Message[R], R any] struct {
	msg     M
	reply   chan requestResult[R] // nil for fire-and-forget sends
	handler HandlerFunc[A, M, R]
}

func (e *typedEnvelope[A, M, R]) handle(actor *A, ctx *Context[A]) {
	resp := e.handler(actor, e.msg, ctx)

	switch resp.kind {
	case responseImmediate:
		deliver(e.reply, resp.value, nil)

	case responseFuture:
		ctx.spawnReply(func(pollCtx context.Context) {
			v, err := resp.fut(pollCtx)
			deliver(e.reply, v, err)
		})

	case responseActorFuture:
		ctx.spawnActorReply(func(pollCtx context.Context, a *A) {
			v, err := resp.actorFut(pollCtx, a)
			deliver(e.reply, v, err)
		})

	default:
		logger.Warnf("actix: envelope with unknown response kind %d dropped", resp.kind)
	}
}

// failWith resolves this envelope's reply (if any) with err instead of
// whatever handle would have delivered - used when handle panicked
// partway through, so the Request waiting on this envelope's reply
// doesn't hang forever.
func (e *typedEnvelope[A, M, R]) failWith(err error) {
	var zero R
	deliver(e.reply, zero, err)
}

// deliver sends v (or err) on reply without blocking. A nil reply means
// the message was DoSend/TrySend'd with nobody waiting; a full channel
// means a result was already delivered on it - both are silent no-ops.
// A Request that has stopped listening leaves the one-slot buffer free,
// so the send still succeeds and the value is never read: the "reply
// receiver dropped" half of the Envelope invariant.
func deliver[R any](reply chan requestResult[R], v R, err error) {
	if reply == nil {
		return
	}
	select {
	case reply <- requestResult[R]{val: v, err: err}:
	default:
	}
}
