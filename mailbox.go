package actix

import (
	"sync"
	"sync/atomic"

	"github.com/proman21/actix/internal/queue"
)

// DefaultMailboxCapacity is used when a mailbox is constructed without
// an explicit capacity: a modest fixed buffer that preserves fairness
// without letting a slow consumer accumulate unbounded backlog.
const DefaultMailboxCapacity = 16

// mailbox is the bounded MPSC engine shared by Local and Sync Address
// kinds. capacity == 0 means unbounded: do_send always succeeds, and a
// background pump goroutine grows an internal queue.Queue rather than
// ever blocking a producer.
//
// Ordering: a single channel already gives strict FIFO for envelopes
// that arrive via the same path; the unbounded pump preserves FIFO by
// only ever appending to the tail and draining from the head.
type mailbox[T any] struct {
	capacity  int
	ch        chan T // bounded path, or pump output for unbounded path
	in        chan T // unbounded path: producers write here
	connected *atomic.Bool
	senders   *atomic.Int64
	closeOnce sync.Once
	closed    chan struct{}
	drainOnce sync.Once
	drained   chan struct{}
}

func newMailbox[T any](capacity int) *mailbox[T] {
	m := &mailbox[T]{
		capacity:  capacity,
		connected: &atomic.Bool{},
		senders:   &atomic.Int64{},
		closed:    make(chan struct{}),
		drained:   make(chan struct{}),
	}
	m.connected.Store(true)

	if capacity <= 0 {
		m.in = make(chan T)
		m.ch = make(chan T)
		go m.pump()
	} else {
		m.ch = make(chan T, capacity)
	}
	return m
}

// pump forwards values from the unbounded in channel to ch, buffering
// in a growable queue whenever ch isn't immediately ready to receive,
// so an unbounded mailbox's do_send never has to wait on its consumer.
func (m *mailbox[T]) pump() {
	q := queue.New[T](DefaultMailboxCapacity)
	defer close(m.ch)

	for {
		if q.IsEmpty() {
			select {
			case v, ok := <-m.in:
				if !ok {
					return
				}
				q.PushBack(v)
			case <-m.closed:
				m.drainRemaining(q)
				return
			}
			continue
		}

		select {
		case m.ch <- q.Front():
			q.PopFront()
		case v, ok := <-m.in:
			if !ok {
				m.drainRemaining(q)
				return
			}
			q.PushBack(v)
		case <-m.closed:
			m.drainRemaining(q)
			return
		}
	}
}

// drainRemaining pushes whatever is left in the queue out to ch on a
// best-effort basis so envelopes already accepted by do_send are not
// silently lost on shutdown; it never blocks indefinitely.
func (m *mailbox[T]) drainRemaining(q *queue.Queue[T]) {
	for !q.IsEmpty() {
		select {
		case m.ch <- q.Front():
			q.PopFront()
		default:
			return
		}
	}
}

// doSend enqueues unconditionally; it only fails if the mailbox is
// closed. On the bounded path this still uses a non-blocking select so
// do_send never backpressures the caller, falling back to a buffered
// retry via a short-lived goroutine only when the bounded channel is
// momentarily full.
func (m *mailbox[T]) doSend(v T) error {
	if !m.connected.Load() {
		return ErrMailboxClosed
	}
	if m.capacity <= 0 {
		select {
		case m.in <- v:
			return nil
		case <-m.closed:
			return ErrMailboxClosed
		}
	}

	select {
	case m.ch <- v:
		return nil
	case <-m.closed:
		return ErrMailboxClosed
	default:
		// Bounded channel momentarily full: do_send must not block or
		// report Full, so it hands the value to a new short-lived
		// goroutine that waits for a free slot or for the mailbox to
		// close.
		go func() {
			select {
			case m.ch <- v:
			case <-m.closed:
			}
		}()
		return nil
	}
}

// trySend enqueues if there is room, reporting Full or Closed
// otherwise. Unbounded mailboxes never report Full.
func (m *mailbox[T]) trySend(v T) error {
	if !m.connected.Load() {
		return ErrMailboxClosed
	}
	if m.capacity <= 0 {
		select {
		case m.in <- v:
			return nil
		case <-m.closed:
			return ErrMailboxClosed
		default:
			// The pump always accepts instantly unless shutting down.
			select {
			case m.in <- v:
				return nil
			case <-m.closed:
				return ErrMailboxClosed
			}
		}
	}

	select {
	case m.ch <- v:
		return nil
	case <-m.closed:
		return ErrMailboxClosed
	default:
		return ErrMailboxFull
	}
}

// receive returns the channel the Context drains envelopes from.
func (m *mailbox[T]) receive() <-chan T {
	return m.ch
}

// connectedState reports whether the receiving Context is still alive.
func (m *mailbox[T]) connectedState() bool {
	return m.connected.Load()
}

// addSender/dropSender track outstanding Address clones so the last
// drop can signal that no producer remains, waking a Context that may
// be waiting on mailbox activity to notice and begin stopping.
func (m *mailbox[T]) addSender() {
	m.senders.Add(1)
}

func (m *mailbox[T]) dropSender() {
	if m.senders.Add(-1) == 0 {
		// No producers left; wake whoever's blocked waiting for work so
		// it can notice and begin stopping, rather than depending on
		// another message arriving that never will.
		m.drainOnce.Do(func() { close(m.drained) })
	}
}

func (m *mailbox[T]) senderCount() int64 {
	return m.senders.Load()
}

// closeForReceiver is called by the owning Context when it stops
// consuming; it flips connected to false so surviving senders observe
// Closed on their next use.
func (m *mailbox[T]) closeForReceiver() {
	m.connected.Store(false)
	m.closeOnce.Do(func() {
		close(m.closed)
	})
}
