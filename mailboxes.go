package actix

import "sync/atomic"

// Mailboxes owns the local (and, lazily, sync) mailbox pair for one
// actor slot, plus an atomic pointer to whichever Context is currently
// draining them. It is the stable identity behind an Address: a
// supervisor rebuilds the Context on restart but keeps the very same
// Mailboxes, so outstanding Address/Recipient handles stay valid and
// any envelopes already queued survive the restart untouched.
type Mailboxes[A any] struct {
	local   *mailbox[envelope[A]]
	sync    *mailbox[envelope[A]]
	current atomic.Pointer[Context[A]]
}

// NewMailboxes allocates a fresh local mailbox of the given capacity (0
// for unbounded). The sync mailbox is created lazily, the first time
// AddressSync is called.
func NewMailboxes[A any](localCapacity int) *Mailboxes[A] {
	return &Mailboxes[A]{
		local: newMailbox[envelope[A]](localCapacity),
	}
}

// Address returns a Local handle to this mailbox slot.
func (m *Mailboxes[A]) Address() Address[Local, A] {
	return newAddress[Local](m, m.local)
}

// AddressSync returns a Sync handle, creating the cross-goroutine
// bridge lazily the first time it's called.
func (m *Mailboxes[A]) AddressSync(capacity int) Address[Sync, A] {
	if m.sync == nil {
		m.sync = newMailbox[envelope[A]](capacity)
	}
	return newAddress[Sync](m, m.sync)
}

// SendersAlive reports whether any Address/Recipient clone across
// either mailbox is still outstanding; once it's false the owning
// Context (or Supervisor) should stop rather than restart.
func (m *Mailboxes[A]) SendersAlive() bool {
	if m.local.senderCount() > 0 {
		return true
	}
	return m.sync != nil && m.sync.senderCount() > 0
}

func (m *Mailboxes[A]) lookup(msg any) (dispatchEntry[A], bool) {
	c := m.current.Load()
	if c == nil {
		return dispatchEntry[A]{}, false
	}
	return c.lookup(msg)
}

func (m *Mailboxes[A]) install(c *Context[A]) {
	m.current.Store(c)
}

// ActiveContext returns whichever Context is currently installed over
// this Mailboxes, or nil between a crash and its restart. A Supervisor
// uses this to forward Stop/Terminate to whatever incarnation of the
// actor is presently running.
func (m *Mailboxes[A]) ActiveContext() *Context[A] {
	return m.current.Load()
}
