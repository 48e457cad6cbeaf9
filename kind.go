package actix

// Kind distinguishes the two mailbox flavours an Address/Recipient can
// be parameterized over. It's a phantom type parameter: both kinds
// share the same channel-based engine underneath (Go channels are
// already safe to use across goroutines regardless of OS thread), the
// distinction is purely about which contract the handle promises its
// caller. See DESIGN.md for why this is a deliberate simplification.
type Kind interface {
	kind() string
}

// Local tags an Address/Recipient whose sender and receiver are
// expected to stay on the arbiter goroutine that owns the Context.
// Crossing goroutines with a Local handle is not detected at compile
// time; it is a programming error (ErrRegistryMisuse territory).
type Local struct{}

func (Local) kind() string { return "local" }

// Sync tags an Address/Recipient that is freely transferable across
// goroutines/threads, e.g. handed to a SyncArbiter worker pool.
type Sync struct{}

func (Sync) kind() string { return "sync" }
