package rptr

// Messenger is the narrow point-to-point messaging seam the refcount
// protocol and proxy remote execution need. pkg/dispatch implements it
// over libp2p streams with four small gob-encodable message structs;
// tests in this package use an in-process LoopbackMessenger that routes
// directly between sibling Runtimes to simulate a multi-process job
// without a real transport.
//
// The protocol never needs to ship a T across this interface: only
// Addr values and small integers cross it. The payload itself only
// ever moves as part of a SharedRptr's own (de)serialization, which is
// the caller's concern (pkg/dispatch's task argument encoding), not
// this package's.
type Messenger interface {
	// Rank is this process's own rank.
	Rank() int

	// SendDecrement asks the owner of addr to decrement its refcount by
	// one, destructing the payload if that brings it to zero.
	SendDecrement(owner int, addr Addr)

	// SendIncrementThenDecrementPair asks the owner of addr to register
	// one new permanent share for newHolder, then send a SendDecrementLocal
	// back to both origin and newHolder to close out their transient
	// in-flight refcount bump.
	SendIncrementThenDecrementPair(owner int, addr Addr, origin, newHolder int)

	// SendDecrementLocal asks a specific non-owner process to decrement
	// its own local manager for addr by one, without forwarding anything
	// further (used only by the owner: as the second half of the pair
	// above, and when a share relayed by a non-owner lands back on the
	// owner).
	SendDecrementLocal(dest int, addr Addr)

	// Exec schedules fn to run as a fiber on process dest, passing dest's
	// own Runtime so fn can operate on that process's owner registry
	// (e.g. to MakeSharedRptr a result there). Used by proxy's
	// fmap/foldMap to run user code on a remote owner.
	//
	// This models same-process multi-rank simulation (and CORE §4.5's
	// single-process bypass, where dest is always the caller's own
	// Runtime) faithfully. Real cross-OS-process execution additionally
	// requires f itself to have been registered ahead of time with
	// pkg/dispatch's task registry (L6) under a well-known name, since
	// Go cannot serialize an arbitrary closure across a real process
	// boundary -- the same concrete-serialization-library boundary
	// spec.md §1 leaves out of the CORE's scope. fn must not itself
	// block on another Exec into the same process pair in a way that
	// deadlocks the single communication fiber (CORE §5's shared-
	// resource policy).
	Exec(dest int, fn func(rt *Runtime))
}
