package rptr

import "sync"

// ownerRecord is the bookkeeping an owning process keeps for a payload
// it allocated: the live refcount summed across every process holding a
// share, and the destructor to run exactly once when it reaches zero.
type ownerRecord struct {
	mu       sync.Mutex
	refcount int
	payload  any
	destroy  func()
}

// Runtime is the process-local state the refcount protocol needs: this
// process's rank, its messenger, and the registries of objects it owns
// or holds a non-owner manager for. One Runtime exists per OS process
// (spec.md §9's "Global mutable state" note — rank/size/topology,
// kept in one struct rather than file-scope globals).
type Runtime struct {
	messenger Messenger

	mu        sync.Mutex
	owners    map[Addr]*ownerRecord
	nonOwners map[Addr]*nonOwnerHandle
}

// nonOwnerHandle is what a non-owner process keeps per remote object it
// has a manager for, so incoming SendDecrementLocal messages can find
// and adjust the right manager.
type nonOwnerHandle struct {
	mu    sync.Mutex
	count int
}

// NewRuntime wires a Runtime to its messenger.
func NewRuntime(m Messenger) *Runtime {
	return &Runtime{
		messenger: m,
		owners:    make(map[Addr]*ownerRecord),
		nonOwners: make(map[Addr]*nonOwnerHandle),
	}
}

func (rt *Runtime) Rank() int { return rt.messenger.Rank() }

// registerOwner records a freshly allocated payload this process owns.
func (rt *Runtime) registerOwner(addr Addr, payload any, destroy func()) *ownerRecord {
	rec := &ownerRecord{refcount: 1, payload: payload, destroy: destroy}
	rt.mu.Lock()
	rt.owners[addr] = rec
	rt.mu.Unlock()
	return rec
}

func (rt *Runtime) lookupOwner(addr Addr) (*ownerRecord, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rec, ok := rt.owners[addr]
	return rec, ok
}

func (rt *Runtime) registerNonOwner(addr Addr, initial int) *nonOwnerHandle {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	h, ok := rt.nonOwners[addr]
	if !ok {
		h = &nonOwnerHandle{count: initial}
		rt.nonOwners[addr] = h
	}
	return h
}

func (rt *Runtime) forgetNonOwner(addr Addr) {
	rt.mu.Lock()
	delete(rt.nonOwners, addr)
	rt.mu.Unlock()
}

// HandleDecrement is the owner-side entry point for a SendDecrement
// message: decrement addr's refcount, destructing the payload exactly
// once if it reaches zero.
func (rt *Runtime) HandleDecrement(addr Addr) {
	rec, ok := rt.lookupOwner(addr)
	if !ok {
		panic("rptr: decrement for unknown owner address")
	}
	rec.mu.Lock()
	rec.refcount--
	zero := rec.refcount == 0
	rec.mu.Unlock()
	if zero {
		rt.mu.Lock()
		delete(rt.owners, addr)
		rt.mu.Unlock()
		rec.destroy()
	}
}

// HandleIncrementThenDecrementPair is the owner-side entry point: adds
// one permanent share for newHolder, then tells origin and newHolder to
// release their transient in-flight bump.
func (rt *Runtime) HandleIncrementThenDecrementPair(addr Addr, origin, newHolder int) {
	rec, ok := rt.lookupOwner(addr)
	if !ok {
		panic("rptr: increment/decrement pair for unknown owner address")
	}
	rec.mu.Lock()
	rec.refcount++
	rec.mu.Unlock()
	rt.messenger.SendDecrementLocal(origin, addr)
	rt.messenger.SendDecrementLocal(newHolder, addr)
}

// HandleDecrementLocal is the non-owner entry point: release one unit
// of transient in-flight refcount for addr, without propagating
// anything further. If this brings the non-owner's count to zero, the
// payload is not destroyed here -- that only happens when a later
// SharedRptr.Release drives the local count to zero and this process
// sends its own SendDecrement to the owner.
func (rt *Runtime) HandleDecrementLocal(addr Addr) {
	rt.mu.Lock()
	h, ok := rt.nonOwners[addr]
	rt.mu.Unlock()
	if !ok {
		panic("rptr: decrement-local for unknown non-owner address")
	}
	h.mu.Lock()
	h.count--
	h.mu.Unlock()
}
