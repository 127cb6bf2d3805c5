package rptr

import "fmt"

// WireRptr is the small, T-free payload that crosses the wire when a
// SharedRptr is serialized (spec.md §4.3's serialization protocol).
// The actual T payload never appears here: WireRptr only ever
// identifies which object is referenced and how the sender held it.
type WireRptr struct {
	Addr         Addr
	OwnerIsOrigin bool // true iff the sender holder was itself the owner ("owner=self")
	Origin       int  // sender's rank; meaningful only when !OwnerIsOrigin
}

// manager is the process-local state backing one SharedRptr[T]. Unlike
// the source, Go's garbage collector already reclaims the manager
// struct itself once unreferenced; what this type exists for is purely
// the cross-process refcount protocol, not local memory management.
type manager[T any] struct {
	rt        *Runtime
	addr      Addr
	isOwner   bool
	ownerRank int
}

// SharedRptr is a movable, copyable handle to a T that lives on exactly
// one process (spec.md §4.3). The zero value is not valid; use
// MakeSharedRptr or Deserialize.
type SharedRptr[T any] struct {
	m *manager[T]
}

// MakeSharedRptr allocates a new payload, owned by this process
// (rt.Rank()).
func MakeSharedRptr[T any](rt *Runtime, v T) SharedRptr[T] {
	addr := newAddr(rt.Rank())
	payload := new(T)
	*payload = v
	rt.registerOwner(addr, payload, func() {})
	return SharedRptr[T]{m: &manager[T]{rt: rt, addr: addr, isOwner: true, ownerRank: rt.Rank()}}
}

// Valid reports whether r holds a real handle.
func (r SharedRptr[T]) Valid() bool { return r.m != nil }

// IsOwner reports whether this process is where the payload lives.
func (r SharedRptr[T]) IsOwner() bool { return r.m != nil && r.m.isOwner }

// OwnerRank returns the process the payload lives on.
func (r SharedRptr[T]) OwnerRank() int { return r.m.ownerRank }

// Addr returns the object identity, stable across processes.
func (r SharedRptr[T]) Addr() Addr { return r.m.addr }

// Get dereferences the payload. Fatal if this process is not the
// owner (spec.md §4.3's "Attempting to dereference a non-owner holder
// is fatal" failure mode) -- call MakeLocal first.
func (r SharedRptr[T]) Get() T {
	if !r.m.isOwner {
		panic("rptr: dereferencing a non-owner SharedRptr; call MakeLocal first")
	}
	rec, ok := r.m.rt.lookupOwner(r.m.addr)
	if !ok {
		panic("rptr: dereferencing a SharedRptr whose payload has already been destroyed")
	}
	return *rec.payload.(*T)
}

// Clone returns a new handle sharing the same payload, accounting for
// one more share without any message: if this process is the owner,
// the owner record's refcount is bumped directly in-process; if not,
// the one transferred token this process already holds is shared by
// one more local copy.
func (r SharedRptr[T]) Clone() SharedRptr[T] {
	if r.m.isOwner {
		rec, ok := r.m.rt.lookupOwner(r.m.addr)
		if !ok {
			panic("rptr: cloning a SharedRptr whose payload has already been destroyed")
		}
		rec.mu.Lock()
		rec.refcount++
		rec.mu.Unlock()
	} else {
		rt := r.m.rt
		rt.mu.Lock()
		h := rt.nonOwners[r.m.addr]
		rt.mu.Unlock()
		h.mu.Lock()
		h.count++
		h.mu.Unlock()
	}
	return SharedRptr[T]{m: &manager[T]{rt: r.m.rt, addr: r.m.addr, isOwner: r.m.isOwner, ownerRank: r.m.ownerRank}}
}

// Release drops this handle. On the owner, decrements the global share
// count, destructing the payload exactly once it reaches zero. On a
// non-owner, decrements this process's local share of the one
// transferred token, sending a single decrement to the owner once the
// local count reaches zero.
func (r SharedRptr[T]) Release() {
	rt := r.m.rt
	if r.m.isOwner {
		rec, ok := rt.lookupOwner(r.m.addr)
		if !ok {
			return
		}
		rec.mu.Lock()
		rec.refcount--
		zero := rec.refcount == 0
		rec.mu.Unlock()
		if zero {
			rt.mu.Lock()
			delete(rt.owners, r.m.addr)
			rt.mu.Unlock()
			rec.destroy()
		}
		return
	}
	rt.mu.Lock()
	h := rt.nonOwners[r.m.addr]
	rt.mu.Unlock()
	if h == nil {
		return
	}
	h.mu.Lock()
	h.count--
	zero := h.count == 0
	h.mu.Unlock()
	if zero {
		rt.forgetNonOwner(r.m.addr)
		rt.messenger.SendDecrement(r.m.ownerRank, r.m.addr)
	}
}

// Serialize produces the wire form of r, per spec.md §4.3: if this
// holder is the owner, it is marked "owner=self" with no local
// bookkeeping change; otherwise the owner and origin (this holder) are
// recorded and this holder's local share count is bumped by one
// transient unit, to be resolved by the eventual increment-then-
// decrement-pair (or by the receiving shortcut, if it lands back on
// the owner).
//
// For an owner handle, Serialize conceptually moves r onto the wire:
// the returned WireRptr carries r's own share, so r must not be
// Release'd afterward (that would double-account the share Deserialize
// is about to register on the far side). Clone r first if the sender
// also needs to keep using its own handle after sending a copy. A
// non-owner handle keeps its own share (the transient unit above is
// undone by the protocol) and is still Release'd as usual.
func (r SharedRptr[T]) Serialize() WireRptr {
	if r.m.isOwner {
		return WireRptr{Addr: r.m.addr, OwnerIsOrigin: true}
	}
	rt := r.m.rt
	rt.mu.Lock()
	h := rt.nonOwners[r.m.addr]
	rt.mu.Unlock()
	h.mu.Lock()
	h.count++
	h.mu.Unlock()
	return WireRptr{Addr: r.m.addr, OwnerIsOrigin: false, Origin: rt.Rank()}
}

// Deserialize reconstructs a SharedRptr on process rt.Rank() from a
// wire value produced by Serialize, completing whichever branch of the
// protocol applies (direct-from-owner, shortcut-onto-owner, or
// relayed-onto-a-third-process).
func Deserialize[T any](rt *Runtime, wire WireRptr) SharedRptr[T] {
	if wire.OwnerIsOrigin {
		if rt.Rank() == wire.Addr.Owner {
			if _, ok := rt.lookupOwner(wire.Addr); !ok {
				panic("rptr: deserializing owner-self wire value for unknown address")
			}
			return SharedRptr[T]{m: &manager[T]{rt: rt, addr: wire.Addr, isOwner: true, ownerRank: rt.Rank()}}
		}
		rt.registerNonOwner(wire.Addr, 1)
		return SharedRptr[T]{m: &manager[T]{rt: rt, addr: wire.Addr, isOwner: false, ownerRank: wire.Addr.Owner}}
	}

	if rt.Rank() == wire.Addr.Owner {
		rec, ok := rt.lookupOwner(wire.Addr)
		if !ok {
			panic("rptr: deserializing shortcut wire value for unknown owner address")
		}
		rec.mu.Lock()
		rec.refcount++
		rec.mu.Unlock()
		rt.messenger.SendDecrementLocal(wire.Origin, wire.Addr)
		return SharedRptr[T]{m: &manager[T]{rt: rt, addr: wire.Addr, isOwner: true, ownerRank: rt.Rank()}}
	}

	rt.registerNonOwner(wire.Addr, 2)
	rt.messenger.SendIncrementThenDecrementPair(wire.Addr.Owner, wire.Addr, wire.Origin, rt.Rank())
	return SharedRptr[T]{m: &manager[T]{rt: rt, addr: wire.Addr, isOwner: false, ownerRank: wire.Addr.Owner}}
}

func (r SharedRptr[T]) String() string {
	return fmt.Sprintf("SharedRptr(addr=%v, owner=%d, local-owner=%v)", r.m.addr, r.m.ownerRank, r.m.isOwner)
}
