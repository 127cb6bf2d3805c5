// Package rptr implements the distributed shared pointer shared_rptr
// and the remote-proxy future proxy[T] (spec.md §4.3, §4.4): movable,
// copyable handles to an object that lives on exactly one process,
// usable from any process, destructed exactly once without
// stop-the-world coordination.
package rptr

import "github.com/google/uuid"

// Addr identifies one shared_rptr payload: the process it is owned by
// (the process on which it was allocated) and a unique id distinguishing
// it from every other payload ever allocated on that process.
type Addr struct {
	Owner int
	ID    uuid.UUID
}

func newAddr(owner int) Addr {
	return Addr{Owner: owner, ID: uuid.New()}
}
