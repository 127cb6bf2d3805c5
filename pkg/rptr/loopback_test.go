package rptr

// LoopbackMessenger simulates a multi-process job inside a single test
// binary: every "process" is just another Runtime sharing this map, and
// sends are delivered synchronously (pkg/dispatch instead delivers the
// same messages through its transport's asynchronous receive pump).
type LoopbackMessenger struct {
	rank     int
	registry map[int]*Runtime
}

// NewLoopbackJob builds n Runtimes wired to each other by a shared
// LoopbackMessenger registry, standing in for an n-process funhpc job.
func NewLoopbackJob(n int) []*Runtime {
	registry := make(map[int]*Runtime, n)
	rts := make([]*Runtime, n)
	for i := 0; i < n; i++ {
		rts[i] = NewRuntime(&LoopbackMessenger{rank: i, registry: registry})
		registry[i] = rts[i]
	}
	return rts
}

func (m *LoopbackMessenger) Rank() int { return m.rank }

func (m *LoopbackMessenger) SendDecrement(owner int, addr Addr) {
	m.registry[owner].HandleDecrement(addr)
}

func (m *LoopbackMessenger) SendIncrementThenDecrementPair(owner int, addr Addr, origin, newHolder int) {
	m.registry[owner].HandleIncrementThenDecrementPair(addr, origin, newHolder)
}

func (m *LoopbackMessenger) SendDecrementLocal(dest int, addr Addr) {
	m.registry[dest].HandleDecrementLocal(addr)
}

func (m *LoopbackMessenger) Exec(dest int, fn func(rt *Runtime)) {
	fn(m.registry[dest])
}
