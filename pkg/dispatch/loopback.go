package dispatch

import (
	"context"
	"sync"
)

type frame struct {
	src  int
	tag  byte
	data []byte
}

// LoopbackTransport simulates an n-process job inside a single OS
// process: every "process" is a goroutine-safe inbox, and Barrier is a
// plain epoch-keyed counting rendezvous. It backs both single-process
// mode (CORE §4.5; a dispatch Runtime still runs over it) and
// multi-rank tests.
type LoopbackTransport struct {
	rank int
	size int
	reg  *loopbackRegistry
}

type loopbackRegistry struct {
	mu     sync.Mutex
	inbox  []chan frame
	cond   *sync.Cond
	epoch  int
	arrived int
}

// NewLoopbackJob builds n LoopbackTransports sharing one registry,
// standing in for an n-process funhpc job.
func NewLoopbackJob(n int) []*LoopbackTransport {
	reg := &loopbackRegistry{inbox: make([]chan frame, n)}
	reg.cond = sync.NewCond(&reg.mu)
	for i := range reg.inbox {
		reg.inbox[i] = make(chan frame, 64)
	}
	out := make([]*LoopbackTransport, n)
	for i := 0; i < n; i++ {
		out[i] = &LoopbackTransport{rank: i, size: n, reg: reg}
	}
	return out
}

func (t *LoopbackTransport) Rank() int { return t.rank }
func (t *LoopbackTransport) Size() int { return t.size }

func (t *LoopbackTransport) Send(dest int, tag byte, data []byte) error {
	t.reg.inbox[dest] <- frame{src: t.rank, tag: tag, data: append([]byte(nil), data...)}
	return nil
}

func (t *LoopbackTransport) Recv(ctx context.Context) (int, byte, []byte, bool) {
	select {
	case f, ok := <-t.reg.inbox[t.rank]:
		if !ok {
			return 0, 0, nil, false
		}
		return f.src, f.tag, f.data, true
	case <-ctx.Done():
		return 0, 0, nil, false
	}
}

// Barrier blocks until all t.size processes have called Barrier with
// the same epoch, then releases them together.
func (t *LoopbackTransport) Barrier(ctx context.Context, epoch int) error {
	r := t.reg
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.epoch < epoch {
		r.cond.Wait()
	}
	r.arrived++
	if r.arrived == t.size {
		r.epoch = epoch + 1
		r.arrived = 0
		r.cond.Broadcast()
		return nil
	}
	target := epoch + 1
	for r.epoch < target {
		r.cond.Wait()
	}
	return nil
}

func (t *LoopbackTransport) Close() error {
	return nil
}
