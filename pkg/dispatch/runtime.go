package dispatch

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"funhpc/pkg/rptr"
)

// TaskFn is a registered, named unit of remote work: CORE §4.5's
// dispatchable task, reduced to something Go can actually ship across a
// real process boundary -- a name plus a gob-encoded argument blob,
// rather than an arbitrary closure.
type TaskFn func(args []byte)

type decrementMsg struct{ Addr rptr.Addr }
type pairMsg struct {
	Addr              rptr.Addr
	Origin, NewHolder int
}
type taskFrame struct {
	ID   uint64
	Name string
	Args []byte
}
type ackFrame struct{ ID uint64 }

// Runtime is the process-level task dispatcher: it owns a Transport,
// pumps incoming frames to the right handler, and tracks outstanding
// work so Barrier cannot return while a dispatched task is still in
// flight or still running (closing CORE §9's termination-under-
// detached-tasks open question -- see Barrier's doc comment).
type Runtime struct {
	t  Transport
	rt *rptr.Runtime // set once via Attach, after both are constructed

	tasksMu sync.RWMutex
	tasks   map[string]TaskFn

	nextID  uint64
	acksMu  sync.Mutex
	acks    map[uint64]chan struct{}

	sendWG      sync.WaitGroup // sends in flight, not yet ack'd
	outstanding sync.WaitGroup // tasks registered remotely but not yet finished running

	activity int32 // bumped on every send/ack/task-completion since the last Barrier poll

	ctx    context.Context
	cancel context.CancelFunc
	pumped sync.WaitGroup

	log *logrus.Entry // one per Runtime, tagged with this process's rank
}

// NewRuntime starts a dispatcher over t. Attach must be called once the
// companion *rptr.Runtime exists, before any decrement messages arrive.
func NewRuntime(t Transport) *Runtime {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Runtime{
		t:      t,
		tasks:  make(map[string]TaskFn),
		acks:   make(map[uint64]chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		log:    logrus.WithField("rank", t.Rank()),
	}
	d.pumped.Add(1)
	go d.pump()
	return d
}

// Attach wires this dispatcher to the shared_rptr runtime whose
// HandleDecrement/HandleIncrementThenDecrementPair/HandleDecrementLocal
// entry points incoming wire frames resolve to.
func (d *Runtime) Attach(rt *rptr.Runtime) { d.rt = rt }

// Register installs fn under name, so a remote Dispatch(name, ...) call
// can find and run it. Registration must happen on every process before
// any process may dispatch that name to it.
func (d *Runtime) Register(name string, fn TaskFn) {
	d.tasksMu.Lock()
	d.tasks[name] = fn
	d.tasksMu.Unlock()
}

func (d *Runtime) bumpActivity() { atomic.AddInt32(&d.activity, 1) }

func encode(v any) []byte {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		panic(fmt.Sprintf("dispatch: encode: %v", err))
	}
	return buf.Bytes()
}

func decode(data []byte, v any) {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		panic(fmt.Sprintf("dispatch: decode: %v", err))
	}
}

// Dispatch ships a named, registered task to dest and returns once dest
// has acknowledged registering it in its own outstanding count -- not
// once the task has finished running. This is the ack-based send CORE
// §9 flags as needed: it blocks the caller (cheaply, inside a goroutine
// a caller can itself detach) until the receiver's outstanding count
// already reflects the task, so a racing Barrier on either side can
// never observe the task as neither sent-pending nor received-pending.
func (d *Runtime) Dispatch(ctx context.Context, dest int, name string, args []byte) error {
	id := atomic.AddUint64(&d.nextID, 1)
	ch := make(chan struct{})
	d.acksMu.Lock()
	d.acks[id] = ch
	d.acksMu.Unlock()

	d.sendWG.Add(1)
	d.bumpActivity()
	defer d.sendWG.Done()

	log := d.log.WithField("task_id", id)
	log.Debugf("dispatch: sending task %q to rank %d", name, dest)

	if err := d.t.Send(dest, TagTask, encode(taskFrame{ID: id, Name: name, Args: args})); err != nil {
		d.acksMu.Lock()
		delete(d.acks, id)
		d.acksMu.Unlock()
		log.Warnf("dispatch: send task %q to rank %d failed: %v", name, dest, err)
		return err
	}
	select {
	case <-ch:
		log.Debugf("dispatch: task %q acked by rank %d", name, dest)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pump is the receive loop: one goroutine per Runtime reading frames
// off the transport and dispatching them by tag. Each arriving task
// runs on its own goroutine so a long-running task never blocks the
// pump from servicing acks and refcount messages concurrently.
func (d *Runtime) pump() {
	defer d.pumped.Done()
	for {
		src, tag, data, ok := d.t.Recv(d.ctx)
		if !ok {
			return
		}
		switch tag {
		case TagTask:
			var f taskFrame
			decode(data, &f)
			d.outstanding.Add(1)
			d.bumpActivity()
			_ = d.t.Send(src, TagAck, encode(ackFrame{ID: f.ID}))
			d.log.WithField("task_id", f.ID).Debugf("dispatch: running task %q from rank %d", f.Name, src)
			go func() {
				defer d.outstanding.Done()
				defer d.bumpActivity()
				d.tasksMu.RLock()
				fn, ok := d.tasks[f.Name]
				d.tasksMu.RUnlock()
				if !ok {
					d.log.WithField("task_id", f.ID).Errorf("dispatch: unregistered task %q", f.Name)
					panic(fmt.Sprintf("dispatch: unregistered task %q", f.Name))
				}
				fn(f.Args)
			}()

		case TagAck:
			var a ackFrame
			decode(data, &a)
			d.acksMu.Lock()
			ch, ok := d.acks[a.ID]
			delete(d.acks, a.ID)
			d.acksMu.Unlock()
			if ok {
				close(ch)
			}
			d.bumpActivity()

		case TagDecrement:
			var m decrementMsg
			decode(data, &m)
			d.rt.HandleDecrement(m.Addr)
			d.bumpActivity()

		case TagIncDecPair:
			var m pairMsg
			decode(data, &m)
			d.rt.HandleIncrementThenDecrementPair(m.Addr, m.Origin, m.NewHolder)
			d.bumpActivity()

		case TagDecrementLocal:
			var m decrementMsg
			decode(data, &m)
			d.rt.HandleDecrementLocal(m.Addr)
			d.bumpActivity()
		}
	}
}

// Barrier blocks until every process has no in-flight sends and no
// outstanding (received-but-not-finished) tasks, simultaneously. A
// single collective round is not enough on its own: a task that
// finishes mid-round can itself dispatch a new detached task to a
// process that already passed the round-local wait. So each round first
// drains local activity, then runs one Transport.Barrier epoch; if any
// process saw new activity during that epoch, everyone retries with a
// fresh epoch instead of declaring termination.
func (d *Runtime) Barrier(ctx context.Context) error {
	epoch := 0
	for {
		d.sendWG.Wait()
		d.outstanding.Wait()
		mark := atomic.LoadInt32(&d.activity)

		if err := d.t.Barrier(ctx, epoch); err != nil {
			return err
		}
		epoch++

		d.sendWG.Wait()
		d.outstanding.Wait()
		if atomic.LoadInt32(&d.activity) == mark {
			return nil
		}
	}
}

func (d *Runtime) Close() error {
	d.cancel()
	err := d.t.Close()
	d.pumped.Wait()
	return err
}

// Messenger returns the rptr.Messenger view of this dispatcher, wiring
// the refcount protocol's three remote operations onto the transport.
func (d *Runtime) Messenger() rptr.Messenger { return (*dispatchMessenger)(d) }

type dispatchMessenger Runtime

func (m *dispatchMessenger) Rank() int { return m.t.Rank() }

func (m *dispatchMessenger) SendDecrement(owner int, addr rptr.Addr) {
	d := (*Runtime)(m)
	if owner == d.t.Rank() {
		d.rt.HandleDecrement(addr)
		return
	}
	_ = d.t.Send(owner, TagDecrement, encode(decrementMsg{Addr: addr}))
}

func (m *dispatchMessenger) SendIncrementThenDecrementPair(owner int, addr rptr.Addr, origin, newHolder int) {
	d := (*Runtime)(m)
	if owner == d.t.Rank() {
		d.rt.HandleIncrementThenDecrementPair(addr, origin, newHolder)
		return
	}
	_ = d.t.Send(owner, TagIncDecPair, encode(pairMsg{Addr: addr, Origin: origin, NewHolder: newHolder}))
}

func (m *dispatchMessenger) SendDecrementLocal(dest int, addr rptr.Addr) {
	d := (*Runtime)(m)
	if dest == d.t.Rank() {
		d.rt.HandleDecrementLocal(addr)
		return
	}
	_ = d.t.Send(dest, TagDecrementLocal, encode(decrementMsg{Addr: addr}))
}

// Exec only runs fn when dest is this process itself. Shipping an
// arbitrary Go closure to a different OS process is exactly the
// serialization problem spec.md §1 leaves out of scope: a real remote
// Exec would need fn's operation and captured values reduced to a
// registered task name plus gob-encoded args, same as Dispatch. Callers
// that need genuine cross-process fmap/foldMap/make_local today run
// under LoopbackMessenger (same binary, many simulated ranks), which
// executes fn directly against the addressed Runtime.
func (m *dispatchMessenger) Exec(dest int, fn func(rt *rptr.Runtime)) {
	d := (*Runtime)(m)
	if dest != d.t.Rank() {
		panic("dispatch: Exec across a real process boundary requires a registered task (see Runtime.Dispatch); arbitrary closures cannot cross the wire")
	}
	fn(d.rt)
}
