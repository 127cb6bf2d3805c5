package fiber

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool is a fixed-size worker pool of goroutines, each standing in for
// one OS thread's shepherd in the source's fiber scheduler: many
// spawned tasks ("fibers") are multiplexed onto a bounded number of
// these workers. Matches the teacher's own goroutine+WaitGroup
// concurrency idiom (core/common_structs.go's Replicator) rather than
// a third-party pool library, since none in the examples pack is
// imported directly by any kept teacher file.
type Pool struct {
	tasks chan func()
	group *errgroup.Group
	once  sync.Once
}

// NewPool starts a pool with the given number of worker goroutines.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	g := &errgroup.Group{}
	p := &Pool{tasks: make(chan func(), 1024), group: g}
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for task := range p.tasks {
				task()
			}
			return nil
		})
	}
	return p
}

// Spawn schedules task to run on some worker goroutine ("spawns a
// fiber" in the source's vocabulary). It never blocks the caller except
// to enqueue.
func (p *Pool) Spawn(task func()) {
	p.tasks <- task
}

// Shutdown closes the task channel and waits for every worker to drain
// and exit. Safe to call once; subsequent calls are no-ops.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.tasks)
	})
	_ = p.group.Wait()
}
