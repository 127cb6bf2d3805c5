package fiber

import (
	"fmt"
	"runtime"
)

// Layout describes one worker's place in the process/thread topology,
// enough to reproduce the CORE's startup diagnostic line (spec.md §6).
// Actual CPU-pinning is an explicit Non-goal collaborator the CORE
// declines to design (spec.md §1's "CPU-affinity tuning" is listed
// among the out-of-scope collaborators); ComputeLayout here only
// derives the numbers the diagnostic line reports, and Bind is a
// documented no-op rather than an actual pthread/sched_setaffinity
// call, since Go's runtime scheduler already multiplexes goroutines
// over runtime.GOMAXPROCS OS threads without manual PU pinning.
type Layout struct {
	Rank       int
	Node       int
	LocalRank  int
	Proc       int
	Shepherd   int
	Thread     int
	LogicalPUs []int
	PhysicalPUs []int
}

// ComputeLayout derives one Layout per worker thread for a process,
// given its rank, its local rank among the processes on its node, and
// how many worker threads it runs. PU numbering is logical-equals-physical
// here: this repository does not model NUMA/hyperthread topology, only
// reports a PU set wide enough to satisfy the diagnostic format.
func ComputeLayout(rank, localRank, threadsPerProc int) []Layout {
	if threadsPerProc < 1 {
		threadsPerProc = runtime.GOMAXPROCS(0)
	}
	layouts := make([]Layout, threadsPerProc)
	for t := 0; t < threadsPerProc; t++ {
		pu := localRank*threadsPerProc + t
		layouts[t] = Layout{
			Rank:        rank,
			Node:        localRank,
			LocalRank:   localRank,
			Proc:        rank,
			Shepherd:    t,
			Thread:      t,
			LogicalPUs:  []int{pu},
			PhysicalPUs: []int{pu},
		}
	}
	return layouts
}

// DiagnosticLine renders l in the exact format spec.md §6 requires:
// "FunHPC[<rank>]: N<node> L<local-rank> P<proc> (S<shepherd>) T<thread> PU set L#{…} P#{…}".
func DiagnosticLine(l Layout) string {
	return fmt.Sprintf("FunHPC[%d]: N%d L%d P%d (S%d) T%d PU set L#{%s} P#{%s}",
		l.Rank, l.Node, l.LocalRank, l.Proc, l.Shepherd, l.Thread,
		formatPUSet(l.LogicalPUs), formatPUSet(l.PhysicalPUs))
}

func formatPUSet(pus []int) string {
	s := ""
	for i, pu := range pus {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%d", pu)
	}
	return s
}

// Bind is a documented no-op: CPU-affinity tuning is out of this
// repository's scope (spec.md §1). It exists so callers that want to
// express "bind this worker" have a single place to do so if a future
// revision picks it back up.
func Bind(Layout) {}
