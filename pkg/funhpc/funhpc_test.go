package funhpc

import (
	"os"
	"sort"
	"sync"
	"testing"

	"funhpc/pkg/rptr"
)

type ranksSeen struct {
	mu   sync.Mutex
	seen []int
}

func (r *ranksSeen) add(rank int) {
	r.mu.Lock()
	r.seen = append(r.seen, rank)
	r.mu.Unlock()
}

func (r *ranksSeen) sorted() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]int(nil), r.seen...)
	sort.Ints(out)
	return out
}

func TestRunReturnsRootExitCode(t *testing.T) {
	os.Setenv("FUNHPC_NUM_PROCS", "3")
	defer os.Unsetenv("FUNHPC_NUM_PROCS")

	code := run(func(rt *rptr.Runtime, args []string) int {
		if rt.Rank() != 0 {
			t.Fatalf("expected funhpc_main to run on rank 0, got %d", rt.Rank())
		}
		return 7
	}, nil)
	if code != 7 {
		t.Fatalf("expected exit code 7, got %d", code)
	}
}

func TestRankInTable(t *testing.T) {
	table := []string{"/ip4/10.0.0.1/tcp/9000", "/ip4/10.0.0.2/tcp/9000", "/ip4/10.0.0.3/tcp/9000"}

	if rank, ok := rankInTable("/ip4/10.0.0.2/tcp/9000", table); !ok || rank != 1 {
		t.Fatalf("expected rank 1, got %d, ok=%v", rank, ok)
	}
	if _, ok := rankInTable("/ip4/10.0.0.9/tcp/9000", table); ok {
		t.Fatal("expected no match for an address not in the table")
	}
}

func TestRunFallsBackToLoopbackWithoutDeploymentConfig(t *testing.T) {
	// No config file and no FUNHPC_ENV means config.LoadFromEnv fails,
	// so run must fall back to the in-process loopback simulation
	// rather than trying (and failing) to build a LibP2PTransport.
	os.Setenv("FUNHPC_NUM_PROCS", "2")
	defer os.Unsetenv("FUNHPC_NUM_PROCS")

	code := run(func(rt *rptr.Runtime, args []string) int { return 3 }, nil)
	if code != 3 {
		t.Fatalf("expected exit code 3 from the loopback path, got %d", code)
	}
}

func TestRunMainEverywhere(t *testing.T) {
	os.Setenv("FUNHPC_NUM_PROCS", "3")
	os.Setenv("FUNHPC_MAIN_EVERYWHERE", "1")
	defer os.Unsetenv("FUNHPC_NUM_PROCS")
	defer os.Unsetenv("FUNHPC_MAIN_EVERYWHERE")

	var mu ranksSeen
	run(func(rt *rptr.Runtime, args []string) int {
		mu.add(rt.Rank())
		return 0
	}, nil)
	if got := mu.sorted(); len(got) != 3 {
		t.Fatalf("expected funhpc_main to run on all 3 ranks, got %v", got)
	}
}
