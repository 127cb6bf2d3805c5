package rtconfig

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	r := Load()
	if r.NumNodes != 1 || r.NumProcs != 1 || r.NumThreads != 1 {
		t.Fatalf("expected single-node/single-process defaults, got %+v", r)
	}
	if !r.SetThreadBindings {
		t.Fatalf("expected thread bindings on by default")
	}
}

func TestLoadHonorsOverrides(t *testing.T) {
	os.Setenv("FUNHPC_NUM_PROCS", "4")
	os.Setenv("FUNHPC_VERBOSE", "1")
	defer os.Unsetenv("FUNHPC_NUM_PROCS")
	defer os.Unsetenv("FUNHPC_VERBOSE")

	r := Load()
	if r.NumProcs != 4 {
		t.Fatalf("expected NumProcs 4, got %d", r.NumProcs)
	}
	if !r.Verbose {
		t.Fatalf("expected Verbose true")
	}
}

func TestCheckTopologyMismatch(t *testing.T) {
	r := Runtime{NumNodes: 1, NumProcs: 2}
	if err := r.CheckTopology(1, 2); err != nil {
		t.Fatalf("expected matching topology to pass, got %v", err)
	}
	if err := r.CheckTopology(1, 3); err == nil {
		t.Fatalf("expected a mismatch error")
	}
}
