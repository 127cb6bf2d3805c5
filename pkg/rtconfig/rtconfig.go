// Package rtconfig reads the FUNHPC_* environment variables CORE §6
// recognizes, the ones describing the expected process/thread topology
// rather than deployment plumbing (pkg/config covers the latter).
package rtconfig

import (
	"fmt"

	"github.com/joho/godotenv"

	"funhpc/pkg/utils"
)

// Runtime is the resolved topology expectation read at startup.
type Runtime struct {
	NumNodes            int
	NumProcs            int
	NumThreads          int
	SetThreadBindings   bool
	UnsetThreadBindings bool
	MainEverywhere      bool
	Verbose             bool
}

// Load reads a .env file if present (ignored if absent, per godotenv's
// own convention) and then the FUNHPC_* variables, applying CORE §6's
// documented defaults.
func Load() Runtime {
	_ = godotenv.Load()
	return Runtime{
		NumNodes:            utils.EnvOrDefaultInt("FUNHPC_NUM_NODES", 1),
		NumProcs:            utils.EnvOrDefaultInt("FUNHPC_NUM_PROCS", 1),
		NumThreads:          utils.EnvOrDefaultInt("FUNHPC_NUM_THREADS", 1),
		SetThreadBindings:   utils.EnvOrDefault("FUNHPC_SET_THREAD_BINDINGS", "1") != "0",
		UnsetThreadBindings: utils.EnvOrDefault("FUNHPC_UNSET_THREAD_BINDINGS", "0") != "0",
		MainEverywhere:      utils.EnvOrDefault("FUNHPC_MAIN_EVERYWHERE", "0") != "0",
		Verbose:             utils.EnvOrDefault("FUNHPC_VERBOSE", "0") != "0",
	}
}

// CheckTopology fails fatally (CORE §7's "Configuration mismatch" kind)
// if the environment's expectations disagree with what was actually
// detected at startup.
func (r Runtime) CheckTopology(detectedNodes, detectedProcs int) error {
	if r.NumNodes != detectedNodes {
		return fmt.Errorf("rtconfig: FUNHPC_NUM_NODES=%d but detected %d nodes", r.NumNodes, detectedNodes)
	}
	if r.NumProcs != detectedProcs {
		return fmt.Errorf("rtconfig: FUNHPC_NUM_PROCS=%d but detected %d processes", r.NumProcs, detectedProcs)
	}
	return nil
}
