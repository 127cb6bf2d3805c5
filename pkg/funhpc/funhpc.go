// Package funhpc wires together rtconfig, pkg/config, dispatch and rptr
// into the process entry point CORE §6 describes: a user funhpc_main
// running on the root process (or every process, per
// FUNHPC_MAIN_EVERYWHERE), with the runtime initialized before and torn
// down after the call.
package funhpc

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"funhpc/pkg/config"
	"funhpc/pkg/dispatch"
	"funhpc/pkg/fiber"
	"funhpc/pkg/rptr"
	"funhpc/pkg/rtconfig"
)

// MainFunc is funhpc_main: it receives the rptr runtime for this
// process and whatever argv the transport did not consume, and returns
// the process's exit code.
type MainFunc func(rt *rptr.Runtime, args []string) int

// Run initializes the runtime, invokes fn per FUNHPC_MAIN_EVERYWHERE's
// rule, tears the runtime down via a termination barrier, and exits the
// process with fn's return value (root) or 0 (every other process),
// per CORE §6's exit-code rule.
func Run(fn MainFunc, args []string) {
	os.Exit(run(fn, args))
}

// run picks between two transports for the same dispatch.Runtime/
// rptr.Runtime wiring. A deployment config (pkg/config) naming a
// multi-entry bootstrap_peers rank table means this process is one of
// several real OS processes talking libp2p, so runDistributed dials the
// rest of the job and acts as exactly one rank. Absent that -- the
// common case for local development and for every test in this repo --
// runLoopback simulates rtconfig's FUNHPC_NUM_PROCS ranks inside this
// one process over LoopbackTransport, CORE §4.5's single-process
// bypass.
func run(fn MainFunc, args []string) int {
	rcfg := rtconfig.Load()
	if rcfg.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if dcfg, err := config.LoadFromEnv(); err == nil && len(dcfg.Network.BootstrapPeers) > 1 {
		return runDistributed(fn, args, rcfg, dcfg)
	}
	return runLoopback(fn, args, rcfg)
}

func runLoopback(fn MainFunc, args []string, cfg rtconfig.Runtime) int {
	transports := dispatch.NewLoopbackJob(cfg.NumProcs)
	dispatchers := make([]*dispatch.Runtime, cfg.NumProcs)
	runtimes := make([]*rptr.Runtime, cfg.NumProcs)
	for i, t := range transports {
		d := dispatch.NewRuntime(t)
		rt := rptr.NewRuntime(d.Messenger())
		d.Attach(rt)
		dispatchers[i] = d
		runtimes[i] = rt
	}
	defer func() {
		for _, d := range dispatchers {
			d.Close()
		}
	}()

	if cfg.Verbose {
		for i := range transports {
			printDiagnostics(i, cfg)
		}
	}

	codes := make([]int, cfg.NumProcs)
	done := make(chan struct{}, cfg.NumProcs)
	for i := 0; i < cfg.NumProcs; i++ {
		i := i
		go func() {
			defer func() { done <- struct{}{} }()
			if cfg.MainEverywhere || i == 0 {
				codes[i] = fn(runtimes[i], args)
			}
			ctx := context.Background()
			if err := dispatchers[i].Barrier(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "funhpc[%d]: termination barrier: %v\n", i, err)
				codes[i] = 1
			}
		}()
	}
	for i := 0; i < cfg.NumProcs; i++ {
		<-done
	}

	return codes[0]
}

// rankInTable finds listenAddr's position in a job's rank table, the
// convention pkg/config's bootstrap_peers list follows: the table is
// every rank's multiaddr in rank order, and a process recognizes its
// own rank as wherever its own listen_addr appears in it.
func rankInTable(listenAddr string, table []string) (int, bool) {
	for i, addr := range table {
		if addr == listenAddr {
			return i, true
		}
	}
	return -1, false
}

// runDistributed runs this one OS process as a single rank of a real,
// multi-process job: dcfg.Network.BootstrapPeers is the full rank
// table, dcfg.Network.ListenAddr is this process's own entry in it, and
// dcfg.Logging.Level sets the shared logrus level every dispatch.Runtime
// logs through.
func runDistributed(fn MainFunc, args []string, rcfg rtconfig.Runtime, dcfg *config.Config) int {
	if dcfg.Logging.Level != "" {
		if lvl, err := logrus.ParseLevel(dcfg.Logging.Level); err == nil {
			logrus.SetLevel(lvl)
		}
	}

	rank, ok := rankInTable(dcfg.Network.ListenAddr, dcfg.Network.BootstrapPeers)
	if !ok {
		fmt.Fprintf(os.Stderr, "funhpc: listen_addr %q not found in bootstrap_peers rank table\n", dcfg.Network.ListenAddr)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t, err := dispatch.NewLibP2PTransport(ctx, rank, dcfg.Network.BootstrapPeers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "funhpc[%d]: start transport: %v\n", rank, err)
		return 1
	}
	d := dispatch.NewRuntime(t)
	rt := rptr.NewRuntime(d.Messenger())
	d.Attach(rt)
	defer d.Close()

	if rcfg.Verbose {
		printDiagnostics(rank, rcfg)
	}

	code := 0
	if rcfg.MainEverywhere || rank == 0 {
		code = fn(rt, args)
	}
	if err := d.Barrier(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "funhpc[%d]: termination barrier: %v\n", rank, err)
		return 1
	}
	if rank != 0 {
		return 0
	}
	return code
}

func printDiagnostics(rank int, cfg rtconfig.Runtime) {
	layouts := fiber.ComputeLayout(rank, rank%max(cfg.NumProcs, 1), cfg.NumThreads)
	for _, l := range layouts {
		fmt.Println(fiber.DiagnosticLine(l))
	}
}
