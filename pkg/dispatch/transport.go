// Package dispatch implements the process-level task dispatcher (CORE
// §4.5): a send path, a receive pump that spawns a fiber per arriving
// task, and a termination barrier that accounts for detached tasks so
// it cannot complete while one is still in flight or still running.
//
// The source's explicit send-queue-plus-in-flight-list exists to let
// one non-blocking-I/O transport serve many fibers without blocking
// any of them. A goroutine per outbound send already gives that
// property directly in Go, so Runtime tracks in-flight sends with a
// sync.WaitGroup instead of a manual queue and poll loop.
package dispatch

import "context"

// Wire tags identifying what a Transport.Send/Recv payload carries.
const (
	TagTask byte = iota + 1
	TagAck
	TagDecrement
	TagIncDecPair
	TagDecrementLocal
)

// Transport is the point-to-point and collective primitive the
// dispatcher needs from whatever concrete networking layer backs it:
// libp2p streams and pubsub in production (LibP2PTransport), or an
// in-process loopback for tests and single-process runs
// (LoopbackTransport).
type Transport interface {
	Rank() int
	Size() int

	// Send delivers a tagged, length-delimited frame to dest (CORE
	// §6's wire format), to be handed to dest's receive pump.
	Send(dest int, tag byte, data []byte) error

	// Recv blocks until a message arrives or ctx is done.
	Recv(ctx context.Context) (src int, tag byte, data []byte, ok bool)

	// Barrier blocks until every process has called Barrier with the
	// same epoch. Each termination round uses a fresh epoch so a
	// process that discovers new outstanding work between rounds can
	// simply call Barrier again without reusing a spent collective.
	Barrier(ctx context.Context, epoch int) error

	Close() error
}
