// Package worker implements block sharing and the connection to known peers
// for the node.
package worker

import (
	"sync"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/ledger"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/relay"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/state"
)

// Config represents the configuration required to run the worker.
type Config struct {
	State      *state.State
	Relay      *relay.Relay
	KnownPeers []string
	EvHandler  state.EventHandler
}

// Worker manages the background workflows for the node.
type Worker struct {
	state      *state.State
	relay      *relay.Relay
	knownPeers []string
	wg         sync.WaitGroup
	shut       chan struct{}
	shareBlock chan ledger.Block
	evHandler  state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(cfg Config) {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	w := Worker{
		state:      cfg.State,
		relay:      cfg.Relay,
		knownPeers: cfg.KnownPeers,
		shut:       make(chan struct{}),
		shareBlock: make(chan ledger.Block, maxBlockShareRequests),
		evHandler:  ev,
	}

	// Register this worker with the state package.
	cfg.State.Worker = &w

	// Connect to the known peers before starting any support G's.
	w.connectPeers()

	// Load the set of operations we need to run.
	operations := []func(){
		w.shareBlockOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalShareBlock signals a share block operation. If
// maxBlockShareRequests signals exist in the channel, the block won't be shared.
func (w *Worker) SignalShareBlock(block ledger.Block) {
	select {
	case w.shareBlock <- block:
		w.evHandler("worker: SignalShareBlock: share block signaled")
	default:
		w.evHandler("worker: SignalShareBlock: queue full, block won't be shared.")
	}
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
