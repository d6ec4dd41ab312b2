// Package state is the core API for the node. It owns the ledger and
// connects it to the gossip relay through the worker.
package state

import (
	"github.com/ardanlabs/gossipchain/foundation/blockchain/ledger"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for sharing blocks with peers.
type Worker interface {
	Shutdown()
	SignalShareBlock(block ledger.Block)
}

// =============================================================================

// Config represents the configuration required to start the node.
type Config struct {
	GenesisTimeStamp int64
	Clock            ledger.Clock
	EvHandler        EventHandler
}

// State manages the ledger for the node.
type State struct {
	evHandler EventHandler
	genesis   ledger.Block
	chain     *ledger.Chain

	Worker Worker
}

// New constructs the node state with a chain that holds only the genesis
// block. Nodes that exchange blocks must share the genesis timestamp.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	clock := cfg.Clock
	if clock == nil {
		clock = ledger.WallClock
	}

	genesis := ledger.NewGenesis(cfg.GenesisTimeStamp)

	chain := ledger.New(ledger.WithClock(clock))
	if err := chain.AppendBlock(genesis); err != nil {
		return nil, err
	}

	ev("state: New: genesis: blk[%s]", genesis.Hash)

	state := State{
		evHandler: ev,
		genesis:   genesis,
		chain:     chain,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}
