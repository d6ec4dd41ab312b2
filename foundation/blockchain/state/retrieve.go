package state

import (
	"github.com/ardanlabs/gossipchain/foundation/blockchain/ledger"
)

// Status represents a summary of the node's chain.
type Status struct {
	LatestBlockHash string `json:"latest_block_hash"`
	Height          int    `json:"height"`
	GenesisHash     string `json:"genesis_hash"`
}

// RetrieveGenesis returns a copy of the genesis block.
func (s *State) RetrieveGenesis() ledger.Block {
	return s.genesis
}

// RetrieveLatestBlock returns a copy of the current latest block.
func (s *State) RetrieveLatestBlock() ledger.Block {
	block, _ := s.chain.Latest()
	return block
}

// RetrieveBlocks returns a copy of every block in the chain.
func (s *State) RetrieveBlocks() []ledger.Block {
	return s.chain.Blocks()
}

// RetrieveStatus returns a summary of the chain.
func (s *State) RetrieveStatus() Status {
	return Status{
		LatestBlockHash: s.chain.TailHash(),
		Height:          s.chain.Len(),
		GenesisHash:     s.genesis.Hash,
	}
}

// VerifyChain checks the integrity of the local chain. A failure is returned
// as a *ledger.VerifyError and the chain is left untouched.
func (s *State) VerifyChain() error {
	return s.chain.Verify()
}
