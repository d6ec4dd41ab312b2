package public

import (
	"github.com/ardanlabs/gossipchain/foundation/blockchain/ledger"
)

// NewBlock is what we require from clients to add a block to the chain.
type NewBlock struct {
	Data ledger.Payload `json:"data" validate:"required"`
}

type block struct {
	TimeStamp int64          `json:"timestamp"`
	Data      ledger.Payload `json:"data"`
	PrevHash  string         `json:"prev_hash"`
	Hash      string         `json:"hash"`
}

func toBlock(b ledger.Block) block {
	return block{
		TimeStamp: b.TimeStamp,
		Data:      b.Data,
		PrevHash:  b.PrevHash,
		Hash:      b.Hash,
	}
}

func toBlocks(blocks []ledger.Block) []block {
	out := make([]block, len(blocks))
	for i, b := range blocks {
		out[i] = toBlock(b)
	}
	return out
}

type status struct {
	LatestBlockHash string `json:"latest_block_hash"`
	Height          int    `json:"height"`
	GenesisHash     string `json:"genesis_hash"`
	Peers           int    `json:"peers"`
}

type verification struct {
	Valid bool   `json:"valid"`
	Index *int   `json:"index,omitempty"`
	Error string `json:"error,omitempty"`
}
