package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/ledger"
)

// ErrInvalidFrame is returned when a relayed frame is not a block.
var ErrInvalidFrame = errors.New("frame is not a block")

// SubmitData appends the data to the local chain as a new block and asks the
// worker to share the block with the connected peers.
func (s *State) SubmitData(data any) (ledger.Block, error) {
	block, err := s.chain.Append(data)
	if err != nil {
		return ledger.Block{}, fmt.Errorf("append: %w", err)
	}

	s.evHandler("state: SubmitData: blk[%s]: prev[%s]: appended", block.Hash, block.PrevHash)

	if s.Worker != nil {
		s.Worker.SignalShareBlock(block)
	}

	return block, nil
}

// ReceiveBlock takes a frame relayed by a peer and appends it to the local
// chain when it is a valid block that extends the current tail. Frames that
// don't meet these rules are reported and left out of the chain.
func (s *State) ReceiveBlock(peerID string, frame []byte) error {
	block, err := ledger.Unmarshal(frame)
	if err != nil {
		s.evHandler("state: ReceiveBlock: peer[%s]: WARNING: %s", peerID, err)
		return fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}

	if err := s.chain.AppendBlock(block); err != nil {
		s.evHandler("state: ReceiveBlock: peer[%s]: blk[%s]: WARNING: %s", peerID, block.Hash, err)
		return err
	}

	s.evHandler("state: ReceiveBlock: peer[%s]: blk[%s]: appended", peerID, block.Hash)

	return nil
}
