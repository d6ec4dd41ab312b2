package worker

import (
	"github.com/ardanlabs/gossipchain/foundation/blockchain/ledger"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/relay"
)

// maxBlockShareRequests represents the max number of pending block share
// requests that can be outstanding before share requests are dropped. To keep
// this simple, a buffered channel of this arbitrary number is being used.
const maxBlockShareRequests = 100

// =============================================================================

// shareBlockOperations handles sharing new blocks.
func (w *Worker) shareBlockOperations() {
	w.evHandler("worker: shareBlockOperations: G started")
	defer w.evHandler("worker: shareBlockOperations: G completed")

	for {
		select {
		case block := <-w.shareBlock:
			if !w.isShutdown() {
				w.runShareBlockOperation(block)
			}
		case <-w.shut:
			w.evHandler("worker: shareBlockOperations: received shut signal")
			return
		}
	}
}

// runShareBlockOperation sends a new block to every connected peer.
func (w *Worker) runShareBlockOperation(block ledger.Block) {
	w.evHandler("worker: runShareBlockOperation: started")
	defer w.evHandler("worker: runShareBlockOperation: completed")

	data, err := ledger.Marshal(block)
	if err != nil {
		w.evHandler("worker: runShareBlockOperation: ERROR: %s", err)
		return
	}

	n := w.relay.Broadcast(nil, relay.Message{Type: relay.TextMessage, Data: data})
	w.evHandler("worker: runShareBlockOperation: blk[%s]: peers[%d]", block.Hash, n)
}
