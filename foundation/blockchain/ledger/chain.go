package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// VerifyError identifies the first block that broke the integrity of a chain.
type VerifyError struct {
	Index int
	Err   error
}

// Error implements the error interface.
func (ve *VerifyError) Error() string {
	return fmt.Sprintf("block %d: %s", ve.Index, ve.Err)
}

// Unwrap provides access to ErrHashMismatch or ErrPrevHashMismatch.
func (ve *VerifyError) Unwrap() error {
	return ve.Err
}

// Verify walks the blocks in order and checks that every stored hash can be
// reproduced from the block's fields and that every block points at the hash
// of the block before it. The first block must point at GenesisHash. The
// blocks are not modified. A *VerifyError is returned on the first violation.
func Verify(blocks []Block) error {
	prevHash := GenesisHash

	for i, block := range blocks {
		if block.PrevHash != prevHash {
			err := fmt.Errorf("%w: got %s, exp %s", ErrPrevHashMismatch, block.PrevHash, prevHash)
			return &VerifyError{Index: i, Err: err}
		}

		if err := block.Validate(); err != nil {
			return &VerifyError{Index: i, Err: err}
		}

		prevHash = block.Hash
	}

	return nil
}

// =============================================================================

// Clock provides the timestamp in milliseconds for new blocks.
type Clock func() int64

// WallClock returns the current time in milliseconds since the epoch.
func WallClock() int64 {
	return time.Now().UnixMilli()
}

// Option configures a Chain.
type Option func(*Chain)

// WithClock replaces the wall clock used to stamp appended blocks.
func WithClock(clock Clock) Option {
	return func(c *Chain) {
		c.clock = clock
	}
}

// Chain is an append only sequence of blocks. All access is serialized so a
// chain can be shared between the api and the relay goroutines.
type Chain struct {
	mu     sync.RWMutex
	clock  Clock
	blocks []Block
}

// New constructs an empty chain.
func New(options ...Option) *Chain {
	c := Chain{
		clock: WallClock,
	}

	for _, option := range options {
		option(&c)
	}

	return &c
}

// Append encodes the data and appends a new block on top of the current tail.
// When the chain is empty the block becomes the genesis block. Timestamps
// never go backwards relative to the tail.
func (c *Chain) Append(data any) (Block, error) {
	payload, err := Encode(data)
	if err != nil {
		return Block{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	timestamp := c.clock()
	prevHash := GenesisHash

	if n := len(c.blocks); n > 0 {
		tail := c.blocks[n-1]
		prevHash = tail.Hash
		if timestamp < tail.TimeStamp {
			timestamp = tail.TimeStamp
		}
	}

	block := NewBlock(timestamp, payload, prevHash)
	c.blocks = append(c.blocks, block)

	return block.clone(), nil
}

// AppendBlock adds a block that was constructed elsewhere. The block must
// carry a valid hash and must point at the current tail.
func (c *Chain) AppendBlock(block Block) error {
	if err := block.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prevHash := GenesisHash
	if n := len(c.blocks); n > 0 {
		prevHash = c.blocks[n-1].Hash
	}

	if block.PrevHash != prevHash {
		return fmt.Errorf("%w: got %s, exp %s", ErrPrevHashMismatch, block.PrevHash, prevHash)
	}

	c.blocks = append(c.blocks, block.clone())

	return nil
}

// Verify checks the integrity of the chain.
func (c *Chain) Verify() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Verify(c.blocks)
}

// TailHash returns the hash of the latest block or GenesisHash when the
// chain is empty.
func (c *Chain) TailHash() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.blocks) == 0 {
		return GenesisHash
	}

	return c.blocks[len(c.blocks)-1].Hash
}

// Latest returns the latest block in the chain.
func (c *Chain) Latest() (Block, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.blocks) == 0 {
		return Block{}, false
	}

	return c.blocks[len(c.blocks)-1].clone(), true
}

// Len returns the number of blocks in the chain.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks)
}

// Blocks returns a copy of the blocks in the chain.
func (c *Chain) Blocks() []Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blocks := make([]Block, len(c.blocks))
	for i, block := range c.blocks {
		blocks[i] = block.clone()
	}

	return blocks
}

// IsVerifyError checks if an error is a VerifyError and returns the index of
// the offending block.
func IsVerifyError(err error) (int, bool) {
	var ve *VerifyError
	if !errors.As(err, &ve) {
		return 0, false
	}
	return ve.Index, true
}
