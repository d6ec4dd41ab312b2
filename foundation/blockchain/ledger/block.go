// Package ledger maintains an in-memory, hash-linked chain of blocks that
// carry opaque payloads.
package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// GenesisHash is the previous hash stored in the first block of a chain.
const GenesisHash = "0"

// GenesisData is the payload carried by the genesis block.
const GenesisData = "Genesis Block"

// Set of errors returned when blocks are built or validated.
var (
	ErrPayload          = errors.New("payload is not serializable")
	ErrHashMismatch     = errors.New("block hash does not match block fields")
	ErrPrevHashMismatch = errors.New("previous hash does not match parent block")
)

// =============================================================================

// Payload is the canonical serialization of the data stored in a block. The
// bytes are compact JSON with HTML escaping disabled, so a string payload
// serializes the same way JSON.stringify does. Changing this encoding
// changes every block hash.
type Payload []byte

// Encode converts any value into its canonical payload. Values that can't be
// represented as JSON return an ErrPayload.
func Encode(value any) (Payload, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(value); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPayload, err)
	}

	return Payload(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// MustEncode is Encode for values the caller knows are serializable. It
// panics otherwise.
func MustEncode(value any) Payload {
	p, err := Encode(value)
	if err != nil {
		panic(err)
	}
	return p
}

// MarshalJSON embeds the payload as raw JSON.
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

// UnmarshalJSON stores the compacted form of the raw JSON value.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return fmt.Errorf("%w: %w", ErrPayload, err)
	}

	*p = buf.Bytes()
	return nil
}

// Decode unmarshals the payload into the specified value.
func (p Payload) Decode(value any) error {
	return json.Unmarshal(p, value)
}

// String returns the payload as JSON text.
func (p Payload) String() string {
	return string(p)
}

func (p Payload) clone() Payload {
	if p == nil {
		return nil
	}
	return bytes.Clone(p)
}

// =============================================================================

// Block represents a single entry in the ledger.
type Block struct {
	TimeStamp int64   // Milliseconds since the epoch.
	Data      Payload // Canonical payload bytes.
	PrevHash  string  // Hash of the parent block or GenesisHash.
	Hash      string  // Hex SHA-256 over TimeStamp, Data and PrevHash.
}

// NewBlock constructs a block and computes its hash. The hash is never
// recomputed after construction.
func NewBlock(timestamp int64, data Payload, prevHash string) Block {
	return Block{
		TimeStamp: timestamp,
		Data:      data,
		PrevHash:  prevHash,
		Hash:      Hash(timestamp, data, prevHash),
	}
}

// NewGenesis constructs the genesis block for the specified timestamp. Nodes
// that want to exchange blocks must agree on this timestamp.
func NewGenesis(timestamp int64) Block {
	return NewBlock(timestamp, MustEncode(GenesisData), GenesisHash)
}

// Hash returns the hex encoded SHA-256 digest of the decimal timestamp,
// the payload bytes and the previous hash, concatenated in that order.
func Hash(timestamp int64, data Payload, prevHash string) string {
	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(timestamp, 10)))
	h.Write(data)
	h.Write([]byte(prevHash))

	return hex.EncodeToString(h.Sum(nil))
}

// Validate recomputes the hash from the block's fields and compares it to
// the stored hash.
func (b Block) Validate() error {
	if exp := Hash(b.TimeStamp, b.Data, b.PrevHash); b.Hash != exp {
		return fmt.Errorf("%w: got %s, exp %s", ErrHashMismatch, b.Hash, exp)
	}
	return nil
}

// IsGenesis reports if this block starts a chain.
func (b Block) IsGenesis() bool {
	return b.PrevHash == GenesisHash
}

func (b Block) clone() Block {
	b.Data = b.Data.clone()
	return b
}

// =============================================================================

// BlockFS is the form of a block that is sent over the wire.
type BlockFS struct {
	TimeStamp int64   `json:"timestamp"`
	Data      Payload `json:"data"`
	PrevHash  string  `json:"prev_hash"`
	Hash      string  `json:"hash"`
}

// NewBlockFS constructs the value to serialize.
func NewBlockFS(block Block) BlockFS {
	return BlockFS{
		TimeStamp: block.TimeStamp,
		Data:      block.Data,
		PrevHash:  block.PrevHash,
		Hash:      block.Hash,
	}
}

// ToBlock converts a BlockFS into a Block. The stored hash is kept as is so
// the receiver can validate it.
func ToBlock(blockFS BlockFS) Block {
	return Block{
		TimeStamp: blockFS.TimeStamp,
		Data:      blockFS.Data,
		PrevHash:  blockFS.PrevHash,
		Hash:      blockFS.Hash,
	}
}

// Marshal serializes the block into its wire form.
func Marshal(block Block) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(NewBlockFS(block)); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Unmarshal parses a block from its wire form. The block hash is not
// validated here.
func Unmarshal(data []byte) (Block, error) {
	var blockFS BlockFS
	if err := json.Unmarshal(data, &blockFS); err != nil {
		return Block{}, fmt.Errorf("unmarshal block: %w", err)
	}

	if blockFS.Hash == "" {
		return Block{}, errors.New("unmarshal block: missing hash")
	}

	return ToBlock(blockFS), nil
}
