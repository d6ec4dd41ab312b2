package ledger_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/ledger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// counter returns a clock that advances one millisecond per call.
func counter(start int64) ledger.Clock {
	now := start
	return func() int64 {
		now++
		return now
	}
}

// buildChain constructs a chain from genesis with the specified data.
func buildChain(t *testing.T, data ...any) *ledger.Chain {
	chain := ledger.New(ledger.WithClock(counter(1_700_000_000_000)))

	if _, err := chain.Append(ledger.GenesisData); err != nil {
		t.Fatalf("\t%s\tShould be able to append the genesis block: %v", failed, err)
	}

	for _, d := range data {
		if _, err := chain.Append(d); err != nil {
			t.Fatalf("\t%s\tShould be able to append block %v: %v", failed, d, err)
		}
	}

	return chain
}

// =============================================================================

func Test_NewBlock(t *testing.T) {
	type table struct {
		name      string
		timestamp int64
		data      string
		prevHash  string
		hash      string
	}

	tt := []table{
		{
			name:      "genesis-zero",
			timestamp: 0,
			data:      ledger.GenesisData,
			prevHash:  ledger.GenesisHash,
			hash:      "b35f9ad0002c847e460f570841ff3550b37892b1a0710d7185ec7c2847ad9d03",
		},
		{
			name:      "genesis-time",
			timestamp: 1_700_000_000_000,
			data:      ledger.GenesisData,
			prevHash:  ledger.GenesisHash,
			hash:      "890c1c4d6ba2682da47a255eba05c2955a231d4ecd230bc9449ab52d0715c260",
		},
	}

	t.Log("Given the need to construct blocks with reproducible hashes.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling block %q.", testID, tst.name)
				{
					b1 := ledger.NewBlock(tst.timestamp, ledger.MustEncode(tst.data), tst.prevHash)
					if b1.Hash != tst.hash {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, b1.Hash)
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.hash)
						t.Fatalf("\t%s\tTest %d:\tShould get the expected hash.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the expected hash.", success, testID)

					b2 := ledger.NewBlock(tst.timestamp, ledger.MustEncode(tst.data), tst.prevHash)
					if b1.Hash != b2.Hash {
						t.Fatalf("\t%s\tTest %d:\tShould get the same hash for the same fields.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the same hash for the same fields.", success, testID)

					b3 := ledger.NewBlock(tst.timestamp, ledger.MustEncode(tst.data+"!"), tst.prevHash)
					if b1.Hash == b3.Hash {
						t.Fatalf("\t%s\tTest %d:\tShould get a different hash for different data.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get a different hash for different data.", success, testID)

					if err := b1.Validate(); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould validate the block: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould validate the block.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Encode(t *testing.T) {
	type record struct {
		To    string `json:"to"`
		Value uint64 `json:"value"`
	}

	type table struct {
		name  string
		value any
		exp   string
	}

	tt := []table{
		{name: "string", value: "tx1", exp: `"tx1"`},
		{name: "html", value: "<a&b>", exp: `"<a&b>"`},
		{name: "struct", value: record{To: "bill", Value: 10}, exp: `{"to":"bill","value":10}`},
		{name: "map", value: map[string]int{"b": 1, "a": 2}, exp: `{"a":2,"b":1}`},
		{name: "raw", value: json.RawMessage(`{ "b" : 1,  "a" : [1, 2] }`), exp: `{"b":1,"a":[1,2]}`},
		{name: "bytes", value: []byte("hi"), exp: `"aGk="`},
		{name: "nil", value: nil, exp: `null`},
	}

	t.Log("Given the need to serialize payloads canonically.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				p, err := ledger.Encode(tst.value)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to encode the value: %v", failed, testID, err)
				}

				if p.String() != tst.exp {
					t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, p)
					t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould get the canonical form.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get the canonical form.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_EncodeFailure(t *testing.T) {
	t.Log("Given the need to reject payloads that can't be serialized.")
	{
		_, err := ledger.Encode(make(chan int))
		if !errors.Is(err, ledger.ErrPayload) {
			t.Fatalf("\t%s\tShould get ErrPayload for a channel: %v", failed, err)
		}
		t.Logf("\t%s\tShould get ErrPayload for a channel.", success)

		chain := ledger.New()
		if _, err := chain.Append(func() {}); !errors.Is(err, ledger.ErrPayload) {
			t.Fatalf("\t%s\tShould get ErrPayload on append: %v", failed, err)
		}
		if chain.Len() != 0 {
			t.Fatalf("\t%s\tShould not change the chain on a failed append.", failed)
		}
		t.Logf("\t%s\tShould not change the chain on a failed append.", success)

		defer func() {
			if r := recover(); r == nil {
				t.Fatalf("\t%s\tShould panic on MustEncode.", failed)
			}
			t.Logf("\t%s\tShould panic on MustEncode.", success)
		}()
		ledger.MustEncode(make(chan int))
	}
}

func Test_VerifyChain(t *testing.T) {
	t.Log("Given the need to verify a chain built from genesis.")
	{
		chain := buildChain(t, "tx1", "tx2")

		blocks := chain.Blocks()
		if len(blocks) != 3 {
			t.Fatalf("\t%s\tShould have 3 blocks, got %d.", failed, len(blocks))
		}
		t.Logf("\t%s\tShould have 3 blocks.", success)

		if !blocks[0].IsGenesis() {
			t.Fatalf("\t%s\tShould start with a genesis block.", failed)
		}
		t.Logf("\t%s\tShould start with a genesis block.", success)

		for i := 1; i < len(blocks); i++ {
			if blocks[i].PrevHash != blocks[i-1].Hash {
				t.Fatalf("\t%s\tShould link block %d to its parent.", failed, i)
			}
		}
		t.Logf("\t%s\tShould link every block to its parent.", success)

		if err := chain.Verify(); err != nil {
			t.Fatalf("\t%s\tShould verify the chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould verify the chain.", success)

		if chain.TailHash() != blocks[2].Hash {
			t.Fatalf("\t%s\tShould report the tail hash.", failed)
		}
		t.Logf("\t%s\tShould report the tail hash.", success)
	}
}

func Test_VerifyTampered(t *testing.T) {
	t.Log("Given the need to detect a tampered block.")
	{
		chain := buildChain(t, "tx1", "tx2")

		blocks := chain.Blocks()
		blocks[1].Data = ledger.MustEncode("tx1-tampered")

		err := ledger.Verify(blocks)
		if !errors.Is(err, ledger.ErrHashMismatch) {
			t.Fatalf("\t%s\tShould get a hash mismatch: %v", failed, err)
		}
		t.Logf("\t%s\tShould get a hash mismatch.", success)

		index, ok := ledger.IsVerifyError(err)
		if !ok || index != 1 {
			t.Fatalf("\t%s\tShould fail at block 1, got %d.", failed, index)
		}
		t.Logf("\t%s\tShould fail at block 1.", success)

		if err := chain.Verify(); err != nil {
			t.Fatalf("\t%s\tShould not change the chain through a copy: %v", failed, err)
		}
		t.Logf("\t%s\tShould not change the chain through a copy.", success)
	}
}

func Test_VerifySwapped(t *testing.T) {
	t.Log("Given the need to detect reordered blocks.")
	{
		chain := buildChain(t, "tx1", "tx2", "tx3")

		blocks := chain.Blocks()
		blocks[1], blocks[2] = blocks[2], blocks[1]

		err := ledger.Verify(blocks)
		if !errors.Is(err, ledger.ErrPrevHashMismatch) {
			t.Fatalf("\t%s\tShould get a previous hash mismatch: %v", failed, err)
		}
		t.Logf("\t%s\tShould get a previous hash mismatch.", success)

		if index, _ := ledger.IsVerifyError(err); index != 1 {
			t.Fatalf("\t%s\tShould fail at block 1, got %d.", failed, index)
		}
		t.Logf("\t%s\tShould fail at block 1.", success)
	}
}

func Test_AppendBlock(t *testing.T) {
	t.Log("Given the need to accept blocks built by another node.")
	{
		source := buildChain(t, "tx1")
		target := ledger.New()

		for _, block := range source.Blocks() {
			data, err := ledger.Marshal(block)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to marshal the block: %v", failed, err)
			}

			b, err := ledger.Unmarshal(data)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to unmarshal the block: %v", failed, err)
			}

			if err := target.AppendBlock(b); err != nil {
				t.Fatalf("\t%s\tShould be able to append the block: %v", failed, err)
			}
		}
		t.Logf("\t%s\tShould be able to copy a chain over the wire form.", success)

		if target.TailHash() != source.TailHash() {
			t.Fatalf("\t%s\tShould have the same tail.", failed)
		}
		t.Logf("\t%s\tShould have the same tail.", success)

		stale := ledger.NewBlock(1, ledger.MustEncode("tx2"), "bad")
		if err := target.AppendBlock(stale); !errors.Is(err, ledger.ErrPrevHashMismatch) {
			t.Fatalf("\t%s\tShould reject a block that is not on the tail: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a block that is not on the tail.", success)

		forged := ledger.NewBlock(1, ledger.MustEncode("tx2"), target.TailHash())
		forged.Data = ledger.MustEncode("tx2-forged")
		if err := target.AppendBlock(forged); !errors.Is(err, ledger.ErrHashMismatch) {
			t.Fatalf("\t%s\tShould reject a block with a bad hash: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a block with a bad hash.", success)

		if target.Len() != 2 {
			t.Fatalf("\t%s\tShould keep 2 blocks, got %d.", failed, target.Len())
		}
	}
}

func Test_WireForm(t *testing.T) {
	t.Log("Given the need to send blocks with markup in the payload.")
	{
		block := ledger.NewBlock(5, ledger.MustEncode(map[string]string{"memo": "<b>&</b>"}), ledger.GenesisHash)

		data, err := ledger.Marshal(block)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to marshal: %v", failed, err)
		}

		got, err := ledger.Unmarshal(data)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to unmarshal: %v", failed, err)
		}

		if err := got.Validate(); err != nil {
			t.Fatalf("\t%s\tShould keep the payload bytes intact: %v", failed, err)
		}
		t.Logf("\t%s\tShould keep the payload bytes intact.", success)

		if _, err := ledger.Unmarshal([]byte(`{"timestamp":1}`)); err == nil {
			t.Fatalf("\t%s\tShould reject a block without a hash.", failed)
		}
		t.Logf("\t%s\tShould reject a block without a hash.", success)
	}
}

func Test_Clock(t *testing.T) {
	t.Log("Given the need to keep timestamps ordered.")
	{
		times := []int64{100, 50, 200}
		clock := func() int64 {
			ts := times[0]
			times = times[1:]
			return ts
		}

		chain := ledger.New(ledger.WithClock(clock))
		for _, d := range []string{"a", "b", "c"} {
			if _, err := chain.Append(d); err != nil {
				t.Fatalf("\t%s\tShould be able to append: %v", failed, err)
			}
		}

		blocks := chain.Blocks()
		exp := []int64{100, 100, 200}
		for i, b := range blocks {
			if b.TimeStamp != exp[i] {
				t.Fatalf("\t%s\tShould clamp timestamp %d: got %d, exp %d", failed, i, b.TimeStamp, exp[i])
			}
		}
		t.Logf("\t%s\tShould never move backwards in time.", success)
	}
}
