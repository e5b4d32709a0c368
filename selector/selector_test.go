package selector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"utreexo.dev/node/accumulator"
	"utreexo.dev/node/chainparams"
	"utreexo.dev/node/consensus"
	"utreexo.dev/node/headerchain"
)

func testParams(t *testing.T, genesis consensus.BlockHeader) chainparams.Params {
	t.Helper()
	p, err := chainparams.Lookup(chainparams.Regtest)
	if err != nil {
		t.Fatal(err)
	}
	p.GenesisHash = consensus.BlockHash(genesis)
	return p
}

const fixtureBits = 0x207fffff // regtest pow limit, trivially mined

func mineHeader(prev [32]byte, timestamp uint32, nonce uint32) consensus.BlockHeader {
	h := consensus.BlockHeader{Version: 1, PrevBlockHash: prev, Bits: fixtureBits, Timestamp: timestamp, Nonce: nonce}
	target, _ := headerchain.CompactToTarget(fixtureBits)
	for {
		hash := consensus.BlockHash(h)
		if bytes.Compare(hash[:], target[:]) < 0 {
			return h
		}
		h.Nonce++
	}
}

// coinbaseOnlyBlock builds a block whose only transaction is a coinbase
// minting the network's subsidy at height to a single trivial output, so
// every block adds exactly one leaf and never spends anything (mirroring
// the "only has coinbase transactions" fixtures the acceptance tests in
// original_source build their chains from).
func coinbaseOnlyBlock(header consensus.BlockHeader, height uint64, subsidy uint64) *consensus.Block {
	tx := &consensus.Tx{
		Version: 1,
		Inputs: []consensus.TxInput{{
			PrevOut:   consensus.Outpoint{},
			ScriptSig: []byte{byte(height >> 8), byte(height)},
		}},
		Outputs: []consensus.Output{{Value: subsidy, Script: []byte{0x01}}},
	}
	return &consensus.Block{Header: header, Txs: []*consensus.Tx{tx}}
}

// fixtureChain is a fully built, internally consistent chain of n blocks on
// top of a mined genesis, plus the true accumulator at every height,
// computed by actually running consensus.UpdateAccumulator — the same
// ground truth the selector itself is expected to re-derive.
type fixtureChain struct {
	params  chainparams.Params
	genesis consensus.BlockHeader
	headers []consensus.BlockHeader // index 0 is height 1
	blocks  map[[32]byte]*consensus.Block
	truth   []accumulator.Stump // truth[h] is the accumulator after height h; truth[0] is empty
}

func buildFixtureChain(t *testing.T, n int) fixtureChain {
	t.Helper()
	genesis := mineHeader([32]byte{}, 1, 0)
	params := testParams(t, genesis)

	fc := fixtureChain{
		params:  params,
		genesis: genesis,
		blocks:  make(map[[32]byte]*consensus.Block, n),
		truth:   make([]accumulator.Stump, n+1),
	}

	prev := consensus.BlockHash(genesis)
	stump := accumulator.Stump{}
	for height := 1; height <= n; height++ {
		h := mineHeader(prev, uint32(100+height), 0)
		block := coinbaseOnlyBlock(h, uint64(height), params.Subsidy(uint64(height)))
		hash := consensus.BlockHash(h)

		newStump, err := consensus.UpdateAccumulator(stump, block, uint64(height), nil, accumulator.Proof{})
		if err != nil {
			t.Fatalf("height %d: building fixture: %v", height, err)
		}

		fc.headers = append(fc.headers, h)
		fc.blocks[hash] = block
		fc.truth[height] = newStump

		stump = newStump
		prev = hash
	}
	return fc
}

func (fc fixtureChain) tipHash() [32]byte {
	return consensus.BlockHash(fc.headers[len(fc.headers)-1])
}

// fakePeer is the test-only Source: headers and blocks come straight from a
// fixtureChain, but snapshots are whatever snapshots says — letting a test
// fabricate a lying peer's opinion independently of the real blocks it
// still faithfully serves.
type fakePeer struct {
	fc        fixtureChain
	snapshots map[[32]byte]accumulator.Stump
}

func (p *fakePeer) Headers(ctx context.Context, locator [][32]byte) ([]consensus.BlockHeader, error) {
	return p.fc.headers, nil
}

func (p *fakePeer) Snapshot(ctx context.Context, blockHash [32]byte) (accumulator.Stump, bool, error) {
	s, ok := p.snapshots[blockHash]
	return s, ok, nil
}

func (p *fakePeer) Block(ctx context.Context, blockHash [32]byte) (BlockMaterial, error) {
	block, ok := p.fc.blocks[blockHash]
	if !ok {
		return BlockMaterial{}, fmt.Errorf("fakePeer: no block for %x", blockHash)
	}
	return BlockMaterial{Block: block}, nil
}

// honestSnapshots reports the true accumulator at every height as this
// peer's opinion.
func honestSnapshots(fc fixtureChain) map[[32]byte]accumulator.Stump {
	out := make(map[[32]byte]accumulator.Stump, len(fc.headers))
	for i, h := range fc.headers {
		out[consensus.BlockHash(h)] = fc.truth[i+1]
	}
	return out
}

// lyingSnapshots is honest below lieStart and reports a fixed fabricated
// stump at and above it, regardless of what actually happened at that
// height.
func lyingSnapshots(fc fixtureChain, lieStart int) map[[32]byte]accumulator.Stump {
	out := honestSnapshots(fc)
	fabricated := accumulator.Stump{Leaves: 0xdeadbeef, Roots: []accumulator.NodeHash{{0xba, 0xad}}}
	for i, h := range fc.headers {
		height := i + 1
		if height >= lieStart {
			out[consensus.BlockHash(h)] = fabricated
		}
	}
	return out
}

func testConfig(fc fixtureChain) Config {
	return Config{
		Params:       fc.params,
		Genesis:      fc.genesis,
		VerifyScript: false,
		Logger:       zerolog.New(io.Discard),
	}
}

func TestSelectorTwoPeersOneLying(t *testing.T) {
	fc := buildFixtureChain(t, 120)
	honest := &fakePeer{fc: fc, snapshots: honestSnapshots(fc)}
	liar := &fakePeer{fc: fc, snapshots: lyingSnapshots(fc, 30)}

	peers := []Peer{
		{ID: "honest", Source: honest},
		{ID: "liar", Source: liar},
	}

	result, err := Run(context.Background(), testConfig(fc), peers)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.TipHeight != 120 {
		t.Fatalf("tip height = %d, want 120", result.TipHeight)
	}
	if result.TipHash != fc.tipHash() {
		t.Fatalf("tip hash mismatch")
	}
	if result.Accumulator.Leaves != 120 {
		t.Fatalf("accumulator leaves = %d, want 120", result.Accumulator.Leaves)
	}
	want := fc.truth[120]
	if len(result.Accumulator.Roots) != len(want.Roots) {
		t.Fatalf("root count mismatch: got %d want %d", len(result.Accumulator.Roots), len(want.Roots))
	}
	for i := range want.Roots {
		if result.Accumulator.Roots[i] != want.Roots[i] {
			t.Fatalf("root %d mismatch", i)
		}
	}
	if _, flagged := result.Disqualified["liar"]; !flagged {
		t.Fatal("expected the lying peer to be disqualified")
	}
}

func TestSelectorTenPeersOneHonest(t *testing.T) {
	fc := buildFixtureChain(t, 120)
	peers := []Peer{{ID: "honest", Source: &fakePeer{fc: fc, snapshots: honestSnapshots(fc)}}}
	for i := 1; i <= 9; i++ {
		id := PeerID(fmt.Sprintf("liar-%d", i))
		peers = append(peers, Peer{ID: id, Source: &fakePeer{fc: fc, snapshots: lyingSnapshots(fc, i*2)}})
	}

	result, err := Run(context.Background(), testConfig(fc), peers)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.TipHeight != 120 {
		t.Fatalf("tip height = %d, want 120", result.TipHeight)
	}
	if result.Accumulator.Leaves != 120 {
		t.Fatalf("accumulator leaves = %d, want 120", result.Accumulator.Leaves)
	}
	for i := 1; i <= 9; i++ {
		id := PeerID(fmt.Sprintf("liar-%d", i))
		if _, flagged := result.Disqualified[id]; !flagged {
			t.Fatalf("expected %s to be disqualified", id)
		}
	}
}

// TestSelectorHaltsAtInvalidBlock reproduces test_sync_invalid_block: a
// single peer's block at height 7 is corrupted (its coinbase mints more
// than the subsidy), so validation must stop at height 6 rather than
// accept the bad block or crash.
func TestSelectorHaltsAtInvalidBlock(t *testing.T) {
	fc := buildFixtureChain(t, 10)
	badHash := consensus.BlockHash(fc.headers[6]) // height 7
	bad := fc.blocks[badHash]
	bad.Txs[0].Outputs[0].Value = fc.params.Subsidy(7) + 1

	peer := &fakePeer{fc: fc, snapshots: honestSnapshots(fc)}
	peers := []Peer{{ID: "only", Source: peer}}

	result, err := Run(context.Background(), testConfig(fc), peers)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.TipHeight != 6 {
		t.Fatalf("tip height = %d, want 6", result.TipHeight)
	}
	if result.TipHash != consensus.BlockHash(fc.headers[5]) {
		t.Fatal("tip hash should be height 6's header")
	}
	if _, flagged := result.Disqualified["only"]; !flagged {
		t.Fatal("expected the sole peer to be disqualified once its block fails validation")
	}
}
