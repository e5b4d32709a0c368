package consensus

import (
	"testing"

	"utreexo.dev/node/accumulator"
)

func coinbaseTx(script []byte, outputs ...Output) *Tx {
	return &Tx{
		Version: 1,
		Inputs:  []TxInput{{ScriptSig: script}},
		Outputs: outputs,
	}
}

func TestUpdateAccumulatorAddsSpendableOutputsOnly(t *testing.T) {
	header := BlockHeader{Version: 1, Timestamp: 1}
	block := &Block{
		Header: header,
		Txs: []*Tx{
			coinbaseTx([]byte{0x00, 0x01},
				Output{Value: 50, Script: []byte{0x01}},
				Output{Value: 0, Script: []byte{0x6a, 0xde, 0xad}}, // OP_RETURN, unspendable
			),
		},
	}

	stump, err := UpdateAccumulator(accumulator.Stump{}, block, 1, nil, accumulator.Proof{})
	if err != nil {
		t.Fatalf("UpdateAccumulator: %v", err)
	}
	if stump.Leaves != 1 {
		t.Fatalf("leaves = %d, want 1 (unspendable output must not be added)", stump.Leaves)
	}
}

func TestUpdateAccumulatorExcludesIntraBlockSpends(t *testing.T) {
	header := BlockHeader{Version: 1, Timestamp: 1}
	coinbase := coinbaseTx([]byte{0x00, 0x01}, Output{Value: 50, Script: []byte{0x01}})
	coinbaseTxid := TxID(coinbase)

	spender := &Tx{
		Version: 1,
		Inputs:  []TxInput{{PrevOut: Outpoint{Txid: coinbaseTxid, Vout: 0}}},
		Outputs: []Output{{Value: 40, Script: []byte{0x01}}},
	}

	block := &Block{Header: header, Txs: []*Tx{coinbase, spender}}

	stump, err := UpdateAccumulator(accumulator.Stump{}, block, 1, nil, accumulator.Proof{})
	if err != nil {
		t.Fatalf("UpdateAccumulator: %v", err)
	}
	// The coinbase output is spent within the same block, so only the
	// spender's own output should ever reach the accumulator as a leaf.
	if stump.Leaves != 1 {
		t.Fatalf("leaves = %d, want 1 (intra-block spend must not be added)", stump.Leaves)
	}
}

func TestUpdateAccumulatorOrdersAdditionsByTxThenOutputIndex(t *testing.T) {
	header := BlockHeader{Version: 1, Timestamp: 1}
	tx1 := coinbaseTx([]byte{0x00, 0x01}, Output{Value: 10, Script: []byte{0x01}}, Output{Value: 20, Script: []byte{0x02}})
	tx2 := &Tx{
		Version: 1,
		Inputs:  []TxInput{{PrevOut: Outpoint{Txid: [32]byte{0x99}, Vout: 0}}},
		Outputs: []Output{{Value: 30, Script: []byte{0x03}}},
	}
	block := &Block{Header: header, Txs: []*Tx{tx1, tx2}}

	blockHash := BlockHash(header)
	txid1 := TxID(tx1)
	txid2 := TxID(tx2)
	want := []accumulator.NodeHash{
		accumulator.NodeHash(LeafHash(blockHash, txid1, 0, 1, true, tx1.Outputs[0])),
		accumulator.NodeHash(LeafHash(blockHash, txid1, 1, 1, true, tx1.Outputs[1])),
		accumulator.NodeHash(LeafHash(blockHash, txid2, 0, 1, false, tx2.Outputs[0])),
	}

	got, err := UpdateAccumulator(accumulator.Stump{}, block, 1, nil, accumulator.Proof{})
	if err != nil {
		t.Fatalf("UpdateAccumulator: %v", err)
	}
	if got.Leaves != uint64(len(want)) {
		t.Fatalf("leaves = %d, want %d", got.Leaves, len(want))
	}

	// Replaying the same three leaves through accumulator.Modify directly,
	// in the order UpdateAccumulator is documented to use, must produce an
	// identical stump (spec §8 determinism): this is the cheapest way to
	// pin down the ordering without reaching into accumulator internals.
	replayed, err := accumulator.Modify(accumulator.Stump{}, want, nil, accumulator.Proof{})
	if err != nil {
		t.Fatalf("accumulator.Modify: %v", err)
	}
	if len(replayed.Roots) != len(got.Roots) {
		t.Fatalf("root count mismatch: got %d want %d", len(got.Roots), len(replayed.Roots))
	}
	for i := range replayed.Roots {
		if replayed.Roots[i] != got.Roots[i] {
			t.Fatalf("root %d mismatch: tx/output ordering diverged from the documented order", i)
		}
	}
}

func TestUpdateAccumulatorWrapsInvalidProofError(t *testing.T) {
	header := BlockHeader{Version: 1, Timestamp: 1}
	block := &Block{Header: header, Txs: []*Tx{coinbaseTx([]byte{0x00, 0x01}, Output{Value: 50, Script: []byte{0x01}})}}

	badProof := accumulator.Proof{Targets: []uint64{0}, Hashes: []accumulator.NodeHash{{0x01}}}
	_, err := UpdateAccumulator(accumulator.Stump{}, block, 1, [][32]byte{{0x02}}, badProof)
	if err == nil {
		t.Fatal("expected an error verifying a deletion against an empty accumulator")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error is %T, want *ValidationError", err)
	}
	if verr.Code != ErrInvalidAccumulator && verr.Code != ErrInvalidProof {
		t.Fatalf("code = %v, want ErrInvalidAccumulator or ErrInvalidProof", verr.Code)
	}
}
