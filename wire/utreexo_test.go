package wire

import (
	"testing"

	"utreexo.dev/node/accumulator"
)

func TestSnapshotRoundTrip(t *testing.T) {
	stump := accumulator.Stump{
		Leaves: 5,
		Roots:  []accumulator.NodeHash{{0x01}, {0x02}},
	}
	got, err := DecodeSnapshot(EncodeSnapshot(stump))
	if err != nil {
		t.Fatal(err)
	}
	if got.Leaves != stump.Leaves || len(got.Roots) != len(stump.Roots) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	for i := range stump.Roots {
		if got.Roots[i] != stump.Roots[i] {
			t.Fatalf("root %d mismatch", i)
		}
	}
}

func TestUtxoProofRoundTrip(t *testing.T) {
	p := UtxoProofPayload{
		BlockHash: [32]byte{0xaa},
		Proof: accumulator.Proof{
			Targets: []uint64{0, 1},
			Hashes:  []accumulator.NodeHash{{0x10}, {0x20}},
		},
		DelHashes: []accumulator.NodeHash{{0x30}, {0x40}},
	}
	b, err := EncodeUtxoProof(p)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeUtxoProof(b)
	if err != nil {
		t.Fatal(err)
	}
	if got.BlockHash != p.BlockHash {
		t.Fatal("block hash mismatch")
	}
	if len(got.Proof.Targets) != 2 || got.Proof.Targets[1] != 1 {
		t.Fatalf("targets mismatch: %+v", got.Proof.Targets)
	}
	if len(got.DelHashes) != 2 || got.DelHashes[0] != p.DelHashes[0] {
		t.Fatalf("del_hashes mismatch: %+v", got.DelHashes)
	}
	if len(got.Proof.Hashes) != 2 || got.Proof.Hashes[1] != p.Proof.Hashes[1] {
		t.Fatalf("proof hashes mismatch: %+v", got.Proof.Hashes)
	}
}

func TestUtxoProofRejectsMismatchedCounts(t *testing.T) {
	p := UtxoProofPayload{
		Proof:     accumulator.Proof{Targets: []uint64{0, 1}},
		DelHashes: []accumulator.NodeHash{{0x01}},
	}
	_, err := EncodeUtxoProof(p)
	if err == nil {
		t.Fatal("expected error for mismatched targets/del_hashes lengths")
	}
}

func TestUtreexoSnapshotMessageRoundTrip(t *testing.T) {
	p := UtreexoSnapshotPayload{
		Height:   42,
		Snapshot: accumulator.Stump{Leaves: 3, Roots: []accumulator.NodeHash{{0x07}}},
	}
	got, err := DecodeUtreexoSnapshot(EncodeUtreexoSnapshot(p))
	if err != nil {
		t.Fatal(err)
	}
	if got.Height != p.Height || got.Snapshot.Leaves != p.Snapshot.Leaves {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
