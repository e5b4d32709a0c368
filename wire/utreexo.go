package wire

import (
	"encoding/binary"
	"fmt"

	"utreexo.dev/node/accumulator"
	"utreexo.dev/node/consensus"
)

// maxProofEntries bounds a single proof's target/hash counts against a
// flooding peer; a real block's input count is nowhere near this.
const maxProofEntries = 1 << 20

// EncodeSnapshot serializes an accumulator snapshot per spec §6:
// (leaves u64 LE, root_count varint, roots [32]byte each), roots ordered
// largest tree to smallest (accumulator.Stump already holds them that way).
func EncodeSnapshot(stump accumulator.Stump) []byte {
	out := make([]byte, 8, 8+9+len(stump.Roots)*32)
	binary.LittleEndian.PutUint64(out, stump.Leaves)
	out = consensus.EncodeCompactSize(out, uint64(len(stump.Roots)))
	for _, r := range stump.Roots {
		out = append(out, r[:]...)
	}
	return out
}

func DecodeSnapshot(b []byte) (accumulator.Stump, error) {
	if len(b) < 9 {
		return accumulator.Stump{}, fmt.Errorf("wire: snapshot: short payload")
	}
	leaves := binary.LittleEndian.Uint64(b[:8])
	count, used, err := consensus.DecodeCompactSize(b[8:])
	if err != nil {
		return accumulator.Stump{}, err
	}
	if count > maxProofEntries {
		return accumulator.Stump{}, fmt.Errorf("wire: snapshot: %d roots exceeds limit", count)
	}
	off := 8 + used
	if len(b) != off+int(count)*32 {
		return accumulator.Stump{}, fmt.Errorf("wire: snapshot: length mismatch")
	}
	roots := make([]accumulator.NodeHash, count)
	for i := range roots {
		copy(roots[i][:], b[off:off+32])
		off += 32
	}
	return accumulator.Stump{Leaves: leaves, Roots: roots}, nil
}

// GetUtreexoSnapshotPayload asks a peer what accumulator snapshot it
// believes holds at Height, for the selector's per-height majority cross
// check (spec §4.8).
type GetUtreexoSnapshotPayload struct {
	Height uint64
}

func EncodeGetUtreexoSnapshot(p GetUtreexoSnapshotPayload) []byte {
	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], p.Height)
	return out[:]
}

func DecodeGetUtreexoSnapshot(b []byte) (GetUtreexoSnapshotPayload, error) {
	if len(b) != 8 {
		return GetUtreexoSnapshotPayload{}, fmt.Errorf("wire: getutreexosnap: wrong length")
	}
	return GetUtreexoSnapshotPayload{Height: binary.LittleEndian.Uint64(b)}, nil
}

// UtreexoSnapshotPayload answers GetUtreexoSnapshotPayload.
type UtreexoSnapshotPayload struct {
	Height   uint64
	Snapshot accumulator.Stump
}

func EncodeUtreexoSnapshot(p UtreexoSnapshotPayload) []byte {
	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], p.Height)
	return append(out[:], EncodeSnapshot(p.Snapshot)...)
}

func DecodeUtreexoSnapshot(b []byte) (UtreexoSnapshotPayload, error) {
	if len(b) < 8 {
		return UtreexoSnapshotPayload{}, fmt.Errorf("wire: utreexosnap: short payload")
	}
	height := binary.LittleEndian.Uint64(b[:8])
	snap, err := DecodeSnapshot(b[8:])
	if err != nil {
		return UtreexoSnapshotPayload{}, err
	}
	return UtreexoSnapshotPayload{Height: height, Snapshot: snap}, nil
}

// GetUtxoProofPayload asks a peer for the inclusion proof covering the
// inputs a given block spends.
type GetUtxoProofPayload struct {
	BlockHash [32]byte
}

func EncodeGetUtxoProof(p GetUtxoProofPayload) []byte {
	out := make([]byte, 32)
	copy(out, p.BlockHash[:])
	return out
}

func DecodeGetUtxoProof(b []byte) (GetUtxoProofPayload, error) {
	if len(b) != 32 {
		return GetUtxoProofPayload{}, fmt.Errorf("wire: getutxoproof: wrong length")
	}
	var p GetUtxoProofPayload
	copy(p.BlockHash[:], b)
	return p, nil
}

// UtxoProofPayload answers GetUtxoProofPayload: the batch inclusion proof
// for the block's spent outpoints plus the leaf hashes being deleted, which
// the accumulator needs alongside the proof (spec §4.7). The layout is this
// package's own: block hash, a CompactSize target count, each target as a
// u64 LE, one del_hash per target, then a CompactSize sibling-hash count and
// the sibling hashes. It is not the Rustreexo proof encoding.
type UtxoProofPayload struct {
	BlockHash [32]byte
	Proof     accumulator.Proof
	DelHashes []accumulator.NodeHash
}

func EncodeUtxoProof(p UtxoProofPayload) ([]byte, error) {
	if len(p.Proof.Targets) != len(p.DelHashes) {
		return nil, fmt.Errorf("wire: utxoproof: %d targets but %d del_hashes", len(p.Proof.Targets), len(p.DelHashes))
	}
	out := make([]byte, 32)
	copy(out, p.BlockHash[:])

	out = consensus.EncodeCompactSize(out, uint64(len(p.Proof.Targets)))
	for _, t := range p.Proof.Targets {
		var tb [8]byte
		binary.LittleEndian.PutUint64(tb[:], t)
		out = append(out, tb[:]...)
	}
	for _, h := range p.DelHashes {
		out = append(out, h[:]...)
	}

	out = consensus.EncodeCompactSize(out, uint64(len(p.Proof.Hashes)))
	for _, h := range p.Proof.Hashes {
		out = append(out, h[:]...)
	}
	return out, nil
}

func DecodeUtxoProof(b []byte) (UtxoProofPayload, error) {
	if len(b) < 32 {
		return UtxoProofPayload{}, fmt.Errorf("wire: utxoproof: short payload")
	}
	var p UtxoProofPayload
	copy(p.BlockHash[:], b[:32])
	off := 32

	targetCount, used, err := consensus.DecodeCompactSize(b[off:])
	if err != nil {
		return UtxoProofPayload{}, err
	}
	if targetCount > maxProofEntries {
		return UtxoProofPayload{}, fmt.Errorf("wire: utxoproof: %d targets exceeds limit", targetCount)
	}
	off += used

	if len(b) < off+int(targetCount)*8 {
		return UtxoProofPayload{}, fmt.Errorf("wire: utxoproof: truncated targets")
	}
	p.Proof.Targets = make([]uint64, targetCount)
	for i := range p.Proof.Targets {
		p.Proof.Targets[i] = binary.LittleEndian.Uint64(b[off : off+8])
		off += 8
	}

	if len(b) < off+int(targetCount)*32 {
		return UtxoProofPayload{}, fmt.Errorf("wire: utxoproof: truncated del_hashes")
	}
	p.DelHashes = make([]accumulator.NodeHash, targetCount)
	for i := range p.DelHashes {
		copy(p.DelHashes[i][:], b[off:off+32])
		off += 32
	}

	hashCount, used, err := consensus.DecodeCompactSize(b[off:])
	if err != nil {
		return UtxoProofPayload{}, err
	}
	if hashCount > maxProofEntries {
		return UtxoProofPayload{}, fmt.Errorf("wire: utxoproof: %d sibling hashes exceeds limit", hashCount)
	}
	off += used
	if len(b) != off+int(hashCount)*32 {
		return UtxoProofPayload{}, fmt.Errorf("wire: utxoproof: length mismatch")
	}
	p.Proof.Hashes = make([]accumulator.NodeHash, hashCount)
	for i := range p.Proof.Hashes {
		copy(p.Proof.Hashes[i][:], b[off:off+32])
		off += 32
	}
	return p, nil
}
