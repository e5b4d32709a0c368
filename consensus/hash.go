package consensus

import "crypto/sha256"

// doubleSHA256 is Bitcoin's standard transaction/block hash: SHA256(SHA256(x)).
// This is a fixed protocol constant, not a design choice between libraries,
// so it stays on the standard library (see DESIGN.md).
func doubleSHA256(b []byte) [32]byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second
}

// reverse32 returns h with byte order reversed. Bitcoin hashes are
// serialized internally little-endian but conventionally displayed (and
// compared against difficulty targets) big-endian; this package keeps
// everything in internal (little-endian) order and only reverses at the
// display boundary, matching upstream Bitcoin Core's convention.
func reverse32(h [32]byte) [32]byte {
	var out [32]byte
	for i := range h {
		out[i] = h[31-i]
	}
	return out
}

// TxID computes a transaction's id: double-SHA256 of EncodeTx's
// serialization, which carries each input's witness stack inline, so witness
// data is part of the id. This package has no separate wtxid.
func TxID(tx *Tx) [32]byte {
	return doubleSHA256(EncodeTx(tx))
}

// BlockHash computes a block header's hash: double-SHA256 of its 80-byte
// (equivalent) serialization.
func BlockHash(h BlockHeader) [32]byte {
	return doubleSHA256(EncodeBlockHeader(h))
}

// MerkleRoot computes the standard Bitcoin transaction merkle root:
// pairwise double-SHA256, duplicating the last element of an odd-length
// level, collapsing bottom-up to a single root. txids must be non-empty.
func MerkleRoot(txids [][32]byte) ([32]byte, error) {
	if len(txids) == 0 {
		return [32]byte{}, errDetail(ErrParse, "merkle: empty txid list")
	}
	level := make([][32]byte, len(txids))
	copy(level, txids)
	for len(level) > 1 {
		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			var buf [64]byte
			copy(buf[:32], left[:])
			copy(buf[32:], right[:])
			next = append(next, doubleSHA256(buf[:]))
		}
		level = next
	}
	return level[0], nil
}
