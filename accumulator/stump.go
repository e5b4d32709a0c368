// Package accumulator implements the utreexo accumulator update (C5): a
// pure function from (Stump, additions, deletions, proof) to a new Stump.
// There is no existing Go utreexo implementation anywhere in the retrieved
// pack to adopt, so this package is built from the accumulator's published
// semantics directly (see DESIGN.md): a forest of perfect binary Merkle
// trees, represented compactly as one root hash per set bit of the total
// leaf count, with leaves deleted via a sibling-hash proof rather than by
// holding the whole tree.
package accumulator

import "crypto/sha512"

// NodeHash is a node in the accumulator's forest: a leaf hash (consensus
// §3's LeafHash output) or an internal node produced by hashing a pair of
// children together.
type NodeHash [32]byte

// Stump is the accumulator's entire persisted state (spec §3): the number of
// leaves ever inserted and the ordered roots of the forest of perfect binary
// trees those insertions and deletions have produced. Roots are ordered
// from the tree spanning the oldest (largest) range of leaves to the
// newest (smallest).
type Stump struct {
	Leaves uint64
	Roots  []NodeHash
}

// Proof is a batch inclusion proof for a set of deletion targets: the
// global leaf positions being deleted (assigned at insertion time, 0 ≤
// position < Leaves) and the sibling hashes needed to both verify those
// leaves against the current roots and compute the roots that result once
// they're removed. Hashes are consumed in ascending (tree, row, position)
// order, the only order in which a verifier — holding no hashes beyond the
// current roots — can resolve them (see modify.go).
type Proof struct {
	Targets []uint64
	Hashes  []NodeHash
}

// parentHash combines a left/right child pair into their parent's hash. The
// accumulator's internal tree hashing is independent of consensus's
// leaf-hash tag (that one binds a leaf to its creation context; this one
// only needs to be collision-resistant and order-sensitive), so it reuses
// the same SHA-512/256 primitive the leaf hash uses without a tag, matching
// how the reference accumulator design treats internal nodes as untagged
// hash-pair combinations.
func parentHash(left, right NodeHash) NodeHash {
	h := sha512.New512_256()
	h.Write(left[:])
	h.Write(right[:])
	var out NodeHash
	copy(out[:], h.Sum(nil))
	return out
}
