package accumulator

import (
	"fmt"
	"slices"
)

// nodeState is the per-position bookkeeping used while replaying a single
// tree's deletions: oldHash is the hash this position had before the
// deletion (needed to verify the proof against the tree's current root),
// and newHash/isHole describe what survives after deletion — a promoted
// surviving sibling, a freshly combined pair, or nothing at all.
type nodeState struct {
	oldHash NodeHash
	isHole  bool
	newHash NodeHash
}

// ErrInvalidProof and ErrInvalidAccumulator mirror consensus's error
// taxonomy (spec §7 "InvalidProof, InvalidAccumulator — utreexo-level")
// without this package depending on consensus; callers that need a
// *consensus.ValidationError wrap these with the matching code.
var (
	ErrInvalidProof       = fmt.Errorf("accumulator: proof does not verify against current roots")
	ErrInvalidAccumulator = fmt.Errorf("accumulator: malformed proof or stump")
)

// Modify is the accumulator's one pure operation (spec §4.7): it verifies
// deletions against stump's current roots using proof, computes the
// resulting shrunk roots, appends additions on top, and returns the new
// Stump. It returns ErrInvalidProof if any deletion's sibling path does not
// reduce to its tree's stored root, and ErrInvalidAccumulator for
// structurally malformed input. Calling Modify twice with identical
// arguments always returns identical results (spec §8 property 5); it reads
// and writes no state beyond its arguments and return value.
func Modify(stump Stump, additions []NodeHash, deletions []NodeHash, proof Proof) (Stump, error) {
	if len(deletions) != len(proof.Targets) {
		return Stump{}, fmt.Errorf("%w: %d deletions but %d proof targets", ErrInvalidAccumulator, len(deletions), len(proof.Targets))
	}

	newRoots, err := applyDeletions(stump, deletions, proof)
	if err != nil {
		return Stump{}, err
	}

	finalLeaves, finalRoots := applyAdditions(stump.Leaves, newRoots, additions)
	return Stump{Leaves: finalLeaves, Roots: finalRoots}, nil
}

// applyDeletions verifies every deletion target against stump's roots and
// returns the post-deletion root list (shorter than stump.Roots wherever a
// whole tree was emptied).
func applyDeletions(stump Stump, deletions []NodeHash, proof Proof) ([]NodeHash, error) {
	trees := decompose(stump.Leaves)
	if len(trees) != len(stump.Roots) {
		return nil, fmt.Errorf("%w: stump has %d roots but leaf count decomposes into %d trees", ErrInvalidAccumulator, len(stump.Roots), len(trees))
	}

	// Group deletion targets by tree, preserving per-tree local position.
	type target struct {
		localPos uint64
		hash     NodeHash
	}
	byTree := make(map[int][]target, len(trees))
	for i, pos := range proof.Targets {
		tr, localPos, ok := locate(trees, pos)
		if !ok {
			return nil, fmt.Errorf("%w: target position %d out of range", ErrInvalidAccumulator, pos)
		}
		byTree[tr.rootIndex] = append(byTree[tr.rootIndex], target{localPos: localPos, hash: deletions[i]})
	}

	pool := proof.Hashes
	roots := make([]NodeHash, 0, len(trees))

	for _, t := range trees {
		targets := byTree[t.rootIndex]
		if len(targets) == 0 {
			roots = append(roots, stump.Roots[t.rootIndex])
			continue
		}

		row := make(map[uint64]nodeState, len(targets)*2)
		for _, tg := range targets {
			row[tg.localPos] = nodeState{oldHash: tg.hash, isHole: true}
		}

		var err error
		for r := uint(0); r < t.row; r++ {
			row, pool, err = collapseRow(row, pool)
			if err != nil {
				return nil, err
			}
		}

		final, ok := row[0]
		if !ok {
			return nil, fmt.Errorf("%w: tree %d did not reduce to a single root", ErrInvalidAccumulator, t.rootIndex)
		}
		if final.oldHash != stump.Roots[t.rootIndex] {
			return nil, ErrInvalidProof
		}
		if !final.isHole {
			roots = append(roots, final.newHash)
		}
	}

	return roots, nil
}

// collapseRow merges every active position in row into its parent at the
// next row up, pulling sibling hashes from pool (left-missing before
// right-missing, ascending pair position) whenever a pairing partner isn't
// already active. This left-to-right, row-by-row order is the proof's
// canonical hash consumption contract (documented on the Proof type).
func collapseRow(row map[uint64]nodeState, pool []NodeHash) (map[uint64]nodeState, []NodeHash, error) {
	pairPositions := make([]uint64, 0, len(row))
	seen := make(map[uint64]bool, len(row))
	for pos := range row {
		pairPos := pos &^ 1
		if !seen[pairPos] {
			seen[pairPos] = true
			pairPositions = append(pairPositions, pairPos)
		}
	}
	slices.Sort(pairPositions)

	next := make(map[uint64]nodeState, len(pairPositions))
	for _, pairPos := range pairPositions {
		left, leftOK := row[pairPos]
		right, rightOK := row[pairPos|1]

		var err error
		if !leftOK {
			left, pool, err = pullSibling(pool)
			if err != nil {
				return nil, nil, err
			}
		}
		if !rightOK {
			right, pool, err = pullSibling(pool)
			if err != nil {
				return nil, nil, err
			}
		}

		parent := nodeState{oldHash: parentHash(left.oldHash, right.oldHash)}
		switch {
		case left.isHole && right.isHole:
			parent.isHole = true
		case left.isHole:
			parent.newHash = right.newHash
		case right.isHole:
			parent.newHash = left.newHash
		default:
			parent.newHash = parentHash(left.newHash, right.newHash)
		}
		next[pairPos>>1] = parent
	}
	return next, pool, nil
}

func pullSibling(pool []NodeHash) (nodeState, []NodeHash, error) {
	if len(pool) == 0 {
		return nodeState{}, nil, fmt.Errorf("%w: proof hash pool exhausted", ErrInvalidAccumulator)
	}
	hash := pool[0]
	return nodeState{oldHash: hash, isHole: false, newHash: hash}, pool[1:], nil
}

// applyAdditions appends each addition on top of roots as a new leaf,
// merging equal-sized trees the way incrementing a binary counter merges
// carries: a new leaf starts a row-0 tree, and merges with an existing
// same-row root (consuming it) until it reaches a row with no existing
// root, exactly mirroring the bit pattern of leaves+1.
func applyAdditions(leaves uint64, roots []NodeHash, additions []NodeHash) (uint64, []NodeHash) {
	if len(additions) == 0 {
		return leaves, roots
	}

	// byRow indexes current roots by the row (tree height) they occupy,
	// derived the same way decompose does: bit `row` of `leaves` set.
	byRow := make(map[uint]NodeHash, len(roots))
	trees := decompose(leaves)
	for i, t := range trees {
		byRow[t.row] = roots[i]
	}

	for _, add := range additions {
		carry := add
		row := uint(0)
		for leaves&(uint64(1)<<row) != 0 {
			sibling := byRow[row]
			carry = parentHash(sibling, carry)
			delete(byRow, row)
			row++
		}
		byRow[row] = carry
		leaves++
	}

	newTrees := decompose(leaves)
	finalRoots := make([]NodeHash, len(newTrees))
	for i, t := range newTrees {
		finalRoots[i] = byRow[t.row]
	}
	return leaves, finalRoots
}
