package accumulator

// tree describes one perfect binary tree in the forest: its row (height,
// so it holds 2^row leaves), the global leaf-position range it covers, and
// its index into Stump.Roots.
type tree struct {
	row       uint
	leafStart uint64
	leafCount uint64
	rootIndex int
}

// decompose partitions numLeaves into the forest's perfect trees, largest
// first, exactly following the set bits of numLeaves from the most to the
// least significant — the same binary decomposition that governs Stump.Roots'
// ordering (spec §3: "roots ... the ordered roots of the forest").
func decompose(numLeaves uint64) []tree {
	var trees []tree
	var leafStart uint64
	rootIdx := 0
	for row := 63; row >= 0; row-- {
		bit := uint64(1) << uint(row)
		if numLeaves&bit == 0 {
			continue
		}
		trees = append(trees, tree{row: uint(row), leafStart: leafStart, leafCount: bit, rootIndex: rootIdx})
		leafStart += bit
		rootIdx++
	}
	return trees
}

// locate finds which tree a global leaf position belongs to and its local
// (0-indexed, left-to-right) position within that tree.
func locate(trees []tree, globalPos uint64) (tree, uint64, bool) {
	for _, t := range trees {
		if globalPos >= t.leafStart && globalPos < t.leafStart+t.leafCount {
			return t, globalPos - t.leafStart, true
		}
	}
	return tree{}, 0, false
}
