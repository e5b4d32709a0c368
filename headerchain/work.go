package headerchain

import (
	"fmt"
	"math/big"
)

var twoTo256 = new(big.Int).Lsh(big.NewInt(1), 256)

// WorkFromTarget returns floor(2^256 / target), the work a single block at
// this target contributes to cumulative chain work. Grounded directly on the
// teacher's node/store/work.go and consensus/fork_choice.go, which both
// independently implement this exact formula (kept as one copy here).
func WorkFromTarget(target [32]byte) (*big.Int, error) {
	t := new(big.Int).SetBytes(target[:])
	if t.Sign() <= 0 {
		return nil, fmt.Errorf("headerchain: target must be > 0")
	}
	return new(big.Int).Quo(twoTo256, t), nil
}

// WorkFromBits is WorkFromTarget over a header's compact bits field, the
// form cumulative-work comparisons actually consume (spec §4.8 "the
// partition with the greatest accumulated proof-of-work").
func WorkFromBits(bits uint32) (*big.Int, error) {
	target, err := CompactToTarget(bits)
	if err != nil {
		return nil, err
	}
	return WorkFromTarget(target)
}

// ChainWork sums WorkFromBits over an ordered list of headers' bits fields.
func ChainWork(bitsSeq []uint32) (*big.Int, error) {
	total := new(big.Int)
	for _, bits := range bitsSeq {
		w, err := WorkFromBits(bits)
		if err != nil {
			return nil, err
		}
		total.Add(total, w)
	}
	return total, nil
}
