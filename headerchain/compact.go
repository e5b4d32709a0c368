// Package headerchain implements proof-of-work retarget and cumulative-work
// comparison for a chain of block headers (C6): the compact-target codec,
// the per-epoch retarget formula, work accumulation, and a parent-linked
// header index keyed by hash with a side height→hash map, per spec §4.3 and
// §9 ("headers form a parent-linked list by hash and can be indexed by
// height in a side map").
package headerchain

import (
	"fmt"
	"math/big"
)

// CompactToTarget expands a Bitcoin-style compact "bits" encoding into a
// 256-bit big-endian target. Grounded on the teacher's big.Int-based target
// arithmetic in consensus/pow.go and consensus/fork_choice.go, extended here
// to also handle the compact<->target conversion those files take as a
// precondition (they operate on expanded [32]byte targets already).
func CompactToTarget(bits uint32) ([32]byte, error) {
	exponent := int(bits >> 24)
	mantissa := int64(bits & 0x007fffff)
	negative := bits&0x00800000 != 0

	var out [32]byte
	if negative {
		return out, fmt.Errorf("headerchain: negative compact target")
	}
	if mantissa == 0 {
		return out, nil
	}

	m := big.NewInt(mantissa)
	var target *big.Int
	switch {
	case exponent <= 3:
		target = new(big.Int).Rsh(m, uint(8*(3-exponent)))
	default:
		target = new(big.Int).Lsh(m, uint(8*(exponent-3)))
	}

	b := target.Bytes()
	if len(b) > 32 {
		return out, fmt.Errorf("headerchain: compact target overflows 256 bits")
	}
	copy(out[32-len(b):], b)
	return out, nil
}

// TargetToCompact reduces a 256-bit big-endian target to Bitcoin's compact
// "bits" encoding, the inverse of CompactToTarget.
func TargetToCompact(target [32]byte) uint32 {
	t := new(big.Int).SetBytes(target[:])
	if t.Sign() == 0 {
		return 0
	}
	b := t.Bytes()
	exponent := len(b)

	var mantissa uint32
	switch {
	case exponent <= 3:
		padded := make([]byte, 3)
		copy(padded[3-exponent:], b)
		mantissa = uint32(padded[0])<<16 | uint32(padded[1])<<8 | uint32(padded[2])
	default:
		mantissa = uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	}

	// The mantissa's top bit is a sign bit in Bitcoin's compact format; if
	// set, shift right one byte and bump the exponent to keep it unsigned.
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	return uint32(exponent)<<24 | mantissa
}
