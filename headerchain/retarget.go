package headerchain

import (
	"fmt"
	"math/big"

	"utreexo.dev/node/chainparams"
)

// Retarget computes the next epoch's compact target from the first header's
// bits and the observed timespan between the epoch's first and last header,
// clamped by params' min/max retarget ratios (spec §4.3). It is deterministic
// and independent of any other chain state, matching the teacher's
// consensus/pow.go RetargetV1 but generalized from a hardcoded /4..*4 clamp
// to the per-network ratio carried in chainparams.Params.
func Retarget(params chainparams.Params, firstBits uint32, firstTime, lastTime uint64) (uint32, error) {
	oldTarget, err := CompactToTarget(firstBits)
	if err != nil {
		return 0, err
	}
	tOld := new(big.Int).SetBytes(oldTarget[:])
	if tOld.Sign() == 0 {
		return 0, fmt.Errorf("headerchain: retarget: old target is zero")
	}

	var actualTimespan uint64
	if lastTime <= firstTime {
		actualTimespan = 1
	} else {
		actualTimespan = lastTime - firstTime
	}
	expectedTimespan := params.RetargetTimespan
	if expectedTimespan == 0 {
		return 0, fmt.Errorf("headerchain: retarget: expected timespan is zero")
	}

	num := new(big.Int).Mul(tOld, new(big.Int).SetUint64(actualTimespan))
	den := new(big.Int).SetUint64(expectedTimespan)
	tNew := new(big.Int).Div(num, den)

	lower := new(big.Int).Mul(tOld, new(big.Int).SetUint64(params.MinRetargetRatioNum))
	lower.Div(lower, new(big.Int).SetUint64(params.MinRetargetRatioDen))
	if lower.Sign() < 1 {
		lower.SetInt64(1)
	}
	upper := new(big.Int).Mul(tOld, new(big.Int).SetUint64(params.MaxRetargetRatioNum))
	upper.Div(upper, new(big.Int).SetUint64(params.MaxRetargetRatioDen))

	if tNew.Cmp(lower) < 0 {
		tNew = lower
	}
	if tNew.Cmp(upper) > 0 {
		tNew = upper
	}

	powLimit := new(big.Int).SetBytes(params.PowLimit[:])
	if tNew.Cmp(powLimit) > 0 {
		tNew = powLimit
	}

	var newTarget [32]byte
	b := tNew.Bytes()
	if len(b) > 32 {
		return 0, fmt.Errorf("headerchain: retarget: new target overflows 256 bits")
	}
	copy(newTarget[32-len(b):], b)

	return TargetToCompact(newTarget), nil
}
