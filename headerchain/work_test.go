package headerchain

import (
	"math/big"
	"testing"
)

func TestWorkFromTargetHalving(t *testing.T) {
	var small, large [32]byte
	small[31] = 1
	large[31] = 2

	wSmall, err := WorkFromTarget(small)
	if err != nil {
		t.Fatal(err)
	}
	wLarge, err := WorkFromTarget(large)
	if err != nil {
		t.Fatal(err)
	}
	doubled := new(big.Int).Mul(wLarge, big.NewInt(2))
	if doubled.Cmp(wSmall) != 0 {
		t.Fatalf("work(target/2) should be 2x work(target): got %v vs %v", wSmall, doubled)
	}
}

func TestWorkFromTargetRejectsZero(t *testing.T) {
	var zero [32]byte
	if _, err := WorkFromTarget(zero); err == nil {
		t.Fatal("expected error for zero target")
	}
}

func TestChainWorkSums(t *testing.T) {
	bitsSeq := []uint32{genesisBits, genesisBits}
	total, err := ChainWork(bitsSeq)
	if err != nil {
		t.Fatal(err)
	}
	single, err := WorkFromBits(genesisBits)
	if err != nil {
		t.Fatal(err)
	}
	doubled := new(big.Int).Mul(single, big.NewInt(2))
	if total.Cmp(doubled) != 0 {
		t.Fatalf("ChainWork of two identical headers should be 2x one header's work")
	}
}
