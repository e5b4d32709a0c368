package headerchain

import "testing"

func TestCompactTargetRoundTrip(t *testing.T) {
	cases := []uint32{
		0x1d00ffff, // mainnet genesis bits
		0x207fffff, // regtest pow limit
		0x1b0404cb,
	}
	for _, bits := range cases {
		target, err := CompactToTarget(bits)
		if err != nil {
			t.Fatalf("bits %08x: %v", bits, err)
		}
		got := TargetToCompact(target)
		if got != bits {
			t.Errorf("round trip: bits=%08x -> target -> %08x", bits, got)
		}
	}
}

func TestCompactToTargetRejectsNegative(t *testing.T) {
	_, err := CompactToTarget(0x01800000)
	if err == nil {
		t.Fatal("expected error for negative-flagged compact target")
	}
}

func TestCompactToTargetZeroMantissa(t *testing.T) {
	target, err := CompactToTarget(0x04000000)
	if err != nil {
		t.Fatal(err)
	}
	if target != ([32]byte{}) {
		t.Fatalf("expected zero target for zero mantissa, got %x", target)
	}
}
