package chainparams

import "testing"

func TestSubsidyHalvings(t *testing.T) {
	p, err := Lookup(Mainnet)
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		height uint64
		want   uint64
	}{
		{0, 50 * coin},
		{p.SubsidyHalvingInterval, 25 * coin},
		{32 * p.SubsidyHalvingInterval, (50 * coin) >> 32},
		{63 * p.SubsidyHalvingInterval, (50 * coin) >> 63},
		{64 * p.SubsidyHalvingInterval, 0},
	}
	for _, c := range cases {
		got := p.Subsidy(c.height)
		if got != c.want {
			t.Errorf("Subsidy(%d) = %d, want %d", c.height, got, c.want)
		}
	}
}

func TestLookupUnknownNetwork(t *testing.T) {
	if _, err := Lookup(Network("nonesuch")); err == nil {
		t.Fatal("expected error for unknown network")
	}
}

func TestLookupAllNetworks(t *testing.T) {
	for _, n := range []Network{Mainnet, Testnet, Testnet4, Signet, Regtest} {
		if _, err := Lookup(n); err != nil {
			t.Errorf("Lookup(%s): %v", n, err)
		}
	}
}
