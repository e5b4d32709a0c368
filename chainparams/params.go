// Package chainparams carries the per-network constants consensus code needs
// (subsidy interval, retarget rules, genesis, default P2P port). Values are
// process-wide and immutable once looked up; callers pass the Params value
// Lookup returns into validators rather than reading a package-level global.
package chainparams

import "fmt"

// Network identifies one of the closed set of supported networks.
type Network string

const (
	Mainnet  Network = "mainnet"
	Testnet  Network = "testnet"
	Testnet4 Network = "testnet4"
	Signet   Network = "signet"
	Regtest  Network = "regtest"
)

// Params is the immutable set of consensus/network constants for one chain.
type Params struct {
	Network Network

	// GenesisHash is the block hash of height 0, big-endian display order
	// reversed to internal (little-endian) byte order, as Bitcoin headers do.
	GenesisHash [32]byte

	// SubsidyHalvingInterval is the number of blocks between subsidy halvings.
	SubsidyHalvingInterval uint64

	// RetargetTimespan is the expected number of seconds per difficulty
	// epoch (RetargetWindow blocks).
	RetargetTimespan uint64
	RetargetWindow   uint64

	// MinRetargetRatio/MaxRetargetRatio clamp the ratio of new/old target
	// per epoch (e.g. 0.25 and 4.0 for Bitcoin mainnet-style rules).
	MinRetargetRatioNum, MinRetargetRatioDen uint64
	MaxRetargetRatioNum, MaxRetargetRatioDen uint64

	// PowLimit is the maximal (easiest) target permitted on this network.
	PowLimit [32]byte

	DefaultPort uint16
}

// coin is the number of satoshis in one whole coin.
const coin = 100_000_000

var powLimitMainnet = mustTarget("00000000ffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
var powLimitRegtest = mustTarget("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")

// genesisHashMainnet/Regtest are the well-known genesis block hashes in
// their conventional big-endian display order, reversed to the internal
// byte order consensus.BlockHash produces (raw double-SHA256 digest, no
// display-order reversal).
var genesisHashMainnet = mustReversedHash("000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f")
var genesisHashRegtest = mustReversedHash("0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206")

func mustTarget(hexBE string) [32]byte {
	var out [32]byte
	if len(hexBE) != 64 {
		panic("chainparams: bad target literal length")
	}
	for i := 0; i < 32; i++ {
		var b byte
		_, err := fmt.Sscanf(hexBE[i*2:i*2+2], "%02x", &b)
		if err != nil {
			panic(err)
		}
		out[i] = b
	}
	return out
}

func mustReversedHash(displayHex string) [32]byte {
	out := mustTarget(displayHex)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

var byNetwork = map[Network]Params{
	Mainnet: {
		Network:                Mainnet,
		GenesisHash:            genesisHashMainnet,
		SubsidyHalvingInterval: 210_000,
		RetargetTimespan:       14 * 24 * 60 * 60,
		RetargetWindow:         2016,
		MinRetargetRatioNum:    1, MinRetargetRatioDen: 4,
		MaxRetargetRatioNum: 4, MaxRetargetRatioDen: 1,
		PowLimit:    powLimitMainnet,
		DefaultPort: 8333,
	},
	Testnet: {
		Network:                Testnet,
		SubsidyHalvingInterval: 210_000,
		RetargetTimespan:       14 * 24 * 60 * 60,
		RetargetWindow:         2016,
		MinRetargetRatioNum:    1, MinRetargetRatioDen: 4,
		MaxRetargetRatioNum: 4, MaxRetargetRatioDen: 1,
		PowLimit:    powLimitMainnet,
		DefaultPort: 18333,
	},
	Testnet4: {
		Network:                Testnet4,
		SubsidyHalvingInterval: 210_000,
		RetargetTimespan:       14 * 24 * 60 * 60,
		RetargetWindow:         2016,
		MinRetargetRatioNum:    1, MinRetargetRatioDen: 4,
		MaxRetargetRatioNum: 4, MaxRetargetRatioDen: 1,
		PowLimit:    powLimitMainnet,
		DefaultPort: 48333,
	},
	Signet: {
		Network:                Signet,
		SubsidyHalvingInterval: 210_000,
		RetargetTimespan:       14 * 24 * 60 * 60,
		RetargetWindow:         2016,
		MinRetargetRatioNum:    1, MinRetargetRatioDen: 4,
		MaxRetargetRatioNum: 4, MaxRetargetRatioDen: 1,
		PowLimit:    powLimitMainnet,
		DefaultPort: 38333,
	},
	Regtest: {
		Network:                Regtest,
		GenesisHash:            genesisHashRegtest,
		SubsidyHalvingInterval: 150,
		RetargetTimespan:       14 * 24 * 60 * 60,
		RetargetWindow:         2016,
		MinRetargetRatioNum:    1, MinRetargetRatioDen: 4,
		MaxRetargetRatioNum: 4, MaxRetargetRatioDen: 1,
		PowLimit:    powLimitRegtest,
		DefaultPort: 18444,
	},
}

// Lookup returns the Params for a named network, or an error if the network
// is not one of the closed set of supported networks.
func Lookup(n Network) (Params, error) {
	p, ok := byNetwork[n]
	if !ok {
		return Params{}, fmt.Errorf("chainparams: unknown network %q", n)
	}
	return p, nil
}

// Subsidy returns the block subsidy in satoshis at height, per §4.2:
// subsidy(height) = (50 * 1e8) >> (height / halving_interval), clamped to 0
// when the shift exceeds 63.
func (p Params) Subsidy(height uint64) uint64 {
	if p.SubsidyHalvingInterval == 0 {
		return 0
	}
	halvings := height / p.SubsidyHalvingInterval
	if halvings >= 64 {
		return 0
	}
	return (50 * coin) >> halvings
}
