package script

import "golang.org/x/crypto/ripemd160" //nolint:staticcheck // Bitcoin's HASH160 is defined in terms of this specific construction.

// ripemd160Sum computes RIPEMD160(b), the second half of Bitcoin's standard
// HASH160 = RIPEMD160(SHA256(x)) used for P2PKH/P2WPKH pubkey hashes.
func ripemd160Sum(b []byte) []byte {
	h := ripemd160.New()
	h.Write(b)
	return h.Sum(nil)
}
