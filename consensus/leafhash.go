package consensus

import (
	"crypto/sha512"
	"encoding/binary"
)

// UTreexoTagV1 is SHA-512("UtreexoV1"), included twice at the start of every
// leaf-hash preimage (spec §3 "Leaf hash"). The bytes are the exact constant
// used by every utreexo-compatible implementation; reproducing them here
// byte-for-byte is what makes LeafHash interoperable with the rest of the
// ecosystem.
var UTreexoTagV1 = [64]byte{
	0x5b, 0x83, 0x2d, 0xb8, 0xca, 0x26, 0xc2, 0x5b, 0xe1, 0xc5, 0x42, 0xd6, 0xcc, 0xed, 0xdd, 0xa8,
	0xc1, 0x45, 0x61, 0x5c, 0xff, 0x5c, 0x35, 0x72, 0x7f, 0xb3, 0x46, 0x26, 0x10, 0x80, 0x7e, 0x20,
	0xae, 0x53, 0x4d, 0xc3, 0xf6, 0x42, 0x99, 0x19, 0x99, 0x31, 0x77, 0x2e, 0x03, 0x78, 0x7d, 0x18,
	0x15, 0x6e, 0xb3, 0x15, 0x1e, 0x0e, 0xd1, 0xb3, 0x09, 0x8b, 0xdc, 0x84, 0x45, 0x86, 0x18, 0x85,
}

// LeafHash computes the canonical utreexo leaf hash for one output (spec §3):
//
//	SHA-512/256( tag || tag || block_hash || txid || vout_LE32 ||
//	             header_code_LE32 || output_bytes )
//
// where header_code = (height << 1) | is_coinbase, and output_bytes is the
// canonical serialization of the output (value + varint-prefixed script).
func LeafHash(blockHash, txid [32]byte, vout uint32, height uint64, isCoinbase bool, out Output) [32]byte {
	headerCode := uint32(height<<1) & 0xfffffffe
	if isCoinbase {
		headerCode |= 1
	}

	h := sha512.New512_256()
	h.Write(UTreexoTagV1[:])
	h.Write(UTreexoTagV1[:])
	h.Write(blockHash[:])
	h.Write(txid[:])

	var voutLE, codeLE [4]byte
	binary.LittleEndian.PutUint32(voutLE[:], vout)
	binary.LittleEndian.PutUint32(codeLE[:], headerCode)
	h.Write(voutLE[:])
	h.Write(codeLE[:])
	h.Write(EncodeOutput(out))

	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}
