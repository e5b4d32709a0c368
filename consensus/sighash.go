package consensus

import "encoding/binary"

// sighashAll is the only signature-hash type this package computes; the
// spec does not normatively pin a sighash algorithm (only the leaf hash in
// §3 is normative), so a single SIGHASH_ALL-equivalent construction is used
// for every recognized script template. See DESIGN.md for the scope
// decision to not implement the full BIP143/BIP341 sighash family.
const sighashAll = 0x00000001

// ComputeSighash returns the digest that script.Verify checks a signature
// against for tx's input at inputIndex, spending an output carrying
// prevOutScript. It blanks every other input's scriptSig (as legacy
// OP_CHECKSIG does) and appends a trailing SIGHASH_ALL type, then hashes
// with the same double-SHA256 used for txids.
func ComputeSighash(tx *Tx, inputIndex int, prevOutScript []byte) ([32]byte, error) {
	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return [32]byte{}, errDetail(ErrParse, "sighash: input index out of range")
	}

	var buf []byte
	var v [4]byte
	binary.LittleEndian.PutUint32(v[:], tx.Version)
	buf = append(buf, v[:]...)

	buf = EncodeCompactSize(buf, uint64(len(tx.Inputs)))
	for i, in := range tx.Inputs {
		buf = append(buf, EncodeOutpoint(in.PrevOut)...)
		if i == inputIndex {
			buf = EncodeCompactSize(buf, uint64(len(prevOutScript)))
			buf = append(buf, prevOutScript...)
		} else {
			buf = EncodeCompactSize(buf, 0)
		}
		var seq [4]byte
		binary.LittleEndian.PutUint32(seq[:], in.Sequence)
		buf = append(buf, seq[:]...)
	}

	buf = EncodeCompactSize(buf, uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		buf = append(buf, EncodeOutput(out)...)
	}

	var lt [4]byte
	binary.LittleEndian.PutUint32(lt[:], tx.Locktime)
	buf = append(buf, lt[:]...)

	var st [4]byte
	binary.LittleEndian.PutUint32(st[:], sighashAll)
	buf = append(buf, st[:]...)

	return doubleSHA256(buf), nil
}
