package wire

import (
	"encoding/binary"
	"fmt"

	"utreexo.dev/node/consensus"
)

// MaxInvEntries mirrors the teacher's node/p2p/inv.go bound.
const MaxInvEntries = 50_000

const (
	InvTypeBlock   = 1
	InvTypeHeader  = 2
	InvTypeUtxoSet = 3 // an accumulator snapshot at a given height
)

// InvVector announces one object a peer has available.
type InvVector struct {
	Type uint32
	Hash [32]byte
}

func EncodeInv(vecs []InvVector) ([]byte, error) {
	if len(vecs) > MaxInvEntries {
		return nil, fmt.Errorf("wire: inv: %d exceeds MaxInvEntries", len(vecs))
	}
	out := consensus.EncodeCompactSize(nil, uint64(len(vecs)))
	var tmp [4]byte
	for _, v := range vecs {
		binary.LittleEndian.PutUint32(tmp[:], v.Type)
		out = append(out, tmp[:]...)
		out = append(out, v.Hash[:]...)
	}
	return out, nil
}

func DecodeInv(b []byte) ([]InvVector, error) {
	count, used, err := consensus.DecodeCompactSize(b)
	if err != nil {
		return nil, err
	}
	if count > MaxInvEntries {
		return nil, fmt.Errorf("wire: inv: %d exceeds MaxInvEntries", count)
	}
	off := used
	need := off + int(count)*(4+32)
	if len(b) != need {
		return nil, fmt.Errorf("wire: inv: length mismatch")
	}
	vecs := make([]InvVector, count)
	for i := range vecs {
		vecs[i].Type = binary.LittleEndian.Uint32(b[off : off+4])
		off += 4
		copy(vecs[i].Hash[:], b[off:off+32])
		off += 32
	}
	return vecs, nil
}
