package wire

import (
	"encoding/binary"
	"fmt"

	"utreexo.dev/node/consensus"
)

// MaxHeadersPerMsg and MaxLocatorHashes mirror the teacher's
// node/p2p/headers.go bounds; a pruned node has the same reason to cap a
// single headers batch and a getheaders locator as a full node does.
const (
	MaxHeadersPerMsg = 2_000
	MaxLocatorHashes = 64
)

// GetHeadersPayload asks a peer for up to MaxHeadersPerMsg headers following
// the first hash in BlockLocator it recognizes, stopping at HashStop (zero
// meaning "as many as fit").
type GetHeadersPayload struct {
	Version      uint32
	BlockLocator [][32]byte
	HashStop     [32]byte
}

func EncodeGetHeaders(p GetHeadersPayload) ([]byte, error) {
	if len(p.BlockLocator) == 0 || len(p.BlockLocator) > MaxLocatorHashes {
		return nil, fmt.Errorf("wire: getheaders: invalid locator length %d", len(p.BlockLocator))
	}
	out := make([]byte, 4, 4+9+len(p.BlockLocator)*32+32)
	binary.LittleEndian.PutUint32(out, p.Version)
	out = consensus.EncodeCompactSize(out, uint64(len(p.BlockLocator)))
	for _, h := range p.BlockLocator {
		out = append(out, h[:]...)
	}
	out = append(out, p.HashStop[:]...)
	return out, nil
}

func DecodeGetHeaders(b []byte) (*GetHeadersPayload, error) {
	if len(b) < 4+1+32 {
		return nil, fmt.Errorf("wire: getheaders: short payload")
	}
	p := &GetHeadersPayload{Version: binary.LittleEndian.Uint32(b[:4])}
	count, used, err := consensus.DecodeCompactSize(b[4:])
	if err != nil {
		return nil, err
	}
	if count == 0 || count > MaxLocatorHashes {
		return nil, fmt.Errorf("wire: getheaders: invalid locator count %d", count)
	}
	off := 4 + used
	need := off + int(count)*32 + 32
	if len(b) != need {
		return nil, fmt.Errorf("wire: getheaders: length mismatch")
	}
	p.BlockLocator = make([][32]byte, count)
	for i := range p.BlockLocator {
		copy(p.BlockLocator[i][:], b[off:off+32])
		off += 32
	}
	copy(p.HashStop[:], b[off:off+32])
	return p, nil
}

// EncodeHeaders serializes a batch of headers for the `headers` response.
func EncodeHeaders(headers []consensus.BlockHeader) ([]byte, error) {
	if len(headers) > MaxHeadersPerMsg {
		return nil, fmt.Errorf("wire: headers: %d exceeds MaxHeadersPerMsg", len(headers))
	}
	out := consensus.EncodeCompactSize(nil, uint64(len(headers)))
	for _, h := range headers {
		out = append(out, consensus.EncodeBlockHeader(h)...)
	}
	return out, nil
}

func DecodeHeaders(b []byte) ([]consensus.BlockHeader, error) {
	count, used, err := consensus.DecodeCompactSize(b)
	if err != nil {
		return nil, err
	}
	if count > MaxHeadersPerMsg {
		return nil, fmt.Errorf("wire: headers: %d exceeds MaxHeadersPerMsg", count)
	}
	off := used
	need := off + int(count)*consensus.BlockHeaderBytes
	if len(b) != need {
		return nil, fmt.Errorf("wire: headers: length mismatch")
	}
	headers := make([]consensus.BlockHeader, count)
	for i := range headers {
		h, err := consensus.ParseBlockHeader(b[off : off+consensus.BlockHeaderBytes])
		if err != nil {
			return nil, err
		}
		headers[i] = h
		off += consensus.BlockHeaderBytes
	}
	return headers, nil
}
