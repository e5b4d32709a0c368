package consensus

import "encoding/binary"

// DecodeCompactSize decodes a Bitcoin-style CompactSize varint from the
// front of b. It returns the decoded value, the number of bytes consumed,
// and an error for truncated input or a non-minimal encoding (spec §6
// "standard Bitcoin consensus serialization").
func DecodeCompactSize(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, errDetail(ErrParse, "compactsize: empty")
	}
	tag := b[0]
	switch {
	case tag < 0xfd:
		return uint64(tag), 1, nil
	case tag == 0xfd:
		if len(b) < 3 {
			return 0, 0, errDetail(ErrParse, "compactsize: truncated (0xfd)")
		}
		v := binary.LittleEndian.Uint16(b[1:3])
		if v < 0xfd {
			return 0, 0, errDetail(ErrParse, "compactsize: non-minimal (0xfd)")
		}
		return uint64(v), 3, nil
	case tag == 0xfe:
		if len(b) < 5 {
			return 0, 0, errDetail(ErrParse, "compactsize: truncated (0xfe)")
		}
		v := binary.LittleEndian.Uint32(b[1:5])
		if v <= 0xffff {
			return 0, 0, errDetail(ErrParse, "compactsize: non-minimal (0xfe)")
		}
		return uint64(v), 5, nil
	case tag == 0xff:
		if len(b) < 9 {
			return 0, 0, errDetail(ErrParse, "compactsize: truncated (0xff)")
		}
		v := binary.LittleEndian.Uint64(b[1:9])
		if v <= 0xffff_ffff {
			return 0, 0, errDetail(ErrParse, "compactsize: non-minimal (0xff)")
		}
		return v, 9, nil
	default:
		return 0, 0, errDetail(ErrParse, "compactsize: unreachable tag")
	}
}

// EncodeCompactSize appends the CompactSize encoding of n to dst and returns
// the extended slice.
func EncodeCompactSize(dst []byte, n uint64) []byte {
	switch {
	case n < 0xfd:
		return append(dst, byte(n))
	case n <= 0xffff:
		dst = append(dst, 0xfd)
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(n))
		return append(dst, buf[:]...)
	case n <= 0xffff_ffff:
		dst = append(dst, 0xfe)
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(n))
		return append(dst, buf[:]...)
	default:
		dst = append(dst, 0xff)
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], n)
		return append(dst, buf[:]...)
	}
}
