package consensus

import (
	"encoding/binary"
	"fmt"
)

// cursor is a forward-only byte reader used by every consensus-serialization
// decoder in this package (transactions, blocks, headers). Keeping one
// reader type means every wire format in this package fails the same way on
// truncation.
type cursor struct {
	b   []byte
	pos int
}

func newCursor(b []byte) *cursor {
	return &cursor{b: b, pos: 0}
}

func (c *cursor) remaining() int {
	if c.pos >= len(c.b) {
		return 0
	}
	return len(c.b) - c.pos
}

func (c *cursor) done() bool {
	return c.pos >= len(c.b)
}

func (c *cursor) readExact(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, errDetail(ErrParse, "truncated")
	}
	start := c.pos
	c.pos += n
	return c.b[start:c.pos], nil
}

func (c *cursor) readU8() (byte, error) {
	b, err := c.readExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) readU32LE() (uint32, error) {
	b, err := c.readExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) readU64LE() (uint64, error) {
	b, err := c.readExact(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *cursor) readCompactSize() (uint64, error) {
	n, used, err := DecodeCompactSize(c.b[c.pos:])
	if err != nil {
		return 0, err
	}
	c.pos += used
	return n, nil
}

func (c *cursor) read32(dst *[32]byte) error {
	b, err := c.readExact(32)
	if err != nil {
		return err
	}
	copy(dst[:], b)
	return nil
}

// toIntLen converts a decoded compact-size count to an int, rejecting values
// that cannot possibly be followed by that many bytes in a consensus-sized
// message (guards against the classic "huge length prefix, no backing
// bytes" allocation attack).
func toIntLen(n uint64, field string) (int, error) {
	const maxReasonable = 1 << 24
	if n > maxReasonable {
		return 0, errDetail(ErrParse, fmt.Sprintf("%s: length overflow", field))
	}
	return int(n), nil
}

// addUint64 adds a and b, returning an error instead of silently wrapping on
// overflow. Every satoshi-sum computation in this package goes through this.
func addUint64(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, errDetail(ErrParse, "uint64 addition overflow")
	}
	return sum, nil
}
