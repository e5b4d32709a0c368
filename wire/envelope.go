// Package wire implements the P2P message envelope and the message payloads
// named in spec §6: header/inv/getheaders exchange plus the utreexo-specific
// inclusion-proof and accumulator-snapshot messages a pruned node needs that
// a plain header-and-block node does not. Transport framing and encryption
// are an explicit Non-goal (spec §6); this package only encodes/decodes
// messages, it does not open sockets.
package wire

import (
	"bytes"
	"crypto/sha3"
	"encoding/binary"
	"fmt"
	"io"
	"unicode"
)

const (
	// EnvelopeBytes is the fixed header length prefixing every message:
	// magic(4) + command(12) + payload_length(4) + checksum(4).
	EnvelopeBytes = 24
	CommandBytes  = 12

	// MaxPayloadBytes bounds a single message's payload; spec §6 inherits
	// Bitcoin's conventional message-size ceiling for the header/inv/proof
	// messages this package carries.
	MaxPayloadBytes = 32 * 1024 * 1024
)

// Message is one decoded P2P message: its network magic, ASCII command
// name, and raw payload bytes (decoded separately by command-specific
// functions in this package).
type Message struct {
	Magic   uint32
	Command string
	Payload []byte
}

// ReadError reports how the caller should treat a malformed message,
// mirroring the teacher's policy-carrying read error: some failures warrant
// only dropping the message, others a disconnect.
type ReadError struct {
	Err        error
	Disconnect bool
}

func (e *ReadError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ReadError) Unwrap() error { return e.Err }

// checksum4 is the first four bytes of SHA3-256(payload). The spec doesn't
// normatively pin a checksum algorithm (only LeafHash and the accumulator's
// internal hashing are consensus-critical); SHA3-256 is the teacher's own
// non-consensus hash choice (already used for txids elsewhere in the
// teacher), reused here rather than reaching for a second hash primitive.
func checksum4(payload []byte) [4]byte {
	sum := sha3.Sum256(payload)
	var out [4]byte
	copy(out[:], sum[:4])
	return out
}

func encodeCommand(cmd string) ([CommandBytes]byte, error) {
	var out [CommandBytes]byte
	if cmd == "" || len(cmd) > CommandBytes {
		return out, fmt.Errorf("wire: invalid command length")
	}
	for i := 0; i < len(cmd); i++ {
		c := cmd[i]
		if c >= 0x80 || c == 0x00 || !unicode.IsPrint(rune(c)) {
			return out, fmt.Errorf("wire: command contains non-printable byte")
		}
		out[i] = c
	}
	return out, nil
}

func decodeCommand(b [CommandBytes]byte) (string, error) {
	n := CommandBytes
	for i, c := range b {
		if c == 0x00 {
			n = i
			break
		}
	}
	for i := n; i < CommandBytes; i++ {
		if b[i] != 0x00 {
			return "", fmt.Errorf("wire: command not NUL-padded")
		}
	}
	if n == 0 {
		return "", fmt.Errorf("wire: empty command")
	}
	return string(b[:n]), nil
}

// WriteMessage writes one framed message to w.
func WriteMessage(w io.Writer, magic uint32, command string, payload []byte) error {
	cmd12, err := encodeCommand(command)
	if err != nil {
		return err
	}
	if len(payload) > MaxPayloadBytes {
		return fmt.Errorf("wire: payload too large")
	}
	c4 := checksum4(payload)

	var hdr [EnvelopeBytes]byte
	binary.BigEndian.PutUint32(hdr[0:4], magic)
	copy(hdr[4:16], cmd12[:])
	binary.LittleEndian.PutUint32(hdr[16:20], uint32(len(payload)))
	copy(hdr[20:24], c4[:])

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err = w.Write(payload)
	return err
}

// ReadMessage reads exactly one framed message from r.
func ReadMessage(r io.Reader, expectedMagic uint32) (*Message, *ReadError) {
	var hdr [EnvelopeBytes]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, &ReadError{Err: err, Disconnect: true}
	}

	magic := binary.BigEndian.Uint32(hdr[0:4])
	if magic != expectedMagic {
		return nil, &ReadError{Err: fmt.Errorf("wire: magic mismatch"), Disconnect: true}
	}

	var cmdBytes [CommandBytes]byte
	copy(cmdBytes[:], hdr[4:16])
	cmd, err := decodeCommand(cmdBytes)
	if err != nil {
		return nil, &ReadError{Err: err, Disconnect: false}
	}

	payloadLen := binary.LittleEndian.Uint32(hdr[16:20])
	if payloadLen > MaxPayloadBytes {
		return nil, &ReadError{Err: fmt.Errorf("wire: payload_length exceeds MaxPayloadBytes"), Disconnect: true}
	}
	var expectedC4 [4]byte
	copy(expectedC4[:], hdr[20:24])

	payload := make([]byte, payloadLen)
	if payloadLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, &ReadError{Err: err, Disconnect: true}
		}
	}

	if c4 := checksum4(payload); !bytes.Equal(expectedC4[:], c4[:]) {
		return nil, &ReadError{Err: fmt.Errorf("wire: checksum mismatch"), Disconnect: false}
	}

	return &Message{Magic: magic, Command: cmd, Payload: payload}, nil
}
