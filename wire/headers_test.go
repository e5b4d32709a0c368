package wire

import (
	"testing"

	"utreexo.dev/node/consensus"
)

func TestGetHeadersRoundTrip(t *testing.T) {
	p := GetHeadersPayload{
		Version:      1,
		BlockLocator: [][32]byte{{0x01}, {0x02}},
		HashStop:     [32]byte{0xff},
	}
	b, err := EncodeGetHeaders(p)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeGetHeaders(b)
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != p.Version || len(got.BlockLocator) != 2 || got.HashStop != p.HashStop {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestGetHeadersRejectsEmptyLocator(t *testing.T) {
	_, err := EncodeGetHeaders(GetHeadersPayload{Version: 1})
	if err == nil {
		t.Fatal("expected error for an empty locator")
	}
}

func TestHeadersRoundTrip(t *testing.T) {
	headers := []consensus.BlockHeader{
		{Version: 1, Timestamp: 100, Bits: 0x207fffff, Nonce: 1},
		{Version: 1, Timestamp: 200, Bits: 0x207fffff, Nonce: 2},
	}
	b, err := EncodeHeaders(headers)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeHeaders(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != headers[0] || got[1] != headers[1] {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestHeadersRejectsOverLimit(t *testing.T) {
	headers := make([]consensus.BlockHeader, MaxHeadersPerMsg+1)
	_, err := EncodeHeaders(headers)
	if err == nil {
		t.Fatal("expected error exceeding MaxHeadersPerMsg")
	}
}
