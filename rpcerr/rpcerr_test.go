package rpcerr

import (
	"errors"
	"testing"
)

func TestResolveAddressOrIDBothOrNeitherIsInvalidDisconnectNodeCommand(t *testing.T) {
	cases := []struct {
		name    string
		address string
		hasID   bool
	}{
		{"neither", "", false},
		{"both", "127.0.0.1:8333", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := ResolveAddressOrID(c.address, c.hasID)
			assertCode(t, err, CodeInvalidDisconnectNodeCommand)
		})
	}
}

func TestResolveAddressOrIDByID(t *testing.T) {
	ref, byID, err := ResolveAddressOrID("", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !byID {
		t.Fatal("expected byID")
	}
	if ref != (PeerRef{}) {
		t.Fatalf("expected a zero PeerRef for the by-id branch, got %+v", ref)
	}
}

func TestParseAddress(t *testing.T) {
	cases := []struct {
		name    string
		address string
		want    PeerRef
		code    Code
	}{
		{"valid", "127.0.0.1:8333", PeerRef{IP: "127.0.0.1", Port: 8333}, ""},
		{"missing port", "127.0.0.1", PeerRef{}, CodeInvalidAddress},
		{"not an ip", "not-an-ip:8333", PeerRef{}, CodeInvalidAddress},
		{"port zero", "127.0.0.1:0", PeerRef{}, CodeInvalidPort},
		{"port out of range", "127.0.0.1:99999", PeerRef{}, CodeInvalidPort},
		{"non-numeric port", "127.0.0.1:http", PeerRef{}, CodeInvalidPort},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ref, err := ParseAddress(c.address)
			if c.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if ref != c.want {
					t.Fatalf("got %+v, want %+v", ref, c.want)
				}
				return
			}
			assertCode(t, err, c.code)
		})
	}
}

func TestParseAddnodeCommand(t *testing.T) {
	for _, valid := range []AddnodeCommand{AddnodeAdd, AddnodeRemove, AddnodeOneTry} {
		if _, err := ParseAddnodeCommand(string(valid)); err != nil {
			t.Fatalf("%s: unexpected error: %v", valid, err)
		}
	}
	if _, err := ParseAddnodeCommand("delete"); err == nil {
		t.Fatal("expected an error for an unknown subcommand")
	} else {
		assertCode(t, err, CodeInvalidAddnodeCommand)
	}
}

func TestNodeWrapsUnderlyingError(t *testing.T) {
	underlying := errors.New("dial tcp: connection refused")
	err := Node(underlying)
	assertCode(t, err, CodeNode)
	if err.Error() != "Node(dial tcp: connection refused)" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if Node(nil) != nil {
		t.Fatal("Node(nil) should return nil")
	}
}

func assertCode(t *testing.T, err error, want Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error with code %s, got nil", want)
	}
	rerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error is %T, want *rpcerr.Error", err)
	}
	if rerr.Code != want {
		t.Fatalf("code = %s, want %s", rerr.Code, want)
	}
}
