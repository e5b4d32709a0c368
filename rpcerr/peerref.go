package rpcerr

import (
	"net"
	"strconv"
)

// PeerRef is a resolved "ip:port" reference, the form disconnectnode and
// addnode both ultimately need regardless of which way the caller named the
// peer.
type PeerRef struct {
	IP   string
	Port uint16
}

// ResolveAddressOrID implements spec §6's disconnectnode/addnode rule
// verbatim: "Peer references accept either ip:port or peer-id; supplying
// both, or neither, is an error." address is the empty string when not
// supplied; hasID reports whether a peer-id argument was supplied.
//
// When address was given, it parses and validates it. When id was given
// instead, the caller is expected to resolve it against its own peer table
// (this package has no peer-table access) and report CodePeerNotFound
// itself if the id doesn't exist; ResolveAddressOrID's only job for that
// branch is confirming exactly one of the two forms was used.
func ResolveAddressOrID(address string, hasID bool) (ref PeerRef, byID bool, err error) {
	switch {
	case address != "" && hasID:
		return PeerRef{}, false, errCode(CodeInvalidDisconnectNodeCommand)
	case address == "" && !hasID:
		return PeerRef{}, false, errCode(CodeInvalidDisconnectNodeCommand)
	case hasID:
		return PeerRef{}, true, nil
	default:
		ref, err := ParseAddress(address)
		return ref, false, err
	}
}

// ParseAddress parses "host:port", distinguishing a malformed address
// (CodeInvalidAddress) from a syntactically fine host with an out-of-range
// or non-numeric port (CodeInvalidPort) — the spec names these as two
// separate stable codes, so a single catch-all parse failure isn't enough.
func ParseAddress(address string) (PeerRef, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return PeerRef{}, errCode(CodeInvalidAddress)
	}
	if net.ParseIP(host) == nil {
		return PeerRef{}, errCode(CodeInvalidAddress)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		return PeerRef{}, errCode(CodeInvalidPort)
	}
	return PeerRef{IP: host, Port: uint16(port)}, nil
}
