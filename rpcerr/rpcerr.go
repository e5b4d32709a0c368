// Package rpcerr is the stable-code mapping layer spec §7 describes for the
// RPC collaborator: "RPC methods translate internal errors into stable
// textual codes." The RPC transport itself (request framing, method
// dispatch, JSON encoding) is an explicit collaborator/Non-goal — this
// package only owns the small, pure pieces of validation whose failure
// modes the spec names a stable code for, so a future transport can call
// them directly and forward the resulting code verbatim.
package rpcerr

import "fmt"

// Code is one of the stable textual codes spec §7 names for the RPC
// surface's user-visible behavior.
type Code string

const (
	CodeInvalidAddress               Code = "InvalidAddress"
	CodeInvalidPort                  Code = "InvalidPort"
	CodePeerNotFound                 Code = "PeerNotFound"
	CodeInvalidAddnodeCommand        Code = "InvalidAddnodeCommand"
	CodeInvalidDisconnectNodeCommand Code = "InvalidDisconnectNodeCommand"
	CodeNode                         Code = "Node"
)

// Error is the error type every exported function in this package returns.
// Detail is only ever populated for CodeNode, the one code the spec defines
// as taking a free-text payload ("Node(detail)").
type Error struct {
	Code   Code
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s(%s)", e.Code, e.Detail)
	}
	return string(e.Code)
}

func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

func errCode(code Code) error {
	return &Error{Code: code}
}

// Node wraps an arbitrary collaborator-reported failure (a transport error,
// a node-internal error) as the one stable code that carries free text,
// mirroring the Rust RPC layer's `JsonRpcError::Node(e.to_string())`
// fallback for errors it doesn't otherwise have a named code for.
func Node(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: CodeNode, Detail: err.Error()}
}
