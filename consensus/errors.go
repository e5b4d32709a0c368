package consensus

import (
	"encoding/hex"
	"fmt"
)

// ErrorCode names one entry of the block/transaction error taxonomy (spec
// §7). Errors are returned as *ValidationError rather than compared against
// sentinels, matching the teacher's ErrorCode/txerr idiom.
type ErrorCode string

const (
	ErrEmptyBlock           ErrorCode = "EmptyBlock"
	ErrBlockTooBig          ErrorCode = "BlockTooBig"
	ErrBadCoinbaseOutValue  ErrorCode = "BadCoinbaseOutValue"
	ErrFirstTxIsNotCoinbase ErrorCode = "FirstTxIsNotCoinbase"
	ErrInvalidCoinbase      ErrorCode = "InvalidCoinbase"

	ErrNotEnoughMoney ErrorCode = "NotEnoughMoney"
	ErrTooManyCoins   ErrorCode = "TooManyCoins"
	ErrInvalidOutput  ErrorCode = "InvalidOutput"

	ErrUtxoAlreadySpent ErrorCode = "UtxoAlreadySpent"

	ErrScriptError           ErrorCode = "ScriptError"
	ErrScriptValidationError ErrorCode = "ScriptValidationError"

	ErrInvalidProof       ErrorCode = "InvalidProof"
	ErrInvalidAccumulator ErrorCode = "InvalidAccumulator"

	ErrParse ErrorCode = "ParseError"
)

// ValidationError is the error type returned by every exported consensus
// function. Code is always set. Txid is set once the error has been wrapped
// with the offending transaction's id (spec §7: "transaction-scoped errors
// are wrapped with the offending txid before surfacing to the block layer").
// Detail carries the free-text reason for the two codes the spec defines as
// taking one: InvalidCoinbase(detail) and ScriptValidationError(detail).
type ValidationError struct {
	Code   ErrorCode
	Txid   [32]byte
	HasTx  bool
	Detail string
}

func (e *ValidationError) Error() string {
	switch {
	case e.HasTx && e.Detail != "":
		return fmt.Sprintf("%s(%s): %s", e.Code, hex.EncodeToString(e.Txid[:]), e.Detail)
	case e.HasTx:
		return fmt.Sprintf("%s(%s)", e.Code, hex.EncodeToString(e.Txid[:]))
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	default:
		return string(e.Code)
	}
}

// Is lets errors.Is(err, &ValidationError{Code: ErrNotEnoughMoney}) match on
// the ErrorCode alone, ignoring Txid and Detail.
func (e *ValidationError) Is(target error) bool {
	te, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

func errCode(code ErrorCode) error {
	return &ValidationError{Code: code}
}

func errDetail(code ErrorCode, detail string) error {
	return &ValidationError{Code: code, Detail: detail}
}

// errTx is errCode with the txid already attached, for call sites that know
// the offending transaction up front.
func errTx(code ErrorCode, txid [32]byte) error {
	return &ValidationError{Code: code, Txid: txid, HasTx: true}
}

// errTxDetail is errDetail with the txid already attached.
func errTxDetail(code ErrorCode, txid [32]byte, detail string) error {
	return &ValidationError{Code: code, Txid: txid, HasTx: true, Detail: detail}
}

// withTxid attaches txid to err if it is a *ValidationError without one yet.
// This is the single fail-fast seam for the spec §9 Open Question: the
// source this repo is distilled from sometimes computes a per-transaction
// error and then discards it instead of returning early. Every call site in
// this package returns the first error immediately instead of continuing,
// so no result is ever silently dropped.
func withTxid(err error, txid [32]byte) error {
	if err == nil {
		return nil
	}
	if ve, ok := err.(*ValidationError); ok && !ve.HasTx {
		ve.Txid = txid
		ve.HasTx = true
	}
	return err
}
