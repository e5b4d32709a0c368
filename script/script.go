// Package script implements the minimal script-template recognizer and
// signature-verification step that backs the "if script verification is
// enabled" clause of the transaction validator (spec §4.4). It is not a
// general Bitcoin Script interpreter: it recognizes the handful of output
// templates the spec names explicitly (P2PKH-shaped legacy scripts, a
// P2WPKH-shaped v0 witness program, and the taproot v1 witness program) and
// verifies the one signature each template carries.
package script

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
)

// Flags mirrors Bitcoin Core's per-input script verification flag bitmask
// (spec §4.4 "under the supplied flags"). Only the flags this package acts
// on are modeled; unrecognized bits are accepted and ignored, matching how a
// pruned validator defers soft-fork flags it doesn't need to gate on.
type Flags uint32

const (
	// FlagVerifyP2SH enables legacy P2SH-wrapped redemption (unused by the
	// templates this package recognizes, kept for flag-set compatibility).
	FlagVerifyP2SH Flags = 1 << iota
	// FlagVerifyWitness enables segwit witness-program verification.
	FlagVerifyWitness
	// FlagVerifyTaproot enables taproot (BIP341-style) verification.
	FlagVerifyTaproot
)

// Opcodes used by the recognized templates.
const (
	opDup         = 0x76
	opHash160     = 0xa9
	opEqualVerify = 0x88
	opCheckSig    = 0xac
	opPushHash160 = 0x14 // push 20 bytes
	op0           = 0x00
	op1           = 0x51
	pushProgram32 = 0x20 // push 32 bytes
)

// ErrUnsupportedTemplate is returned when a scriptPubKey doesn't match any
// template this package recognizes; callers should treat that as
// "can't verify, rely on the proof"	rather than as a forged signature.
var ErrUnsupportedTemplate = fmt.Errorf("script: unsupported template")

// hash160 is RIPEMD160(SHA256(x)); Bitcoin's standard pubkey-hash function.
// No ecosystem library among the examples provides it bundled with
// secp256k1 verification, so it is computed directly from stdlib
// crypto/sha256 and golang.org/x/crypto/ripemd160 (see DESIGN.md).
func hash160(b []byte) []byte {
	sum := sha256.Sum256(b)
	return ripemd160Sum(sum[:])
}

// Verify checks the single signature carried by scriptSig/witness against
// prevOutScript for the given sighash, dispatching on the recognized
// template. It returns ErrUnsupportedTemplate for scripts this package
// doesn't model, and a verification error for a recognized-but-invalid
// signature.
func Verify(flags Flags, prevOutScript, scriptSig []byte, witness [][]byte, sighash [32]byte) error {
	switch {
	case flags&FlagVerifyTaproot != 0 && isTaprootProgram(prevOutScript):
		return verifyTaproot(prevOutScript, witness, sighash)
	case flags&FlagVerifyWitness != 0 && isP2WPKH(prevOutScript):
		return verifyP2WPKH(prevOutScript, witness, sighash)
	case isP2PKH(prevOutScript):
		return verifyP2PKH(prevOutScript, scriptSig, sighash)
	default:
		return ErrUnsupportedTemplate
	}
}

func isTaprootProgram(script []byte) bool {
	return len(script) == 34 && script[0] == op1 && script[1] == pushProgram32
}

func isP2WPKH(script []byte) bool {
	return len(script) == 22 && script[0] == op0 && script[1] == opPushHash160
}

func isP2PKH(script []byte) bool {
	return len(script) == 25 &&
		script[0] == opDup && script[1] == opHash160 &&
		script[2] == opPushHash160 && script[23] == opEqualVerify && script[24] == opCheckSig
}

// verifyTaproot verifies a BIP340-style Schnorr signature against the
// x-only public key embedded in the v1 witness program, per the taproot
// exemption in spec §4.4 ("a v1 witness program of length 32 ... is
// allowed").
func verifyTaproot(prevOutScript []byte, witness [][]byte, sighash [32]byte) error {
	if len(witness) == 0 {
		return fmt.Errorf("script: taproot: empty witness")
	}
	sig := witness[0]
	xOnly := prevOutScript[2:34]
	pub, err := schnorr.ParsePubKey(xOnly)
	if err != nil {
		return fmt.Errorf("script: taproot: bad pubkey: %w", err)
	}
	parsedSig, err := schnorr.ParseSignature(sig)
	if err != nil {
		return fmt.Errorf("script: taproot: bad signature: %w", err)
	}
	if !parsedSig.Verify(sighash[:], pub) {
		return fmt.Errorf("script: taproot: signature verification failed")
	}
	return nil
}

// verifyP2WPKH verifies an ECDSA signature against a compressed pubkey
// whose HASH160 matches the 20-byte witness program.
func verifyP2WPKH(prevOutScript []byte, witness [][]byte, sighash [32]byte) error {
	if len(witness) != 2 {
		return fmt.Errorf("script: p2wpkh: expected 2 witness items, got %d", len(witness))
	}
	sigDER, pubkeyBytes := witness[0], witness[1]
	programHash := prevOutScript[2:22]
	if string(hash160(pubkeyBytes)) != string(programHash) {
		return fmt.Errorf("script: p2wpkh: pubkey does not match witness program")
	}
	return verifyECDSA(pubkeyBytes, sigDER, sighash)
}

// verifyP2PKH verifies a legacy <sig><pubkey> scriptSig against a sighash;
// the caller is expected to have already confirmed the scriptPubKey is a
// standard P2PKH template, and this checks that the pubkey hashes to its
// embedded hash before verifying the signature.
func verifyP2PKH(prevOutScript, scriptSig []byte, sighash [32]byte) error {
	sigDER, pubkeyBytes, err := splitSigPubkey(scriptSig)
	if err != nil {
		return err
	}
	if string(hash160(pubkeyBytes)) != string(prevOutScript[3:23]) {
		return fmt.Errorf("script: p2pkh: pubkey does not match embedded hash")
	}
	return verifyECDSA(pubkeyBytes, sigDER, sighash)
}

// splitSigPubkey parses the two length-prefixed pushes of a standard
// <sig><pubkey> scriptSig.
func splitSigPubkey(scriptSig []byte) (sig, pubkey []byte, err error) {
	if len(scriptSig) < 2 {
		return nil, nil, fmt.Errorf("script: p2pkh: scriptSig too short")
	}
	sigLen := int(scriptSig[0])
	if 1+sigLen >= len(scriptSig) {
		return nil, nil, fmt.Errorf("script: p2pkh: truncated signature push")
	}
	sig = scriptSig[1 : 1+sigLen]
	rest := scriptSig[1+sigLen:]
	if len(rest) < 1 {
		return nil, nil, fmt.Errorf("script: p2pkh: missing pubkey push")
	}
	pubkeyLen := int(rest[0])
	if 1+pubkeyLen != len(rest) {
		return nil, nil, fmt.Errorf("script: p2pkh: truncated pubkey push")
	}
	pubkey = rest[1:]
	return sig, pubkey, nil
}

func verifyECDSA(pubkeyBytes, sigDER []byte, sighash [32]byte) error {
	pub, err := secp256k1.ParsePubKey(pubkeyBytes)
	if err != nil {
		return fmt.Errorf("script: bad pubkey: %w", err)
	}
	sig, err := ecdsa.ParseDERSignature(sigDER)
	if err != nil {
		return fmt.Errorf("script: bad signature: %w", err)
	}
	if !sig.Verify(sighash[:], pub) {
		return fmt.Errorf("script: ecdsa signature verification failed")
	}
	return nil
}
