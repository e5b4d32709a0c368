package consensus

import (
	"utreexo.dev/node/script"
)

// maxMoney is 21,000,000 BTC expressed in satoshis (spec §4.4 "TooManyCoins").
const maxMoney = 21_000_000 * 100_000_000

// ScriptFlags carries the per-call script-verification flag set through to
// the script package without consensus depending on script's Flags type
// name directly in its public signatures.
type ScriptFlags = script.Flags

// ConsumeUTXOs removes every input's previous output from utxos, summing
// their values. It enforces "no double spend within the block" by deleting
// as it goes: a second attempt to spend the same outpoint (whether within
// this transaction or reached again from a later one) finds nothing in the
// map and fails. A missing entry surfaces as UtxoAlreadySpent(txid), per
// spec §4.4.
func ConsumeUTXOs(tx *Tx, txid [32]byte, utxos map[Outpoint]UtxoEntry) (uint64, error) {
	var sum uint64
	for _, in := range tx.Inputs {
		entry, ok := utxos[in.PrevOut]
		if !ok {
			return 0, errTx(ErrUtxoAlreadySpent, txid)
		}
		delete(utxos, in.PrevOut)
		var err error
		sum, err = addUint64(sum, entry.Output.Value)
		if err != nil {
			return 0, withTxid(err, txid)
		}
	}
	return sum, nil
}

// validateOutputScript enforces the script-size rule of spec §4.4: every
// output script must satisfy 2 ≤ len ≤ 520 unless it is a v1 witness
// program of length 32 (taproot), which is exempt. Sigop count must not
// exceed 80,000.
func validateOutputScript(sc []byte) error {
	if isTaprootProgram(sc) {
		// exempt from the length floor/ceiling
	} else if len(sc) < minStandardScript || len(sc) > maxStandardScript {
		return errCode(ErrScriptError)
	}
	if script.CountSigops(sc) > maxSigopCount {
		return errCode(ErrScriptError)
	}
	return nil
}

// sumOutputs validates and sums tx's outputs: every value must be strictly
// positive (InvalidOutput), every script must pass validateOutputScript
// (ScriptError), and the sum must not exceed 21,000,000 BTC (TooManyCoins).
func sumOutputs(tx *Tx, txid [32]byte) (uint64, error) {
	var sum uint64
	for _, out := range tx.Outputs {
		if out.Value == 0 {
			return 0, errTx(ErrInvalidOutput, txid)
		}
		if err := validateOutputScript(out.Script); err != nil {
			return 0, withTxid(err, txid)
		}
		var err error
		sum, err = addUint64(sum, out.Value)
		if err != nil {
			return 0, withTxid(err, txid)
		}
		if sum > maxMoney {
			return 0, errTx(ErrTooManyCoins, txid)
		}
	}
	return sum, nil
}

// TxResult is the outcome of validating a single non-coinbase transaction:
// its fee and the weight it contributes to the block total.
type TxResult struct {
	Fee    uint64
	Weight uint64
}

// ValidateTransaction validates tx against utxos per spec §4.4. utxos is
// mutated: every spent entry is removed, enforcing no-double-spend across
// the whole block (the caller passes the same map across every transaction
// in a block). If verifyScript is true, each input's script is checked
// against its previous output's script using flags.
func ValidateTransaction(tx *Tx, utxos map[Outpoint]UtxoEntry, verifyScript bool, flags ScriptFlags) (TxResult, error) {
	txid := TxID(tx)

	inputSum, err := ConsumeUTXOsWithPrevOuts(tx, txid, utxos, verifyScript, flags)
	if err != nil {
		return TxResult{}, err
	}

	outputSum, err := sumOutputs(tx, txid)
	if err != nil {
		return TxResult{}, err
	}

	if outputSum > inputSum {
		return TxResult{}, errTx(ErrNotEnoughMoney, txid)
	}

	weight, err := TxWeight(tx)
	if err != nil {
		return TxResult{}, withTxid(err, txid)
	}

	return TxResult{Fee: inputSum - outputSum, Weight: weight}, nil
}

// ConsumeUTXOsWithPrevOuts behaves like ConsumeUTXOs but additionally runs
// script verification per input when verifyScript is set, failing with
// ScriptValidationError(detail) on the first invalid script. An input whose
// previous output script matches none of script.Verify's recognized
// templates (script.ErrUnsupportedTemplate) is accepted without a
// signature check.
func ConsumeUTXOsWithPrevOuts(tx *Tx, txid [32]byte, utxos map[Outpoint]UtxoEntry, verifyScript bool, flags ScriptFlags) (uint64, error) {
	var sum uint64
	for i, in := range tx.Inputs {
		entry, ok := utxos[in.PrevOut]
		if !ok {
			return 0, errTx(ErrUtxoAlreadySpent, txid)
		}

		if verifyScript {
			sighash, err := ComputeSighash(tx, i, entry.Output.Script)
			if err != nil {
				return 0, withTxid(err, txid)
			}
			if err := script.Verify(flags, entry.Output.Script, in.ScriptSig, in.Witness, sighash); err != nil && err != script.ErrUnsupportedTemplate {
				return 0, errTxDetail(ErrScriptValidationError, txid, err.Error())
			}
		}

		delete(utxos, in.PrevOut)
		var err error
		sum, err = addUint64(sum, entry.Output.Value)
		if err != nil {
			return 0, withTxid(err, txid)
		}
	}
	return sum, nil
}

// TxWeight computes a transaction's weight: 4x the size of its
// non-witness fields plus 1x its witness fields, the standard Bitcoin
// weight formula that makes BlockTooBig (spec §4.6) comparable across
// segwit and non-segwit transactions.
func TxWeight(tx *Tx) (uint64, error) {
	full := EncodeTx(tx)
	witnessBytes := 0
	for _, in := range tx.Inputs {
		witnessBytes += 1 // witness-count compact-size (1 byte for small counts)
		for _, item := range in.Witness {
			witnessBytes += 1 + len(item)
		}
	}
	baseLen := len(full) - witnessBytes
	if baseLen < 0 {
		baseLen = 0
	}
	weight := uint64(baseLen)*4 + uint64(witnessBytes)
	return weight, nil
}
