package consensus

// minCoinbaseScriptLen and maxCoinbaseScriptLen bound the coinbase input's
// scriptSig length (spec §4.5): BIP34-style height pushes and arbitrary
// extranonce/tag data both fit the standard 2..100 byte range.
const (
	minCoinbaseScriptLen = 2
	maxCoinbaseScriptLen = 100
)

// ValidateCoinbase checks tx as the first transaction of a block per spec
// §4.5: it must be a coinbase (single input, all-zero previous outpoint) and
// its scriptSig must be between 2 and 100 bytes inclusive. It does not check
// the coinbase's output value against the subsidy; that comparison needs the
// block's total fees and is done by the block-level validator.
func ValidateCoinbase(tx *Tx) error {
	txid := TxID(tx)

	if len(tx.Inputs) != 1 || !tx.Inputs[0].IsCoinbasePrevout() {
		return errTx(ErrInvalidCoinbase, txid)
	}

	scriptLen := len(tx.Inputs[0].ScriptSig)
	if scriptLen < minCoinbaseScriptLen || scriptLen > maxCoinbaseScriptLen {
		return errTxDetail(ErrInvalidCoinbase, txid, "Invalid ScriptSig size")
	}

	if len(tx.Outputs) == 0 {
		return errTxDetail(ErrInvalidCoinbase, txid, "no outputs")
	}

	return nil
}

// CoinbaseOutputSum sums a validated coinbase's outputs, the same way
// sumOutputs does for ordinary transactions, so the block validator can
// compare it against subsidy+fees without duplicating the overflow-checked
// summation logic.
func CoinbaseOutputSum(tx *Tx) (uint64, error) {
	txid := TxID(tx)
	var sum uint64
	for _, out := range tx.Outputs {
		var err error
		sum, err = addUint64(sum, out.Value)
		if err != nil {
			return 0, withTxid(err, txid)
		}
	}
	return sum, nil
}
