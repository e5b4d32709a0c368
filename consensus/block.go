package consensus

// maxBlockWeight is the consensus block-weight ceiling (spec §4.6
// "BlockTooBig"), expressed in the same 4x-non-witness + 1x-witness units as
// TxWeight.
const maxBlockWeight = 4_000_000

// BlockResult is the outcome of validating a block: its total fees (the sum
// collected by every non-coinbase transaction) and its total weight.
type BlockResult struct {
	TotalFee uint64
	Weight   uint64
}

// ValidateBlock validates block against utxos per spec §4.6. utxos must
// already contain every output the block's transactions spend (reconstructed
// by the caller from the accumulator inclusion proof); it is mutated in
// place as inputs are consumed. subsidy is the block-height-appropriate
// subsidy from chainparams.Params.Subsidy.
//
// Validation is fail-fast: the first invalid transaction aborts the whole
// block immediately rather than being recorded and validation continuing.
func ValidateBlock(block *Block, utxos map[Outpoint]UtxoEntry, subsidy uint64, verifyScript bool, flags ScriptFlags) (BlockResult, error) {
	if len(block.Txs) == 0 {
		return BlockResult{}, errCode(ErrEmptyBlock)
	}

	coinbase := block.Txs[0]
	if !coinbase.IsCoinbase() {
		return BlockResult{}, errTx(ErrFirstTxIsNotCoinbase, TxID(coinbase))
	}
	if err := ValidateCoinbase(coinbase); err != nil {
		return BlockResult{}, err
	}

	var totalFee, totalWeight uint64
	for _, tx := range block.Txs[1:] {
		if tx.IsCoinbase() {
			return BlockResult{}, errTx(ErrInvalidCoinbase, TxID(tx))
		}

		result, err := ValidateTransaction(tx, utxos, verifyScript, flags)
		if err != nil {
			return BlockResult{}, err
		}

		var err2 error
		totalFee, err2 = addUint64(totalFee, result.Fee)
		if err2 != nil {
			return BlockResult{}, withTxid(err2, TxID(tx))
		}
		totalWeight, err2 = addUint64(totalWeight, result.Weight)
		if err2 != nil {
			return BlockResult{}, withTxid(err2, TxID(tx))
		}
	}

	coinbaseWeight, err := TxWeight(coinbase)
	if err != nil {
		return BlockResult{}, withTxid(err, TxID(coinbase))
	}
	totalWeight, err = addUint64(totalWeight, coinbaseWeight)
	if err != nil {
		return BlockResult{}, withTxid(err, TxID(coinbase))
	}
	if totalWeight > maxBlockWeight {
		return BlockResult{}, errCode(ErrBlockTooBig)
	}

	coinbaseOut, err := CoinbaseOutputSum(coinbase)
	if err != nil {
		return BlockResult{}, err
	}
	allowed, err := addUint64(subsidy, totalFee)
	if err != nil {
		return BlockResult{}, withTxid(err, TxID(coinbase))
	}
	if coinbaseOut > allowed {
		return BlockResult{}, errTx(ErrBadCoinbaseOutValue, TxID(coinbase))
	}

	return BlockResult{TotalFee: totalFee, Weight: totalWeight}, nil
}
