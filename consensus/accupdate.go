package consensus

import "utreexo.dev/node/accumulator"

// UpdateAccumulator advances stump across one validated block (spec §4.7):
// it builds the block's addition set — the leaf hash of every output that is
// both spendable and never spent by a later input within the same block, in
// deterministic (tx-index, output-index) order — translates the caller's
// delHashes into the accumulator's NodeHash type, and delegates the actual
// forest surgery to accumulator.Modify.
//
// height is the block's height (needed for LeafHash's header_code). delHashes
// are the leaf hashes of the outputs proof proves were in the accumulator
// before this block, supplied by the caller (the node doesn't store the
// forest itself, only stump, so it cannot recompute these on its own).
//
// Grounded on original_source's update_acc: gather the block's own outpoints
// into a set first so an output spent intra-block is never added to the
// accumulator only to be immediately proven-deleted.
func UpdateAccumulator(stump accumulator.Stump, block *Block, height uint64, delHashes [][32]byte, proof accumulator.Proof) (accumulator.Stump, error) {
	blockHash := BlockHash(block.Header)

	spentWithinBlock := make(map[Outpoint]bool)
	for _, tx := range block.Txs {
		for _, in := range tx.Inputs {
			if in.IsCoinbasePrevout() {
				continue
			}
			spentWithinBlock[in.PrevOut] = true
		}
	}

	var additions []accumulator.NodeHash
	for _, tx := range block.Txs {
		txid := TxID(tx)
		isCoinbase := tx.IsCoinbase()
		for vout, out := range tx.Outputs {
			if out.Unspendable() {
				continue
			}
			outpoint := Outpoint{Txid: txid, Vout: uint32(vout)}
			if spentWithinBlock[outpoint] {
				continue
			}
			hash := LeafHash(blockHash, txid, uint32(vout), height, isCoinbase, out)
			additions = append(additions, accumulator.NodeHash(hash))
		}
	}

	deletions := make([]accumulator.NodeHash, len(delHashes))
	for i, h := range delHashes {
		deletions[i] = accumulator.NodeHash(h)
	}

	updated, err := accumulator.Modify(stump, additions, deletions, proof)
	if err != nil {
		switch err {
		case accumulator.ErrInvalidProof:
			return accumulator.Stump{}, errCode(ErrInvalidProof)
		case accumulator.ErrInvalidAccumulator:
			return accumulator.Stump{}, errCode(ErrInvalidAccumulator)
		default:
			return accumulator.Stump{}, errDetail(ErrInvalidAccumulator, err.Error())
		}
	}
	return updated, nil
}
