package consensus

import "encoding/binary"

// BlockHeaderBytes is the fixed wire size of a Bitcoin-style block header:
// version(4) + prev_hash(32) + merkle_root(32) + time(4) + bits(4) + nonce(4).
const BlockHeaderBytes = 4 + 32 + 32 + 4 + 4 + 4

// EncodeOutput serializes an output as an 8-byte little-endian value
// followed by a varint-prefixed script (spec §6).
func EncodeOutput(o Output) []byte {
	buf := make([]byte, 8, 8+10+len(o.Script))
	binary.LittleEndian.PutUint64(buf, o.Value)
	buf = EncodeCompactSize(buf, uint64(len(o.Script)))
	buf = append(buf, o.Script...)
	return buf
}

func parseOutput(c *cursor) (Output, error) {
	value, err := c.readU64LE()
	if err != nil {
		return Output{}, err
	}
	scriptLenU64, err := c.readCompactSize()
	if err != nil {
		return Output{}, err
	}
	scriptLen, err := toIntLen(scriptLenU64, "script_len")
	if err != nil {
		return Output{}, err
	}
	scriptBytes, err := c.readExact(scriptLen)
	if err != nil {
		return Output{}, err
	}
	return Output{Value: value, Script: append([]byte(nil), scriptBytes...)}, nil
}

// EncodeOutpoint serializes an Outpoint as txid(32) || vout little-endian(4).
func EncodeOutpoint(op Outpoint) []byte {
	buf := make([]byte, 36)
	copy(buf[:32], op.Txid[:])
	binary.LittleEndian.PutUint32(buf[32:], op.Vout)
	return buf
}

func parseOutpoint(c *cursor) (Outpoint, error) {
	var op Outpoint
	if err := c.read32(&op.Txid); err != nil {
		return Outpoint{}, err
	}
	vout, err := c.readU32LE()
	if err != nil {
		return Outpoint{}, err
	}
	op.Vout = vout
	return op, nil
}

func encodeInput(in TxInput) []byte {
	buf := EncodeOutpoint(in.PrevOut)
	buf = EncodeCompactSize(buf, uint64(len(in.ScriptSig)))
	buf = append(buf, in.ScriptSig...)
	var seq [4]byte
	binary.LittleEndian.PutUint32(seq[:], in.Sequence)
	buf = append(buf, seq[:]...)
	buf = EncodeCompactSize(buf, uint64(len(in.Witness)))
	for _, item := range in.Witness {
		buf = EncodeCompactSize(buf, uint64(len(item)))
		buf = append(buf, item...)
	}
	return buf
}

func parseInput(c *cursor) (TxInput, error) {
	op, err := parseOutpoint(c)
	if err != nil {
		return TxInput{}, err
	}
	scriptSigLenU64, err := c.readCompactSize()
	if err != nil {
		return TxInput{}, err
	}
	scriptSigLen, err := toIntLen(scriptSigLenU64, "script_sig_len")
	if err != nil {
		return TxInput{}, err
	}
	scriptSigBytes, err := c.readExact(scriptSigLen)
	if err != nil {
		return TxInput{}, err
	}
	sequence, err := c.readU32LE()
	if err != nil {
		return TxInput{}, err
	}
	witnessCountU64, err := c.readCompactSize()
	if err != nil {
		return TxInput{}, err
	}
	witnessCount, err := toIntLen(witnessCountU64, "witness_count")
	if err != nil {
		return TxInput{}, err
	}
	witness := make([][]byte, 0, witnessCount)
	for i := 0; i < witnessCount; i++ {
		lenU64, err := c.readCompactSize()
		if err != nil {
			return TxInput{}, err
		}
		l, err := toIntLen(lenU64, "witness_item_len")
		if err != nil {
			return TxInput{}, err
		}
		item, err := c.readExact(l)
		if err != nil {
			return TxInput{}, err
		}
		witness = append(witness, append([]byte(nil), item...))
	}
	return TxInput{
		PrevOut:   op,
		ScriptSig: append([]byte(nil), scriptSigBytes...),
		Sequence:  sequence,
		Witness:   witness,
	}, nil
}

// EncodeTx serializes tx into the consensus wire format: version, input
// list (each with its witness stack inline), output list, locktime.
func EncodeTx(tx *Tx) []byte {
	var buf []byte
	var v [4]byte
	binary.LittleEndian.PutUint32(v[:], tx.Version)
	buf = append(buf, v[:]...)

	buf = EncodeCompactSize(buf, uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf = append(buf, encodeInput(in)...)
	}

	buf = EncodeCompactSize(buf, uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		buf = append(buf, EncodeOutput(out)...)
	}

	var lt [4]byte
	binary.LittleEndian.PutUint32(lt[:], tx.Locktime)
	buf = append(buf, lt[:]...)
	return buf
}

// ParseTx decodes a single transaction from b, returning the transaction
// and the number of bytes consumed. Trailing bytes are the caller's concern
// (the consumed count tells it where the next item starts).
func ParseTx(b []byte) (*Tx, int, error) {
	c := newCursor(b)
	tx, err := parseTxFromCursor(c)
	if err != nil {
		return nil, 0, err
	}
	return tx, c.pos, nil
}

func parseTxFromCursor(c *cursor) (*Tx, error) {
	version, err := c.readU32LE()
	if err != nil {
		return nil, err
	}

	inCountU64, err := c.readCompactSize()
	if err != nil {
		return nil, err
	}
	inCount, err := toIntLen(inCountU64, "input_count")
	if err != nil {
		return nil, err
	}
	if inCount == 0 {
		return nil, errDetail(ErrParse, "transaction has no inputs")
	}
	inputs := make([]TxInput, 0, inCount)
	for i := 0; i < inCount; i++ {
		in, err := parseInput(c)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}

	outCountU64, err := c.readCompactSize()
	if err != nil {
		return nil, err
	}
	outCount, err := toIntLen(outCountU64, "output_count")
	if err != nil {
		return nil, err
	}
	if outCount == 0 {
		return nil, errDetail(ErrParse, "transaction has no outputs")
	}
	outputs := make([]Output, 0, outCount)
	for i := 0; i < outCount; i++ {
		out, err := parseOutput(c)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}

	locktime, err := c.readU32LE()
	if err != nil {
		return nil, err
	}

	return &Tx{
		Version:  version,
		Inputs:   inputs,
		Outputs:  outputs,
		Locktime: locktime,
	}, nil
}

// EncodeBlockHeader serializes a BlockHeader to its fixed-size wire form.
func EncodeBlockHeader(h BlockHeader) []byte {
	buf := make([]byte, BlockHeaderBytes)
	off := 0
	binary.LittleEndian.PutUint32(buf[off:], h.Version)
	off += 4
	copy(buf[off:], h.PrevBlockHash[:])
	off += 32
	copy(buf[off:], h.MerkleRoot[:])
	off += 32
	binary.LittleEndian.PutUint32(buf[off:], h.Timestamp)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], h.Bits)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], h.Nonce)
	return buf
}

// ParseBlockHeader decodes a fixed-size BlockHeaderBytes-length header.
func ParseBlockHeader(b []byte) (BlockHeader, error) {
	if len(b) != BlockHeaderBytes {
		return BlockHeader{}, errDetail(ErrParse, "block header: wrong length")
	}
	var h BlockHeader
	c := newCursor(b)
	var err error
	if h.Version, err = c.readU32LE(); err != nil {
		return BlockHeader{}, err
	}
	if err = c.read32(&h.PrevBlockHash); err != nil {
		return BlockHeader{}, err
	}
	if err = c.read32(&h.MerkleRoot); err != nil {
		return BlockHeader{}, err
	}
	if h.Timestamp, err = c.readU32LE(); err != nil {
		return BlockHeader{}, err
	}
	if h.Bits, err = c.readU32LE(); err != nil {
		return BlockHeader{}, err
	}
	if h.Nonce, err = c.readU32LE(); err != nil {
		return BlockHeader{}, err
	}
	return h, nil
}

// ParseBlock decodes header + compact-size tx count + that many transactions.
// It returns the block along with each transaction's txid, in order.
func ParseBlock(b []byte) (*Block, [][32]byte, error) {
	if len(b) < BlockHeaderBytes+1 {
		return nil, nil, errDetail(ErrParse, "block too short")
	}
	header, err := ParseBlockHeader(b[:BlockHeaderBytes])
	if err != nil {
		return nil, nil, err
	}
	c := newCursor(b[BlockHeaderBytes:])
	txCountU64, err := c.readCompactSize()
	if err != nil {
		return nil, nil, err
	}
	txCount, err := toIntLen(txCountU64, "tx_count")
	if err != nil {
		return nil, nil, err
	}
	if txCount == 0 {
		return nil, nil, errCode(ErrEmptyBlock)
	}
	txs := make([]*Tx, 0, txCount)
	txids := make([][32]byte, 0, txCount)
	for i := 0; i < txCount; i++ {
		tx, err := parseTxFromCursor(c)
		if err != nil {
			return nil, nil, err
		}
		txs = append(txs, tx)
		txids = append(txids, TxID(tx))
	}
	if !c.done() {
		return nil, nil, errDetail(ErrParse, "trailing bytes after tx list")
	}
	return &Block{Header: header, Txs: txs}, txids, nil
}
