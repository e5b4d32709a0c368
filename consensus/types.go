package consensus

// Outpoint identifies a single transaction output uniquely across the chain
// (spec §3 "Outpoint").
type Outpoint struct {
	Txid [32]byte
	Vout uint32
}

// Output is a transaction output: a satoshi value plus a bounded script.
type Output struct {
	Value  uint64
	Script []byte
}

const (
	opReturn           = 0x6a
	maxUnspendableLen  = 10_000
	minStandardScript  = 2
	maxStandardScript  = 520
	taprootProgramLen  = 32
	taprootWitnessVer1 = 0x51 // OP_1, the v1 witness-version push
	maxSigopCount      = 80_000
)

// Unspendable reports whether an output can never be added to the
// accumulator, per spec §3: script length exceeds 10,000 bytes, or the
// first byte is OP_RETURN (0x6a).
func (o Output) Unspendable() bool {
	if len(o.Script) > maxUnspendableLen {
		return true
	}
	if len(o.Script) > 0 && o.Script[0] == opReturn {
		return true
	}
	return false
}

// isTaprootProgram reports whether script is a v1 witness program: exactly
// OP_1 followed by a 32-byte push (34 bytes total: 0x51 0x20 <32 bytes>).
func isTaprootProgram(script []byte) bool {
	return len(script) == 2+taprootProgramLen &&
		script[0] == taprootWitnessVer1 &&
		script[1] == taprootProgramLen
}

// TxInput spends a prior output identified by PrevOut, authorized by
// ScriptSig/Witness and subject to replace-by-fee signaling via Sequence.
type TxInput struct {
	PrevOut   Outpoint
	ScriptSig []byte
	Sequence  uint32
	Witness   [][]byte
}

// zeroTxid is the all-zero previous txid that marks a coinbase input.
var zeroTxid [32]byte

// IsCoinbasePrevout reports whether in's previous outpoint is the all-zero
// marker used by coinbase transactions (spec §3 "Transaction").
func (in TxInput) IsCoinbasePrevout() bool {
	return in.PrevOut.Txid == zeroTxid
}

// Tx is a Bitcoin-style transaction: version, locktime, a non-empty ordered
// input list, and a non-empty ordered output list.
type Tx struct {
	Version  uint32
	Locktime uint32
	Inputs   []TxInput
	Outputs  []Output
}

// IsCoinbase reports whether tx is a coinbase transaction: its sole input's
// previous outpoint has an all-zero txid (spec §3).
func (tx *Tx) IsCoinbase() bool {
	return len(tx.Inputs) == 1 && tx.Inputs[0].IsCoinbasePrevout()
}

// BlockHeader is the fixed-size, 80-byte-equivalent Bitcoin block header.
type BlockHeader struct {
	Version       uint32
	PrevBlockHash [32]byte
	MerkleRoot    [32]byte
	Timestamp     uint32
	Bits          uint32
	Nonce         uint32
}

// Block is a header plus an ordered transaction list (spec §3 "Block").
type Block struct {
	Header BlockHeader
	Txs    []*Tx
}

// UtxoEntry is the materialized value of a single unspent output, keyed by
// Outpoint in the per-block UTXO map the caller reconstructs from the
// inclusion proof's leaves before calling the validators.
type UtxoEntry struct {
	Output       Output
	Height       uint64
	IsCoinbase   bool
	BlockHash    [32]byte
	CreatingTxid [32]byte
	CreatingVout uint32
}
