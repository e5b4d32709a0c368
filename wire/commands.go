package wire

// Command names for every message this package encodes. Mirrors the
// teacher's p2p command-name constant block (node/p2p/messages.go).
const (
	CmdVersion = "version"
	CmdVerack  = "verack"

	CmdGetHeaders = "getheaders"
	CmdHeaders    = "headers"

	CmdInv      = "inv"
	CmdGetData  = "getdata"
	CmdNotFound = "notfound"

	// Utreexo-specific messages (spec §6): a peer asks for, and answers
	// with, an inclusion proof plus del_hashes for a block's spent
	// outputs, and can be asked to state its current accumulator snapshot
	// at a given height for chain-selection comparison (spec §4.8).
	CmdGetUtxoProof       = "getutxoproof"
	CmdUtxoProof          = "utxoproof"
	CmdGetUtreexoSnapshot = "getutreexosnap"
	CmdUtreexoSnapshot    = "utreexosnap"
)
