// Package selector implements the multi-peer IBD chain/accumulator
// selection protocol (C7, spec §4.8): partition peers by advertised header
// chain and work, cross-check per-height accumulator snapshots by majority
// vote within the winning partition, then download and locally validate
// blocks+proofs, disqualifying any peer whose material fails.
//
// The only capability abstraction is over the peer transport (spec §9
// "the only capability-style abstraction needed is over the peer
// transport"); everything else — header-chain indexing (headerchain),
// block validation (consensus), accumulator update (accumulator) — is
// called directly as a pure, synchronous function.
package selector

import (
	"context"

	"utreexo.dev/node/accumulator"
	"utreexo.dev/node/consensus"
)

// PeerID names one connected peer for the lifetime of a selection run.
type PeerID string

// Source is the capability a peer session exposes to the selector: headers,
// blocks with their spend material, and accumulator snapshot opinions.
// Production code backs this with a live P2P connection (wire package);
// tests back it with an in-memory fixture (spec §9's one injected
// abstraction point).
type Source interface {
	// Headers returns headers connecting from one of the hashes in locator
	// (the first one the peer recognizes) up to this peer's advertised
	// tip, or its own genesis-adjacent headers if locator is empty.
	Headers(ctx context.Context, locator [][32]byte) ([]consensus.BlockHeader, error)

	// Snapshot returns the accumulator this peer claims holds immediately
	// after the block identified by blockHash, or ok=false if the peer
	// has no opinion at that height.
	Snapshot(ctx context.Context, blockHash [32]byte) (snapshot accumulator.Stump, ok bool, err error)

	// Block returns the full block for blockHash together with the
	// inclusion proof covering everything it spends, the leaf hashes
	// being deleted, and the spent outputs' prior material (value,
	// script, creating height/txid/vout) keyed by the outpoints the
	// block's inputs reference — the data a pruned node needs to run
	// C4/C5 locally without ever holding a full UTXO set.
	Block(ctx context.Context, blockHash [32]byte) (BlockMaterial, error)
}

// BlockMaterial is everything a pruned node needs, besides the current
// Stump, to validate one block and fold it into the accumulator (spec
// §4.7/§4.8).
type BlockMaterial struct {
	Block     *consensus.Block
	Proof     accumulator.Proof
	DelHashes []accumulator.NodeHash
	SpentUtxo map[consensus.Outpoint]consensus.UtxoEntry
}

// Peer binds a PeerID to the Source that serves it.
type Peer struct {
	ID     PeerID
	Source Source
}
