package headerchain

import (
	"bytes"
	"fmt"
	"math/big"
	"slices"

	"utreexo.dev/node/chainparams"
	"utreexo.dev/node/consensus"
)

// medianTimePastWindow is the number of trailing blocks a header's
// timestamp is checked against (Bitcoin's standard 11-block MTP rule).
const medianTimePastWindow = 11

// Entry is one connected header plus the chain metadata derived from its
// ancestry: height and cumulative work from genesis.
type Entry struct {
	Header consensus.BlockHeader
	Height uint64
	Work   *big.Int
}

// Chain is the parent-linked header index described in spec §9: headers
// form a parent-linked list keyed by hash, with a side height→hash map and a
// single best-work tip. It holds no UTXO or accumulator state; persistence
// of this index is the `store` package's concern.
type Chain struct {
	params   chainparams.Params
	byHash   map[[32]byte]*Entry
	byHeight map[uint64][32]byte
	tipHash  [32]byte
}

// NewChain seeds a header index at params' genesis, with height 0 and zero
// cumulative work attributed to the genesis block itself (work accrues from
// the first header connected on top of it).
func NewChain(params chainparams.Params, genesis consensus.BlockHeader) (*Chain, error) {
	hash := consensus.BlockHash(genesis)
	if hash != params.GenesisHash {
		return nil, fmt.Errorf("headerchain: genesis header does not match %s genesis hash", params.Network)
	}
	c := &Chain{
		params:   params,
		byHash:   map[[32]byte]*Entry{},
		byHeight: map[uint64][32]byte{},
		tipHash:  hash,
	}
	c.byHash[hash] = &Entry{Header: genesis, Height: 0, Work: new(big.Int)}
	c.byHeight[0] = hash
	return c, nil
}

// Tip returns the entry with the greatest cumulative work currently known.
func (c *Chain) Tip() *Entry {
	return c.byHash[c.tipHash]
}

// ByHash looks up a previously connected header by its hash.
func (c *Chain) ByHash(hash [32]byte) (*Entry, bool) {
	e, ok := c.byHash[hash]
	return e, ok
}

// ByHeight looks up the header at height along the current best-work tip's
// ancestry. It does not resolve headers on a losing fork.
func (c *Chain) ByHeight(height uint64) (*Entry, bool) {
	hash, ok := c.byHeight[height]
	if !ok {
		return nil, false
	}
	return c.byHash[hash]
}

// Connect validates and appends header on top of its advertised parent,
// checking proof-of-work against its own bits and, at retarget boundaries,
// that those bits are the ones Retarget would have produced. The best-work
// tip advances only if header's chain now carries more cumulative work than
// the prior tip (spec §4.8's greatest-accumulated-work rule, applied here to
// single-chain extension as well as competing forks).
func (c *Chain) Connect(header consensus.BlockHeader) (*Entry, error) {
	parent, ok := c.byHash[header.PrevBlockHash]
	if !ok {
		return nil, fmt.Errorf("headerchain: unknown parent %x", header.PrevBlockHash)
	}
	height := parent.Height + 1

	target, err := CompactToTarget(header.Bits)
	if err != nil {
		return nil, err
	}
	hash := consensus.BlockHash(header)
	if bytes.Compare(hash[:], target[:]) >= 0 {
		return nil, fmt.Errorf("headerchain: header %x fails its own proof-of-work target", hash)
	}

	expectedBits, err := c.expectedBits(height, parent)
	if err != nil {
		return nil, err
	}
	if header.Bits != expectedBits {
		return nil, fmt.Errorf("headerchain: header %x carries bits %08x, expected %08x", hash, header.Bits, expectedBits)
	}

	if mtp, ok := c.medianTimePast(parent); ok && uint64(header.Timestamp) <= mtp {
		return nil, fmt.Errorf("headerchain: header %x timestamp %d does not exceed median time past %d", hash, header.Timestamp, mtp)
	}

	blockWork, err := WorkFromBits(header.Bits)
	if err != nil {
		return nil, err
	}
	work := new(big.Int).Add(parent.Work, blockWork)

	entry := &Entry{Header: header, Height: height, Work: work}
	c.byHash[hash] = entry

	if tip := c.Tip(); work.Cmp(tip.Work) > 0 {
		oldTipHeight := tip.Height
		c.tipHash = hash
		// Re-point the height map along the new tip's ancestry until it
		// meets an entry already on it, then drop heights above the new tip.
		for cur, h := entry, hash; c.byHeight[cur.Height] != h; {
			c.byHeight[cur.Height] = h
			h = cur.Header.PrevBlockHash
			cur = c.byHash[h]
		}
		for ht := height + 1; ht <= oldTipHeight; ht++ {
			delete(c.byHeight, ht)
		}
	}
	return entry, nil
}

// expectedBits returns parent's bits unless height starts a new retarget
// epoch, in which case it recomputes the next target from the epoch's first
// header and parent's timestamp as the epoch's last (spec §4.3).
func (c *Chain) expectedBits(height uint64, parent *Entry) (uint32, error) {
	if c.params.RetargetWindow == 0 || height%c.params.RetargetWindow != 0 {
		return parent.Header.Bits, nil
	}
	epochStartHeight := height - c.params.RetargetWindow
	epochStart, ok := c.ByHeight(epochStartHeight)
	if !ok {
		return 0, fmt.Errorf("headerchain: missing epoch-start header at height %d", epochStartHeight)
	}
	return Retarget(c.params, epochStart.Header.Bits, uint64(epochStart.Header.Timestamp), uint64(parent.Header.Timestamp))
}

// medianTimePast returns the median timestamp of the up-to-11 blocks ending
// at parent, walking parent's own ancestry by hash (not the tip's byHeight
// side map) so the check is correct for headers extending a losing fork too.
// parent itself is always counted, so a header on top of genesis is checked
// against the genesis timestamp alone; ok is false only for a nil parent.
func (c *Chain) medianTimePast(parent *Entry) (uint64, bool) {
	timestamps := make([]uint64, 0, medianTimePastWindow)
	for cur := parent; cur != nil && len(timestamps) < medianTimePastWindow; {
		timestamps = append(timestamps, uint64(cur.Header.Timestamp))
		next, ok := c.byHash[cur.Header.PrevBlockHash]
		if !ok {
			break
		}
		cur = next
	}
	if len(timestamps) == 0 {
		return 0, false
	}
	slices.Sort(timestamps)
	return timestamps[(len(timestamps)-1)/2], true
}
