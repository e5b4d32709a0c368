package selector

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"utreexo.dev/node/chainparams"
	"utreexo.dev/node/consensus"
	"utreexo.dev/node/headerchain"
)

// fetchHeaderChains asks every peer for headers from genesis and connects
// them into an independent headerchain.Chain each. A peer whose headers
// fail to connect (bad PoW, bad retarget, stale timestamp, or a transport
// error) is dropped rather than failing the whole run — the partitioning
// step that follows naturally isolates a single bad peer from an honest
// majority.
func fetchHeaderChains(ctx context.Context, params chainparams.Params, genesis consensus.BlockHeader, peers []Peer) (map[PeerID]*headerchain.Chain, map[PeerID]error) {
	chains := make(map[PeerID]*headerchain.Chain, len(peers))
	failures := make(map[PeerID]error)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range peers {
		p := p
		g.Go(func() error {
			headers, err := p.Source.Headers(gctx, [][32]byte{params.GenesisHash})
			if err != nil {
				mu.Lock()
				failures[p.ID] = fmt.Errorf("selector: %s: fetching headers: %w", p.ID, err)
				mu.Unlock()
				return nil
			}
			chain, err := headerchain.NewChain(params, genesis)
			if err != nil {
				mu.Lock()
				failures[p.ID] = fmt.Errorf("selector: %s: seeding chain: %w", p.ID, err)
				mu.Unlock()
				return nil
			}
			for _, h := range headers {
				if _, err := chain.Connect(h); err != nil {
					mu.Lock()
					failures[p.ID] = fmt.Errorf("selector: %s: connecting header: %w", p.ID, err)
					mu.Unlock()
					return nil
				}
			}
			mu.Lock()
			chains[p.ID] = chain
			mu.Unlock()
			return nil
		})
	}
	// Every goroutine reports its own failure rather than returning an
	// error, so g.Wait() never aborts the fan-out early: one bad peer
	// must never block the others from reporting in.
	_ = g.Wait()
	return chains, failures
}

// partition is a group of peers who advertise the identical header chain
// (same tip hash and, consequently, the same cumulative work).
type partition struct {
	tipHash [32]byte
	tip     *headerchain.Entry
	peers   []PeerID
}

// partitionPeers groups peers by their chain's tip hash and orders the
// resulting partitions by the selector's stated preference: greatest
// cumulative work first, then largest peer quorum (spec §4.8).
func partitionPeers(chains map[PeerID]*headerchain.Chain) []partition {
	byTip := make(map[[32]byte]*partition)
	var order [][32]byte
	for id, chain := range chains {
		tip := chain.Tip()
		key := tipKey(chain)
		part, exists := byTip[key]
		if !exists {
			part = &partition{tipHash: key, tip: tip}
			byTip[key] = part
			order = append(order, key)
		}
		part.peers = append(part.peers, id)
	}

	partitions := make([]partition, 0, len(order))
	for _, key := range order {
		partitions = append(partitions, *byTip[key])
	}

	slices.SortFunc(partitions, func(a, b partition) int {
		if cmp := a.tip.Work.Cmp(b.tip.Work); cmp != 0 {
			return -cmp
		}
		return len(b.peers) - len(a.peers)
	})
	return partitions
}

// tipKey identifies a chain by its tip's block hash, recomputed from the
// tip header since headerchain.Entry doesn't store its own hash.
func tipKey(chain *headerchain.Chain) [32]byte {
	return consensus.BlockHash(chain.Tip().Header)
}
