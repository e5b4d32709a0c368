package selector

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"utreexo.dev/node/accumulator"
	"utreexo.dev/node/chainparams"
	"utreexo.dev/node/consensus"
	"utreexo.dev/node/headerchain"
)

// Config parameterizes one selection run.
type Config struct {
	Params       chainparams.Params
	Genesis      consensus.BlockHeader
	VerifyScript bool
	ScriptFlags  consensus.ScriptFlags
	Logger       zerolog.Logger
}

// Result is the outcome of a selection run: the best validated block the
// selector reached and the accumulator state at that point (spec §4.8
// "the best-block pointer advances strictly monotonically in height").
type Result struct {
	TipHeight    uint64
	TipHash      [32]byte
	Accumulator  accumulator.Stump
	Disqualified map[PeerID]string
}

// Run drives the chain selector to completion: partition peers by
// advertised chain and work, cross-check accumulator snapshots by majority
// within the winning partition, download and locally validate blocks, and
// fall back to the next-best partition whenever the current one runs out of
// peers able to supply a block that both validates and matches the
// majority-declared snapshot (spec §4.8).
func Run(ctx context.Context, cfg Config, peers []Peer) (*Result, error) {
	log := cfg.Logger.With().Str("component", "selector").Logger()

	chains, failures := fetchHeaderChains(ctx, cfg.Params, cfg.Genesis, peers)
	disqualified := make(map[PeerID]string, len(failures))
	for id, err := range failures {
		disqualified[id] = err.Error()
		log.Warn().Str("peer", string(id)).Err(err).Msg("peer dropped before partitioning")
	}
	if len(chains) == 0 {
		return nil, fmt.Errorf("selector: no peer produced a connectable header chain")
	}

	sources := make(map[PeerID]Source, len(peers))
	for _, p := range peers {
		sources[p.ID] = p.Source
	}

	partitions := partitionPeers(chains)

	var best Result
	best.Accumulator = accumulator.Stump{}
	best.TipHash = consensus.BlockHash(cfg.Genesis)

	for pi := range partitions {
		part := partitions[pi]
		log.Info().
			Int("partition", pi).
			Int("peers", len(part.peers)).
			Uint64("tip_height", part.tip.Height).
			Msg("attempting partition")

		live := make(map[PeerID]bool, len(part.peers))
		for _, id := range part.peers {
			if _, bad := disqualified[id]; !bad {
				live[id] = true
			}
		}
		if len(live) == 0 {
			continue
		}

		var refChain *headerchain.Chain
		for id := range live {
			refChain = chains[id]
			break
		}

		startHeight := uint64(1)
		stump := accumulator.Stump{}
		if entry, ok := refChain.ByHeight(best.TipHeight); ok && consensus.BlockHash(entry.Header) == best.TipHash {
			startHeight = best.TipHeight + 1
			stump = best.Accumulator
		}

		reachedTip := true
		for height := startHeight; height <= part.tip.Height; height++ {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			entry, ok := refChain.ByHeight(height)
			if !ok {
				reachedTip = false
				break
			}
			blockHash := consensus.BlockHash(entry.Header)

			// The per-height snapshot vote (spec §4.8) is a fast
			// pre-filter, not the final authority: ground truth is
			// whatever C4/C5 compute locally from an actual block.
			// With few peers a strict majority may not exist (a
			// 1-of-2 split), so a missing majority orders candidates
			// rather than aborting the partition outright.
			declared := fetchSnapshots(ctx, sources, live, blockHash)
			majority, dissenters, hasMajority := majoritySnapshot(declared)
			candidates := candidateOrder(live, declared, majority, hasMajority)

			validated := false
			for _, id := range candidates {
				newStump, err := validateBlockFromPeer(ctx, cfg, sources[id], blockHash, height, stump)
				if err != nil {
					delete(live, id)
					disqualified[id] = err.Error()
					log.Warn().Str("peer", string(id)).Uint64("height", height).Err(err).Msg("peer disqualified")
					continue
				}
				stump = newStump
				best.TipHeight = height
				best.TipHash = blockHash
				best.Accumulator = stump
				validated = true
				break
			}
			if !validated {
				log.Warn().Uint64("height", height).Msg("no live peer supplied a valid block; abandoning partition")
				reachedTip = false
				break
			}

			// Now that ground truth is known, flag every peer whose
			// own declared snapshot disagrees with it — including
			// ones the vote itself missed (spec §4.8 "divergent
			// peers are flagged").
			for id, snap := range declared {
				if !live[id] || snapshotKey(snap) == snapshotKey(stump) {
					continue
				}
				delete(live, id)
				disqualified[id] = fmt.Sprintf("divergent accumulator snapshot at height %d", height)
				log.Warn().Str("peer", string(id)).Uint64("height", height).Msg("peer flagged for divergent snapshot")
			}
			if hasMajority {
				for _, id := range dissenters {
					if !live[id] {
						continue
					}
					delete(live, id)
					disqualified[id] = fmt.Sprintf("divergent accumulator snapshot at height %d", height)
				}
			}
			if len(live) == 0 {
				reachedTip = false
				break
			}
		}

		if reachedTip {
			best.Disqualified = disqualified
			log.Info().Uint64("height", best.TipHeight).Msg("partition fully validated to its tip")
			return &best, nil
		}
	}

	best.Disqualified = disqualified
	if best.TipHeight == 0 {
		return &best, fmt.Errorf("selector: no partition produced a fully validated chain")
	}
	return &best, nil
}

// fetchSnapshots asks every live peer for its accumulator opinion at
// blockHash concurrently, one goroutine per peer per spec §5's per-peer
// task model.
func fetchSnapshots(ctx context.Context, sources map[PeerID]Source, live map[PeerID]bool, blockHash [32]byte) map[PeerID]accumulator.Stump {
	declared := make(map[PeerID]accumulator.Stump, len(live))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for id := range live {
		id := id
		src := sources[id]
		g.Go(func() error {
			snap, ok, err := src.Snapshot(gctx, blockHash)
			if err != nil || !ok {
				return nil
			}
			mu.Lock()
			declared[id] = snap
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return declared
}

// validateBlockFromPeer downloads blockHash's material from src and runs
// C4 (block validation) then C5 (accumulator update) locally (spec §4.8:
// "no dishonest peer can cause acceptance of an invalid block or an
// inconsistent accumulator, because C4/C5 are run locally on every block").
func validateBlockFromPeer(ctx context.Context, cfg Config, src Source, blockHash [32]byte, height uint64, stump accumulator.Stump) (accumulator.Stump, error) {
	mat, err := src.Block(ctx, blockHash)
	if err != nil {
		return accumulator.Stump{}, fmt.Errorf("fetching block: %w", err)
	}
	subsidy := cfg.Params.Subsidy(height)
	if _, err := consensus.ValidateBlock(mat.Block, mat.SpentUtxo, subsidy, cfg.VerifyScript, cfg.ScriptFlags); err != nil {
		return accumulator.Stump{}, fmt.Errorf("block validation: %w", err)
	}

	delHashes := make([][32]byte, len(mat.DelHashes))
	for i, h := range mat.DelHashes {
		delHashes[i] = [32]byte(h)
	}
	newStump, err := consensus.UpdateAccumulator(stump, mat.Block, height, delHashes, mat.Proof)
	if err != nil {
		return accumulator.Stump{}, fmt.Errorf("accumulator update: %w", err)
	}
	return newStump, nil
}

// candidateOrder ranks live peers as block-download sources for one height:
// peers in the snapshot-vote majority first, then the rest, each group in
// a deterministic order so otherwise-equivalent peers are tried
// consistently across runs.
func candidateOrder(live map[PeerID]bool, declared map[PeerID]accumulator.Stump, majority accumulator.Stump, hasMajority bool) []PeerID {
	var inMajority, rest []PeerID
	for id := range live {
		if hasMajority {
			if snap, ok := declared[id]; ok && snapshotKey(snap) == snapshotKey(majority) {
				inMajority = append(inMajority, id)
				continue
			}
		}
		rest = append(rest, id)
	}
	slices.Sort(inMajority)
	slices.Sort(rest)
	return append(inMajority, rest...)
}
