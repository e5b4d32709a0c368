// Package store persists the only state spec §6 asks a node to keep across
// restarts: the connected header chain and the current accumulator
// snapshot. There is no UTXO set and no block bodies — a pruned node
// re-derives everything else by re-validating blocks it re-downloads from
// peers (C4/C5), so nothing else needs to survive a restart.
package store

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"utreexo.dev/node/accumulator"
	"utreexo.dev/node/chainparams"
	"utreexo.dev/node/consensus"
	"utreexo.dev/node/headerchain"
	"utreexo.dev/node/wire"
)

var (
	bucketHeaders = []byte("headers_by_hash")
	bucketHeights = []byte("hash_by_height")
	bucketMeta    = []byte("meta")
)

func allBuckets() [][]byte {
	return [][]byte{bucketHeaders, bucketHeights, bucketMeta, bucketBanScores}
}

var metaKeyAccumulator = []byte("accumulator")

// DB is the on-disk store for one network's header chain and accumulator.
type DB struct {
	chainDir string
	db       *bolt.DB
	manifest *Manifest
}

// Open opens (creating if absent) the bbolt database for network under
// datadir. A freshly created datadir has no manifest yet; the caller must
// follow up with InitGenesis before using the store.
func Open(datadir string, network string) (*DB, error) {
	if datadir == "" {
		return nil, fmt.Errorf("datadir required")
	}
	if network == "" {
		return nil, fmt.Errorf("network required")
	}

	chainDir := ChainDir(datadir, network)
	if err := ensureDir(chainDir); err != nil {
		return nil, err
	}
	if err := ensureDir(filepath.Join(chainDir, "db")); err != nil {
		return nil, err
	}

	path := filepath.Join(chainDir, "db", "kv.db")
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}

	d := &DB{chainDir: chainDir, db: bdb}

	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range allBuckets() {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}

	m, err := readManifest(chainDir)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil // uninitialized chain; caller must InitGenesis.
		}
		_ = bdb.Close()
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if m.SchemaVersion > SchemaVersionV1 {
		_ = bdb.Close()
		return nil, fmt.Errorf("manifest schema_version %d > supported %d", m.SchemaVersion, SchemaVersionV1)
	}
	d.manifest = m
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) ChainDir() string { return d.chainDir }

func (d *DB) Manifest() *Manifest {
	if d == nil {
		return nil
	}
	return d.manifest
}

// PutHeader persists header at height, keyed both by hash (for random
// lookup) and by height (so LoadChain can replay it back in order).
func (d *DB) PutHeader(height uint64, header consensus.BlockHeader) error {
	hash := consensus.BlockHash(header)
	encoded := consensus.EncodeBlockHeader(header)
	var heightKey [8]byte
	binary.LittleEndian.PutUint64(heightKey[:], height)
	return d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketHeaders).Put(hash[:], encoded); err != nil {
			return err
		}
		return tx.Bucket(bucketHeights).Put(heightKey[:], hash[:])
	})
}

// GetHeader looks up a previously persisted header by hash.
func (d *DB) GetHeader(hash [32]byte) (consensus.BlockHeader, bool, error) {
	var out consensus.BlockHeader
	var ok bool
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketHeaders).Get(hash[:])
		if v == nil {
			return nil
		}
		h, err := consensus.ParseBlockHeader(v)
		if err != nil {
			return err
		}
		out, ok = h, true
		return nil
	})
	return out, ok, err
}

// PutAccumulator persists the current accumulator snapshot, overwriting
// whatever was there before: spec §6 keeps only the current snapshot, not a
// history of every height's.
func (d *DB) PutAccumulator(stump accumulator.Stump) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(metaKeyAccumulator, wire.EncodeSnapshot(stump))
	})
}

// GetAccumulator returns the persisted accumulator snapshot, if any.
func (d *DB) GetAccumulator() (accumulator.Stump, bool, error) {
	var out accumulator.Stump
	var ok bool
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(metaKeyAccumulator)
		if v == nil {
			return nil
		}
		s, err := wire.DecodeSnapshot(v)
		if err != nil {
			return err
		}
		out, ok = s, true
		return nil
	})
	return out, ok, err
}

// SaveTip persists height, the header chain's new tip and its accumulator in
// one call, then commits a manifest so a restart can pick the saved state
// back up without replaying beyond it. work is the tip's cumulative
// proof-of-work, carried in the manifest purely for operator visibility —
// LoadChain always recomputes it from scratch via Connect.
func (d *DB) SaveTip(height uint64, header consensus.BlockHeader, stump accumulator.Stump, work *big.Int) error {
	if err := d.PutHeader(height, header); err != nil {
		return fmt.Errorf("store: save header: %w", err)
	}
	if err := d.PutAccumulator(stump); err != nil {
		return fmt.Errorf("store: save accumulator: %w", err)
	}
	hash := consensus.BlockHash(header)
	workDec := ""
	if work != nil {
		workDec = work.String()
	}
	m := &Manifest{
		SchemaVersion:        SchemaVersionV1,
		Network:              d.manifestNetwork(),
		TipHashHex:           hex32(hash),
		TipHeight:            height,
		TipCumulativeWorkDec: workDec,
	}
	if err := d.SetManifest(m); err != nil {
		return fmt.Errorf("store: save manifest: %w", err)
	}
	return nil
}

func (d *DB) SetManifest(m *Manifest) error {
	if d == nil {
		return fmt.Errorf("db: nil")
	}
	if err := writeManifestAtomic(d.chainDir, m); err != nil {
		return err
	}
	d.manifest = m
	return nil
}

func (d *DB) manifestNetwork() string {
	if d.manifest != nil {
		return d.manifest.Network
	}
	return ""
}

// LoadChain reconstructs a headerchain.Chain by replaying every persisted
// header, in ascending height order, through Connect. Cumulative work and
// retarget/MTP bookkeeping are recomputed by Connect itself rather than
// trusted from disk, so a chain loaded this way is exactly as validated as
// one built live from the network.
func (d *DB) LoadChain(params chainparams.Params, genesis consensus.BlockHeader) (*headerchain.Chain, error) {
	chain, err := headerchain.NewChain(params, genesis)
	if err != nil {
		return nil, err
	}
	if d.manifest == nil {
		return chain, nil
	}
	tip := d.manifest.TipHeight
	for height := uint64(1); height <= tip; height++ {
		header, ok, err := d.headerAtHeight(height)
		if err != nil {
			return nil, fmt.Errorf("store: load header at height %d: %w", height, err)
		}
		if !ok {
			return nil, fmt.Errorf("store: missing persisted header at height %d", height)
		}
		if _, err := chain.Connect(header); err != nil {
			return nil, fmt.Errorf("store: replaying persisted header at height %d: %w", height, err)
		}
	}
	return chain, nil
}

func (d *DB) headerAtHeight(height uint64) (consensus.BlockHeader, bool, error) {
	var heightKey [8]byte
	binary.LittleEndian.PutUint64(heightKey[:], height)
	var hash [32]byte
	found := false
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketHeights).Get(heightKey[:])
		if v == nil {
			return nil
		}
		copy(hash[:], v)
		found = true
		return nil
	})
	if err != nil || !found {
		return consensus.BlockHeader{}, false, err
	}
	return d.GetHeader(hash)
}

// InitGenesis seeds a brand new datadir with height 0's header and an empty
// accumulator, then commits the first manifest.
func (d *DB) InitGenesis(params chainparams.Params, genesis consensus.BlockHeader) error {
	if consensus.BlockHash(genesis) != params.GenesisHash {
		return fmt.Errorf("store: genesis header does not match %s genesis hash", params.Network)
	}
	if err := d.PutHeader(0, genesis); err != nil {
		return err
	}
	if err := d.PutAccumulator(accumulator.Stump{}); err != nil {
		return err
	}
	return d.SetManifest(&Manifest{
		SchemaVersion: SchemaVersionV1,
		Network:       string(params.Network),
		TipHashHex:    hex32(params.GenesisHash),
		TipHeight:     0,
	})
}

func hex32(b32 [32]byte) string {
	return hex.EncodeToString(b32[:])
}
