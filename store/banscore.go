package store

import (
	"encoding/binary"

	bolt "go.etcd.io/bbolt"
)

var bucketBanScores = []byte("peer_ban_scores")

// PeerBanScore is a peer's accumulated misbehavior score, persisted by
// address so a restart does not forget a peer that earned it within the
// previous run. The selector (C7) only disqualifies a peer for the
// lifetime of one run's *selector.Result; a caller wiring a live
// selector.Source implementation folds each disqualification into this
// store via IncreaseBanScore so the next run's peer selection can start
// from where the last one left off instead of re-trusting a peer that was
// already caught serving divergent material.
type PeerBanScore struct {
	Address string
	Score   int32
}

// IncreaseBanScore adds delta (which may be negative, to decay a score
// over time) to peer's persisted ban score and returns the new total.
func (d *DB) IncreaseBanScore(peer string, delta int32) (int32, error) {
	var total int32
	err := d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBanScores)
		current := decodeBanScore(b.Get([]byte(peer)))
		total = current + delta
		return b.Put([]byte(peer), encodeBanScore(total))
	})
	return total, err
}

// GetBanScore returns peer's persisted ban score, or (0, false) if the peer
// has never been scored.
func (d *DB) GetBanScore(peer string) (int32, bool, error) {
	var score int32
	var ok bool
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBanScores).Get([]byte(peer))
		if v == nil {
			return nil
		}
		score, ok = decodeBanScore(v), true
		return nil
	})
	return score, ok, err
}

// ListBanScores returns every peer with a persisted ban score, including a
// peer whose score has been brought back to zero.
func (d *DB) ListBanScores() ([]PeerBanScore, error) {
	var out []PeerBanScore
	err := d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBanScores).ForEach(func(k, v []byte) error {
			out = append(out, PeerBanScore{Address: string(k), Score: decodeBanScore(v)})
			return nil
		})
	})
	return out, err
}

func encodeBanScore(score int32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(score))
	return buf[:]
}

func decodeBanScore(v []byte) int32 {
	if len(v) != 4 {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(v))
}
