package selector

import (
	"encoding/binary"

	"utreexo.dev/node/accumulator"
)

// snapshotKey collapses a Stump into a comparable value so declarations can
// be grouped without an O(n^2) equality scan.
func snapshotKey(s accumulator.Stump) string {
	buf := make([]byte, 8+len(s.Roots)*32)
	binary.LittleEndian.PutUint64(buf, s.Leaves)
	off := 8
	for _, r := range s.Roots {
		copy(buf[off:], r[:])
		off += 32
	}
	return string(buf)
}

// majoritySnapshot picks the Stump declared by a strict majority of the
// voters in declared (spec §4.8: "the snapshot shared by a strict majority
// of peers in the partition is taken as canonical; divergent peers are
// flagged"). ok is false when no declaration holds a strict majority of the
// peers that voted; Run then orders its candidates without a majority group
// and still validates the height's block locally.
func majoritySnapshot(declared map[PeerID]accumulator.Stump) (snapshot accumulator.Stump, dissenters []PeerID, ok bool) {
	if len(declared) == 0 {
		return accumulator.Stump{}, nil, false
	}

	groups := make(map[string][]PeerID)
	values := make(map[string]accumulator.Stump)
	for id, s := range declared {
		key := snapshotKey(s)
		groups[key] = append(groups[key], id)
		values[key] = s
	}

	var winner string
	for key, ids := range groups {
		if len(ids)*2 > len(declared) {
			winner = key
			break
		}
	}
	if winner == "" {
		return accumulator.Stump{}, nil, false
	}

	for key, ids := range groups {
		if key == winner {
			continue
		}
		dissenters = append(dissenters, ids...)
	}
	return values[winner], dissenters, true
}
