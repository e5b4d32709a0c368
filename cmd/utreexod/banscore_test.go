package main

import (
	"testing"

	"utreexo.dev/node/selector"
	"utreexo.dev/node/store"
)

func TestRecordDisqualificationsIncreasesPersistedBanScore(t *testing.T) {
	dir := t.TempDir()
	db, err := store.Open(dir, "regtest")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = db.Close() }()

	disqualified := map[selector.PeerID]string{
		"10.0.0.1:8333": "divergent accumulator snapshot at height 3",
	}
	if err := recordDisqualifications(db, disqualified); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := recordDisqualifications(db, disqualified); err != nil {
		t.Fatalf("record again: %v", err)
	}

	score, ok, err := db.GetBanScore("10.0.0.1:8333")
	if err != nil {
		t.Fatalf("get ban score: %v", err)
	}
	if !ok {
		t.Fatal("expected a persisted ban score")
	}
	if score != 2*disqualificationBanPenalty {
		t.Fatalf("score = %d, want %d", score, 2*disqualificationBanPenalty)
	}

	scores, err := db.ListBanScores()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(scores) != 1 || scores[0].Address != "10.0.0.1:8333" {
		t.Fatalf("unexpected ban scores: %+v", scores)
	}
}
