package store

import "testing"

func TestBanScoreAccumulatesAndPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, "regtest")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, ok, err := db.GetBanScore("peer-a"); err != nil || ok {
		t.Fatalf("expected no ban score before any increase, ok=%v err=%v", ok, err)
	}

	total, err := db.IncreaseBanScore("peer-a", 5)
	if err != nil {
		t.Fatalf("increase: %v", err)
	}
	if total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}
	if total, err = db.IncreaseBanScore("peer-a", -2); err != nil || total != 3 {
		t.Fatalf("total = %d, err=%v, want 3", total, err)
	}
	if _, err := db.IncreaseBanScore("peer-b", 7); err != nil {
		t.Fatalf("increase peer-b: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(dir, "regtest")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	score, ok, err := reopened.GetBanScore("peer-a")
	if err != nil || !ok || score != 3 {
		t.Fatalf("peer-a score=%d ok=%v err=%v, want 3/true", score, ok, err)
	}

	scores, err := reopened.ListBanScores()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("len(scores) = %d, want 2", len(scores))
	}
}
