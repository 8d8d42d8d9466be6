package storage

import (
	"path/filepath"
	"testing"

	"github.com/GeorgeStatho/Cloud9Hackathon/internal/model"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testSummary(hash string) *model.SeriesSummary {
	return &model.SeriesSummary{
		LogHash:    hash,
		SeriesID:   "s1",
		IngestID:   "ingest-1",
		IngestDate: "2026-03-01T12:00:00Z",
		Maps:       []string{"Ascent", "Haven"},
		GameCount:  2,
		RoundCount: 41,
	}
}

func TestSeriesRoundTrip(t *testing.T) {
	db := openTemp(t)

	exists, err := db.SeriesExists("aaaa")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("empty catalog claims the hash exists")
	}

	if err := db.InsertSeries(testSummary("aaaa")); err != nil {
		t.Fatal(err)
	}
	exists, err = db.SeriesExists("aaaa")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Fatal("inserted hash not found")
	}

	list, err := db.ListSeries()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("listed %d series, want 1", len(list))
	}
	got := list[0]
	if got.SeriesID != "s1" || got.RoundCount != 41 {
		t.Errorf("got %+v, want stored summary", got)
	}
	if len(got.Maps) != 2 || got.Maps[0] != "Ascent" {
		t.Errorf("maps = %v, want [Ascent Haven]", got.Maps)
	}
}

func TestInsertSeries_Idempotent(t *testing.T) {
	db := openTemp(t)
	if err := db.InsertSeries(testSummary("aaaa")); err != nil {
		t.Fatal(err)
	}
	updated := testSummary("aaaa")
	updated.RoundCount = 50
	if err := db.InsertSeries(updated); err != nil {
		t.Fatal(err)
	}

	list, err := db.ListSeries()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("listed %d series after re-insert, want 1", len(list))
	}
	if list[0].RoundCount != 50 {
		t.Errorf("round count = %d, want replaced value 50", list[0].RoundCount)
	}
}

func TestGetSeriesByPrefix(t *testing.T) {
	db := openTemp(t)
	if err := db.InsertSeries(testSummary("abcd1234")); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertSeries(testSummary("abff5678")); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetSeriesByPrefix("abc")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.LogHash != "abcd1234" {
		t.Fatalf("prefix abc resolved to %+v, want abcd1234", got)
	}

	if _, err := db.GetSeriesByPrefix("ab"); err == nil {
		t.Fatal("ambiguous prefix did not error")
	}

	got, err = db.GetSeriesByPrefix("zz")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("unknown prefix resolved to %+v, want nil", got)
	}
}

func TestRoundRows(t *testing.T) {
	db := openTemp(t)
	if err := db.InsertSeries(testSummary("aaaa")); err != nil {
		t.Fatal(err)
	}

	rows := []model.RoundRow{
		{LogHash: "aaaa", GameID: "g1", MapName: "Haven", Number: 2, Attacker: "Alpha", Defender: "Beta", Winner: "Alpha"},
		{LogHash: "aaaa", GameID: "g1", MapName: "Haven", Number: 1, Attacker: "Alpha", Defender: "Beta"},
	}
	if err := db.InsertRoundRows(rows); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetRounds("aaaa")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rounds, want 2", len(got))
	}
	if got[0].Number != 1 || got[1].Number != 2 {
		t.Errorf("rounds out of order: %d, %d", got[0].Number, got[1].Number)
	}
	if got[0].Winner != "" {
		t.Errorf("round 1 winner = %q, want empty for unresolved", got[0].Winner)
	}
	if got[1].Winner != "Alpha" {
		t.Errorf("round 2 winner = %q, want Alpha", got[1].Winner)
	}
}
