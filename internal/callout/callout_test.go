package callout

import (
	"testing"

	"github.com/GeorgeStatho/Cloud9Hackathon/internal/mapcal"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/model"
)

var testCallouts = []mapcal.Callout{
	{RegionName: "Garage", SuperRegionName: "A", Location: mapcal.Location{X: 0, Y: 0}},
	{RegionName: "Mid", SuperRegionName: "", Location: mapcal.Location{X: 100, Y: 0}},
	{RegionName: "Site", SuperRegionName: "B", Location: mapcal.Location{X: 0, Y: 100}},
}

func sample(t, gx, gy float64) model.Sample {
	return model.Sample{T: t, GX: gx, GY: gy}
}

func TestNearest(t *testing.T) {
	r := Nearest(testCallouts, 90, 5)
	if r == nil || r.RegionName != "Mid" {
		t.Fatalf("nearest = %+v, want Mid", r)
	}
	if r.Distance <= 0 {
		t.Errorf("distance = %v, want positive", r.Distance)
	}
	if Nearest(nil, 0, 0) != nil {
		t.Error("empty callout list yielded a region")
	}
}

func TestSampleAt(t *testing.T) {
	samples := []model.Sample{sample(1, 0, 0), sample(5, 1, 1), sample(20, 2, 2)}
	got := SampleAt(samples, 6)
	if got == nil || got.T != 5 {
		t.Fatalf("sample at t=6 has T=%v, want 5", got.T)
	}
	if SampleAt(nil, 6) != nil {
		t.Error("empty round yielded a sample")
	}
}

func testPaths() *model.PlayerPaths {
	return &model.PlayerPaths{
		Entity: "PlayerOne",
		Map:    "Haven",
		Rounds: map[string][]model.Sample{
			"1":  {sample(30, 1, 1)},  // near Garage
			"2":  {sample(30, 99, 1)}, // near Mid
			"3":  {sample(30, 2, 2)},  // near Garage
			"10": {sample(30, 1, 99)}, // near Site
		},
		AttackRounds: map[string][]model.Sample{
			"1": {sample(30, 1, 1)},
			"2": {sample(30, 99, 1)},
		},
		DefenseRounds: map[string][]model.Sample{
			"3":  {sample(30, 2, 2)},
			"10": {sample(30, 1, 99)},
		},
	}
}

func TestSummarize_AllRounds(t *testing.T) {
	s := Summarize(testPaths(), testCallouts, 30, "all")
	if s.TotalSamples != 4 {
		t.Fatalf("total = %d, want 4", s.TotalSamples)
	}
	if got := s.Counts["Garage (A)"]; got != 2 {
		t.Errorf("Garage count = %d, want 2", got)
	}
	if got := s.Counts["Mid"]; got != 1 {
		t.Errorf("Mid count = %d, want 1 (no super region suffix)", got)
	}
	if got := s.Percentages["Garage (A)"]; got != 50 {
		t.Errorf("Garage pct = %v, want 50", got)
	}
	if s.TotalAttackSamples != 2 || s.TotalDefenseSamples != 2 {
		t.Errorf("side totals = %d/%d, want 2/2", s.TotalAttackSamples, s.TotalDefenseSamples)
	}

	// Rounds are ordered numerically, so "10" comes last, not second.
	if got := s.Rounds[len(s.Rounds)-1].RoundID; got != "10" {
		t.Errorf("last round = %q, want 10", got)
	}
}

func TestSummarize_SideSelection(t *testing.T) {
	s := Summarize(testPaths(), testCallouts, 30, "attack")
	if s.TotalSamples != 2 {
		t.Fatalf("attack total = %d, want 2", s.TotalSamples)
	}
	for _, r := range s.Rounds {
		if r.Side != "attack" {
			t.Errorf("round %s side = %q, want attack", r.RoundID, r.Side)
		}
	}

	s = Summarize(testPaths(), testCallouts, 30, "defense")
	if s.TotalSamples != 2 {
		t.Fatalf("defense total = %d, want 2", s.TotalSamples)
	}
}

func TestSummarize_EmptyRoundsSkipped(t *testing.T) {
	paths := &model.PlayerPaths{
		Rounds: map[string][]model.Sample{
			"1": {},
			"2": {sample(30, 1, 1)},
		},
	}
	s := Summarize(paths, testCallouts, 30, "all")
	if s.TotalSamples != 1 {
		t.Fatalf("total = %d, want 1 (empty round skipped)", s.TotalSamples)
	}
}
