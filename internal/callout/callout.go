// Package callout summarizes where a player tends to be at a given time
// offset into a round, expressed as the nearest named map region.
package callout

import (
	"math"
	"sort"
	"strconv"

	"github.com/GeorgeStatho/Cloud9Hackathon/internal/mapcal"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/model"
)

// Region is the nearest callout to a position.
type Region struct {
	RegionName      string  `json:"regionName"`
	SuperRegionName string  `json:"superRegionName"`
	Distance        float64 `json:"distance"`
}

// RoundRegion is the per-round result: which region the player was nearest
// to at the requested time, and which side the round was played on.
type RoundRegion struct {
	RoundID string  `json:"round"`
	Side    string  `json:"side"`
	T       float64 `json:"t"`
	Region  Region  `json:"region"`
}

// Summary aggregates nearest regions across a player's rounds.
type Summary struct {
	Entity string  `json:"entity"`
	Map    string  `json:"map"`
	At     float64 `json:"at_seconds"`
	Side   string  `json:"side"`

	Rounds []RoundRegion `json:"rounds"`

	Counts      map[string]int     `json:"counts"`
	Percentages map[string]float64 `json:"percentages"`

	CountsAttack       map[string]int     `json:"counts_attack"`
	CountsDefense      map[string]int     `json:"counts_defense"`
	PercentagesAttack  map[string]float64 `json:"percentages_attack"`
	PercentagesDefense map[string]float64 `json:"percentages_defense"`

	TotalSamples        int `json:"total_samples"`
	TotalAttackSamples  int `json:"total_attack_samples"`
	TotalDefenseSamples int `json:"total_defense_samples"`
}

// Nearest returns the callout closest to (gx, gy) by 2D distance, or nil
// when the list has no usable entries.
func Nearest(callouts []mapcal.Callout, gx, gy float64) *Region {
	var best *Region
	bestD2 := math.Inf(1)
	for _, c := range callouts {
		dx := c.Location.X - gx
		dy := c.Location.Y - gy
		d2 := dx*dx + dy*dy
		if d2 < bestD2 {
			bestD2 = d2
			best = &Region{
				RegionName:      c.RegionName,
				SuperRegionName: c.SuperRegionName,
				Distance:        math.Sqrt(d2),
			}
		}
	}
	return best
}

// SampleAt returns the sample whose time is closest to t, or nil for an
// empty round.
func SampleAt(samples []model.Sample, t float64) *model.Sample {
	var best *model.Sample
	bestDT := math.Inf(1)
	for i := range samples {
		dt := math.Abs(samples[i].T - t)
		if dt < bestDT {
			bestDT = dt
			best = &samples[i]
		}
	}
	return best
}

// selectRounds picks the round set for a side selection: "attack",
// "defense", or everything.
func selectRounds(paths *model.PlayerPaths, side string) map[string][]model.Sample {
	switch side {
	case "attack":
		return paths.AttackRounds
	case "defense":
		return paths.DefenseRounds
	default:
		return paths.Rounds
	}
}

// roundSide infers a round's side from which side bucket holds samples
// for it.
func roundSide(roundID string, paths *model.PlayerPaths) string {
	if len(paths.AttackRounds[roundID]) > 0 {
		return "attack"
	}
	if len(paths.DefenseRounds[roundID]) > 0 {
		return "defense"
	}
	return "unknown"
}

// Summarize computes, for each round in the selected set, the callout
// nearest the player's position at `at` seconds, plus per-side counts and
// frequency percentages.
func Summarize(paths *model.PlayerPaths, callouts []mapcal.Callout, at float64, side string) *Summary {
	s := &Summary{
		Entity:             paths.Entity,
		Map:                paths.Map,
		At:                 at,
		Side:               side,
		Counts:             make(map[string]int),
		Percentages:        make(map[string]float64),
		CountsAttack:       make(map[string]int),
		CountsDefense:      make(map[string]int),
		PercentagesAttack:  make(map[string]float64),
		PercentagesDefense: make(map[string]float64),
	}

	rounds := selectRounds(paths, side)
	ids := make([]string, 0, len(rounds))
	for id := range rounds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})

	for _, id := range ids {
		sample := SampleAt(rounds[id], at)
		if sample == nil {
			continue
		}
		region := Nearest(callouts, sample.GX, sample.GY)
		if region == nil {
			continue
		}
		rs := roundSide(id, paths)
		s.Rounds = append(s.Rounds, RoundRegion{
			RoundID: id,
			Side:    rs,
			T:       sample.T,
			Region:  *region,
		})

		key := regionKey(region)
		s.Counts[key]++
		s.TotalSamples++
		switch rs {
		case "attack":
			s.CountsAttack[key]++
			s.TotalAttackSamples++
		case "defense":
			s.CountsDefense[key]++
			s.TotalDefenseSamples++
		}
	}

	fillPercentages(s.Percentages, s.Counts, s.TotalSamples)
	fillPercentages(s.PercentagesAttack, s.CountsAttack, s.TotalAttackSamples)
	fillPercentages(s.PercentagesDefense, s.CountsDefense, s.TotalDefenseSamples)
	return s
}

func regionKey(r *Region) string {
	if r.SuperRegionName == "" {
		return r.RegionName
	}
	return r.RegionName + " (" + r.SuperRegionName + ")"
}

func fillPercentages(dst map[string]float64, counts map[string]int, total int) {
	if total == 0 {
		return
	}
	for key, count := range counts {
		dst[key] = math.Round(float64(count)/float64(total)*10000) / 100
	}
}
