// Package report renders terminal tables for the series catalog and
// callout summaries.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/GeorgeStatho/Cloud9Hackathon/internal/callout"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/model"
)

// PrintSeriesSummary prints a one-line summary header for an ingested log.
func PrintSeriesSummary(w io.Writer, s *model.SeriesSummary) {
	fmt.Fprintf(w, "\nSeries: %s  |  Ingested: %s  |  Maps: %s  |  Games: %d  |  Rounds: %d  |  Hash: %s\n\n",
		s.SeriesID, s.IngestDate, strings.Join(s.Maps, ", "), s.GameCount, s.RoundCount, shortHash(s.LogHash))
}

// PrintSeriesList writes the catalog table to the provided writer.
func PrintSeriesList(w io.Writer, series []model.SeriesSummary) {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header("HASH", "SERIES", "INGESTED", "MAPS", "GAMES", "ROUNDS")
	for _, s := range series {
		table.Append(
			shortHash(s.LogHash),
			s.SeriesID,
			s.IngestDate,
			strings.Join(s.Maps, ", "),
			strconv.Itoa(s.GameCount),
			strconv.Itoa(s.RoundCount),
		)
	}
	table.Render()
}

// PrintRoundTable writes the resolved rounds of one log.
// Columns: GAME | MAP | ROUND | ATTACKER | DEFENDER | WINNER
func PrintRoundTable(w io.Writer, rounds []model.RoundRow) {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header("GAME", "MAP", "ROUND", "ATTACKER", "DEFENDER", "WINNER")
	for _, r := range rounds {
		winner := r.Winner
		if winner == "" {
			winner = "—"
		}
		table.Append(
			shortHash(r.GameID),
			r.MapName,
			strconv.Itoa(r.Number),
			r.Attacker,
			r.Defender,
			winner,
		)
	}
	table.Render()
}

// PrintCalloutSummary writes the per-region frequency table of one callout
// summary, most frequent region first.
func PrintCalloutSummary(w io.Writer, s *callout.Summary) {
	fmt.Fprintf(w, "\nPlayer: %s  |  Map: %s  |  At: %.1fs  |  Rounds: %d\n\n",
		s.Entity, s.Map, s.At, s.TotalSamples)

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	regions := make([]string, 0, len(s.Counts))
	for region := range s.Counts {
		regions = append(regions, region)
	}
	sort.Slice(regions, func(i, j int) bool {
		if s.Counts[regions[i]] != s.Counts[regions[j]] {
			return s.Counts[regions[i]] > s.Counts[regions[j]]
		}
		return regions[i] < regions[j]
	})

	table.Header("REGION", "ROUNDS", "FREQ%", "ATK", "ATK%", "DEF", "DEF%")
	for _, region := range regions {
		table.Append(
			region,
			strconv.Itoa(s.Counts[region]),
			fmt.Sprintf("%.1f%%", s.Percentages[region]),
			strconv.Itoa(s.CountsAttack[region]),
			pct(s.PercentagesAttack, region),
			strconv.Itoa(s.CountsDefense[region]),
			pct(s.PercentagesDefense, region),
		)
	}
	table.Render()
}

func pct(m map[string]float64, key string) string {
	if v, ok := m[key]; ok {
		return fmt.Sprintf("%.1f%%", v)
	}
	return "—"
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
