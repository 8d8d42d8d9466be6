package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GeorgeStatho/Cloud9Hackathon/internal/model"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/report"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/storage"
)

var (
	roundsMap  string
	roundsTeam string
	roundsJSON bool
)

// roundsCmd is the round drill-down for one ingested log.
var roundsCmd = &cobra.Command{
	Use:   "rounds <hash-prefix>",
	Short: "Per-round side and winner breakdown for one log",
	Args:  cobra.ExactArgs(1),
	RunE:  runRounds,
}

func init() {
	roundsCmd.Flags().StringVar(&roundsMap, "map", "", "only show rounds on this map")
	roundsCmd.Flags().StringVar(&roundsTeam, "team", "", "only show rounds involving this team")
	roundsCmd.Flags().BoolVar(&roundsJSON, "json", false, "emit the round table as JSON")
}

func runRounds(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	series, err := db.GetSeriesByPrefix(args[0])
	if err != nil {
		return err
	}
	if series == nil {
		return fmt.Errorf("no log matches hash prefix %q", args[0])
	}

	rows, err := db.GetRounds(series.LogHash)
	if err != nil {
		return err
	}
	rows = filterRounds(rows, roundsMap, roundsTeam)
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "No rounds match the filters.")
		return nil
	}
	if roundsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	report.PrintRoundTable(os.Stdout, rows)
	return nil
}

// filterRounds applies --map and --team filters.
func filterRounds(rows []model.RoundRow, mapName, team string) []model.RoundRow {
	mapName = strings.ToLower(mapName)
	team = strings.ToLower(team)
	var out []model.RoundRow
	for _, r := range rows {
		if mapName != "" && strings.ToLower(r.MapName) != mapName {
			continue
		}
		if team != "" &&
			!strings.Contains(strings.ToLower(r.Attacker), team) &&
			!strings.Contains(strings.ToLower(r.Defender), team) {
			continue
		}
		out = append(out, r)
	}
	return out
}
