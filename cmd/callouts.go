package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GeorgeStatho/Cloud9Hackathon/internal/callout"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/config"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/mapcal"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/model"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/report"
)

var (
	calloutsAt   float64
	calloutsSide string
	calloutsMap  string
	calloutsJSON bool
)

var calloutsCmd = &cobra.Command{
	Use:   "callouts <paths.json>",
	Short: "Where a player tends to be at a time offset into the round",
	Long: `Reads a path file written by ingest and reports, per round, the named
map region nearest the player at the requested offset, with frequency
percentages overall and per side.

Example:
  gridpaths callouts paths/ab12cd34ef56_PlayerA_Haven.json --at 20 --side attack`,
	Args: cobra.ExactArgs(1),
	RunE: runCallouts,
}

func init() {
	calloutsCmd.Flags().Float64Var(&calloutsAt, "at", 30, "seconds into the round")
	calloutsCmd.Flags().StringVar(&calloutsSide, "side", "all", "round set: all, attack, or defense")
	calloutsCmd.Flags().StringVar(&calloutsMap, "map", "", "map name (default: the map recorded in the paths file)")
	calloutsCmd.Flags().BoolVar(&calloutsJSON, "json", false, "emit the full summary as JSON")
}

func runCallouts(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read paths: %w", err)
	}
	var paths model.PlayerPaths
	if err := json.Unmarshal(raw, &paths); err != nil {
		return fmt.Errorf("decode paths: %w", err)
	}

	tuning, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if mapDataDir != "" {
		tuning.MapDataDir = mapDataDir
	}

	mapName := paths.Map
	if calloutsMap != "" {
		mapName = calloutsMap
	}
	cal := mapcal.NewStore(tuning.MapDataDir).Lookup(mapName)
	if cal == nil {
		return fmt.Errorf("no calibration for map %q under %s", mapName, tuning.MapDataDir)
	}
	if len(cal.Callouts) == 0 {
		return fmt.Errorf("calibration for %q has no callouts", mapName)
	}

	summary := callout.Summarize(&paths, cal.Callouts, calloutsAt, calloutsSide)
	if calloutsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	report.PrintCalloutSummary(os.Stdout, summary)
	return nil
}
