package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GeorgeStatho/Cloud9Hackathon/internal/report"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all ingested logs",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	series, err := db.ListSeries()
	if err != nil {
		return fmt.Errorf("list series: %w", err)
	}
	if len(series) == 0 {
		fmt.Fprintln(os.Stdout, "No logs ingested yet. Run 'gridpaths ingest <events.jsonl>' to add one.")
		return nil
	}
	report.PrintSeriesList(os.Stdout, series)
	return nil
}
