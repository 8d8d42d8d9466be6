package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GeorgeStatho/Cloud9Hackathon/internal/report"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show <hash-prefix>",
	Short: "Show one ingested log with its resolved rounds",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	return showByHash(db, args[0])
}

func showByHash(db *storage.DB, prefix string) error {
	series, err := db.GetSeriesByPrefix(prefix)
	if err != nil {
		return err
	}
	if series == nil {
		return fmt.Errorf("no log matches hash prefix %q", prefix)
	}

	rows, err := db.GetRounds(series.LogHash)
	if err != nil {
		return err
	}

	report.PrintSeriesSummary(os.Stdout, series)
	report.PrintRoundTable(os.Stdout, rows)
	return nil
}
