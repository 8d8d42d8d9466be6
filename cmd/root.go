package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	dbPath     string
	mapDataDir string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "gridpaths",
	Short: "Series telemetry trajectory tool",
	Long:  "Reconstruct per-player round trajectories from GRID series event logs.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".gridpaths", "catalog.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to SQLite catalog")
	rootCmd.PersistentFlags().StringVar(&mapDataDir, "data-dir", "", "map calibration directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "tuning config file (YAML)")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(roundsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(calloutsCmd)
	rootCmd.AddCommand(fetchCmd)
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
