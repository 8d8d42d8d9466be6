package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/GeorgeStatho/Cloud9Hackathon/internal/grid"
)

// fetch command flags.
var (
	// fetchTeam resolves a team name to its roster before downloading.
	fetchTeam string
	// fetchOut is where downloaded series files land.
	fetchOut string
	// fetchWorkers bounds concurrent downloads.
	fetchWorkers int
)

// fetchCmd downloads series event logs from the GRID file-download API.
var fetchCmd = &cobra.Command{
	Use:   "fetch <series-id> [more ids...]",
	Short: "Download series event logs from GRID",
	Long: `Downloads the available files of each series. The API key is read from
the GRID_API_KEY environment variable.

Examples:
  gridpaths fetch 2847219 --out logs
  gridpaths fetch --team "Cloud9"`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchTeam, "team", "", "look a team up and print its roster instead of downloading")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "logs", "output directory for downloaded files")
	fetchCmd.Flags().IntVar(&fetchWorkers, "workers", 3, "concurrent downloads")
}

func runFetch(cmd *cobra.Command, args []string) error {
	apiKey := os.Getenv("GRID_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GRID_API_KEY is not set")
	}
	client := grid.NewClient(apiKey)

	if fetchTeam != "" {
		return printRoster(client, fetchTeam)
	}
	if len(args) == 0 {
		return fmt.Errorf("no series ids given")
	}
	if err := os.MkdirAll(fetchOut, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(fetchWorkers)
	for _, seriesID := range args {
		g.Go(func() error {
			return fetchSeries(client, seriesID)
		})
	}
	return g.Wait()
}

// fetchSeries downloads every ready file of one series.
func fetchSeries(client *grid.Client, seriesID string) error {
	files, err := client.ListSeriesFiles(seriesID)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stdout, "Series %s has no files.\n", seriesID)
		return nil
	}
	for _, file := range files {
		if !strings.EqualFold(file.Status, "ready") {
			fmt.Fprintf(os.Stdout, "Series %s: %s is %s, skipping.\n", seriesID, file.FileName, file.Status)
			continue
		}
		dest := filepath.Join(fetchOut, file.FileName)
		fmt.Fprintf(os.Stdout, "Downloading %s -> %s\n", file.ID, dest)
		if err := client.DownloadFile(file.FullURL, dest); err != nil {
			return err
		}
	}
	return nil
}

func printRoster(client *grid.Client, name string) error {
	team, err := client.FindTeam(name)
	if err != nil {
		return err
	}
	if team == nil {
		return fmt.Errorf("no team matches %q", name)
	}
	players, err := client.TeamRoster(team.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Team: %s (id %s)\n", team.Name, team.ID)
	for _, p := range players {
		fmt.Fprintf(os.Stdout, "  %-20s %s\n", p.Nickname, p.ID)
	}
	return nil
}
