package cmd

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/GeorgeStatho/Cloud9Hackathon/internal/config"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/feed"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/mapcal"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/model"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/report"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/rounds"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/storage"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/track"
)

var (
	ingestPlayers string
	ingestMap     string
	ingestSeconds float64
	ingestOut     string
	ingestWorkers int
	ingestForce   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <events.jsonl|.zip|.zst|dir> [more logs...]",
	Short: "Reconstruct player trajectories from event logs",
	Long: `Runs the two reconstruction passes over each log: first the round/side
resolver, then the full trajectory pass. Without --players the full roster
seen in the log is reconstructed. A directory argument expands to the logs
inside it; independent logs are processed concurrently. Resolved rounds go
into the catalog; per-player paths are written as JSON files.

Examples:
  gridpaths ingest events.jsonl --players "PlayerA,PlayerB"
  gridpaths ingest logs/ --map Haven --seconds 30`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestPlayers, "players", "", "comma-separated player names or ids (default: full roster)")
	ingestCmd.Flags().StringVar(&ingestMap, "map", "", "only reconstruct rounds on this map")
	ingestCmd.Flags().Float64Var(&ingestSeconds, "seconds", 0, "trailing window seconds (overrides config)")
	ingestCmd.Flags().StringVar(&ingestOut, "out", "paths", "output directory for path JSON files")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 4, "concurrent logs processed")
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "re-ingest logs already in the catalog")
}

// ingestResult is everything one log produces, handed back to the main
// goroutine for catalog writes and reporting.
type ingestResult struct {
	summary model.SeriesSummary
	rounds  []model.RoundRow
	cached  bool
}

func runIngest(cmd *cobra.Command, args []string) error {
	logs, err := expandLogs(args)
	if err != nil {
		return err
	}
	players := splitPlayers(ingestPlayers)

	tuning, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if ingestSeconds > 0 {
		tuning.SecondsLimit = ingestSeconds
	}
	if mapDataDir != "" {
		tuning.MapDataDir = mapDataDir
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	if err := os.MkdirAll(ingestOut, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	maps := mapcal.NewStore(tuning.MapDataDir)
	engineCfg := track.Config{
		SecondsLimit: tuning.SecondsLimit,
		SampleHz:     tuning.SampleHz,
		Downsample:   *tuning.Downsample,
		Median:       *tuning.Median,
		MaxSamples:   tuning.MaxSamples,
		MapFilter:    ingestMap,
		Maps:         maps,
	}

	results := make([]*ingestResult, len(logs))
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(ingestWorkers)
	for i, logPath := range logs {
		g.Go(func() error {
			res, err := ingestOne(db, &mu, logPath, players, engineCfg)
			if err != nil {
				return fmt.Errorf("%s: %w", logPath, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, res := range results {
		if res == nil {
			continue
		}
		if res.cached {
			fmt.Fprintf(os.Stdout, "%s already ingested (hash %s), skipping. Use --force to redo.\n",
				logs[i], res.summary.LogHash[:12])
			continue
		}
		if err := db.InsertSeries(&res.summary); err != nil {
			return err
		}
		if err := db.InsertRoundRows(res.rounds); err != nil {
			return err
		}
		report.PrintSeriesSummary(os.Stdout, &res.summary)
	}
	return nil
}

// ingestOne runs both passes over one log. The mutex guards catalog reads;
// writes happen later on the main goroutine.
func ingestOne(db *storage.DB, mu *sync.Mutex, logPath string, players []string, cfg track.Config) (*ingestResult, error) {
	hash, err := hashFile(logPath)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	exists, err := db.SeriesExists(hash)
	mu.Unlock()
	if err != nil {
		return nil, err
	}
	if exists && !ingestForce {
		return &ingestResult{summary: model.SeriesSummary{LogHash: hash}, cached: true}, nil
	}

	table, err := resolvePass(logPath)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		if players, err = rosterPass(logPath); err != nil {
			return nil, err
		}
		if len(players) == 0 {
			return nil, fmt.Errorf("no players found in log")
		}
	}
	paths, err := reconstructPass(logPath, table, players, cfg)
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		if err := writePaths(ingestOut, hash, p); err != nil {
			return nil, err
		}
	}
	return &ingestResult{
		summary: buildSummary(hash, table),
		rounds:  buildRoundRows(hash, table),
	}, nil
}

func resolvePass(logPath string) (*model.SideTable, error) {
	r, err := feed.Open(logPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return rounds.Resolve(r)
}

func rosterPass(logPath string) ([]string, error) {
	r, err := feed.Open(logPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return rounds.Roster(r)
}

func reconstructPass(logPath string, table *model.SideTable, players []string, cfg track.Config) ([]*model.PlayerPaths, error) {
	r, err := feed.Open(logPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return track.Reconstruct(r, table, players, cfg)
}

// writePaths writes one entity/map output as JSON next to its siblings.
func writePaths(dir, hash string, p *model.PlayerPaths) error {
	name := fmt.Sprintf("%s_%s_%s.json", hash[:12], sanitize(p.Entity), sanitize(p.Map))
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal paths: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), raw, 0644); err != nil {
		return fmt.Errorf("write paths: %w", err)
	}
	return nil
}

func buildSummary(hash string, table *model.SideTable) model.SeriesSummary {
	s := model.SeriesSummary{
		LogHash:    hash,
		SeriesID:   table.SeriesID,
		IngestID:   uuid.NewString(),
		IngestDate: time.Now().UTC().Format(time.RFC3339),
		GameCount:  len(table.Games),
	}
	for _, game := range table.Games {
		s.RoundCount += len(game.Rounds)
		if game.Map != "" {
			s.Maps = append(s.Maps, game.Map)
		}
	}
	sort.Strings(s.Maps)
	return s
}

func buildRoundRows(hash string, table *model.SideTable) []model.RoundRow {
	var rows []model.RoundRow
	for gameID, game := range table.Games {
		numbers := make([]int, 0, len(game.Rounds))
		for n := range game.Rounds {
			numbers = append(numbers, n)
		}
		sort.Ints(numbers)
		for _, n := range numbers {
			info := game.Rounds[n]
			row := model.RoundRow{
				LogHash:    hash,
				GameID:     gameID,
				MapName:    game.Map,
				Number:     n,
				OccurredAt: info.OccurredAt,
			}
			for _, team := range info.Teams {
				switch {
				case team.Side.Attacking():
					row.Attacker = team.Name
				case team.Side.Defending():
					row.Defender = team.Name
				}
			}
			if info.Winner != nil {
				row.Winner = info.Winner.Name
			}
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].GameID != rows[j].GameID {
			return rows[i].GameID < rows[j].GameID
		}
		return rows[i].Number < rows[j].Number
	})
	return rows
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open log: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash log: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// expandLogs resolves each argument: a directory expands to the series logs
// directly inside it, anything else is taken as a log path.
func expandLogs(args []string) ([]string, error) {
	var logs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			logs = append(logs, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := strings.ToLower(entry.Name())
			if strings.HasSuffix(name, ".jsonl") || strings.HasSuffix(name, ".zip") || strings.HasSuffix(name, ".zst") {
				logs = append(logs, filepath.Join(arg, entry.Name()))
			}
		}
	}
	if len(logs) == 0 {
		return nil, fmt.Errorf("no event logs to ingest")
	}
	sort.Strings(logs)
	return logs, nil
}

func splitPlayers(raw string) []string {
	var players []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			players = append(players, name)
		}
	}
	return players
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, name)
}
