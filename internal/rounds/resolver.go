// Package rounds builds the per-series round/side table: for every game,
// which team played which side in each round and which team won it. The
// table is the only source of attack/defense attribution for the
// reconstruction pass; side is never inferred from inventory or position.
package rounds

import (
	"fmt"
	"sort"

	"github.com/GeorgeStatho/Cloud9Hackathon/internal/feed"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/model"
)

// Resolve traverses the full event stream once and returns the resolved
// side table. Resolution is best-effort: a round-start with no resolvable
// game is skipped, and a round with no resolvable winner is stored with a
// nil winner. Only reader errors abort.
func Resolve(r *feed.Reader) (*model.SideTable, error) {
	table := model.NewSideTable()
	counters := make(map[string]int)

	for r.Next() {
		rec := r.Record()
		if table.SeriesID == "" && rec.SeriesID != "" {
			table.SeriesID = rec.SeriesID
		}
		for _, ev := range rec.Events() {
			if !feed.IsRoundStart(ev.Type) {
				continue
			}
			resolveRound(table, counters, ev)
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("resolve rounds: %w", err)
	}
	return table, nil
}

// Roster traverses the full event stream and collects the distinct player
// names seen on round starts, sorted. Used when no explicit entity list is
// given.
func Roster(r *feed.Reader) ([]string, error) {
	seen := make(map[string]bool)
	for r.Next() {
		for _, ev := range r.Record().Events() {
			if !feed.IsRoundStart(ev.Type) {
				continue
			}
			game := ev.SelectGame()
			if game == nil {
				continue
			}
			for _, team := range game.Teams {
				for _, p := range team.Players {
					name := p.Name
					if name == "" {
						name = p.Nickname
					}
					if name != "" {
						seen[name] = true
					}
				}
			}
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("collect roster: %w", err)
	}
	roster := make([]string, 0, len(seen))
	for name := range seen {
		roster = append(roster, name)
	}
	sort.Strings(roster)
	return roster, nil
}

// resolveRound records one detected round start into the table.
func resolveRound(table *model.SideTable, counters map[string]int, ev *feed.Event) {
	game := ev.SelectGame()
	if game == nil || game.ID == "" {
		return
	}
	gameID := string(game.ID)

	counters[gameID]++
	number := counters[gameID]

	entry, ok := table.Games[gameID]
	if !ok {
		entry = &model.GameRounds{
			GameID: gameID,
			Map:    game.Map.Name,
			Rounds: make(map[int]*model.RoundInfo),
		}
		table.Games[gameID] = entry
	}
	if entry.Map == "" && game.Map.Name != "" {
		entry.Map = game.Map.Name
	}

	entry.Rounds[number] = &model.RoundInfo{
		OccurredAt: ev.OccurredAt,
		Teams:      teamSides(game),
		Winner:     roundWinner(game, number),
	}
}

// teamSides extracts each team's id/name/side from the game's team list.
func teamSides(game *feed.Game) []model.TeamSide {
	teams := make([]model.TeamSide, 0, len(game.Teams))
	for _, t := range game.Teams {
		teams = append(teams, model.TeamSide{
			ID:   string(t.ID),
			Name: t.Name,
			Side: model.Side(t.Side),
		})
	}
	return teams
}

// roundWinner scans the game's round segment with the matching sequence
// number for the team flagged as winner. Nil when no segment or no team
// carries the flag.
func roundWinner(game *feed.Game, number int) *model.TeamSide {
	for _, seg := range game.Segments {
		if seg.Type != "round" || seg.SequenceNumber != number {
			continue
		}
		for _, team := range seg.Teams {
			if team.Won {
				return &model.TeamSide{
					ID:   string(team.ID),
					Name: team.Name,
					Side: model.Side(team.Side),
				}
			}
		}
	}
	return nil
}
