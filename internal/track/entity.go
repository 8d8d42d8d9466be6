package track

import (
	"math"
	"time"

	"github.com/GeorgeStatho/Cloud9Hackathon/internal/feed"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/mapcal"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/model"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/path"
)

// Outlier rejection bounds. Coordinates beyond the magnitude bound are
// sentinel/staging values; the invalid pair is the feed's known parked
// position for unspawned players.
const (
	maxCoordMagnitude = 100000.0
	invalidSentinelX  = -1000.0022
	invalidSentinelY  = 0.0
	sentinelTolerance = 1e-3
	imageSlackPixels  = 5.0
)

// entityState is the round state machine for one (map, entity) pair.
// It is created lazily on first sighting and never returns to idle once a
// round has been observed.
type entityState struct {
	key     string // lowercased id-or-name match key
	display string

	globalRound   int // monotonic across the whole series, never reset
	gameRound     int // resets on game-id change
	roundStart    time.Time
	hasRoundStart bool

	teamID string
	side   model.Side
	gameID string
	agents map[string]string // game id -> agent name, first sighting wins

	all     *path.Recorder
	attack  *path.Recorder
	defense *path.Recorder
}

func newEntityState(key, display string, opts path.Options) *entityState {
	return &entityState{
		key:     key,
		display: display,
		agents:  make(map[string]string),
		all:     path.NewRecorder(opts),
		attack:  path.NewRecorder(opts),
		defense: path.NewRecorder(opts),
	}
}

// startRound transitions the state machine into the next round.
func (s *entityState) startRound(at time.Time, ev *feed.Event, table *model.SideTable) {
	s.globalRound++
	s.roundStart = at
	s.hasRoundStart = true

	gameID, teamID := ev.PlayerContext(s.key)
	if gameID != "" && gameID != s.gameID {
		s.gameID = gameID
		s.gameRound = 0
	}
	s.gameRound++

	// First-writer-wins: a team id, once known, is never rebound.
	if s.teamID == "" && teamID != "" {
		s.teamID = teamID
	}
	if s.gameID != "" {
		if _, ok := s.agents[s.gameID]; !ok {
			if agent := ev.AgentName(s.key); agent != "" {
				s.agents[s.gameID] = agent
			}
		}
	}

	s.resolveSide(table)
	s.all.StartRound(s.globalRound)
	s.attack.StartRound(s.globalRound)
	s.defense.StartRound(s.globalRound)
}

// resolveSide looks the current round up in the side table. A miss yields
// an unknown side, not an error.
func (s *entityState) resolveSide(table *model.SideTable) {
	s.side = model.SideUnknown
	if table == nil || s.gameID == "" || s.teamID == "" {
		return
	}
	s.side = table.Side(s.gameID, s.gameRound, s.teamID)
}

// bindTeam fills in a missing team binding from a mid-round event, then
// re-resolves the side. Existing bindings are kept.
func (s *entityState) bindTeam(ev *feed.Event, table *model.SideTable) {
	if s.teamID != "" {
		return
	}
	_, teamID := ev.PlayerContext(s.key)
	if teamID == "" {
		return
	}
	s.teamID = teamID
	s.resolveSide(table)
}

// accept applies outlier rejection to a raw observation.
func accept(obs *feed.Observation, cal *mapcal.Calibration) bool {
	if math.Abs(obs.X) > maxCoordMagnitude || math.Abs(obs.Y) > maxCoordMagnitude {
		return false
	}
	if math.Abs(obs.X-invalidSentinelX) <= sentinelTolerance &&
		math.Abs(obs.Y-invalidSentinelY) <= sentinelTolerance {
		return false
	}
	if cal != nil && !cal.InBounds(obs.X, obs.Y, imageSlackPixels) {
		return false
	}
	return true
}

// record forwards an accepted observation to the side buckets. The
// objective-item flag is attached only while attacking and is explicitly
// false, not omitted, while defending.
func (s *entityState) record(elapsed float64, obs *feed.Observation) {
	ctx := path.Context{
		NetWorth:     obs.NetWorth,
		LoadoutValue: obs.LoadoutValue,
	}
	switch {
	case s.side.Attacking():
		has := obs.HasObjectiveItem
		ctx.HasObjectiveItem = &has
	case s.side.Defending():
		cleared := false
		ctx.HasObjectiveItem = &cleared
	}

	s.all.Record(s.globalRound, elapsed, obs.X, obs.Y, ctx)
	switch {
	case s.side.Attacking():
		s.attack.Record(s.globalRound, elapsed, obs.X, obs.Y, ctx)
	case s.side.Defending():
		s.defense.Record(s.globalRound, elapsed, obs.X, obs.Y, ctx)
	}
}
