package feed

import (
	"encoding/json"
	"strings"
)

// ID decodes a feed identifier that may arrive as a JSON string or number.
type ID string

// UnmarshalJSON accepts "123", 123 and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*id = ""
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*id = ID(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*id = ID(num.String())
	return nil
}

// Event is one telemetry event: a type tag, a timestamp, and up to six
// state containers spread across the actor, target and series payloads.
type Event struct {
	Type       string `json:"type"`
	OccurredAt string `json:"occurredAt,omitempty"`

	Actor  *EntityRef `json:"actor,omitempty"`
	Target *EntityRef `json:"target,omitempty"`

	SeriesState      *Snapshot `json:"seriesState,omitempty"`
	SeriesStateDelta *Snapshot `json:"seriesStateDelta,omitempty"`
}

// EntityRef is the actor or target of an event, possibly carrying a full
// and/or delta state snapshot.
type EntityRef struct {
	Type       string    `json:"type,omitempty"`
	ID         ID        `json:"id,omitempty"`
	State      *Snapshot `json:"state,omitempty"`
	StateDelta *Snapshot `json:"stateDelta,omitempty"`
}

// Snapshot is a full or incremental series state: games -> teams -> players.
type Snapshot struct {
	Games []*Game `json:"games,omitempty"`
}

// Game is one played map inside a snapshot.
type Game struct {
	ID       ID         `json:"id,omitempty"`
	Started  bool       `json:"started,omitempty"`
	Finished bool       `json:"finished,omitempty"`
	Map      MapRef     `json:"map,omitempty"`
	Teams    []*Team    `json:"teams,omitempty"`
	Segments []*Segment `json:"segments,omitempty"`
}

// MapRef names the map a game is played on.
type MapRef struct {
	Name string `json:"name,omitempty"`
}

// Team is one team's state within a game.
type Team struct {
	ID      ID        `json:"id,omitempty"`
	Name    string    `json:"name,omitempty"`
	Side    string    `json:"side,omitempty"`
	Won     bool      `json:"won,omitempty"`
	Players []*Player `json:"players,omitempty"`
}

// Player is one player's state within a team.
type Player struct {
	ID           ID         `json:"id,omitempty"`
	Name         string     `json:"name,omitempty"`
	Nickname     string     `json:"nickname,omitempty"`
	Position     *Position  `json:"position,omitempty"`
	NetWorth     *float64   `json:"netWorth,omitempty"`
	LoadoutValue *float64   `json:"loadoutValue,omitempty"`
	Items        []Item     `json:"items,omitempty"`
	Character    *Character `json:"character,omitempty"`
}

// Position is a raw game-space coordinate pair. Either axis may be absent
// in delta payloads; such samples are corrupt and must be ignored.
type Position struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

// Item is one inventory entry.
type Item struct {
	ID       string `json:"id,omitempty"`
	Equipped bool   `json:"equipped,omitempty"`
}

// Character is the agent a player has picked for a game.
type Character struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Segment is a per-round outcome entry inside a game.
type Segment struct {
	Type           string         `json:"type,omitempty"`
	SequenceNumber int            `json:"sequenceNumber,omitempty"`
	Teams          []*SegmentTeam `json:"teams,omitempty"`
}

// SegmentTeam is one team's outcome within a segment.
type SegmentTeam struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Side string `json:"side,omitempty"`
	Won  bool   `json:"won,omitempty"`
}

// StateCandidates returns the event's state containers in the fixed
// priority order used by every locator query: series full state, series
// delta, actor full, actor delta, target full, target delta. Two containers
// may disagree for transient reasons; the first non-empty one consulted is
// authoritative for a query.
func (e *Event) StateCandidates() []*Snapshot {
	out := make([]*Snapshot, 0, 6)
	out = append(out, e.SeriesState, e.SeriesStateDelta)
	if e.Actor != nil {
		out = append(out, e.Actor.State, e.Actor.StateDelta)
	} else {
		out = append(out, nil, nil)
	}
	if e.Target != nil {
		out = append(out, e.Target.State, e.Target.StateDelta)
	} else {
		out = append(out, nil, nil)
	}
	return out
}

// GameRef returns the game id referenced directly by the event's actor or
// target, or "" when neither is typed as a game.
func (e *Event) GameRef() string {
	for _, ref := range []*EntityRef{e.Actor, e.Target} {
		if ref != nil && ref.Type == "game" && ref.ID != "" {
			return string(ref.ID)
		}
	}
	return ""
}

// SelectGame finds the most relevant game for the event: one whose id
// matches an explicit game reference, else the first started-and-not-
// finished game across the candidate states.
func (e *Event) SelectGame() *Game {
	wanted := e.GameRef()
	if wanted != "" {
		for _, state := range e.StateCandidates() {
			if state == nil {
				continue
			}
			for _, g := range state.Games {
				if string(g.ID) == wanted {
					return g
				}
			}
		}
	}
	for _, state := range e.StateCandidates() {
		if state == nil {
			continue
		}
		for _, g := range state.Games {
			if g.Started && !g.Finished {
				return g
			}
		}
	}
	return nil
}

// MapName returns the first map name present in any candidate state, or "".
func (e *Event) MapName() string {
	for _, state := range e.StateCandidates() {
		if state == nil {
			continue
		}
		for _, g := range state.Games {
			if g.Map.Name != "" {
				return g.Map.Name
			}
		}
	}
	return ""
}

// Observation is one player's position/economy snapshot pulled from an
// event. HasObjectiveItem reflects the player's inventory at that moment.
type Observation struct {
	X, Y             float64
	NetWorth         *float64
	LoadoutValue     *float64
	HasObjectiveItem bool
}

// matchesKey reports whether the player matches an id-or-lowercased-name
// entity key.
func (p *Player) matchesKey(key string) bool {
	if key == "" {
		return false
	}
	return key == string(p.ID) ||
		key == strings.ToLower(p.Name) ||
		key == strings.ToLower(p.Nickname)
}

// hasObjectiveItem derives the carried-objective flag from the inventory.
func (p *Player) hasObjectiveItem() bool {
	for _, item := range p.Items {
		if strings.Contains(strings.ToLower(item.ID), "spike") {
			return true
		}
	}
	return false
}

// Observe locates the entity's position/economy snapshot in the event, or
// nil. Samples with a missing axis are treated as corrupt and skipped.
func (e *Event) Observe(key string) *Observation {
	for _, state := range e.StateCandidates() {
		if state == nil {
			continue
		}
		for _, g := range state.Games {
			for _, team := range g.Teams {
				for _, p := range team.Players {
					if !p.matchesKey(key) {
						continue
					}
					if p.Position == nil || p.Position.X == nil || p.Position.Y == nil {
						continue
					}
					return &Observation{
						X:                *p.Position.X,
						Y:                *p.Position.Y,
						NetWorth:         p.NetWorth,
						LoadoutValue:     p.LoadoutValue,
						HasObjectiveItem: p.hasObjectiveItem(),
					}
				}
			}
		}
	}
	return nil
}

// gamesInScanOrder returns the candidate states' games in game-context
// preference order: the explicitly referenced game first, then started-and-
// not-finished games, then everything else. Full snapshots keep listing
// finished games' rosters, so roster queries must not take the first game
// that happens to contain the player.
func (e *Event) gamesInScanOrder() []*Game {
	wanted := e.GameRef()
	var referenced, active, rest []*Game
	for _, state := range e.StateCandidates() {
		if state == nil {
			continue
		}
		for _, g := range state.Games {
			switch {
			case wanted != "" && string(g.ID) == wanted:
				referenced = append(referenced, g)
			case g.Started && !g.Finished:
				active = append(active, g)
			default:
				rest = append(rest, g)
			}
		}
	}
	return append(append(referenced, active...), rest...)
}

// PlayerContext locates the entity's current team id and enclosing game id,
// preferring the game the event belongs to over finished games whose stale
// rosters still list the entity. Either may be "" when the entity is absent
// from every candidate state.
func (e *Event) PlayerContext(key string) (gameID, teamID string) {
	for _, g := range e.gamesInScanOrder() {
		for _, team := range g.Teams {
			for _, p := range team.Players {
				if p.matchesKey(key) {
					return string(g.ID), string(team.ID)
				}
			}
		}
	}
	return "", ""
}

// AgentName locates the entity's picked agent name, or "".
func (e *Event) AgentName(key string) string {
	for _, g := range e.gamesInScanOrder() {
		for _, team := range g.Teams {
			for _, p := range team.Players {
				if p.matchesKey(key) && p.Character != nil && p.Character.Name != "" {
					return p.Character.Name
				}
			}
		}
	}
	return ""
}
