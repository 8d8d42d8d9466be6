package model

// Side is a team's role for one round, as reported by the feed.
type Side string

const (
	SideUnknown  Side = ""
	SideAttacker Side = "attacker"
	SideDefender Side = "defender"
)

// Attacking reports whether the side is the attacking role.
func (s Side) Attacking() bool { return s == SideAttacker }

// Defending reports whether the side is the defending role.
func (s Side) Defending() bool { return s == SideDefender }

// TeamSide is one team's identity and role in a single round.
type TeamSide struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Side Side   `json:"side"`
}

// RoundInfo is the resolved outcome of one round of one game.
type RoundInfo struct {
	OccurredAt string     `json:"occurredAt,omitempty"`
	Teams      []TeamSide `json:"teams"`
	Winner     *TeamSide  `json:"winner"`
}

// GameRounds collects the resolved rounds of one game (one played map).
// Round numbers form a dense 1-based prefix: one entry per detected
// round-start event for that game.
type GameRounds struct {
	GameID string             `json:"-"`
	Map    string             `json:"map"`
	Rounds map[int]*RoundInfo `json:"rounds"`
}

// SideTable maps game id -> round number -> resolved teams/sides/winner.
// Built once per series by the resolver pass and read-only afterwards.
type SideTable struct {
	SeriesID string                 `json:"seriesId,omitempty"`
	Games    map[string]*GameRounds `json:"games"`
}

// NewSideTable returns an empty table.
func NewSideTable() *SideTable {
	return &SideTable{Games: make(map[string]*GameRounds)}
}

// Round returns the resolved info for (gameID, round), or nil.
func (t *SideTable) Round(gameID string, round int) *RoundInfo {
	g, ok := t.Games[gameID]
	if !ok {
		return nil
	}
	return g.Rounds[round]
}

// Side returns the side teamID played in (gameID, round). Absence of a
// match yields SideUnknown, never an error.
func (t *SideTable) Side(gameID string, round int, teamID string) Side {
	info := t.Round(gameID, round)
	if info == nil {
		return SideUnknown
	}
	for _, team := range info.Teams {
		if team.ID == teamID {
			return team.Side
		}
	}
	return SideUnknown
}

// Sample is one trajectory point: seconds since round start, raw game-space
// coordinates, and the economy/objective context observed at that moment.
// Image-space coordinates are present only when a map calibration exists.
type Sample struct {
	T  float64 `json:"t"`
	GX float64 `json:"gx"`
	GY float64 `json:"gy"`

	NetWorth         *float64 `json:"net_worth,omitempty"`
	LoadoutValue     *float64 `json:"loadout_value,omitempty"`
	HasObjectiveItem *bool    `json:"has_objective_item,omitempty"`

	IX *float64 `json:"ix,omitempty"`
	IY *float64 `json:"iy,omitempty"`
}

// PlayerPaths is the reconstruction output for one entity on one map.
// Round keys are the entity's global round counter, stringified.
type PlayerPaths struct {
	Entity        string              `json:"entity"`
	Map           string              `json:"map"`
	SecondsLimit  float64             `json:"seconds_limit"`
	GameAgents    map[string]string   `json:"game_agents"`
	Agents        []string            `json:"agents"`
	Rounds        map[string][]Sample `json:"rounds"`
	AttackRounds  map[string][]Sample `json:"attack_rounds"`
	DefenseRounds map[string][]Sample `json:"defense_rounds"`
}

// SeriesSummary is a lightweight catalog record for list/show commands.
type SeriesSummary struct {
	LogHash    string
	SeriesID   string
	IngestID   string
	IngestDate string
	Maps       []string
	GameCount  int
	RoundCount int
}

// RoundRow is one resolved round flattened for the catalog.
type RoundRow struct {
	LogHash    string `json:"logHash"`
	GameID     string `json:"gameId"`
	MapName    string `json:"map"`
	Number     int    `json:"number"`
	OccurredAt string `json:"occurredAt,omitempty"`
	Attacker   string `json:"attacker,omitempty"`
	Defender   string `json:"defender,omitempty"`
	Winner     string `json:"winner,omitempty"`
}
