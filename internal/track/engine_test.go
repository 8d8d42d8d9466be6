package track

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/GeorgeStatho/Cloud9Hackathon/internal/feed"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/model"
)

// ---- Scenario builders ----

// stateJSON builds a seriesState payload with one game holding player p1 on
// team t1, optionally positioned.
func stateJSON(gameID, mapName string, pos, items string) string {
	player := `{"id":"p1","name":"PlayerOne"`
	if pos != "" {
		player += `,"position":` + pos
	}
	if items != "" {
		player += `,"items":` + items
	}
	player += `,"character":{"name":"Omen"}}`
	return fmt.Sprintf(`{"games":[{"id":%q,"started":true,"map":{"name":%q},"teams":[
		{"id":"t1","name":"Alpha","players":[%s]},
		{"id":"t2","name":"Beta","players":[{"id":"p2","name":"PlayerTwo"}]}
	]}]}`, gameID, mapName, player)
}

func record(at, eventType, state string) string {
	return fmt.Sprintf(`{"seriesId":"s1","occurredAt":%q,"events":[{"type":%q,"seriesState":%s}]}`,
		at, eventType, state)
}

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "events.jsonl")
	var content string
	for _, line := range lines {
		// The builders above format their JSON across several physical
		// lines; compact each record so it occupies a single JSONL line.
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(line)); err != nil {
			t.Fatal(err)
		}
		content += buf.String() + "\n"
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

// sideTable resolves game g1: t1 attacks round 1, defends round 2.
func sideTable() *model.SideTable {
	table := model.NewSideTable()
	table.Games["g1"] = &model.GameRounds{
		GameID: "g1",
		Map:    "Haven",
		Rounds: map[int]*model.RoundInfo{
			1: {Teams: []model.TeamSide{
				{ID: "t1", Name: "Alpha", Side: model.SideAttacker},
				{ID: "t2", Name: "Beta", Side: model.SideDefender},
			}},
			2: {Teams: []model.TeamSide{
				{ID: "t1", Name: "Alpha", Side: model.SideDefender},
				{ID: "t2", Name: "Beta", Side: model.SideAttacker},
			}},
		},
	}
	return table
}

func reconstruct(t *testing.T, logPath string, table *model.SideTable, cfg Config) []*model.PlayerPaths {
	t.Helper()
	r, err := feed.Open(logPath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	out, err := Reconstruct(r, table, []string{"PlayerOne"}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func rawConfig() Config {
	return Config{SecondsLimit: 30, Downsample: false}
}

// ---- Side attribution ----

// TestReconstruct_SideBuckets: the same team lands in attack_rounds for
// round 1 and defense_rounds for round 2, per the side table.
func TestReconstruct_SideBuckets(t *testing.T) {
	p := writeLog(t,
		record("2026-03-01T12:00:00Z", "round-started", stateJSON("g1", "Haven", "", "")),
		record("2026-03-01T12:00:01Z", "player-updated", stateJSON("g1", "Haven", `{"x":100,"y":200}`, `[{"id":"spike"}]`)),
		record("2026-03-01T12:10:00Z", "round-started", stateJSON("g1", "Haven", "", "")),
		record("2026-03-01T12:10:02Z", "player-updated", stateJSON("g1", "Haven", `{"x":50,"y":60}`, `[]`)),
	)
	out := reconstruct(t, p, sideTable(), rawConfig())
	if len(out) != 1 {
		t.Fatalf("got %d outputs, want 1", len(out))
	}
	paths := out[0]
	if paths.Entity != "PlayerOne" || paths.Map != "Haven" {
		t.Fatalf("output header = %s/%s, want PlayerOne/Haven", paths.Entity, paths.Map)
	}

	if n := len(paths.AttackRounds["1"]); n != 1 {
		t.Errorf("attack round 1 has %d samples, want 1", n)
	}
	if n := len(paths.DefenseRounds["1"]); n != 0 {
		t.Errorf("defense round 1 has %d samples, want 0", n)
	}
	if n := len(paths.DefenseRounds["2"]); n != 1 {
		t.Errorf("defense round 2 has %d samples, want 1", n)
	}
	if n := len(paths.AttackRounds["2"]); n != 0 {
		t.Errorf("attack round 2 has %d samples, want 0", n)
	}
	if n := len(paths.Rounds["1"]) + len(paths.Rounds["2"]); n != 2 {
		t.Errorf("all-rounds bucket has %d samples, want 2", n)
	}
}

// secondMapStateJSON builds a seriesState payload where the finished first
// game still lists player p1 on its roster ahead of the in-progress game.
func secondMapStateJSON(pos string) string {
	player := `{"id":"p1","name":"PlayerOne"`
	if pos != "" {
		player += `,"position":` + pos
	}
	player += `,"character":{"name":"Omen"}}`
	return fmt.Sprintf(`{"games":[
		{"id":"g1","started":true,"finished":true,"teams":[
			{"id":"t1","name":"Alpha","players":[{"id":"p1","name":"PlayerOne"}]}]},
		{"id":"g2","started":true,"map":{"name":"Haven"},"teams":[
			{"id":"t1","name":"Alpha","players":[%s]},
			{"id":"t2","name":"Beta","players":[{"id":"p2","name":"PlayerTwo"}]}
		]}]}`, player)
}

// TestReconstruct_SecondMapSideLookup: in a multi-game series the finished
// first game's roster must not supply the game binding, or the side lookup
// keys the wrong game and the side buckets stay empty.
func TestReconstruct_SecondMapSideLookup(t *testing.T) {
	table := model.NewSideTable()
	table.Games["g2"] = &model.GameRounds{
		GameID: "g2",
		Map:    "Haven",
		Rounds: map[int]*model.RoundInfo{
			1: {Teams: []model.TeamSide{
				{ID: "t1", Name: "Alpha", Side: model.SideAttacker},
				{ID: "t2", Name: "Beta", Side: model.SideDefender},
			}},
		},
	}
	p := writeLog(t,
		record("2026-03-01T13:00:00Z", "round-started", secondMapStateJSON("")),
		record("2026-03-01T13:00:01Z", "player-updated", secondMapStateJSON(`{"x":100,"y":200}`)),
	)
	paths := reconstruct(t, p, table, rawConfig())[0]

	if n := len(paths.Rounds["1"]); n != 1 {
		t.Fatalf("all bucket has %d samples, want 1", n)
	}
	if n := len(paths.AttackRounds["1"]); n != 1 {
		t.Errorf("attack round 1 has %d samples, want 1", n)
	}
	if paths.GameAgents["g2"] != "Omen" {
		t.Errorf("agents = %v, want Omen bound to g2", paths.GameAgents)
	}
}

// TestReconstruct_ObjectiveItemFlag: attached while attacking, explicitly
// false while defending.
func TestReconstruct_ObjectiveItemFlag(t *testing.T) {
	p := writeLog(t,
		record("2026-03-01T12:00:00Z", "round-started", stateJSON("g1", "Haven", "", "")),
		record("2026-03-01T12:00:01Z", "player-updated", stateJSON("g1", "Haven", `{"x":100,"y":200}`, `[{"id":"spike"}]`)),
		record("2026-03-01T12:10:00Z", "round-started", stateJSON("g1", "Haven", "", "")),
		record("2026-03-01T12:10:02Z", "player-updated", stateJSON("g1", "Haven", `{"x":50,"y":60}`, `[{"id":"spike"}]`)),
	)
	paths := reconstruct(t, p, sideTable(), rawConfig())[0]

	atk := paths.AttackRounds["1"][0]
	if atk.HasObjectiveItem == nil || !*atk.HasObjectiveItem {
		t.Errorf("attack sample flag = %v, want true", atk.HasObjectiveItem)
	}
	def := paths.DefenseRounds["2"][0]
	if def.HasObjectiveItem == nil || *def.HasObjectiveItem {
		t.Errorf("defense sample flag = %v, want explicit false", def.HasObjectiveItem)
	}
}

// TestReconstruct_UnknownSideOmitsFlag: with an empty side table samples go
// only to the all bucket and carry no objective flag.
func TestReconstruct_UnknownSideOmitsFlag(t *testing.T) {
	p := writeLog(t,
		record("2026-03-01T12:00:00Z", "round-started", stateJSON("g1", "Haven", "", "")),
		record("2026-03-01T12:00:01Z", "player-updated", stateJSON("g1", "Haven", `{"x":100,"y":200}`, `[{"id":"spike"}]`)),
	)
	paths := reconstruct(t, p, model.NewSideTable(), rawConfig())[0]

	if n := len(paths.Rounds["1"]); n != 1 {
		t.Fatalf("all bucket has %d samples, want 1", n)
	}
	if paths.Rounds["1"][0].HasObjectiveItem != nil {
		t.Error("unknown side sample carries an objective flag")
	}
	if n := len(paths.AttackRounds["1"]) + len(paths.DefenseRounds["1"]); n != 0 {
		t.Errorf("side buckets hold %d samples, want 0", n)
	}
}

// ---- Outlier rejection ----

func TestReconstruct_OutlierRejection(t *testing.T) {
	p := writeLog(t,
		record("2026-03-01T12:00:00Z", "round-started", stateJSON("g1", "Haven", "", "")),
		record("2026-03-01T12:00:01Z", "player-updated", stateJSON("g1", "Haven", `{"x":-1000.0022,"y":0.0}`, "")),
		record("2026-03-01T12:00:02Z", "player-updated", stateJSON("g1", "Haven", `{"x":200000,"y":1}`, "")),
		record("2026-03-01T12:00:03Z", "player-updated", stateJSON("g1", "Haven", `{"x":10,"y":20}`, "")),
	)
	paths := reconstruct(t, p, sideTable(), rawConfig())[0]

	samples := paths.Rounds["1"]
	if len(samples) != 1 {
		t.Fatalf("kept %d samples, want 1 (outliers dropped)", len(samples))
	}
	if samples[0].GX != 10 || samples[0].GY != 20 {
		t.Errorf("kept sample = (%v, %v), want (10, 20)", samples[0].GX, samples[0].GY)
	}
}

func TestAccept_SentinelTolerance(t *testing.T) {
	cases := []struct {
		x, y float64
		want bool
	}{
		{-1000.0022, 0.0, false},
		{-1000.0025, 0.0004, false},
		{-1000.1, 0.0, true},
		{10, 20, true},
		{-100001, 0, false},
		{0, 100001, false},
	}
	for _, c := range cases {
		obs := &feed.Observation{X: c.x, Y: c.y}
		if got := accept(obs, nil); got != c.want {
			t.Errorf("accept(%v, %v) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

// ---- Map handling ----

// TestReconstruct_EventsBeforeRoundStart: position events preceding any round
// start are dropped.
func TestReconstruct_EventsBeforeRoundStart(t *testing.T) {
	p := writeLog(t,
		record("2026-03-01T11:59:00Z", "player-updated", stateJSON("g1", "Haven", `{"x":1,"y":1}`, "")),
		record("2026-03-01T12:00:00Z", "round-started", stateJSON("g1", "Haven", "", "")),
		record("2026-03-01T12:00:01Z", "player-updated", stateJSON("g1", "Haven", `{"x":10,"y":20}`, "")),
	)
	paths := reconstruct(t, p, sideTable(), rawConfig())[0]
	if n := len(paths.Rounds["1"]); n != 1 {
		t.Fatalf("round 1 has %d samples, want 1 (pre-round event dropped)", n)
	}
}

func TestReconstruct_MapFilter(t *testing.T) {
	p := writeLog(t,
		record("2026-03-01T12:00:00Z", "round-started", stateJSON("g1", "Haven", "", "")),
		record("2026-03-01T12:00:01Z", "player-updated", stateJSON("g1", "Haven", `{"x":10,"y":20}`, "")),
	)
	cfg := rawConfig()
	cfg.MapFilter = "ascent"
	out := reconstruct(t, p, sideTable(), cfg)
	if len(out) != 0 {
		t.Fatalf("got %d outputs with a non-matching map filter, want 0", len(out))
	}
}

func TestReconstruct_AgentsCollected(t *testing.T) {
	p := writeLog(t,
		record("2026-03-01T12:00:00Z", "round-started", stateJSON("g1", "Haven", "", "")),
		record("2026-03-01T12:00:01Z", "player-updated", stateJSON("g1", "Haven", `{"x":10,"y":20}`, "")),
	)
	paths := reconstruct(t, p, sideTable(), rawConfig())[0]
	if paths.GameAgents["g1"] != "Omen" {
		t.Errorf("game agent = %q, want Omen", paths.GameAgents["g1"])
	}
	if len(paths.Agents) != 1 || paths.Agents[0] != "Omen" {
		t.Errorf("agents = %v, want [Omen]", paths.Agents)
	}
}

// TestReconstruct_OutputJSONShape: round keys serialize as stringified
// counters and empty rounds as [] rather than null.
func TestReconstruct_OutputJSONShape(t *testing.T) {
	p := writeLog(t,
		record("2026-03-01T12:00:00Z", "round-started", stateJSON("g1", "Haven", "", "")),
	)
	paths := reconstruct(t, p, sideTable(), rawConfig())[0]

	raw, err := json.Marshal(paths)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Rounds map[string]json.RawMessage `json:"rounds"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	body, ok := decoded.Rounds["1"]
	if !ok {
		t.Fatal("round key \"1\" missing")
	}
	if string(body) != "[]" {
		t.Errorf("empty round serialized as %s, want []", body)
	}
}
