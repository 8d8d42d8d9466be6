package track

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/GeorgeStatho/Cloud9Hackathon/internal/feed"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/mapcal"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/model"
	"github.com/GeorgeStatho/Cloud9Hackathon/internal/path"
)

// Config tunes one reconstruction pass.
type Config struct {
	// SecondsLimit is the trailing time window per round, in seconds.
	SecondsLimit float64
	// SampleHz is the downsampling rate; zero disables downsampling.
	SampleHz int
	// Downsample and Median gate the sampler's smoothing stages.
	Downsample bool
	Median     bool
	// MaxSamples bounds each round buffer.
	MaxSamples int
	// MapFilter restricts processing to one map (case-insensitive);
	// empty processes every map seen in the feed.
	MapFilter string
	// Maps resolves per-map calibrations; nil disables image-space
	// coordinates and the image-bounds outlier check.
	Maps *mapcal.Store
}

// Reconstruct runs the second pass: one full traversal of the event stream
// that updates every tracked entity in arrival order, consuming the
// completed side table from the resolver pass. It returns one output per
// (map, entity), entity keys matched by id or lowercased display name.
func Reconstruct(r *feed.Reader, table *model.SideTable, entities []string, cfg Config) ([]*model.PlayerPaths, error) {
	e := &engine{
		cfg:    cfg,
		table:  table,
		arena:  make(map[string]map[string]*entityState),
		cals:   make(map[string]*mapcal.Calibration),
		filter: strings.ToLower(cfg.MapFilter),
	}
	for _, name := range entities {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		e.keys = append(e.keys, key)
		if e.display == nil {
			e.display = make(map[string]string)
		}
		e.display[key] = name
	}

	for r.Next() {
		for _, ev := range r.Record().Events() {
			e.processEvent(ev)
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("reconstruct: %w", err)
	}
	return e.assemble(), nil
}

// engine holds the mutable state of one reconstruction pass. Per-entity
// state lives in an arena keyed by (map, entity key): owned records,
// created lazily, never shared.
type engine struct {
	cfg    Config
	table  *model.SideTable
	filter string

	keys    []string
	display map[string]string

	tracker MapTracker
	arena   map[string]map[string]*entityState
	cals    map[string]*mapcal.Calibration
}

func (e *engine) processEvent(ev *feed.Event) {
	if feed.IsGameEnd(ev.Type) {
		e.tracker.MarkGameEnd()
	}

	detected := ev.MapName()
	e.tracker.Observe(detected)
	active := e.tracker.Active(detected)
	if active == "" {
		return
	}
	if e.filter != "" && strings.ToLower(active) != e.filter {
		return
	}

	// Events with no resolvable timestamp carry no round-elapsed time and
	// cannot affect round state.
	at, ok := feed.ParseTime(ev.OccurredAt)
	if !ok {
		return
	}

	if feed.IsRoundStart(ev.Type) {
		for _, key := range e.keys {
			e.state(active, key).startRound(at, ev, e.table)
		}
	}

	cal := e.calibration(active)
	for _, key := range e.keys {
		st, exists := e.arena[active][key]
		if !exists || !st.hasRoundStart {
			continue
		}
		elapsed := at.Sub(st.roundStart).Seconds()
		if elapsed < 0 {
			continue
		}
		st.bindTeam(ev, e.table)
		obs := ev.Observe(key)
		if obs == nil || !accept(obs, cal) {
			continue
		}
		st.record(elapsed, obs)
	}
}

// state returns the (map, entity) state machine, creating it on first
// sighting.
func (e *engine) state(mapName, key string) *entityState {
	states, ok := e.arena[mapName]
	if !ok {
		states = make(map[string]*entityState)
		e.arena[mapName] = states
	}
	st, ok := states[key]
	if !ok {
		opts := path.Options{
			MaxSamples: e.cfg.MaxSamples,
			SampleHz:   e.cfg.SampleHz,
			Downsample: e.cfg.Downsample,
			Median:     e.cfg.Median,
			Window:     e.cfg.SecondsLimit,
		}
		if cal := e.calibration(mapName); cal != nil {
			opts.Project = cal.GameToImage
		}
		st = newEntityState(key, e.display[key], opts)
		states[key] = st
	}
	return st
}

func (e *engine) calibration(mapName string) *mapcal.Calibration {
	if e.cfg.Maps == nil {
		return nil
	}
	key := strings.ToLower(mapName)
	if cal, ok := e.cals[key]; ok {
		return cal
	}
	cal := e.cfg.Maps.Lookup(mapName)
	e.cals[key] = cal
	return cal
}

// assemble builds one output record per (map, entity), in deterministic
// map/entity order. No cross-entity merging happens here.
func (e *engine) assemble() []*model.PlayerPaths {
	maps := make([]string, 0, len(e.arena))
	for name := range e.arena {
		maps = append(maps, name)
	}
	sort.Strings(maps)

	var out []*model.PlayerPaths
	for _, mapName := range maps {
		states := e.arena[mapName]
		keys := make([]string, 0, len(states))
		for key := range states {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			out = append(out, assembleEntity(mapName, states[key], e.cfg.SecondsLimit))
		}
	}
	return out
}

func assembleEntity(mapName string, st *entityState, secondsLimit float64) *model.PlayerPaths {
	agents := make([]string, 0, len(st.agents))
	seen := make(map[string]bool)
	for _, agent := range st.agents {
		if !seen[agent] {
			seen[agent] = true
			agents = append(agents, agent)
		}
	}
	sort.Strings(agents)

	return &model.PlayerPaths{
		Entity:        st.display,
		Map:           mapName,
		SecondsLimit:  secondsLimit,
		GameAgents:    st.agents,
		Agents:        agents,
		Rounds:        roundMap(st.all),
		AttackRounds:  roundMap(st.attack),
		DefenseRounds: roundMap(st.defense),
	}
}

func roundMap(rec *path.Recorder) map[string][]model.Sample {
	out := make(map[string][]model.Sample)
	for id, samples := range rec.Rounds() {
		if samples == nil {
			samples = []model.Sample{}
		}
		out[strconv.Itoa(id)] = samples
	}
	return out
}
