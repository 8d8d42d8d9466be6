// Package track runs the reconstruction pass: it follows the active map
// through the event stream, maintains one round state machine per
// (map, entity) pair, and assembles per-entity trajectory outputs.
package track

// MapTracker follows the active map across a series. Map names bleed
// between games in delta payloads, so a freshly detected name only
// replaces the current one right after an end-of-game signal.
type MapTracker struct {
	current   string
	gameEnded bool
}

// MarkGameEnd arms the switch latch.
func (t *MapTracker) MarkGameEnd() {
	t.gameEnded = true
}

// Observe feeds a detected map name (possibly empty) into the tracker.
// A switch is accepted only when no map is tracked yet, or when the latch
// is armed and the name differs; accepting a switch clears the latch.
func (t *MapTracker) Observe(detected string) {
	if detected == "" {
		return
	}
	if t.current == "" || (t.gameEnded && detected != t.current) {
		t.current = detected
		t.gameEnded = false
	}
}

// Active returns the map an event belongs to: the just-detected name when
// present, else the tracked current map.
func (t *MapTracker) Active(detected string) string {
	if detected != "" {
		return detected
	}
	return t.current
}

// Current returns the tracked map name.
func (t *MapTracker) Current() string { return t.current }
