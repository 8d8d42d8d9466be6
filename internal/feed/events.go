package feed

// Event type marker sets. Round starts drive both the resolver pass and
// per-entity round transitions; game ends arm the map-switch latch.
var (
	roundStartTypes = map[string]bool{
		"game-started-round":       true,
		"round-started-freezetime": true,
		"round-started":            true,
	}

	gameEndTypes = map[string]bool{
		"series-ended-game": true,
		"team-won-game":     true,
	}
)

// IsRoundStart reports whether the event type marks the start of a round.
func IsRoundStart(eventType string) bool { return roundStartTypes[eventType] }

// IsGameEnd reports whether the event type marks the end of a game.
func IsGameEnd(eventType string) bool { return gameEndTypes[eventType] }
