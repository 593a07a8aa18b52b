package events

import (
	"time"

	"league-predictor/internal/core/league"
)

// Event is the envelope that flows through the event bus. Every domain
// event (a decided map, a completed series) is wrapped in one.
type Event struct {
	ID        string
	Type      EventType
	Stage     string
	MatchID   int
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	// Live feed events
	EventMapResult  EventType = "map_result"
	EventMatchFinal EventType = "match_final"
)

// MapResult is the payload of EventMapResult: one decided (or drawn) map,
// ready to be replayed into an engine.
type MapResult struct {
	Game league.Game
}

// MatchFinal is the payload of EventMatchFinal, published once the last
// map of a series has been reported.
type MatchFinal struct {
	Stage   string
	MatchID int
	Teams   [2]string
	Score   [2]int
}
