// Package roster tracks the lineups each team has recently fielded and
// picks the strongest eligible one when the actual lineup is unknown.
package roster

import (
	"sort"

	"league-predictor/internal/core/league"
)

// DefaultCapacity is how many recent rosters are kept per team.
const DefaultCapacity = 12

// History is a bounded most-recent-first log of the rosters each team has
// fielded. The oldest entry is evicted once a team's log is full.
type History struct {
	capacity int
	queues   map[string][]league.Roster
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{
		capacity: capacity,
		queues:   make(map[string][]league.Roster),
	}
}

// Record logs the roster a team fielded, newest first.
func (h *History) Record(team string, r league.Roster) {
	q := h.queues[team]
	q = append([]league.Roster{r}, q...)
	if len(q) > h.capacity {
		q = q[:h.capacity]
	}
	h.queues[team] = q
}

// Recent returns the team's logged rosters, most recent first.
func (h *History) Recent(team string) []league.Roster {
	return h.queues[team]
}

// Best returns the strongest roster the team can field from the eligible
// players. Logged rosters are ranked by rosterScore descending and the
// first one whose members are all eligible wins. If none qualifies, the
// top eligible players ranked individually by playerScore are picked
// instead. Both scores are conventionally the lower confidence bound of
// the rating (mean minus three standard deviations).
func (h *History) Best(team string, eligible league.PlayerSet,
	rosterScore func(league.Roster) float64, playerScore func(string) float64) league.Roster {

	ranked := make([]league.Roster, len(h.queues[team]))
	copy(ranked, h.queues[team])
	sort.SliceStable(ranked, func(i, j int) bool {
		return rosterScore(ranked[i]) > rosterScore(ranked[j])
	})

	for _, r := range ranked {
		if eligible.ContainsAll(r) {
			return r
		}
	}

	// No logged roster is fully available: pick the best individuals.
	players := eligible.Players()
	sort.SliceStable(players, func(i, j int) bool {
		return playerScore(players[i]) > playerScore(players[j])
	})
	if len(players) > league.RosterSize {
		players = players[:league.RosterSize]
	}
	return league.Roster(players)
}
