package roster

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"league-predictor/internal/core/league"
)

func sixPlayers(prefix string) league.Roster {
	r := make(league.Roster, 0, league.RosterSize)
	for i := 0; i < league.RosterSize; i++ {
		r = append(r, fmt.Sprintf("%s%d", prefix, i))
	}
	return r
}

func TestRecordKeepsMostRecentFirst(t *testing.T) {
	h := NewHistory(3)
	h.Record("SHD", sixPlayers("a"))
	h.Record("SHD", sixPlayers("b"))

	recent := h.Recent("SHD")
	assert.Len(t, recent, 2)
	assert.Equal(t, sixPlayers("b"), recent[0])
}

func TestRecordEvictsOldest(t *testing.T) {
	h := NewHistory(2)
	h.Record("SHD", sixPlayers("a"))
	h.Record("SHD", sixPlayers("b"))
	h.Record("SHD", sixPlayers("c"))

	recent := h.Recent("SHD")
	assert.Len(t, recent, 2)
	assert.Equal(t, sixPlayers("c"), recent[0])
	assert.Equal(t, sixPlayers("b"), recent[1])
}

func TestBestPrefersHighestScoredEligibleRoster(t *testing.T) {
	h := NewHistory(0)
	weak := sixPlayers("w")
	strong := sixPlayers("s")
	h.Record("SHD", strong)
	h.Record("SHD", weak)

	scores := map[string]float64{}
	for _, p := range weak {
		scores[p] = 1
	}
	for _, p := range strong {
		scores[p] = 10
	}
	rosterScore := func(r league.Roster) float64 {
		total := 0.0
		for _, p := range r {
			total += scores[p]
		}
		return total / float64(len(r))
	}
	playerScore := func(p string) float64 { return scores[p] }

	eligible := league.NewPlayerSet(append(append([]string{}, weak...), strong...)...)
	assert.Equal(t, strong, h.Best("SHD", eligible, rosterScore, playerScore))

	// With the strong roster partly unavailable the weak one is chosen.
	partial := league.NewPlayerSet(append(append([]string{}, weak...), strong[:3]...)...)
	assert.Equal(t, weak, h.Best("SHD", partial, rosterScore, playerScore))
}

func TestBestFallsBackToTopIndividuals(t *testing.T) {
	h := NewHistory(0)
	h.Record("SHD", sixPlayers("gone"))

	scores := map[string]float64{
		"p1": 9, "p2": 8, "p3": 7, "p4": 6, "p5": 5, "p6": 4, "p7": 3, "p8": 2,
	}
	eligible := league.NewPlayerSet("p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8")

	best := h.Best("SHD", eligible,
		func(league.Roster) float64 { return 0 },
		func(p string) float64 { return scores[p] })

	assert.Len(t, best, league.RosterSize)
	assert.ElementsMatch(t, []string{"p1", "p2", "p3", "p4", "p5", "p6"}, []string(best))
}

func TestBestWithNoHistoryAndFewEligible(t *testing.T) {
	h := NewHistory(0)
	eligible := league.NewPlayerSet("p1", "p2")

	best := h.Best("NYE", eligible,
		func(league.Roster) float64 { return 0 },
		func(string) float64 { return 0 })

	assert.Len(t, best, 2)
}
