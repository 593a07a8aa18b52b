// Package league defines the data model shared by every predictor
// component: games (single maps of a best-of-N series), rosters, and the
// player-availability table supplied by the schedule data source.
package league

import "sort"

// MatchFormat selects the map sequence a series is played under.
type MatchFormat string

const (
	FormatRegular MatchFormat = "regular"
	FormatTitle   MatchFormat = "title"
)

// RosterSize is the number of players a team fields on one map.
const RosterSize = 6

// Roster is the ordered list of players a team fielded for one map.
type Roster []string

// Game is a single map of a series. All maps of one series share a match id;
// the series is decided once a side holds a majority of decided maps.
type Game struct {
	Stage    string
	MatchID  int
	Format   MatchFormat
	Drawable bool
	Teams    [2]string
	Score    [2]int
	Rosters  [2]Roster
}

// Decisive reports whether the map produced a winner.
func (g Game) Decisive() bool { return g.Score[0] != g.Score[1] }

// WinnerLoser returns the winning and losing team of a decisive map.
// Results are meaningless for drawn maps; check Decisive first.
func (g Game) WinnerLoser() (winner, loser string) {
	if g.Score[0] > g.Score[1] {
		return g.Teams[0], g.Teams[1]
	}
	return g.Teams[1], g.Teams[0]
}

// MatchKey identifies a team's Nth series within a stage. Number is 1-based:
// the first series a team plays in a stage has Number 1.
type MatchKey struct {
	Stage  string
	Number int
}

// PlayerSet is the set of players eligible for one team in one series.
type PlayerSet map[string]struct{}

func NewPlayerSet(players ...string) PlayerSet {
	s := make(PlayerSet, len(players))
	for _, p := range players {
		s[p] = struct{}{}
	}
	return s
}

func (s PlayerSet) Contains(player string) bool {
	_, ok := s[player]
	return ok
}

// ContainsAll reports whether every member of the roster is in the set.
func (s PlayerSet) ContainsAll(r Roster) bool {
	for _, p := range r {
		if !s.Contains(p) {
			return false
		}
	}
	return true
}

// Players returns the set members in sorted order.
func (s PlayerSet) Players() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Availabilities maps a (stage, match number) key to the eligible players
// per team, as published ahead of each series.
type Availabilities map[MatchKey]map[string]PlayerSet

// StageTeams returns the sorted set of teams that appear in any
// availability entry for the given stage.
func (a Availabilities) StageTeams(stage string) []string {
	seen := make(map[string]struct{})
	for key, teams := range a {
		if key.Stage != stage {
			continue
		}
		for team := range teams {
			seen[team] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for team := range seen {
		out = append(out, team)
	}
	sort.Strings(out)
	return out
}
