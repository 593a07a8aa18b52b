package rating

import (
	"math"

	"league-predictor/internal/core/league"
	"league-predictor/internal/core/roster"
	"league-predictor/internal/core/standings"
	"league-predictor/internal/telemetry"
)

// PlayerGaussian rates individual players and derives team strength from
// the strongest roster a team can currently field. Training updates the six
// players on each side of a map; a synthetic per-team rating summarizing
// the best roster is refreshed after every map and logged to the history.
type PlayerGaussian struct {
	gaussianBase

	standings *standings.Tracker
	rosters   *roster.History
	avail     league.Availabilities

	bestRosters map[string]league.Roster
	history     *History
}

func NewPlayerGaussian(p Params, tr *standings.Tracker, rh *roster.History, avail league.Availabilities) *PlayerGaussian {
	return &PlayerGaussian{
		gaussianBase: newGaussianBase(p),
		standings:    tr,
		rosters:      rh,
		avail:        avail,
		bestRosters:  make(map[string]league.Roster),
		history:      newHistory(),
	}
}

// History returns the per-series rating snapshot log.
func (m *PlayerGaussian) History() *History { return m.history }

// BestRoster returns the strongest roster last computed for a team, or nil
// if the team has never been rated.
func (m *PlayerGaussian) BestRoster(team string) league.Roster {
	return m.bestRosters[team]
}

func (m *PlayerGaussian) Predict(teams [2]string, rosters [2]league.Roster, drawable bool) Prediction {
	env := m.env(drawable)
	a := m.ratingsOf(m.sideRoster(teams[0], rosters[0]))
	b := m.ratingsOf(m.sideRoster(teams[1], rosters[1]))
	return predictSides(env, a, b)
}

func (m *PlayerGaussian) Train(g league.Game) {
	env := m.env(g.Drawable)
	ra := m.sideRoster(g.Teams[0], g.Rosters[0])
	rb := m.sideRoster(g.Teams[1], g.Rosters[1])

	na, nb := rateSides(env, m.ratingsOf(ra), m.ratingsOf(rb), outcomeSign(g.Score))
	for i, name := range ra {
		m.ratings[name] = na[i]
	}
	for i, name := range rb {
		m.ratings[name] = nb[i]
	}

	m.ratings[g.Teams[0]] = m.recordTeamRating(g.Teams[0])
	m.ratings[g.Teams[1]] = m.recordTeamRating(g.Teams[1])
}

// sideRoster resolves the lineup to rate. A known lineup is used as given;
// otherwise the team's last computed best roster stands in, and a team
// never rated gets an anonymous prior-strength placeholder.
func (m *PlayerGaussian) sideRoster(team string, r league.Roster) league.Roster {
	if len(r) > 0 {
		return r
	}
	if best, ok := m.bestRosters[team]; ok {
		return best
	}
	return make(league.Roster, league.RosterSize)
}

// recordTeamRating recomputes the team's best roster from the current
// availability entry, snapshots the eligible players' ratings, and returns
// the roster summary rating. Missing availability data degrades to the last
// known best roster rather than failing the update.
func (m *PlayerGaussian) recordTeamRating(team string) Rating {
	key := league.MatchKey{Stage: m.standings.Stage(), Number: m.standings.MatchNumber(team)}

	eligible, ok := m.avail[key][team]
	if !ok {
		telemetry.Warnf("rating: no availability for %s at stage %q match %d, keeping last roster", team, key.Stage, key.Number)
		return m.rosterRating(m.bestRosters[team])
	}

	snap := m.history.at(key)
	for _, name := range eligible.Players() {
		snap[name] = m.Rating(name)
	}

	best := m.rosters.Best(team, eligible, m.rosterScore, m.playerScore)
	m.bestRosters[team] = best

	rt := m.rosterRating(best)
	snap[team] = rt
	return rt
}

// rosterRating summarizes a roster as one rating: mean of the member means
// and the quadratic mean of the member deviations.
func (m *PlayerGaussian) rosterRating(r league.Roster) Rating {
	if len(r) == 0 {
		return m.Prior()
	}
	var mu, varSum float64
	for _, name := range r {
		pr := m.Rating(name)
		mu += pr.Mu
		varSum += pr.Sigma * pr.Sigma
	}
	n := float64(len(r))
	return Rating{Mu: mu / n, Sigma: math.Sqrt(varSum / n)}
}

func (m *PlayerGaussian) rosterScore(r league.Roster) float64 { return m.rosterRating(r).LCB() }

func (m *PlayerGaussian) playerScore(name string) float64 { return m.Rating(name).LCB() }
