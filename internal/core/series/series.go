// Package series turns per-map win/draw probabilities into a probability
// distribution over full best-of-N series scores.
package series

import (
	"errors"

	"league-predictor/internal/core/league"
	"league-predictor/internal/core/rating"
)

// ErrUnknownFormat is returned for a match format with no map pattern.
var ErrUnknownFormat = errors.New("series: unknown match format")

// patterns lists, per format, whether each map of the series may end drawn.
var patterns = map[league.MatchFormat][]bool{
	league.FormatRegular: {true, false, true, false},
	league.FormatTitle:   {false, false, true, true, false},
}

// Score is a series score from the first team's perspective.
type Score struct {
	A int
	B int
}

// Diff is the map differential the score awards the first team.
func (s Score) Diff() int { return s.A - s.B }

// Dist is a probability distribution over final series scores.
type Dist map[Score]float64

// Outcomes computes the final-score distribution of a series. Every map of
// the format's pattern is played; drawn maps leave the score unchanged. A
// series still level after the pattern is settled by one tie-breaker map,
// so no tied score survives in the result. The two predictions are the
// per-map forecasts under the must-decide and the draw-allowing rules.
func Outcomes(format league.MatchFormat, undrawable, drawable rating.Prediction) (Dist, error) {
	pattern, ok := patterns[format]
	if !ok {
		return nil, ErrUnknownFormat
	}

	dist := Dist{Score{}: 1}
	for _, mayDraw := range pattern {
		p := undrawable
		if mayDraw {
			p = drawable
		}
		next := make(Dist, 2*len(dist))
		for s, mass := range dist {
			next[Score{s.A + 1, s.B}] += mass * p.Win
			next[Score{s.A, s.B + 1}] += mass * p.Loss()
			if mayDraw {
				next[s] += mass * p.Draw
			}
		}
		dist = next
	}

	// Tie-breaker map, played under the must-decide rules.
	settled := make(Dist, len(dist))
	for s, mass := range dist {
		if s.A != s.B {
			settled[s] += mass
			continue
		}
		settled[Score{s.A + 1, s.B}] += mass * undrawable.Win
		settled[Score{s.A, s.B + 1}] += mass * undrawable.Loss()
	}
	return settled, nil
}

// WinProb is the probability the first team wins the series.
func (d Dist) WinProb() float64 {
	total := 0.0
	for s, mass := range d {
		if s.A > s.B {
			total += mass
		}
	}
	return total
}

// ExpectedDiff is the expected map differential for the first team.
func (d Dist) ExpectedDiff() float64 {
	total := 0.0
	for s, mass := range d {
		total += float64(s.Diff()) * mass
	}
	return total
}
