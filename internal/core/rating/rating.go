// Package rating implements the pluggable skill models: a map-differential
// heuristic and a Bayesian-Gaussian model at team or player granularity.
package rating

import "league-predictor/internal/core/league"

// Rating is a Gaussian belief over an entity's skill.
type Rating struct {
	Mu    float64
	Sigma float64
}

// LCB is the lower confidence bound of the rating, a conservative point
// estimate used to rank rosters and players.
func (r Rating) LCB() float64 { return r.Mu - 3*r.Sigma }

// Prediction is a single-map forecast for the first team of a pair.
// The loss probability is the remainder 1 - Win - Draw.
type Prediction struct {
	Win  float64
	Draw float64
}

func (p Prediction) Loss() float64 { return 1 - p.Win - p.Draw }

// Rater is the capability every skill model provides. Predict is read-only;
// Train folds one finished map into the model. Rosters may carry nil
// entries when lineups are unknown; models that need them substitute their
// own guess.
type Rater interface {
	Predict(teams [2]string, rosters [2]league.Roster, drawable bool) Prediction
	Train(g league.Game)
}
