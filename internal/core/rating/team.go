package rating

import "league-predictor/internal/core/league"

// TeamGaussian rates whole teams as single entities. Rosters are ignored.
type TeamGaussian struct {
	gaussianBase
}

func NewTeamGaussian(p Params) *TeamGaussian {
	return &TeamGaussian{gaussianBase: newGaussianBase(p)}
}

func (m *TeamGaussian) Predict(teams [2]string, _ [2]league.Roster, drawable bool) Prediction {
	env := m.env(drawable)
	return predictSides(env,
		[]Rating{m.Rating(teams[0])},
		[]Rating{m.Rating(teams[1])})
}

func (m *TeamGaussian) Train(g league.Game) {
	env := m.env(g.Drawable)
	a := []Rating{m.Rating(g.Teams[0])}
	b := []Rating{m.Rating(g.Teams[1])}

	na, nb := rateSides(env, a, b, outcomeSign(g.Score))
	m.ratings[g.Teams[0]] = na[0]
	m.ratings[g.Teams[1]] = nb[0]
}
