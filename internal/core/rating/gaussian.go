package rating

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.UnitNormal

// Params holds the Gaussian model parameters. Defaults follow the classic
// skill-rating scaling: prior mean 2500 with a third of it as uncertainty.
type Params struct {
	Mu              float64
	Sigma           float64
	Beta            float64
	Tau             float64
	DrawProbability float64
}

func DefaultParams() Params {
	return Params{
		Mu:              2500.0,
		Sigma:           2500.0 / 3.0,
		Beta:            2500.0 / 2.0,
		Tau:             25.0 / 3.0,
		DrawProbability: 0.06,
	}
}

// Env is one parameter environment. Every Gaussian model keeps two: one
// with the configured draw probability for maps where a tie is legal, and
// one with the draw probability forced to zero for must-decide maps.
type Env struct {
	Mu              float64
	Sigma           float64
	Beta            float64
	Tau             float64
	DrawProbability float64
}

func newEnv(p Params, drawProbability float64) Env {
	return Env{Mu: p.Mu, Sigma: p.Sigma, Beta: p.Beta, Tau: p.Tau, DrawProbability: drawProbability}
}

// NewRating returns the prior belief for a previously unseen entity.
func (e Env) NewRating() Rating { return Rating{Mu: e.Mu, Sigma: e.Sigma} }

// DrawMargin is the symmetric margin on the performance-difference scale
// below which an n-participant matchup is considered drawn, derived from
// the environment's draw probability.
func (e Env) DrawMargin(n int) float64 {
	return stdNormal.Quantile((e.DrawProbability+1)/2) * math.Sqrt(float64(n)) * e.Beta
}

// predictSides computes win/draw probabilities for side a against side b.
func predictSides(env Env, a, b []Rating) Prediction {
	n := len(a) + len(b)
	deltaMu := sumMu(a) - sumMu(b)
	margin := env.DrawMargin(n)
	denom := math.Sqrt(float64(n)*env.Beta*env.Beta + sumSigmaSq(a) + sumSigmaSq(b))

	pWin := stdNormal.CDF((deltaMu - margin) / denom)
	pNotLoss := stdNormal.CDF((deltaMu + margin) / denom)

	return Prediction{Win: pWin, Draw: pNotLoss - pWin}
}

// rateSides runs the two-sided Gaussian truncation update and returns the
// posterior ratings for both sides. outcome is positive when a won,
// negative when b won and zero on a draw. Dynamics variance (tau squared)
// is folded into every sigma before the update.
func rateSides(env Env, a, b []Rating, outcome int) ([]Rating, []Rating) {
	ea := addDynamics(a, env.Tau)
	eb := addDynamics(b, env.Tau)

	n := len(ea) + len(eb)
	c2 := float64(n)*env.Beta*env.Beta + sumSigmaSq(ea) + sumSigmaSq(eb)
	c := math.Sqrt(c2)
	eps := env.DrawMargin(n) / c
	t := (sumMu(ea) - sumMu(eb)) / c

	var vA, wA, vB, wB float64
	switch {
	case outcome > 0:
		vA = vWin(t, eps)
		wA = wWin(t, eps)
		vB, wB = -vA, wA
	case outcome < 0:
		vB = vWin(-t, eps)
		wB = wWin(-t, eps)
		vA, wA = -vB, wB
	default:
		vA = vDraw(t, eps)
		wA = wDraw(t, eps)
		vB = vDraw(-t, eps)
		wB = wDraw(-t, eps)
	}

	return updateSide(ea, c, c2, vA, wA), updateSide(eb, c, c2, vB, wB)
}

func updateSide(rs []Rating, c, c2, v, w float64) []Rating {
	out := make([]Rating, len(rs))
	for i, r := range rs {
		s2 := r.Sigma * r.Sigma
		mu := r.Mu + s2/c*v
		variance := s2 * (1 - s2/c2*w)
		if variance < 0 {
			variance = 0
		}
		out[i] = Rating{Mu: mu, Sigma: math.Sqrt(variance)}
	}
	return out
}

func addDynamics(rs []Rating, tau float64) []Rating {
	out := make([]Rating, len(rs))
	for i, r := range rs {
		out[i] = Rating{Mu: r.Mu, Sigma: math.Sqrt(r.Sigma*r.Sigma + tau*tau)}
	}
	return out
}

// vWin and wWin are the additive and multiplicative truncation corrections
// for a decisive result; vDraw and wDraw are the within-margin variants.
// The far-tail fallbacks keep the update finite when the observed result
// was considered nearly impossible.

func vWin(t, eps float64) float64 {
	x := t - eps
	denom := stdNormal.CDF(x)
	if denom < 1e-300 {
		return -x
	}
	return stdNormal.Prob(x) / denom
}

func wWin(t, eps float64) float64 {
	x := t - eps
	v := vWin(t, eps)
	w := v * (v + x)
	return clampUnit(w)
}

func vDraw(t, eps float64) float64 {
	absT := math.Abs(t)
	hi := eps - absT
	lo := -eps - absT
	denom := stdNormal.CDF(hi) - stdNormal.CDF(lo)
	if denom < 1e-300 {
		return -t
	}
	v := (stdNormal.Prob(lo) - stdNormal.Prob(hi)) / denom
	if t < 0 {
		return -v
	}
	return v
}

func wDraw(t, eps float64) float64 {
	absT := math.Abs(t)
	hi := eps - absT
	lo := -eps - absT
	denom := stdNormal.CDF(hi) - stdNormal.CDF(lo)
	if denom < 1e-300 {
		return 1
	}
	v := vDraw(absT, eps)
	w := v*v + (hi*stdNormal.Prob(hi)-lo*stdNormal.Prob(lo))/denom
	return clampUnit(w)
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func sumMu(rs []Rating) float64 {
	total := 0.0
	for _, r := range rs {
		total += r.Mu
	}
	return total
}

func sumSigmaSq(rs []Rating) float64 {
	total := 0.0
	for _, r := range rs {
		total += r.Sigma * r.Sigma
	}
	return total
}

// outcomeSign maps a score pair to the rateSides outcome convention.
func outcomeSign(score [2]int) int {
	switch {
	case score[0] > score[1]:
		return 1
	case score[0] < score[1]:
		return -1
	default:
		return 0
	}
}

// gaussianBase carries the shared state of both Gaussian granularities.
type gaussianBase struct {
	drawable Env
	strict   Env
	ratings  map[string]Rating
}

func newGaussianBase(p Params) gaussianBase {
	return gaussianBase{
		drawable: newEnv(p, p.DrawProbability),
		strict:   newEnv(p, 0),
		ratings:  make(map[string]Rating),
	}
}

func (b *gaussianBase) env(drawable bool) Env {
	if drawable {
		return b.drawable
	}
	return b.strict
}

// Rating returns the current belief for an entity, falling back to the
// prior for entities never trained on. Reads never insert.
func (b *gaussianBase) Rating(id string) Rating {
	if r, ok := b.ratings[id]; ok {
		return r
	}
	return b.drawable.NewRating()
}

// Prior returns the global prior rating.
func (b *gaussianBase) Prior() Rating { return b.drawable.NewRating() }

func (b *gaussianBase) ratingsOf(roster []string) []Rating {
	out := make([]Rating, len(roster))
	for i, name := range roster {
		out[i] = b.Rating(name)
	}
	return out
}
