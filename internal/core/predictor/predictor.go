// Package predictor ties the pieces together: it replays finished games
// through evaluation, standings, roster history and model training, and
// answers match and stage questions against the current state.
package predictor

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"league-predictor/internal/core/league"
	"league-predictor/internal/core/rating"
	"league-predictor/internal/core/roster"
	"league-predictor/internal/core/series"
	"league-predictor/internal/core/sim"
	"league-predictor/internal/core/standings"
	"league-predictor/internal/telemetry"
)

// ErrNoStage is returned by stage-scoped operations before any game has
// established a stage.
var ErrNoStage = errors.New("predictor: no stage established yet")

// Options configures the parts of an engine shared by every model kind.
type Options struct {
	Availabilities league.Availabilities
	RosterCapacity int
	Sim            sim.Config
}

// Engine owns one model and the replay state it depends on. Engines are
// independent: calibration sweeps construct many of them side by side.
type Engine struct {
	model   rating.Rater
	tracker *standings.Tracker
	rosters *roster.History
	avail   league.Availabilities
	simCfg  sim.Config

	points        []float64
	corrects      []float64
	expectedDraws float64
	realDraws     int
}

func newEngine(opts Options) *Engine {
	avail := opts.Availabilities
	if avail == nil {
		avail = league.Availabilities{}
	}
	return &Engine{
		tracker: standings.NewTracker(),
		rosters: roster.NewHistory(opts.RosterCapacity),
		avail:   avail,
		simCfg:  opts.Sim,
	}
}

// NewMapDiffEngine builds an engine around the map-differential heuristic.
func NewMapDiffEngine(alpha, beta float64, opts Options) *Engine {
	e := newEngine(opts)
	e.model = rating.NewMapDiff(alpha, beta, e.tracker)
	return e
}

// NewTeamEngine builds an engine around the team-granularity Gaussian model.
func NewTeamEngine(p rating.Params, opts Options) *Engine {
	e := newEngine(opts)
	e.model = rating.NewTeamGaussian(p)
	return e
}

// NewPlayerEngine builds an engine around the player-granularity Gaussian
// model.
func NewPlayerEngine(p rating.Params, opts Options) *Engine {
	e := newEngine(opts)
	e.model = rating.NewPlayerGaussian(p, e.tracker, e.rosters, e.avail)
	return e
}

func (e *Engine) Model() rating.Rater         { return e.model }
func (e *Engine) Tracker() *standings.Tracker { return e.tracker }
func (e *Engine) Rosters() *roster.History    { return e.rosters }

// Evaluate scores the model's forecast for one game against the game's
// actual result, without mutating any state. The forecast being scored is
// the must-decide one, even for drawable maps; a drawn game scores zero
// and is never counted correct. The point is ln(2p) where p is the
// probability mass the model put on the side that actually won.
func (e *Engine) Evaluate(g league.Game) (point float64, correct bool) {
	return evaluate(e.model.Predict(g.Teams, g.Rosters, false), g)
}

func evaluate(pred rating.Prediction, g league.Game) (float64, bool) {
	if !g.Decisive() {
		return 0, false
	}
	win := clamp01(pred.Win)
	loss := clamp01(pred.Loss())
	onWinner := win
	if g.Score[1] > g.Score[0] {
		onWinner, loss = loss, win
	}
	return math.Log(2 * onWinner), onWinner > loss
}

// Train folds one finished game into the engine. The order is load-bearing:
// evaluation reads the pre-update state, and standings and rosters must be
// current before the model trains on the game.
func (e *Engine) Train(g league.Game) {
	point, correct := e.Evaluate(g)
	e.points = append(e.points, point)
	if g.Decisive() {
		if correct {
			e.corrects = append(e.corrects, 1)
		} else {
			e.corrects = append(e.corrects, 0)
		}
	}

	for i, team := range g.Teams {
		if len(g.Rosters[i]) > 0 {
			e.rosters.Record(team, g.Rosters[i])
		}
	}

	e.tracker.Update(g)

	if g.Drawable {
		// The draw counter wants the drawable forecast; the scored one is
		// must-decide and carries no draw mass.
		pred := e.model.Predict(g.Teams, g.Rosters, true)
		e.expectedDraws += clamp01(pred.Draw)
		if !g.Decisive() {
			e.realDraws++
		}
	}

	e.model.Train(g)
	telemetry.Metrics.GamesReplayed.Inc()
}

// TrainGames replays games strictly in the given order.
func (e *Engine) TrainGames(games []league.Game) {
	for _, g := range games {
		e.Train(g)
	}
}

// PredictMatchScore returns the distribution over final series scores for
// one upcoming series.
func (e *Engine) PredictMatchScore(teams [2]string, rosters [2]league.Roster, format league.MatchFormat) (series.Dist, error) {
	undrawable := e.model.Predict(teams, rosters, false)
	drawable := e.model.Predict(teams, rosters, true)
	return series.Outcomes(format, undrawable, drawable)
}

// PredictMatch returns the probability the first team wins the series.
func (e *Engine) PredictMatch(teams [2]string, rosters [2]league.Roster, format league.MatchFormat) (float64, error) {
	dist, err := e.PredictMatchScore(teams, rosters, format)
	if err != nil {
		return 0, err
	}
	return dist.WinProb(), nil
}

// PredictStage simulates the rest of the current stage and returns each
// team's top-3 and title chances. remaining may span several stages; only
// this stage's regular-format series are simulated.
func (e *Engine) PredictStage(remaining []league.Game) (sim.Outcome, error) {
	stage := e.tracker.Stage()
	if stage == "" {
		return sim.Outcome{}, ErrNoStage
	}

	upcoming := make([]league.Game, 0, len(remaining))
	for _, g := range remaining {
		if g.Stage == stage && g.Format == league.FormatRegular {
			upcoming = append(upcoming, g)
		}
	}

	teams := e.stageTeams(stage, upcoming)

	odds := make([]sim.GameOdds, 0, len(upcoming))
	for _, g := range upcoming {
		dist, err := e.PredictMatchScore(g.Teams, [2]league.Roster{}, g.Format)
		if err != nil {
			return sim.Outcome{}, fmt.Errorf("series odds for %s vs %s: %w", g.Teams[0], g.Teams[1], err)
		}
		odds = append(odds, sim.NewGameOdds(g.Teams, dist))
	}

	pWins, err := e.pairwiseWins(teams, league.FormatRegular)
	if err != nil {
		return sim.Outcome{}, err
	}
	pWinsTitle, err := e.pairwiseWins(teams, league.FormatTitle)
	if err != nil {
		return sim.Outcome{}, err
	}

	titleWins, titleLosses := e.tracker.TitleCounters()
	st := sim.Stage{
		Teams:         teams,
		Counters:      e.tracker.StageCounters(),
		TitleWins:     titleWins,
		TitleLosses:   titleLosses,
		StageFinished: e.tracker.StageFinished(),
		Remaining:     odds,
		PWins:         pWins,
		PWinsTitle:    pWinsTitle,
	}
	return sim.Run(st, e.simCfg), nil
}

// stageTeams prefers the availability table's team list and falls back to
// the teams seen in standings or the remaining schedule.
func (e *Engine) stageTeams(stage string, upcoming []league.Game) []string {
	teams := e.avail.StageTeams(stage)
	if len(teams) > 0 {
		return teams
	}

	seen := make(map[string]struct{})
	for team := range e.tracker.StageCounters().Wins {
		seen[team] = struct{}{}
	}
	for _, g := range upcoming {
		seen[g.Teams[0]] = struct{}{}
		seen[g.Teams[1]] = struct{}{}
	}
	teams = make([]string, 0, len(seen))
	for team := range seen {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	return teams
}

func (e *Engine) pairwiseWins(teams []string, format league.MatchFormat) (map[standings.Pair]float64, error) {
	out := make(map[standings.Pair]float64, len(teams)*(len(teams)-1))
	for _, a := range teams {
		for _, b := range teams {
			if a == b {
				continue
			}
			p, err := e.PredictMatch([2]string{a, b}, [2]league.Roster{}, format)
			if err != nil {
				return nil, err
			}
			out[standings.Pair{A: a, B: b}] = p
		}
	}
	return out, nil
}

// TotalPoint is the summed evaluation score over every replayed game.
// Calibration minimizes its negation.
func (e *Engine) TotalPoint() float64 {
	total, err := stats.Sum(e.points)
	if err != nil {
		return 0
	}
	return total
}

// AveragePoint is the mean evaluation score, zero before any replay.
func (e *Engine) AveragePoint() float64 {
	mean, err := stats.Mean(e.points)
	if err != nil {
		return 0
	}
	return mean
}

// Accuracy is the share of decisive games the model called correctly.
func (e *Engine) Accuracy() float64 {
	mean, err := stats.Mean(e.corrects)
	if err != nil {
		return 0
	}
	return mean
}

// DrawCalibration returns the summed predicted draw mass and the observed
// draw count over drawable maps, the two sides of draw-rate calibration.
func (e *Engine) DrawCalibration() (expected float64, real int) {
	return e.expectedDraws, e.realDraws
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
