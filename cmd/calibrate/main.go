// Command calibrate tunes one model parameter against the historical
// schedule with a derivative-free minimizer. The objective replays the
// full schedule per candidate value, so runs take a while.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"gonum.org/v1/gonum/optimize"

	"league-predictor/internal/adapters/inbound/schedule"
	"league-predictor/internal/config"
	"league-predictor/internal/core/predictor"
	"league-predictor/internal/core/rating"
	"league-predictor/internal/telemetry"
)

func main() {
	target := flag.String("target", "alpha", "parameter to tune: alpha, beta or drawp")
	model := flag.String("model", "player", "gaussian granularity for beta/drawp: team or player")
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	params, err := config.LoadModelParams(cfg.ParamsPath)
	if err != nil {
		telemetry.Errorf("calibrate: %v", err)
		os.Exit(1)
	}

	doc, err := loadSchedule(cfg)
	if err != nil {
		telemetry.Errorf("calibrate: %v", err)
		os.Exit(1)
	}
	played, _, avail := doc.Split()
	if len(played) == 0 {
		telemetry.Errorf("calibrate: no finished games in the schedule")
		os.Exit(1)
	}

	opts := predictor.Options{Availabilities: avail, RosterCapacity: params.RosterQueueSize}
	gaussian := func(p rating.Params) *predictor.Engine {
		if *model == "team" {
			return predictor.NewTeamEngine(p, opts)
		}
		return predictor.NewPlayerEngine(p, opts)
	}

	var objective func(x float64) float64
	var init float64
	switch *target {
	case "alpha":
		init = params.Heuristic.Alpha
		objective = func(x float64) float64 {
			if x < 0 || x > 0.5 {
				return math.Inf(1)
			}
			e := predictor.NewMapDiffEngine(x, params.Heuristic.Beta, opts)
			e.TrainGames(played)
			return -e.TotalPoint()
		}
	case "beta":
		init = params.Gaussian.Beta
		objective = func(x float64) float64 {
			if x <= 0 {
				return math.Inf(1)
			}
			p := params.Rating()
			p.Beta = x
			e := gaussian(p)
			e.TrainGames(played)
			return -e.TotalPoint()
		}
	case "drawp":
		init = params.Gaussian.DrawProbability
		objective = func(x float64) float64 {
			if x <= 0 || x >= 1 {
				return math.Inf(1)
			}
			p := params.Rating()
			p.DrawProbability = x
			e := gaussian(p)
			e.TrainGames(played)
			expected, real := e.DrawCalibration()
			return math.Abs(expected - float64(real))
		}
	default:
		telemetry.Errorf("calibrate: unknown target %q", *target)
		os.Exit(1)
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 { return objective(x[0]) },
	}
	settings := &optimize.Settings{MajorIterations: 100}

	start := time.Now()
	result, err := optimize.Minimize(problem, []float64{init}, settings, &optimize.NelderMead{})
	if err != nil {
		telemetry.Errorf("calibrate: minimize: %v", err)
		os.Exit(1)
	}

	fmt.Printf("target:     %s (%s model)\n", *target, *model)
	fmt.Printf("games:      %d\n", len(played))
	fmt.Printf("initial:    %.6f (objective %.6f)\n", init, objective(init))
	fmt.Printf("optimal:    %.6f (objective %.6f)\n", result.X[0], result.F)
	fmt.Printf("evals:      %d in %s\n", result.FuncEvaluations, time.Since(start).Round(time.Millisecond))
}

func loadSchedule(cfg *config.Config) (schedule.Document, error) {
	if cfg.ScheduleURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return schedule.NewClient(cfg.ScheduleURL).Fetch(ctx)
	}
	return schedule.Load(cfg.SchedulePath)
}
