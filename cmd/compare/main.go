// Command compare replays the same schedule through every rating model and
// prints their evaluation scores side by side.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/montanaflynn/stats"

	"league-predictor/internal/adapters/inbound/schedule"
	"league-predictor/internal/config"
	"league-predictor/internal/core/predictor"
	"league-predictor/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	params, err := config.LoadModelParams(cfg.ParamsPath)
	if err != nil {
		telemetry.Errorf("compare: %v", err)
		os.Exit(1)
	}

	doc, err := loadSchedule(cfg)
	if err != nil {
		telemetry.Errorf("compare: %v", err)
		os.Exit(1)
	}
	played, _, avail := doc.Split()
	if len(played) == 0 {
		telemetry.Errorf("compare: no finished games in the schedule")
		os.Exit(1)
	}

	opts := predictor.Options{Availabilities: avail, RosterCapacity: params.RosterQueueSize}
	engines := []struct {
		name   string
		engine *predictor.Engine
	}{
		{"mapdiff", predictor.NewMapDiffEngine(params.Heuristic.Alpha, params.Heuristic.Beta, opts)},
		{"team", predictor.NewTeamEngine(params.Rating(), opts)},
		{"player", predictor.NewPlayerEngine(params.Rating(), opts)},
	}

	fmt.Printf("%d games replayed\n\n", len(played))
	fmt.Printf("%-10s %12s %12s %10s %16s\n", "Model", "TotalPoint", "AvgPoint", "Accuracy", "Draws exp/real")

	var points []float64
	for _, e := range engines {
		e.engine.TrainGames(played)
		expected, real := e.engine.DrawCalibration()
		fmt.Printf("%-10s %12.4f %12.4f %9.1f%% %10.1f/%d\n",
			e.name, e.engine.TotalPoint(), e.engine.AveragePoint(),
			100*e.engine.Accuracy(), expected, real)
		points = append(points, e.engine.AveragePoint())
	}

	if best, err := stats.Max(points); err == nil {
		for _, e := range engines {
			if e.engine.AveragePoint() == best {
				fmt.Printf("\nbest average point: %s\n", e.name)
				break
			}
		}
	}
}

func loadSchedule(cfg *config.Config) (schedule.Document, error) {
	if cfg.ScheduleURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return schedule.NewClient(cfg.ScheduleURL).Fetch(ctx)
	}
	return schedule.Load(cfg.SchedulePath)
}
