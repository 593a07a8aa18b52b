// Command predict replays the schedule's finished games through a rating
// model, simulates the rest of the current stage, and prints each team's
// qualification chances.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"league-predictor/internal/adapters/inbound/schedule"
	"league-predictor/internal/adapters/outbound/store"
	"league-predictor/internal/config"
	"league-predictor/internal/core/league"
	"league-predictor/internal/core/predictor"
	"league-predictor/internal/core/rating"
	"league-predictor/internal/core/sim"
	"league-predictor/internal/telemetry"
)

func main() {
	model := flag.String("model", "player", "rating model: mapdiff, team or player")
	export := flag.Bool("export", false, "write rating snapshots to the ratings store")
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	params, err := config.LoadModelParams(cfg.ParamsPath)
	if err != nil {
		telemetry.Errorf("predict: %v", err)
		os.Exit(1)
	}

	doc, err := loadSchedule(cfg)
	if err != nil {
		telemetry.Errorf("predict: %v", err)
		os.Exit(1)
	}
	played, upcoming, avail := doc.Split()

	engine, err := buildEngine(*model, params, avail, simConfig(cfg, params))
	if err != nil {
		telemetry.Errorf("predict: %v", err)
		os.Exit(1)
	}

	engine.TrainGames(played)
	telemetry.Infof("predict: replayed %d games  avg point %.4f  accuracy %.1f%%",
		len(played), engine.AveragePoint(), 100*engine.Accuracy())

	out, err := engine.PredictStage(upcoming)
	if err != nil {
		telemetry.Errorf("predict: %v", err)
		os.Exit(1)
	}
	printStage(engine.Tracker().Stage(), out)

	if *export {
		exportRatings(cfg, engine)
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

func simConfig(cfg *config.Config, params config.ModelParams) sim.Config {
	simCfg := params.Sim()
	if cfg.SimIterations > 0 {
		simCfg.Iterations = cfg.SimIterations
	}
	if cfg.SimWorkers > 0 {
		simCfg.Workers = cfg.SimWorkers
	}
	if cfg.SimSeed != 0 {
		simCfg.Seed = cfg.SimSeed
	}
	return simCfg
}

func buildEngine(model string, params config.ModelParams, avail league.Availabilities, simCfg sim.Config) (*predictor.Engine, error) {
	opts := predictor.Options{
		Availabilities: avail,
		RosterCapacity: params.RosterQueueSize,
		Sim:            simCfg,
	}
	switch model {
	case "mapdiff":
		return predictor.NewMapDiffEngine(params.Heuristic.Alpha, params.Heuristic.Beta, opts), nil
	case "team":
		return predictor.NewTeamEngine(params.Rating(), opts), nil
	case "player":
		return predictor.NewPlayerEngine(params.Rating(), opts), nil
	default:
		return nil, fmt.Errorf("unknown model %q", model)
	}
}

func printStage(stage string, out sim.Outcome) {
	type row struct {
		team string
		top3 sim.Chance
		top1 sim.Chance
	}
	rows := make([]row, 0, len(out.Top3))
	for team, top3 := range out.Top3 {
		rows = append(rows, row{team: team, top3: top3, top1: out.Top1[team]})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].top1.Value() != rows[j].top1.Value() {
			return rows[i].top1.Value() > rows[j].top1.Value()
		}
		if rows[i].top3.Value() != rows[j].top3.Value() {
			return rows[i].top3.Value() > rows[j].top3.Value()
		}
		return rows[i].team < rows[j].team
	})

	fmt.Printf("── %s ──\n", stage)
	fmt.Printf("%-24s %12s %12s\n", "Team", "Top 3", "Title")
	for _, r := range rows {
		fmt.Printf("%-24s %12s %12s\n", r.team, formatChance(r.top3), formatChance(r.top1))
	}
}

func formatChance(c sim.Chance) string {
	if c.Resolved {
		if c.Definite {
			return "clinched"
		}
		return "out"
	}
	return fmt.Sprintf("%.1f%%", 100*c.P)
}

func exportRatings(cfg *config.Config, engine *predictor.Engine) {
	pg, ok := engine.Model().(*rating.PlayerGaussian)
	if !ok {
		telemetry.Warnf("predict: only the player model keeps a rating history, nothing to export")
		return
	}

	db, err := store.Open(cfg.RatingsDBPath)
	if err != nil {
		telemetry.Errorf("predict: open ratings store: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.SaveHistory(pg.Prior(), pg.History()); err != nil {
		telemetry.Errorf("predict: save ratings: %v", err)
		os.Exit(1)
	}
}
