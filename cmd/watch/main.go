// Command watch follows the live feed, folds finished maps into a rating
// model as they arrive, and reprints the stage outlook after every
// completed series.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/singleflight"

	"league-predictor/internal/adapters/inbound/livefeed"
	"league-predictor/internal/adapters/inbound/schedule"
	"league-predictor/internal/config"
	"league-predictor/internal/core/league"
	"league-predictor/internal/core/predictor"
	"league-predictor/internal/core/sim"
	"league-predictor/internal/events"
	"league-predictor/internal/telemetry"
)

func main() {
	model := flag.String("model", "player", "rating model: mapdiff, team or player")
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	if cfg.FeedURL == "" {
		telemetry.Errorf("watch: FEED_URL is not set")
		os.Exit(1)
	}

	params, err := config.LoadModelParams(cfg.ParamsPath)
	if err != nil {
		telemetry.Errorf("watch: %v", err)
		os.Exit(1)
	}

	doc, err := loadSchedule(cfg)
	if err != nil {
		telemetry.Errorf("watch: %v", err)
		os.Exit(1)
	}
	played, upcoming, avail := doc.Split()

	simCfg := params.Sim()
	if cfg.SimIterations > 0 {
		simCfg.Iterations = cfg.SimIterations
	}

	engine, err := buildEngine(*model, params, avail, simCfg)
	if err != nil {
		telemetry.Errorf("watch: %v", err)
		os.Exit(1)
	}
	engine.TrainGames(played)
	telemetry.Infof("watch: warmed up on %d games  accuracy %.1f%%",
		len(played), 100*engine.Accuracy())

	frameStore, err := livefeed.OpenStore(cfg.FeedStorePath)
	if err != nil {
		telemetry.Errorf("watch: %v", err)
		os.Exit(1)
	}
	defer frameStore.Close()

	bus := events.NewBus()
	w := &watcher{engine: engine, upcoming: upcoming}
	bus.Subscribe(events.EventMapResult, w.onMapResult)
	bus.Subscribe(events.EventMatchFinal, w.onMatchFinal)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w.refresh()

	livefeed.NewClient(cfg.FeedURL, bus, frameStore).ConnectWithRetry(ctx)
	telemetry.Infof("watch: shutting down")
}

// watcher serializes engine access between feed handlers and refreshes.
type watcher struct {
	mu       sync.Mutex
	engine   *predictor.Engine
	upcoming []league.Game
	group    singleflight.Group
}

func (w *watcher) onMapResult(e events.Event) error {
	res, ok := e.Payload.(events.MapResult)
	if !ok {
		return fmt.Errorf("unexpected payload %T", e.Payload)
	}
	w.mu.Lock()
	w.engine.Train(res.Game)
	w.mu.Unlock()
	return nil
}

func (w *watcher) onMatchFinal(e events.Event) error {
	fin, ok := e.Payload.(events.MatchFinal)
	if !ok {
		return fmt.Errorf("unexpected payload %T", e.Payload)
	}

	w.mu.Lock()
	kept := w.upcoming[:0]
	for _, g := range w.upcoming {
		if g.MatchID != fin.MatchID {
			kept = append(kept, g)
		}
	}
	w.upcoming = kept
	w.mu.Unlock()

	telemetry.Infof("watch: series %d final, %s vs %s", fin.MatchID, fin.Teams[0], fin.Teams[1])
	w.refresh()
	return nil
}

// refresh recomputes and prints the stage outlook. Concurrent triggers
// collapse into one run.
func (w *watcher) refresh() {
	w.group.Do("refresh", func() (any, error) {
		start := time.Now()

		w.mu.Lock()
		remaining := make([]league.Game, len(w.upcoming))
		copy(remaining, w.upcoming)
		stage := w.engine.Tracker().Stage()
		out, err := w.engine.PredictStage(remaining)
		w.mu.Unlock()

		if err != nil {
			if errors.Is(err, predictor.ErrNoStage) {
				telemetry.Warnf("watch: no stage yet, waiting for games")
				return nil, nil
			}
			telemetry.Errorf("watch: stage simulation: %v", err)
			return nil, nil
		}

		printStage(stage, out)
		telemetry.Metrics.RefreshLatency.Record(time.Since(start))
		return nil, nil
	})
}

func loadSchedule(cfg *config.Config) (schedule.Document, error) {
	if cfg.ScheduleURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return schedule.NewClient(cfg.ScheduleURL).Fetch(ctx)
	}
	return schedule.Load(cfg.SchedulePath)
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
	teams := make([]string, 0, len(out.Top3))
	for team := range out.Top3 {
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool {
		a, b := out.Top1[teams[i]].Value(), out.Top1[teams[j]].Value()
		if a != b {
			return a > b
		}
		return teams[i] < teams[j]
	})

	fmt.Printf("── %s ──\n", stage)
	fmt.Printf("%-24s %12s %12s\n", "Team", "Top 3", "Title")
	for _, team := range teams {
		fmt.Printf("%-24s %12s %12s\n", team, formatChance(out.Top3[team]), formatChance(out.Top1[team]))
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
