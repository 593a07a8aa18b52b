package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"league-predictor/internal/core/rating"
	"league-predictor/internal/core/sim"
)

type GaussianParams struct {
	Mu              float64 `yaml:"mu"`
	Sigma           float64 `yaml:"sigma"`
	Beta            float64 `yaml:"beta"`
	Tau             float64 `yaml:"tau"`
	DrawProbability float64 `yaml:"draw_probability"`
}

type HeuristicParams struct {
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
}

type SimulationParams struct {
	Iterations int   `yaml:"iterations"`
	Workers    int   `yaml:"workers"`
	Seed       int64 `yaml:"seed"`
}

type ModelParams struct {
	Heuristic       HeuristicParams  `yaml:"heuristic"`
	Gaussian        GaussianParams   `yaml:"gaussian"`
	Simulation      SimulationParams `yaml:"simulation"`
	RosterQueueSize int              `yaml:"roster_queue_size"`
}

// DefaultModelParams returns the parameter set used when no file overrides
// them.
func DefaultModelParams() ModelParams {
	g := rating.DefaultParams()
	return ModelParams{
		Heuristic: HeuristicParams{Alpha: 0.2, Beta: 0.1},
		Gaussian: GaussianParams{
			Mu:              g.Mu,
			Sigma:           g.Sigma,
			Beta:            g.Beta,
			Tau:             g.Tau,
			DrawProbability: g.DrawProbability,
		},
		Simulation: SimulationParams{Iterations: sim.DefaultIterations},
	}
}

// LoadModelParams reads a parameters file over the defaults. A missing file
// is not an error; the defaults are returned unchanged.
func LoadModelParams(path string) (ModelParams, error) {
	params := DefaultModelParams()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return params, nil
		}
		return params, fmt.Errorf("read model params: %w", err)
	}
	if err := yaml.Unmarshal(data, &params); err != nil {
		return params, fmt.Errorf("parse model params: %w", err)
	}
	return params, nil
}

// Rating converts the file representation to the model's parameter type.
func (p ModelParams) Rating() rating.Params {
	return rating.Params{
		Mu:              p.Gaussian.Mu,
		Sigma:           p.Gaussian.Sigma,
		Beta:            p.Gaussian.Beta,
		Tau:             p.Gaussian.Tau,
		DrawProbability: p.Gaussian.DrawProbability,
	}
}

// Sim converts the file representation to the simulator's configuration.
func (p ModelParams) Sim() sim.Config {
	return sim.Config{
		Iterations: p.Simulation.Iterations,
		Workers:    p.Simulation.Workers,
		Seed:       p.Simulation.Seed,
	}
}
