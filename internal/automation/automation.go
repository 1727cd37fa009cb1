package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/lagsim/internal/config"
	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/experiment"
	"github.com/san-kum/lagsim/internal/logging"
	"github.com/san-kum/lagsim/internal/sim"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from the geometry defaults, or from Preset when
// set, and overrides whatever fields are non-zero.
type ScenarioStep struct {
	Geometry string             `yaml:"geometry"`
	Preset   string             `yaml:"preset"`
	Solver   string             `yaml:"solver"`
	MaxDt    float64            `yaml:"max_dt"`
	Horizon  float64            `yaml:"horizon"`
	Points   int                `yaml:"points"`
	Params   map[string]float64 `yaml:"params"`
	Initial  map[string]float64 `yaml:"initial"`
	SaveAs   string             `yaml:"save_as"`
}

// StepResult is the outcome of one step. Trajectory may be partial when
// Err is set.
type StepResult struct {
	Step       ScenarioStep
	Config     *config.Config
	Trajectory *sim.Trajectory
	Err        error
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, dynamo.Invalidf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// Config resolves the step into a full run configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	var cfg *config.Config
	if s.Preset != "" {
		cfg = config.GetPreset(s.Geometry, s.Preset)
		if cfg == nil {
			return nil, dynamo.Invalidf("unknown preset %q for %s", s.Preset, s.Geometry)
		}
	} else {
		var err error
		if cfg, err = config.ForGeometry(s.Geometry); err != nil {
			return nil, dynamo.Invalidf("%v", err)
		}
	}

	if s.Solver != "" {
		cfg.Solver = s.Solver
	}
	if s.MaxDt != 0 {
		cfg.MaxDt = s.MaxDt
	}
	if s.Horizon != 0 {
		cfg.Grid.Horizon = s.Horizon
	}
	if s.Points != 0 {
		cfg.Grid.Points, cfg.Grid.Step = s.Points, 0
	}
	for k, v := range s.Params {
		cfg.Params[k] = v
	}
	for k, v := range s.Initial {
		cfg.Initial[k] = v
	}
	return cfg, cfg.Validate()
}

// RunScenario executes all steps in order. A failing step is recorded and
// the next one runs; only cancellation stops the sequence early.
func RunScenario(ctx context.Context, scenario *Scenario, logger *log.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		logger.Info("scenario step", "step", fmt.Sprintf("%d/%d", i+1, len(scenario.Steps)), "geometry", step.Geometry)

		res := StepResult{Step: step}
		res.Config, res.Err = step.Config()
		if res.Err == nil {
			res.Trajectory, res.Err = experiment.NewExperiment(res.Config, logger).Run(ctx)
		}
		if res.Err != nil {
			res.Err = fmt.Errorf("step %d: %w", i+1, res.Err)
			logger.Warn("scenario step failed", "step", i+1, "err", res.Err)
		}
		results = append(results, res)
	}

	return results, nil
}
