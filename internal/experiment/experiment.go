package experiment

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/san-kum/lagsim/internal/config"
	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/integrators"
	"github.com/san-kum/lagsim/internal/lagrange"
	"github.com/san-kum/lagsim/internal/logging"
	"github.com/san-kum/lagsim/internal/physics"
	"github.com/san-kum/lagsim/internal/sim"
)

// Experiment runs one configuration through a fresh pipeline.
type Experiment struct {
	cfg       *config.Config
	logger    *log.Logger
	observers []dynamo.Observer
	pipeline  *Pipeline
}

func NewExperiment(cfg *config.Config, logger *log.Logger) *Experiment {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Experiment{cfg: cfg, logger: logger}
}

func (e *Experiment) AddObserver(o dynamo.Observer) { e.observers = append(e.observers, o) }

// Pipeline is the pipeline of the last Run.
func (e *Experiment) Pipeline() *Pipeline { return e.pipeline }

// RequestFor resolves the configured initial values against eq.
func RequestFor(cfg *config.Config, eq *lagrange.Equations) (sim.Request, error) {
	grid, err := cfg.Grid.Build()
	if err != nil {
		return sim.Request{}, err
	}
	x0, err := eq.StateFrom(cfg.Initial)
	if err != nil {
		return sim.Request{}, err
	}
	return sim.Request{Params: cfg.Params, Initial: x0, Grid: grid}, nil
}

// Run validates the configuration, derives and compiles the geometry and
// integrates it. The partial trajectory of an early stop is returned with
// the error.
func (e *Experiment) Run(ctx context.Context) (*sim.Trajectory, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	entry, err := physics.Lookup(e.cfg.Geometry)
	if err != nil {
		return nil, err
	}
	solver, err := integrators.New(e.cfg.Solver, e.cfg.SolverConfig())
	if err != nil {
		return nil, err
	}

	opts := []Option{WithLogger(e.logger.With("geometry", e.cfg.Geometry, "solver", e.cfg.Solver))}
	for _, o := range e.observers {
		opts = append(opts, WithObserver(o))
	}
	p := New(opts...)
	e.pipeline = p

	if err := p.Build(entry.Build()); err != nil {
		return nil, err
	}
	req, err := RequestFor(e.cfg, p.Equations())
	if err != nil {
		return nil, err
	}
	return p.Integrate(ctx, solver, req, e.cfg.SolverConfig())
}
