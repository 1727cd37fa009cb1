package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/lagsim/internal/compile"
	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/lagrange"
	"github.com/san-kum/lagsim/internal/logging"
	"github.com/san-kum/lagsim/internal/metrics"
	"github.com/san-kum/lagsim/internal/sim"
)

const settleTolerance = 1e-3

// Pipeline drives one geometry from declaration to a trajectory. Each
// operation is valid in exactly one stage; any failure moves the pipeline
// to Failed, after which a new Pipeline must be built.
type Pipeline struct {
	stage  Stage
	err    error
	logger *log.Logger
	order  *compile.Order

	observers []dynamo.Observer

	geometry   *lagrange.Geometry
	lagrangian *lagrange.Lagrangian
	equations  *lagrange.Equations
	model      *compile.Model
	trajectory *sim.Trajectory
}

type Option func(*Pipeline)

func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithOrder fixes the compiled argument layout instead of deriving it
// from the equations.
func WithOrder(o *compile.Order) Option {
	return func(p *Pipeline) { p.order = o }
}

// WithObserver receives every recorded state during Integrate.
func WithObserver(o dynamo.Observer) Option {
	return func(p *Pipeline) { p.observers = append(p.observers, o) }
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Stage() Stage { return p.stage }

// Err is the error that moved the pipeline to Failed.
func (p *Pipeline) Err() error { return p.err }

func (p *Pipeline) Geometry() *lagrange.Geometry     { return p.geometry }
func (p *Pipeline) Lagrangian() *lagrange.Lagrangian { return p.lagrangian }
func (p *Pipeline) Equations() *lagrange.Equations   { return p.equations }
func (p *Pipeline) Model() *compile.Model            { return p.model }

// Trajectory is the finished trajectory, or the partial one of a run
// that stopped early.
func (p *Pipeline) Trajectory() *sim.Trajectory { return p.trajectory }

func (p *Pipeline) expect(want Stage, op string) error {
	if p.stage == want {
		return nil
	}
	if p.stage == Failed {
		return fmt.Errorf("%w: %s after failure (%v); rebuild the pipeline", dynamo.ErrStageOrder, op, p.err)
	}
	return fmt.Errorf("%w: %s needs stage %s, pipeline is %s", dynamo.ErrStageOrder, op, want, p.stage)
}

func (p *Pipeline) fail(stage Stage, err error) error {
	p.stage = Failed
	p.err = err
	p.logger.Error("pipeline failed", "stage", stage, "err", err)
	return err
}

func (p *Pipeline) enter(next Stage) {
	p.logger.Debug("stage", "from", p.stage, "to", next)
	p.stage = next
}

// Declare validates and stores the geometry.
func (p *Pipeline) Declare(g *lagrange.Geometry) error {
	if err := p.expect(Uninitialized, "declare"); err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return p.fail(Uninitialized, err)
	}
	p.geometry = g
	p.enter(GeometryDeclared)
	p.logger.Info("geometry declared", "name", g.Name, "coordinates", g.CoordinateNames(), "params", g.Params)
	return nil
}

func (p *Pipeline) BuildLagrangian() error {
	if err := p.expect(GeometryDeclared, "build lagrangian"); err != nil {
		return err
	}
	l, err := lagrange.Build(p.geometry)
	if err != nil {
		return p.fail(GeometryDeclared, err)
	}
	p.lagrangian = l
	p.enter(LagrangianBuilt)
	p.logger.Debug("lagrangian built", "L", l.L.String())
	return nil
}

// Solve forms the Euler-Lagrange equations and solves them for the
// accelerations. A singular system fails with ErrDegenerateSystem.
func (p *Pipeline) Solve() error {
	if err := p.expect(LagrangianBuilt, "solve"); err != nil {
		return err
	}
	start := time.Now()
	eq, err := p.lagrangian.Solve()
	if err != nil {
		return p.fail(LagrangianBuilt, err)
	}
	p.equations = eq
	p.enter(EquationsSolved)
	p.logger.Info("equations solved", "name", eq.Name, "elapsed", time.Since(start))
	for _, line := range eq.Strings() {
		p.logger.Debug("equation", "eq", line)
	}
	return nil
}

// Compile turns the solved equations into numeric functions.
func (p *Pipeline) Compile() error {
	if err := p.expect(EquationsSolved, "compile"); err != nil {
		return err
	}

	order := p.order
	if order == nil {
		var err error
		if order, err = compile.OrderFor(p.equations); err != nil {
			return p.fail(EquationsSolved, err)
		}
	}

	model, err := compile.Compile(p.equations, order)
	if err != nil {
		return p.fail(EquationsSolved, err)
	}

	p.model = model
	p.enter(FunctionsCompiled)
	p.logger.Info("functions compiled", "args", order.Names())
	return nil
}

// Integrate runs the compiled model over req. When the run stops early the
// partial trajectory stays available through Trajectory.
func (p *Pipeline) Integrate(ctx context.Context, solver dynamo.Solver, req sim.Request, cfg dynamo.Config) (*sim.Trajectory, error) {
	if err := p.expect(FunctionsCompiled, "integrate"); err != nil {
		return nil, err
	}

	sys, err := sim.NewSystem(p.model, req.Params)
	if err != nil {
		return nil, p.fail(FunctionsCompiled, err)
	}

	p.enter(Integrating)
	s := sim.New(p.model, solver)
	s.AddMetric(metrics.NewEnergyDrift(sys))
	s.AddMetric(metrics.NewRadialExtent(sys))
	s.AddMetric(metrics.NewEnergy(sys))
	s.AddMetric(metrics.NewSettled(settleTolerance))
	for _, o := range p.observers {
		s.AddObserver(o)
	}

	start := time.Now()
	tr, err := s.Run(ctx, req, cfg)
	p.trajectory = tr
	if err != nil {
		if tr != nil {
			p.logger.Warn("trajectory incomplete", "records", tr.Len(), "of", len(req.Grid))
		}
		return tr, p.fail(Integrating, err)
	}

	p.enter(TrajectoryReady)
	p.logger.Info("trajectory ready",
		"records", tr.Len(),
		"steps", tr.Steps,
		"max_radius", tr.MaxRadius(),
		"energy_drift", tr.Metrics["energy_drift"],
		"elapsed", time.Since(start))
	return tr, nil
}

// Run drives a fresh pipeline through every stage.
func Run(ctx context.Context, g *lagrange.Geometry, solver dynamo.Solver, req sim.Request, cfg dynamo.Config, opts ...Option) (*Pipeline, error) {
	p := New(opts...)
	if err := p.Build(g); err != nil {
		return p, err
	}
	_, err := p.Integrate(ctx, solver, req, cfg)
	return p, err
}

// Build runs Declare through Compile.
func (p *Pipeline) Build(g *lagrange.Geometry) error {
	if err := p.Declare(g); err != nil {
		return err
	}
	if err := p.BuildLagrangian(); err != nil {
		return err
	}
	if err := p.Solve(); err != nil {
		return err
	}
	return p.Compile()
}
