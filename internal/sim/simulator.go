package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/lagsim/internal/compile"
	"github.com/san-kum/lagsim/internal/dynamo"
)

// Simulator integrates a compiled model over an output grid, one solver
// Advance per grid interval.
type Simulator struct {
	model     *compile.Model
	solver    dynamo.Solver
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(model *compile.Model, solver dynamo.Solver) *Simulator {
	return &Simulator{
		model:     model,
		solver:    solver,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run validates the request, then integrates it. Invalid input fails with
// ErrInvalidConfiguration before any integration work. A run that stops
// early returns the trajectory recorded so far with Complete=false,
// together with a *dynamo.SimulationError.
func (s *Simulator) Run(ctx context.Context, req Request, cfg dynamo.Config) (*Trajectory, error) {
	if err := req.Grid.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxSteps < 0 {
		return nil, dynamo.Invalidf("max steps must not be negative, got %d", cfg.MaxSteps)
	}

	sys, err := NewSystem(s.model, req.Params)
	if err != nil {
		return nil, err
	}
	if len(req.Initial) != sys.StateDim() {
		return nil, dynamo.Invalidf("initial state has %d values, system needs %d", len(req.Initial), sys.StateDim())
	}
	if !req.Initial.IsValid() {
		return nil, dynamo.Invalidf("initial state %v is not finite", req.Initial)
	}

	n := len(req.Grid)
	tr := &Trajectory{
		Name:        s.model.Name,
		Coordinates: append([]string(nil), s.model.Coordinates...),
		StateNames:  append([]string(nil), s.model.StateNames...),
		Times:       make([]float64, 0, n),
		States:      make([]dynamo.State, 0, n),
		Positions:   make([][]Point, 0, n),
		Energies:    make([]float64, 0, n),
		Metrics:     make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := req.Initial.Clone()
	if err := s.record(tr, sys, x, req.Grid[0]); err != nil {
		return nil, dynamo.Invalidf("initial state maps outside the geometry: %v", err)
	}

	for i := 1; i < n; i++ {
		select {
		case <-ctx.Done():
			s.finish(tr)
			return tr, &dynamo.SimulationError{Step: i, Time: req.Grid[i-1], State: x, Wrapped: ctx.Err()}
		default:
		}

		t0, t1 := req.Grid[i-1], req.Grid[i]
		next, steps, err := s.solver.Advance(sys, x, t0, t1)
		tr.Steps += steps
		if err != nil {
			s.finish(tr)
			return tr, &dynamo.SimulationError{Step: i, Time: t0, State: x, Wrapped: classify(err)}
		}
		if cfg.MaxSteps > 0 && tr.Steps > cfg.MaxSteps {
			s.finish(tr)
			return tr, &dynamo.SimulationError{
				Step: i, Time: t0, State: x,
				Wrapped: fmt.Errorf("%w: %d solver steps exceed budget of %d", dynamo.ErrStepLimit, tr.Steps, cfg.MaxSteps),
			}
		}
		if cfg.ValidateState && !next.IsValid() {
			s.finish(tr)
			return tr, &dynamo.SimulationError{Step: i, Time: t1, State: next, Wrapped: dynamo.ErrNumericDivergence}
		}

		x = next
		if err := s.record(tr, sys, x, t1); err != nil {
			s.finish(tr)
			return tr, &dynamo.SimulationError{Step: i, Time: t1, State: x, Wrapped: err}
		}
	}

	tr.Complete = true
	s.finish(tr)
	return tr, nil
}

func (s *Simulator) record(tr *Trajectory, sys *System, x dynamo.State, t float64) error {
	positions := sys.Positions(x)
	for i, p := range positions {
		if !p.IsValid() {
			return fmt.Errorf("%w: body %d position is not finite", dynamo.ErrNumericDivergence, i)
		}
	}

	state := x.Clone()
	tr.Times = append(tr.Times, t)
	tr.States = append(tr.States, state)
	tr.Positions = append(tr.Positions, positions)
	tr.Energies = append(tr.Energies, sys.Energy(x))

	for _, m := range s.metrics {
		m.Observe(state, t)
	}
	for _, obs := range s.observers {
		obs.OnRecord(state, t)
	}
	return nil
}

func (s *Simulator) finish(tr *Trajectory) {
	for _, m := range s.metrics {
		tr.Metrics[m.Name()] = m.Value()
	}
}

// classify maps solver failures onto the caller-visible error kinds.
func classify(err error) error {
	switch {
	case errors.Is(err, dynamo.ErrNumericDivergence),
		errors.Is(err, dynamo.ErrStepLimit),
		errors.Is(err, dynamo.ErrInvalidConfiguration):
		return err
	}
	return fmt.Errorf("%w: %w", dynamo.ErrNumericDivergence, err)
}
