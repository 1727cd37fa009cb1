package sim

import (
	"math"

	"github.com/san-kum/lagsim/internal/compile"
	"github.com/san-kum/lagsim/internal/dynamo"
)

// System is a compiled model with concrete parameter values bound. It
// implements dynamo.System: each coordinate's derivative is its paired
// velocity and each velocity's derivative is the compiled acceleration.
type System struct {
	model  *compile.Model
	params []float64
	args   *ArgsPool
}

// NewSystem binds params into the model's argument layout.
func NewSystem(model *compile.Model, params map[string]float64) (*System, error) {
	bound, err := model.Order.Bind(params)
	if err != nil {
		return nil, err
	}
	return &System{
		model:  model,
		params: bound,
		args:   NewArgsPool(model.Order.Len()),
	}, nil
}

func (s *System) Model() *compile.Model { return s.model }

func (s *System) StateDim() int { return 2 * len(s.model.Accelerations) }

// Derive may be called at times outside the output grid; it is time-invariant.
func (s *System) Derive(x dynamo.State, t float64) dynamo.State {
	buf := s.args.Get()
	defer s.args.Put(buf)
	args := s.model.Order.Args(*buf, s.params, x)

	dx := make(dynamo.State, len(x))
	for i, acc := range s.model.Accelerations {
		dx[2*i] = x[2*i+1]
		dx[2*i+1] = acc(args)
	}
	return dx
}

// Energy returns kinetic plus potential energy at x.
func (s *System) Energy(x dynamo.State) float64 {
	buf := s.args.Get()
	defer s.args.Put(buf)
	return s.model.Energy(s.model.Order.Args(*buf, s.params, x))
}

// Positions maps x through the geometry into one Cartesian point per body.
func (s *System) Positions(x dynamo.State) []Point {
	buf := s.args.Get()
	defer s.args.Put(buf)
	args := s.model.Order.Args(*buf, s.params, x)

	out := make([]Point, len(s.model.Positions))
	for i, p := range s.model.Positions {
		out[i] = Point{X: p.X(args), Y: p.Y(args)}
	}
	return out
}

// Accelerations evaluates every compiled acceleration at x.
func (s *System) Accelerations(x dynamo.State) []float64 {
	buf := s.args.Get()
	defer s.args.Put(buf)
	return s.model.EvalAccelerations(nil, s.model.Order.Args(*buf, s.params, x))
}

// IsEquilibrium reports whether every velocity and acceleration at x is
// within tol of zero.
func (s *System) IsEquilibrium(x dynamo.State, tol float64) bool {
	for _, v := range x.Velocities() {
		if math.Abs(v) > tol {
			return false
		}
	}
	for _, a := range s.Accelerations(x) {
		if math.Abs(a) > tol {
			return false
		}
	}
	return true
}
