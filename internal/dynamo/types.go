package dynamo

import (
	"fmt"
	"math"
)

// State is the interleaved phase vector (q1, q1_dot, q2, q2_dot, ...).
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Coordinates returns the generalized coordinate values of an interleaved state.
func (s State) Coordinates() []float64 {
	out := make([]float64, len(s)/2)
	for i := range out {
		out[i] = s[2*i]
	}
	return out
}

// Velocities returns the generalized velocities of an interleaved state.
func (s State) Velocities() []float64 {
	out := make([]float64, len(s)/2)
	for i := range out {
		out[i] = s[2*i+1]
	}
	return out
}

// Interleave builds a state from separate coordinate and velocity slices.
func Interleave(q, v []float64) (State, error) {
	if len(q) != len(v) {
		return nil, fmt.Errorf("%w: %d coordinates, %d velocities", ErrDimensionMismatch, len(q), len(v))
	}
	s := make(State, 2*len(q))
	for i := range q {
		s[2*i] = q[i]
		s[2*i+1] = v[i]
	}
	return s, nil
}

type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, t, dt, tol float64) (State, float64, error)
}

// Solver advances a system across one output interval [t0, t1]. The
// returned count is the number of internal steps taken.
type Solver interface {
	Advance(dyn System, x State, t0, t1 float64) (State, int, error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnRecord(x State, t float64)
}

type Config struct {
	Dt            float64
	Tolerance     float64
	MaxDt         float64
	MinDt         float64
	MaxSteps      int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Tolerance:     1e-8,
		MaxDt:         0.005,
		MinDt:         1e-10,
		MaxSteps:      0,
		ValidateState: true,
	}
}
