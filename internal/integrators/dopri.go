package integrators

import (
	"fmt"

	"github.com/ready-steady/ode/dopri"
	"github.com/san-kum/lagsim/internal/dynamo"
)

type computeFunc func(deriv func(float64, []float64, []float64), y0, xs []float64) ([]float64, error)

// Dopri delegates each interval to the Dormand-Prince integrator of
// github.com/ready-steady/ode, which chooses its own internal steps.
type Dopri struct {
	compute computeFunc
}

func NewDopri(tol float64) (*Dopri, error) {
	cfg := dopri.DefaultConfig()
	if tol > 0 {
		cfg.AbsError = tol
		cfg.RelError = tol
	}
	integ, err := dopri.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("dopri: %w", err)
	}
	return &Dopri{
		compute: func(deriv func(float64, []float64, []float64), y0, xs []float64) ([]float64, error) {
			ys, _, err := integ.Compute(deriv, y0, xs)
			return ys, err
		},
	}, nil
}

func (d *Dopri) Advance(dyn dynamo.System, x dynamo.State, t0, t1 float64) (dynamo.State, int, error) {
	if !(t1 > t0) {
		return nil, 0, dynamo.Invalidf("interval [%g, %g] is empty", t0, t1)
	}

	n := len(x)
	deriv := func(t float64, y, f []float64) {
		copy(f, dyn.Derive(dynamo.State(y), t))
	}

	ys, err := d.compute(deriv, x, []float64{t0, t1})
	if err != nil {
		return nil, 1, fmt.Errorf("%w: dopri: %v", dynamo.ErrNumericDivergence, err)
	}
	if len(ys) < n {
		return nil, 1, fmt.Errorf("%w: dopri returned %d values for a %d-dimensional state", dynamo.ErrDimensionMismatch, len(ys), n)
	}

	out := make(dynamo.State, n)
	copy(out, ys[len(ys)-n:])
	if !out.IsValid() {
		return nil, 1, fmt.Errorf("%w at t=%.6f", dynamo.ErrNumericDivergence, t1)
	}
	return out, 1, nil
}
