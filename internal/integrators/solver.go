package integrators

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/lagsim/internal/dynamo"
)

// FixedStep advances an interval with equal sub-steps no longer than MaxDt.
type FixedStep struct {
	integ dynamo.Integrator
	maxDt float64
}

func NewFixedStep(integ dynamo.Integrator, maxDt float64) *FixedStep {
	return &FixedStep{integ: integ, maxDt: maxDt}
}

func (f *FixedStep) Advance(dyn dynamo.System, x dynamo.State, t0, t1 float64) (dynamo.State, int, error) {
	span := t1 - t0
	if !(span > 0) {
		return nil, 0, dynamo.Invalidf("interval [%g, %g] is empty", t0, t1)
	}
	if !(f.maxDt > 0) {
		return nil, 0, dynamo.Invalidf("max step must be positive, got %g", f.maxDt)
	}

	n := int(math.Ceil(span/f.maxDt - 1e-9))
	if n < 1 {
		n = 1
	}
	h := span / float64(n)

	cur := x
	for i := 0; i < n; i++ {
		t := t0 + float64(i)*h
		cur = f.integ.Step(dyn, cur, t, h)
		if !cur.IsValid() {
			return nil, i + 1, fmt.Errorf("%w at t=%.6f", dynamo.ErrNumericDivergence, t+h)
		}
	}
	return cur, n, nil
}

// Adaptive drives an AdaptiveIntegrator across each interval, retrying
// rejected attempts with the step size the integrator proposes.
type Adaptive struct {
	integ    dynamo.AdaptiveIntegrator
	tol      float64
	minDt    float64
	maxDt    float64
	maxSteps int
	dt       float64
}

func NewAdaptive(integ dynamo.AdaptiveIntegrator, cfg dynamo.Config) *Adaptive {
	return &Adaptive{
		integ:    integ,
		tol:      cfg.Tolerance,
		minDt:    cfg.MinDt,
		maxDt:    cfg.MaxDt,
		maxSteps: cfg.MaxSteps,
		dt:       cfg.Dt,
	}
}

func (a *Adaptive) Advance(dyn dynamo.System, x dynamo.State, t0, t1 float64) (dynamo.State, int, error) {
	if !(t1 > t0) {
		return nil, 0, dynamo.Invalidf("interval [%g, %g] is empty", t0, t1)
	}
	if !(a.tol > 0) {
		return nil, 0, dynamo.Invalidf("tolerance must be positive, got %g", a.tol)
	}

	if !(a.dt > 0) {
		a.dt = t1 - t0
	}

	cur := x
	t := t0
	steps := 0
	for t < t1 {
		if a.maxSteps > 0 && steps >= a.maxSteps {
			return nil, steps, fmt.Errorf("%w: %d attempts within [%g, %g]", dynamo.ErrStepLimit, steps, t0, t1)
		}

		h := a.dt
		if a.maxDt > 0 && h > a.maxDt {
			h = a.maxDt
		}
		full := h
		last := t+h >= t1
		if last {
			h = t1 - t
		}

		next, hNew, err := a.integ.StepAdaptive(dyn, cur, t, h, a.tol)
		steps++
		rejected := errors.Is(err, errRejected)
		// a step cut short to land on t1 keeps the current size for the next interval
		if hNew > 0 && !math.IsInf(hNew, 0) && (rejected || h >= full) {
			a.dt = hNew
		}
		if rejected {
			if a.dt < a.minDt {
				return nil, steps, fmt.Errorf("%w at t=%.6f (dt=%g)", dynamo.ErrStepTooSmall, t, a.dt)
			}
			continue
		}
		if err != nil {
			return nil, steps, err
		}
		if !next.IsValid() {
			return nil, steps, fmt.Errorf("%w at t=%.6f", dynamo.ErrNumericDivergence, t+h)
		}

		cur = next
		if last {
			t = t1
		} else {
			t += h
		}
	}
	return cur, steps, nil
}
