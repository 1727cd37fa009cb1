package dynamo

import "math"

// Grid is a strictly increasing sequence of output times.
type Grid []float64

// Linspace returns n evenly spaced points covering [start, horizon].
func Linspace(start, horizon float64, n int) (Grid, error) {
	if n <= 0 {
		return nil, Invalidf("empty time grid (points=%d)", n)
	}
	if err := checkSpan(start, horizon); err != nil {
		return nil, err
	}
	g := make(Grid, n)
	if n == 1 {
		g[0] = start
		return g, nil
	}
	step := (horizon - start) / float64(n-1)
	for i := range g {
		g[i] = start + float64(i)*step
	}
	g[n-1] = horizon
	return g, nil
}

// Arange returns start, start+step, ... up to but excluding horizon.
func Arange(start, horizon, step float64) (Grid, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, Invalidf("step must be positive, got %g", step)
	}
	if err := checkSpan(start, horizon); err != nil {
		return nil, err
	}
	n := int(math.Ceil((horizon - start) / step))
	g := make(Grid, 0, n)
	for i := 0; i < n; i++ {
		t := start + float64(i)*step
		if t >= horizon {
			break
		}
		g = append(g, t)
	}
	return g, nil
}

func checkSpan(start, horizon float64) error {
	if math.IsNaN(start) || math.IsInf(start, 0) || math.IsNaN(horizon) || math.IsInf(horizon, 0) {
		return Invalidf("non-finite time span [%g, %g]", start, horizon)
	}
	if horizon <= start {
		return Invalidf("horizon %g must exceed start %g", horizon, start)
	}
	return nil
}

// Validate rejects empty, non-finite and non-increasing grids.
func (g Grid) Validate() error {
	if len(g) == 0 {
		return Invalidf("empty time grid")
	}
	for i, t := range g {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return Invalidf("non-finite grid point %d", i)
		}
		if i > 0 && t <= g[i-1] {
			return Invalidf("grid not strictly increasing at index %d (%g <= %g)", i, t, g[i-1])
		}
	}
	return nil
}

func (g Grid) Start() float64 { return g[0] }
func (g Grid) End() float64   { return g[len(g)-1] }
