package metrics

import (
	"math"

	"github.com/san-kum/lagsim/internal/dynamo"
)

// Settled is the fraction of records at which every generalized velocity
// of an interleaved state is within tol of zero. Damped geometries tend
// to 1 as they come to rest.
type Settled struct {
	tol     float64
	still   int
	samples int
}

func NewSettled(tol float64) *Settled {
	return &Settled{tol: tol}
}

func (s *Settled) Name() string { return "settled" }

func (s *Settled) Observe(x dynamo.State, t float64) {
	s.samples++
	for _, v := range x.Velocities() {
		if math.Abs(v) > s.tol {
			return
		}
	}
	s.still++
}

func (s *Settled) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.still) / float64(s.samples)
}

func (s *Settled) Reset() {
	s.still = 0
	s.samples = 0
}
