package metrics

import (
	"math"

	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/sim"
)

// Positioner maps a state to Cartesian body positions.
type Positioner interface {
	Positions(x dynamo.State) []sim.Point
}

// RadialExtent tracks the largest distance from the origin reached by any body.
type RadialExtent struct {
	name string
	pos  Positioner
	max  float64
}

func NewRadialExtent(pos Positioner) *RadialExtent {
	return &RadialExtent{name: "max_radius", pos: pos}
}

func (r *RadialExtent) Name() string { return r.name }

func (r *RadialExtent) Observe(x dynamo.State, t float64) {
	for _, p := range r.pos.Positions(x) {
		r.max = math.Max(r.max, p.Radius())
	}
}

func (r *RadialExtent) Value() float64 { return r.max }

func (r *RadialExtent) Reset() { r.max = 0 }
