package compile

import (
	"fmt"
	"math"

	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/lagrange"
)

// Order is the explicit, immutable argument layout shared by every
// compiled function: parameters, then coordinates, then velocities.
type Order struct {
	names  []string
	index  map[string]int
	params int
	coords int
}

// NewOrder concatenates the three symbol groups. Duplicate names fail with
// ErrSymbolMismatch; the layout is never reordered.
func NewOrder(params, coords, velocities []string) (*Order, error) {
	if len(coords) != len(velocities) {
		return nil, fmt.Errorf("%w: %d coordinates but %d velocities", dynamo.ErrSymbolMismatch, len(coords), len(velocities))
	}
	o := &Order{
		names:  make([]string, 0, len(params)+len(coords)+len(velocities)),
		index:  make(map[string]int),
		params: len(params),
		coords: len(coords),
	}
	for _, group := range [][]string{params, coords, velocities} {
		for _, name := range group {
			if _, dup := o.index[name]; dup {
				return nil, fmt.Errorf("%w: duplicate argument %q", dynamo.ErrSymbolMismatch, name)
			}
			o.index[name] = len(o.names)
			o.names = append(o.names, name)
		}
	}
	return o, nil
}

// OrderFor derives the default layout from solved equations.
func OrderFor(eq *lagrange.Equations) (*Order, error) {
	coords := make([]string, len(eq.Coordinates))
	vels := make([]string, len(eq.Coordinates))
	for i, c := range eq.Coordinates {
		coords[i] = c.Name
		vels[i] = c.VelocityName()
	}
	return NewOrder(eq.Params, coords, vels)
}

func (o *Order) Len() int { return len(o.names) }

// Names returns a copy of the layout.
func (o *Order) Names() []string {
	return append([]string(nil), o.names...)
}

func (o *Order) Index(name string) (int, bool) {
	i, ok := o.index[name]
	return i, ok
}

// Params returns the parameter prefix of the layout.
func (o *Order) Params() []string {
	return append([]string(nil), o.names[:o.params]...)
}

// NumCoordinates returns the number of generalized coordinates.
func (o *Order) NumCoordinates() int { return o.coords }

// Bind resolves named parameter values into the layout's parameter prefix.
// Missing, unknown and non-finite values fail with ErrInvalidConfiguration.
func (o *Order) Bind(values map[string]float64) ([]float64, error) {
	out := make([]float64, o.params)
	for i, name := range o.names[:o.params] {
		v, ok := values[name]
		if !ok {
			return nil, dynamo.Invalidf("missing parameter %s", name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, dynamo.Invalidf("non-finite parameter %s", name)
		}
		out[i] = v
	}
	for name := range values {
		i, ok := o.index[name]
		if !ok || i >= o.params {
			return nil, dynamo.Invalidf("unknown parameter %s", name)
		}
	}
	return out, nil
}

// Args fills dst with params followed by the de-interleaved state.
func (o *Order) Args(dst, params []float64, x dynamo.State) []float64 {
	if cap(dst) < len(o.names) {
		dst = make([]float64, len(o.names))
	}
	dst = dst[:len(o.names)]
	copy(dst, params)
	for i := 0; i < o.coords; i++ {
		dst[o.params+i] = x[2*i]
		dst[o.params+o.coords+i] = x[2*i+1]
	}
	return dst
}
