package physics

import (
	"fmt"
	"math"
	"sort"

	gosymbol "github.com/njchilds90/gosymbol"
	"github.com/san-kum/lagsim/internal/lagrange"
)

// Entry is one named geometry with its default run inputs. Initial maps
// coordinate and velocity names to values.
type Entry struct {
	Name        string
	Description string
	Build       func() *lagrange.Geometry
	Params      map[string]float64
	Initial     map[string]float64
}

var catalog = map[string]Entry{
	"elastic": {
		Name:        "elastic",
		Description: "point mass on a radially stretchable tether under gravity",
		Build:       ElasticPendulum,
		Params:      map[string]float64{"m": 1, "k": 10, "g": 9.81},
		Initial:     map[string]float64{"theta": math.Pi / 2, "theta_dot": 1, "r": 1, "r_dot": 7},
	},
	"pendulum": {
		Name:        "pendulum",
		Description: "rigid plane pendulum hanging from the origin",
		Build:       PlanePendulum,
		Params:      map[string]float64{"m": 1, "g": 9.81, "l": 1},
		Initial:     map[string]float64{"theta": math.Pi / 4, "theta_dot": 0},
	},
	"horizontal": {
		Name:        "horizontal",
		Description: "unit pendulum with the angle measured from the horizontal",
		Build:       HorizontalPendulum,
		Params:      map[string]float64{"m": 1, "g": 9.81},
		Initial:     map[string]float64{"theta": math.Pi / 2, "theta_dot": 0},
	},
	"oscillator": {
		Name:        "oscillator",
		Description: "mass on a linear spring with viscous damping",
		Build:       DampedOscillator,
		Params:      map[string]float64{"m": 1, "k": 1, "c": -0.2},
		Initial:     map[string]float64{"x": 1, "x_dot": 0},
	},
	"double_pendulum": {
		Name:        "double_pendulum",
		Description: "two rigid links joined end to end",
		Build:       DoublePendulum,
		Params:      map[string]float64{"m1": 1, "m2": 1, "l1": 1, "l2": 1, "g": 9.81},
		Initial:     map[string]float64{"theta1": math.Pi / 2, "theta1_dot": 0, "theta2": math.Pi / 2, "theta2_dot": 0},
	},
}

// Lookup returns a copy of the named entry.
func Lookup(name string) (Entry, error) {
	e, ok := catalog[name]
	if !ok {
		return Entry{}, fmt.Errorf("unknown geometry: %s (available: %v)", name, Names())
	}
	e.Params = copyMap(e.Params)
	e.Initial = copyMap(e.Initial)
	return e, nil
}

func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sym(name string) *gosymbol.Sym { return gosymbol.S(name) }

func neg(e gosymbol.Expr) gosymbol.Expr { return gosymbol.MulOf(gosymbol.N(-1), e) }

func square(e gosymbol.Expr) gosymbol.Expr { return gosymbol.PowOf(e, gosymbol.N(2)) }

// ElasticPendulum: x = (1+r)cos(theta), y = -(1+r)sin(theta), with spring
// energy k*r^2/2. Static equilibrium is theta = pi/2, r = m*g/k.
func ElasticPendulum() *lagrange.Geometry {
	theta := lagrange.NewCoordinate("theta")
	r := lagrange.NewCoordinate("r")
	radius := gosymbol.AddOf(gosymbol.N(1), r.Q())

	return &lagrange.Geometry{
		Name:        "elastic",
		Coordinates: []lagrange.Coordinate{theta, r},
		Params:      []string{"m", "k", "g"},
		Bodies: []lagrange.Body{{
			Name: "bob",
			Mass: sym("m"),
			X:    gosymbol.MulOf(radius, gosymbol.CosOf(theta.Q())),
			Y:    neg(gosymbol.MulOf(radius, gosymbol.SinOf(theta.Q()))),
		}},
		Gravity:   sym("g"),
		Potential: gosymbol.MulOf(gosymbol.F(1, 2), sym("k"), square(r.Q())),
	}
}

// PlanePendulum: x = l*sin(theta), y = -l*cos(theta).
func PlanePendulum() *lagrange.Geometry {
	theta := lagrange.NewCoordinate("theta")
	l := sym("l")

	return &lagrange.Geometry{
		Name:        "pendulum",
		Coordinates: []lagrange.Coordinate{theta},
		Params:      []string{"m", "g", "l"},
		Bodies: []lagrange.Body{{
			Name: "bob",
			Mass: sym("m"),
			X:    gosymbol.MulOf(l, gosymbol.SinOf(theta.Q())),
			Y:    neg(gosymbol.MulOf(l, gosymbol.CosOf(theta.Q()))),
		}},
		Gravity: sym("g"),
	}
}

// HorizontalPendulum: x = cos(theta), y = sin(theta), so that
// theta_ddot = -g*cos(theta).
func HorizontalPendulum() *lagrange.Geometry {
	theta := lagrange.NewCoordinate("theta")

	return &lagrange.Geometry{
		Name:        "horizontal",
		Coordinates: []lagrange.Coordinate{theta},
		Params:      []string{"m", "g"},
		Bodies: []lagrange.Body{{
			Name: "bob",
			Mass: sym("m"),
			X:    gosymbol.CosOf(theta.Q()),
			Y:    gosymbol.SinOf(theta.Q()),
		}},
		Gravity: sym("g"),
	}
}

// DampedOscillator: horizontal mass on a spring, x_ddot = -(k*x + c*x_dot)/m.
// A negative c pumps energy in.
func DampedOscillator() *lagrange.Geometry {
	x := lagrange.NewCoordinate("x")

	return &lagrange.Geometry{
		Name:        "oscillator",
		Coordinates: []lagrange.Coordinate{x},
		Params:      []string{"m", "k", "c"},
		Bodies: []lagrange.Body{{
			Name: "mass",
			Mass: sym("m"),
			X:    x.Q(),
			Y:    gosymbol.N(0),
		}},
		Potential: gosymbol.MulOf(gosymbol.F(1, 2), sym("k"), square(x.Q())),
		Damping:   sym("c"),
	}
}

func DoublePendulum() *lagrange.Geometry {
	t1 := lagrange.NewCoordinate("theta1")
	t2 := lagrange.NewCoordinate("theta2")
	l1, l2 := sym("l1"), sym("l2")

	x1 := gosymbol.MulOf(l1, gosymbol.SinOf(t1.Q()))
	y1 := neg(gosymbol.MulOf(l1, gosymbol.CosOf(t1.Q())))

	return &lagrange.Geometry{
		Name:        "double_pendulum",
		Coordinates: []lagrange.Coordinate{t1, t2},
		Params:      []string{"m1", "m2", "l1", "l2", "g"},
		Bodies: []lagrange.Body{
			{Name: "inner", Mass: sym("m1"), X: x1, Y: y1},
			{
				Name: "outer",
				Mass: sym("m2"),
				X:    gosymbol.AddOf(x1, gosymbol.MulOf(l2, gosymbol.SinOf(t2.Q()))),
				Y:    gosymbol.AddOf(y1, neg(gosymbol.MulOf(l2, gosymbol.CosOf(t2.Q())))),
			},
		},
		Gravity: sym("g"),
	}
}
