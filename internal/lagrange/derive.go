package lagrange

import (
	"fmt"
	"math"

	gosymbol "github.com/njchilds90/gosymbol"
	"github.com/san-kum/lagsim/internal/dynamo"
)

var (
	zero = gosymbol.N(0)
	half = gosymbol.F(1, 2)
)

func neg(e gosymbol.Expr) gosymbol.Expr { return gosymbol.MulOf(gosymbol.N(-1), e) }

// Velocity returns the time derivative of a position-only expression:
// sum over coordinates of df/dq * q_dot.
func Velocity(f gosymbol.Expr, coords []Coordinate) gosymbol.Expr {
	terms := make([]gosymbol.Expr, 0, len(coords))
	for _, c := range coords {
		terms = append(terms, gosymbol.MulOf(gosymbol.Diff(f, c.Name), c.V()))
	}
	return gosymbol.AddOf(terms...)
}

// TotalDerivative applies the chain rule along the shared time parameter:
// d/dt f = sum df/dq * q_dot + df/dq_dot * q_ddot.
func TotalDerivative(f gosymbol.Expr, coords []Coordinate) gosymbol.Expr {
	terms := make([]gosymbol.Expr, 0, 2*len(coords))
	for _, c := range coords {
		terms = append(terms,
			gosymbol.MulOf(gosymbol.Diff(f, c.Name), c.V()),
			gosymbol.MulOf(gosymbol.Diff(f, c.VelocityName()), c.A()),
		)
	}
	return gosymbol.AddOf(terms...)
}

// Lagrangian holds L = T - V for one geometry. It is immutable once built.
type Lagrangian struct {
	Geometry    *Geometry
	Kinetic     gosymbol.Expr
	Potential   gosymbol.Expr
	Dissipation gosymbol.Expr
	L           gosymbol.Expr
}

// Build forms the kinetic, potential and dissipation terms of g.
func Build(g *Geometry) (*Lagrangian, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	kinetic := make([]gosymbol.Expr, 0, len(g.Bodies))
	potential := make([]gosymbol.Expr, 0, len(g.Bodies)+1)
	for _, b := range g.Bodies {
		vx := Velocity(b.X, g.Coordinates)
		vy := Velocity(b.Y, g.Coordinates)
		speed2 := gosymbol.AddOf(gosymbol.PowOf(vx, gosymbol.N(2)), gosymbol.PowOf(vy, gosymbol.N(2)))
		kinetic = append(kinetic, gosymbol.MulOf(half, b.Mass, speed2))
		if g.Gravity != nil {
			potential = append(potential, gosymbol.MulOf(b.Mass, g.Gravity, b.Y))
		}
	}
	if g.Potential != nil {
		potential = append(potential, g.Potential)
	}

	dissipation := gosymbol.Expr(zero)
	if g.Damping != nil {
		squares := make([]gosymbol.Expr, len(g.Coordinates))
		for i, c := range g.Coordinates {
			squares[i] = gosymbol.PowOf(c.V(), gosymbol.N(2))
		}
		dissipation = gosymbol.MulOf(half, g.Damping, gosymbol.AddOf(squares...))
	}

	t := gosymbol.AddOf(kinetic...)
	v := gosymbol.AddOf(potential...)
	return &Lagrangian{
		Geometry:    g,
		Kinetic:     t,
		Potential:   v,
		Dissipation: dissipation,
		L:           gosymbol.AddOf(t, neg(v)),
	}, nil
}

// Energy returns T + V.
func (l *Lagrangian) Energy() gosymbol.Expr {
	return gosymbol.AddOf(l.Kinetic, l.Potential)
}

// Residuals returns one Euler-Lagrange expression per coordinate,
// d/dt(dL/dq_dot) - dL/dq + dD/dq_dot, which vanishes along motion.
func (l *Lagrangian) Residuals() []gosymbol.Expr {
	coords := l.Geometry.Coordinates
	out := make([]gosymbol.Expr, len(coords))
	for i, c := range coords {
		momentum := gosymbol.Diff(l.L, c.VelocityName())
		out[i] = gosymbol.AddOf(
			TotalDerivative(momentum, coords),
			neg(gosymbol.Diff(l.L, c.Name)),
			gosymbol.Diff(l.Dissipation, c.VelocityName()),
		)
	}
	return out
}

// Solve writes the residuals as A * q_ddot + b = 0 and returns
// q_ddot = -A^-1 * b. An A that is structurally zero, or singular at every
// sampled point, fails with ErrDegenerateSystem.
func (l *Lagrangian) Solve() (*Equations, error) {
	g := l.Geometry
	coords := g.Coordinates
	n := len(coords)
	residuals := l.Residuals()

	mass := gosymbol.NewMatrix(n, n)
	rest := make([]gosymbol.Expr, n)
	for i, r := range residuals {
		for j, c := range coords {
			mass.Set(i, j, gosymbol.DeepSimplify(gosymbol.Diff(r, c.AccelerationName())))
		}
		b := r
		for _, c := range coords {
			b = gosymbol.Sub(b, c.AccelerationName(), zero)
		}
		rest[i] = gosymbol.DeepSimplify(b)
	}

	det := gosymbol.DeepSimplify(mass.Det())
	if v, ok := det.Eval(); ok && v.IsZero() {
		return nil, fmt.Errorf("%w: %s mass matrix determinant is identically zero", dynamo.ErrDegenerateSystem, g.Name)
	}
	if singularEverywhere(mass) {
		return nil, fmt.Errorf("%w: %s mass matrix is singular at every sample point", dynamo.ErrDegenerateSystem, g.Name)
	}
	inv, err := invert(mass)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", dynamo.ErrDegenerateSystem, g.Name, err)
	}

	acc := make([]gosymbol.Expr, n)
	for i := 0; i < n; i++ {
		terms := make([]gosymbol.Expr, n)
		for j := 0; j < n; j++ {
			terms[j] = gosymbol.MulOf(inv.Get(i, j), rest[j])
		}
		acc[i] = gosymbol.DeepSimplify(neg(gosymbol.AddOf(terms...)))
	}

	for i, a := range acc {
		free := gosymbol.FreeSymbols(a)
		for _, c := range coords {
			if _, ok := free[c.AccelerationName()]; ok {
				return nil, fmt.Errorf("%w: %s still depends on %s", dynamo.ErrDegenerateSystem,
					coords[i].AccelerationName(), c.AccelerationName())
			}
		}
	}

	return &Equations{
		Name:          g.Name,
		Coordinates:   append([]Coordinate(nil), coords...),
		Params:        append([]string(nil), g.Params...),
		Bodies:        append([]Body(nil), g.Bodies...),
		Residuals:     residuals,
		MassMatrix:    mass,
		Determinant:   det,
		Accelerations: acc,
		Energy:        l.Energy(),
	}, nil
}

func invert(m *gosymbol.Matrix) (*gosymbol.Matrix, error) {
	if m.Rows() == 1 {
		out := gosymbol.NewMatrix(1, 1)
		out.Set(0, 0, gosymbol.PowOf(m.Get(0, 0), gosymbol.N(-1)))
		return out, nil
	}
	return m.Inverse()
}

// Derive builds the Lagrangian of g and solves it for the accelerations.
func Derive(g *Geometry) (*Equations, error) {
	l, err := Build(g)
	if err != nil {
		return nil, err
	}
	return l.Solve()
}

// Equations is the solved system: one acceleration expression per
// coordinate, free of acceleration symbols.
type Equations struct {
	Name          string
	Coordinates   []Coordinate
	Params        []string
	Bodies        []Body
	Residuals     []gosymbol.Expr
	MassMatrix    *gosymbol.Matrix
	Determinant   gosymbol.Expr
	Accelerations []gosymbol.Expr
	Energy        gosymbol.Expr
}

// Acceleration returns the solved expression for the named coordinate.
func (e *Equations) Acceleration(name string) (gosymbol.Expr, bool) {
	for i, c := range e.Coordinates {
		if c.Name == name {
			return e.Accelerations[i], true
		}
	}
	return nil, false
}

// Strings renders each equation as "q_ddot = expr".
func (e *Equations) Strings() []string {
	out := make([]string, len(e.Accelerations))
	for i, a := range e.Accelerations {
		out[i] = e.Coordinates[i].AccelerationName() + " = " + a.String()
	}
	return out
}

func (e *Equations) LaTeX() []string {
	out := make([]string, len(e.Accelerations))
	for i, a := range e.Accelerations {
		out[i] = "\\ddot{" + e.Coordinates[i].Name + "} = " + a.LaTeX()
	}
	return out
}

// StateFrom assembles the interleaved state from values keyed by
// coordinate and velocity symbol names. Every key must be known and finite.
func (e *Equations) StateFrom(values map[string]float64) (dynamo.State, error) {
	known := make(map[string]struct{}, 2*len(e.Coordinates))
	s := make(dynamo.State, 0, 2*len(e.Coordinates))
	for _, c := range e.Coordinates {
		for _, name := range []string{c.Name, c.VelocityName()} {
			v, ok := values[name]
			if !ok {
				return nil, dynamo.Invalidf("missing initial value for %s", name)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, dynamo.Invalidf("non-finite initial value for %s", name)
			}
			known[name] = struct{}{}
			s = append(s, v)
		}
	}
	for name := range values {
		if _, ok := known[name]; !ok {
			return nil, dynamo.Invalidf("unknown initial value %s for %s", name, e.Name)
		}
	}
	return s, nil
}

// StateNames returns the interleaved state labels (theta, theta_dot, ...).
func (e *Equations) StateNames() []string {
	names := make([]string, 0, 2*len(e.Coordinates))
	for _, c := range e.Coordinates {
		names = append(names, c.Name, c.VelocityName())
	}
	return names
}
