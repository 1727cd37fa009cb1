package lagrange

import (
	gosymbol "github.com/njchilds90/gosymbol"
	"github.com/san-kum/lagsim/internal/dynamo"
)

const (
	velocitySuffix     = "_dot"
	accelerationSuffix = "_ddot"
)

// Coordinate is a generalized coordinate. Its value, velocity and
// acceleration are independent symbols until the equations are solved.
type Coordinate struct {
	Name string
}

func NewCoordinate(name string) Coordinate { return Coordinate{Name: name} }

func (c Coordinate) Q() *gosymbol.Sym { return gosymbol.S(c.Name) }
func (c Coordinate) V() *gosymbol.Sym { return gosymbol.S(c.VelocityName()) }
func (c Coordinate) A() *gosymbol.Sym { return gosymbol.S(c.AccelerationName()) }

func (c Coordinate) VelocityName() string     { return c.Name + velocitySuffix }
func (c Coordinate) AccelerationName() string { return c.Name + accelerationSuffix }

// Body is a point mass whose Cartesian position is a function of the coordinates.
type Body struct {
	Name string
	Mass gosymbol.Expr
	X, Y gosymbol.Expr
}

// Geometry declares a mechanical system: coordinates, parameter symbols,
// bodies and the energy terms that are not kinetic or gravitational.
type Geometry struct {
	Name        string
	Coordinates []Coordinate
	Params      []string
	Bodies      []Body

	// Gravity multiplies the vertical position of every body in V. Nil disables it.
	Gravity gosymbol.Expr
	// Potential is added to V (springs, external fields).
	Potential gosymbol.Expr
	// Damping is the coefficient c of the Rayleigh function D = c/2 * sum(q_dot^2).
	Damping gosymbol.Expr
}

// Validate checks names are unique and every body is fully specified.
func (g *Geometry) Validate() error {
	if g == nil {
		return dynamo.Invalidf("nil geometry")
	}
	if len(g.Coordinates) == 0 {
		return dynamo.Invalidf("geometry %q declares no coordinates", g.Name)
	}
	if len(g.Bodies) == 0 {
		return dynamo.Invalidf("geometry %q declares no bodies", g.Name)
	}

	seen := make(map[string]struct{})
	claim := func(name string) error {
		if name == "" {
			return dynamo.Invalidf("geometry %q has an empty symbol name", g.Name)
		}
		if _, dup := seen[name]; dup {
			return dynamo.Invalidf("geometry %q declares symbol %q twice", g.Name, name)
		}
		seen[name] = struct{}{}
		return nil
	}
	for _, c := range g.Coordinates {
		for _, name := range []string{c.Name, c.VelocityName(), c.AccelerationName()} {
			if err := claim(name); err != nil {
				return err
			}
		}
	}
	for _, p := range g.Params {
		if err := claim(p); err != nil {
			return err
		}
	}

	for i, b := range g.Bodies {
		if b.Mass == nil || b.X == nil || b.Y == nil {
			return dynamo.Invalidf("geometry %q body %d is missing mass or position", g.Name, i)
		}
	}
	return nil
}

// CoordinateNames returns the coordinate names in declaration order.
func (g *Geometry) CoordinateNames() []string {
	names := make([]string, len(g.Coordinates))
	for i, c := range g.Coordinates {
		names[i] = c.Name
	}
	return names
}

// VelocityNames returns the velocity symbol names in declaration order.
func (g *Geometry) VelocityNames() []string {
	names := make([]string, len(g.Coordinates))
	for i, c := range g.Coordinates {
		names[i] = c.VelocityName()
	}
	return names
}
