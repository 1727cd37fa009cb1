package physics

import (
	"math"

	"github.com/san-kum/lagsim/internal/dynamo"
)

// Tether is a point mass on an inextensible-at-rest string of length
// Length. Past Length the string pulls back with Stiffness per unit of
// stretch; the position is then clamped to Length and the radial velocity
// reflected.
type Tether struct {
	Length    float64
	Stiffness float64
	Gravity   float64
	Dt        float64
	Horizon   float64
}

func DefaultTether() Tether {
	return Tether{
		Length:    2,
		Stiffness: 8,
		Gravity:   9.81,
		Dt:        0.01,
		Horizon:   30,
	}
}

type TetherState struct {
	T, X, Y, VX, VY float64
}

func (s TetherState) Radius() float64 { return math.Hypot(s.X, s.Y) }

func DefaultTetherStart() TetherState {
	return TetherState{X: -0.9, Y: -1, VX: 0, VY: 2.5}
}

// Validate rejects non-positive lengths and steps, and a start outside
// the tether's reach.
func (c Tether) Validate(start TetherState) error {
	if !(c.Length > 0) {
		return dynamo.Invalidf("tether length must be positive, got %g", c.Length)
	}
	if c.Stiffness < 0 {
		return dynamo.Invalidf("stiffness must not be negative, got %g", c.Stiffness)
	}
	for _, v := range []float64{start.X, start.Y, start.VX, start.VY, c.Gravity} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return dynamo.Invalidf("non-finite tether input")
		}
	}
	if r := start.Radius(); r > c.Length {
		return dynamo.Invalidf("initial radius %.4f exceeds tether length %g", r, c.Length)
	}
	return nil
}

func (c Tether) accel(x, y float64) (float64, float64) {
	r := math.Hypot(x, y)
	if r > c.Length {
		tension := c.Stiffness * (r - c.Length)
		return -tension * x / r, -tension*y/r - c.Gravity
	}
	return 0, -c.Gravity
}

// TetherStream yields the bouncing trajectory one state at a time. It
// cannot be rewound; build a new stream to restart.
type TetherStream struct {
	cfg  Tether
	grid dynamo.Grid
	i    int
	cur  TetherState
}

// NewTetherStream validates the configuration. The output grid is
// 0, Dt, 2*Dt, ... up to but excluding Horizon.
func NewTetherStream(cfg Tether, start TetherState) (*TetherStream, error) {
	if err := cfg.Validate(start); err != nil {
		return nil, err
	}
	grid, err := dynamo.Arange(0, cfg.Horizon, cfg.Dt)
	if err != nil {
		return nil, err
	}
	start.T = 0
	return &TetherStream{cfg: cfg, grid: grid, i: -1, cur: start}, nil
}

// Next advances to the next state. The first call yields the start state.
func (s *TetherStream) Next() bool {
	if s.i+1 >= len(s.grid) {
		return false
	}
	s.i++
	if s.i > 0 {
		s.step(s.grid[s.i])
	}
	return true
}

func (s *TetherStream) step(t float64) {
	c := s.cfg
	p := s.cur
	ax, ay := c.accel(p.X, p.Y)

	vx := p.VX + ax*c.Dt
	vy := p.VY + ay*c.Dt
	x := p.X + vx*c.Dt
	y := p.Y + vy*c.Dt

	if r := math.Hypot(x, y); r > c.Length {
		x *= c.Length / r
		y *= c.Length / r
		radial := (vx*x + vy*y) / c.Length
		vx -= 2 * radial * x / c.Length
		vy -= 2 * radial * y / c.Length
	}

	s.cur = TetherState{T: t, X: x, Y: y, VX: vx, VY: vy}
}

// State returns the current state. It is only meaningful after Next
// returned true.
func (s *TetherStream) State() TetherState { return s.cur }

// Len is the total number of states the stream yields.
func (s *TetherStream) Len() int { return len(s.grid) }

// Collect drains the remaining states.
func (s *TetherStream) Collect() []TetherState {
	out := make([]TetherState, 0, len(s.grid)-s.i-1)
	for s.Next() {
		out = append(out, s.cur)
	}
	return out
}
