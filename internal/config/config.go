package config

import (
	"os"

	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/integrators"
	"github.com/san-kum/lagsim/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGeometry  = "elastic"
	DefaultSolver    = "rk4"
	DefaultMaxDt     = 0.005
	DefaultTolerance = 1e-8
	DefaultMinDt     = 1e-10
	DefaultHorizon   = 20.0
	DefaultPoints    = 1000
	DefaultFrames    = 500
)

// Config is one run: which geometry, how to integrate it and over what grid.
type Config struct {
	Geometry  string             `yaml:"geometry"`
	Solver    string             `yaml:"solver"`
	MaxDt     float64            `yaml:"max_dt"`
	Tolerance float64            `yaml:"tolerance"`
	MaxSteps  int                `yaml:"max_steps"`
	Frames    int                `yaml:"frames"`
	Params    map[string]float64 `yaml:"params"`
	Initial   map[string]float64 `yaml:"initial"`
	Grid      GridConfig         `yaml:"grid"`
	Tether    TetherConfig       `yaml:"tether"`
}

// GridConfig takes either a point count (endpoints included) or a step
// size (horizon excluded), never both.
type GridConfig struct {
	Start   float64 `yaml:"start"`
	Horizon float64 `yaml:"horizon"`
	Points  int     `yaml:"points,omitempty"`
	Step    float64 `yaml:"step,omitempty"`
}

func (g GridConfig) Build() (dynamo.Grid, error) {
	switch {
	case g.Points != 0 && g.Step != 0:
		return nil, dynamo.Invalidf("grid sets both points (%d) and step (%g)", g.Points, g.Step)
	case g.Step != 0:
		return dynamo.Arange(g.Start, g.Horizon, g.Step)
	default:
		return dynamo.Linspace(g.Start, g.Horizon, g.Points)
	}
}

type TetherConfig struct {
	Length    float64 `yaml:"length"`
	Stiffness float64 `yaml:"stiffness"`
	Gravity   float64 `yaml:"gravity"`
	Dt        float64 `yaml:"dt"`
	Horizon   float64 `yaml:"horizon"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	VX        float64 `yaml:"vx"`
	VY        float64 `yaml:"vy"`
}

func DefaultTether() TetherConfig {
	t, s := physics.DefaultTether(), physics.DefaultTetherStart()
	return TetherConfig{
		Length: t.Length, Stiffness: t.Stiffness, Gravity: t.Gravity, Dt: t.Dt, Horizon: t.Horizon,
		X: s.X, Y: s.Y, VX: s.VX, VY: s.VY,
	}
}

func (t TetherConfig) Physics() (physics.Tether, physics.TetherState) {
	return physics.Tether{
			Length: t.Length, Stiffness: t.Stiffness, Gravity: t.Gravity, Dt: t.Dt, Horizon: t.Horizon,
		}, physics.TetherState{
			X: t.X, Y: t.Y, VX: t.VX, VY: t.VY,
		}
}

// DefaultConfig is the elastic pendulum with m=1, k=10, g=9.81 started at
// (theta, theta_dot, r, r_dot) = (pi/2, 1, 1, 7) over 1000 points to t=20.
func DefaultConfig() *Config {
	cfg, _ := ForGeometry(DefaultGeometry)
	return cfg
}

// ForGeometry returns the default run of a catalog geometry.
func ForGeometry(name string) (*Config, error) {
	entry, err := physics.Lookup(name)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Geometry:  name,
		Solver:    DefaultSolver,
		MaxDt:     DefaultMaxDt,
		Tolerance: DefaultTolerance,
		Frames:    DefaultFrames,
		Params:    entry.Params,
		Initial:   entry.Initial,
		Grid:      GridConfig{Start: 0, Horizon: DefaultHorizon, Points: DefaultPoints},
		Tether:    DefaultTether(),
	}
	return cfg.Clone(), nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Params, cfg.Initial = nil, nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// params and initial values left out of the file come from the catalog
	entry, err := physics.Lookup(cfg.Geometry)
	if err != nil {
		return nil, dynamo.Invalidf("%v", err)
	}
	if cfg.Params == nil {
		cfg.Params = entry.Params
	}
	if cfg.Initial == nil {
		cfg.Initial = entry.Initial
	}
	return cfg.Clone(), nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks everything that can be checked without deriving the
// geometry. Failures wrap dynamo.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	if _, err := physics.Lookup(c.Geometry); err != nil {
		return dynamo.Invalidf("%v", err)
	}
	if _, ok := integrators.Lookup(c.Solver); !ok {
		return dynamo.Invalidf("unknown solver %q (available: %v)", c.Solver, integrators.Names())
	}
	if !(c.MaxDt > 0) {
		return dynamo.Invalidf("max_dt must be positive, got %g", c.MaxDt)
	}
	if integrators.IsAdaptive(c.Solver) && !(c.Tolerance > 0) {
		return dynamo.Invalidf("tolerance must be positive for %s, got %g", c.Solver, c.Tolerance)
	}
	if c.MaxSteps < 0 {
		return dynamo.Invalidf("max_steps must not be negative, got %d", c.MaxSteps)
	}
	if c.Frames < 0 {
		return dynamo.Invalidf("frames must not be negative, got %d", c.Frames)
	}
	_, err := c.Grid.Build()
	return err
}

// SolverConfig maps the run settings onto the integrator configuration.
func (c *Config) SolverConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.MaxDt,
		Tolerance:     c.Tolerance,
		MaxDt:         c.MaxDt,
		MinDt:         DefaultMinDt,
		MaxSteps:      c.MaxSteps,
		ValidateState: true,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Params = make(map[string]float64, len(c.Params))
	for k, v := range c.Params {
		out.Params[k] = v
	}
	out.Initial = make(map[string]float64, len(c.Initial))
	for k, v := range c.Initial {
		out.Initial[k] = v
	}
	return &out
}
