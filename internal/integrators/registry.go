package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/lagsim/internal/dynamo"
)

// Factory builds a fresh solver. Solvers hold scratch buffers, so each
// concurrent run needs its own instance.
type Factory func(cfg dynamo.Config) (dynamo.Solver, error)

var registry = map[string]Factory{
	"euler": func(cfg dynamo.Config) (dynamo.Solver, error) {
		return NewFixedStep(NewEuler(), cfg.MaxDt), nil
	},
	"rk4": func(cfg dynamo.Config) (dynamo.Solver, error) {
		return NewFixedStep(NewRK4(), cfg.MaxDt), nil
	},
	"verlet": func(cfg dynamo.Config) (dynamo.Solver, error) {
		return NewFixedStep(NewVerlet(), cfg.MaxDt), nil
	},
	"leapfrog": func(cfg dynamo.Config) (dynamo.Solver, error) {
		return NewFixedStep(NewLeapfrog(), cfg.MaxDt), nil
	},
	"rk45": func(cfg dynamo.Config) (dynamo.Solver, error) {
		return NewAdaptive(NewRK45(), cfg), nil
	},
	"dopri": func(cfg dynamo.Config) (dynamo.Solver, error) {
		return NewDopri(cfg.Tolerance)
	},
}

// New returns a solver by name.
func New(name string, cfg dynamo.Config) (dynamo.Solver, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return f(cfg)
}

// Lookup returns the factory for name.
func Lookup(name string) (Factory, bool) {
	f, ok := registry[name]
	return f, ok
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsAdaptive reports whether the named solver controls its own step size.
func IsAdaptive(name string) bool {
	return name == "rk45" || name == "dopri"
}
