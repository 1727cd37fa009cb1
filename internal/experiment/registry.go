package experiment

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/san-kum/lagsim/internal/compile"
	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/integrators"
	"github.com/san-kum/lagsim/internal/lagrange"
	"github.com/san-kum/lagsim/internal/logging"
	"github.com/san-kum/lagsim/internal/physics"
	"golang.org/x/sync/singleflight"
)

// Compiled is the derive-once artifact of a geometry: its equations and
// the numeric model built from them. It is read-only and shared.
type Compiled struct {
	Equations *lagrange.Equations
	Model     *compile.Model
}

// Registry derives and compiles catalog geometries once and hands the
// result to every run that asks for it.
type Registry struct {
	mu       sync.RWMutex
	compiled map[string]*Compiled
	group    singleflight.Group
	logger   *log.Logger
}

func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Registry{
		compiled: make(map[string]*Compiled),
		logger:   logger,
	}
}

// Compiled returns the cached artifact for a catalog geometry, building it
// through a fresh pipeline on first use.
func (r *Registry) Compiled(name string) (*Compiled, error) {
	r.mu.RLock()
	c, ok := r.compiled[name]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	v, err, _ := r.group.Do(name, func() (interface{}, error) {
		entry, err := physics.Lookup(name)
		if err != nil {
			return nil, err
		}
		p := New(WithLogger(r.logger.With("geometry", name)))
		if err := p.Build(entry.Build()); err != nil {
			return nil, err
		}
		c := &Compiled{Equations: p.Equations(), Model: p.Model()}

		r.mu.Lock()
		r.compiled[name] = c
		r.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Compiled), nil
}

func (r *Registry) GetSolver(name string, cfg dynamo.Config) (dynamo.Solver, error) {
	return integrators.New(name, cfg)
}

// SolverFactory returns a constructor suitable for concurrent runs.
func (r *Registry) SolverFactory(name string, cfg dynamo.Config) (func() (dynamo.Solver, error), error) {
	f, ok := integrators.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return func() (dynamo.Solver, error) { return f(cfg) }, nil
}

func (r *Registry) ListGeometries() []string { return physics.Names() }

func (r *Registry) ListIntegrators() []string { return integrators.Names() }
