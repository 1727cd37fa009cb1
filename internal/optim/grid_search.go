package optim

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/san-kum/lagsim/internal/config"
	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/experiment"
	"github.com/san-kum/lagsim/internal/sim"
)

// Objective scores a finished trajectory. Lower is better.
type Objective func(tr *sim.Trajectory) float64

var Objectives = map[string]Objective{
	"energy_drift": func(tr *sim.Trajectory) float64 { return tr.EnergyDrift() },
	"max_radius":   func(tr *sim.Trajectory) float64 { return tr.MaxRadius() },
	"-max_radius":  func(tr *sim.Trajectory) float64 { return -tr.MaxRadius() },
}

// ObjectiveNames lists the registered objectives in sorted order.
func ObjectiveNames() []string {
	names := make([]string, 0, len(Objectives))
	for name := range Objectives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Axis is one swept dimension. Initial axes name a coordinate or velocity;
// the rest name parameters.
type Axis struct {
	Name    string
	Values  []float64
	Initial bool
}

// Trial is one grid point and its score. Incomplete runs score +Inf.
type Trial struct {
	Values   map[string]float64
	Score    float64
	Complete bool
	Err      error
}

type Result struct {
	Best      map[string]float64
	BestScore float64
	Trials    []Trial
}

type GridSearch struct {
	axes    []Axis
	workers int
}

func NewGridSearch(axes []Axis, workers int) *GridSearch {
	return &GridSearch{axes: axes, workers: workers}
}

// Points enumerates the cartesian product of every axis, first axis
// slowest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.enumerate(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.axes) {
		*out = append(*out, current)
		return
	}

	axis := g.axes[depth]
	for _, val := range axis.Values {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[axis.Name] = val

		g.enumerate(depth+1, next, out)
	}
}

// Search runs every grid point of cfg's geometry concurrently and returns
// the lowest scoring one.
func (g *GridSearch) Search(ctx context.Context, reg *experiment.Registry, cfg *config.Config, objective string) (*Result, error) {
	score, ok := Objectives[objective]
	if !ok {
		return nil, dynamo.Invalidf("unknown objective %q", objective)
	}
	if len(g.axes) == 0 {
		return nil, dynamo.Invalidf("grid search needs at least one axis")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	compiled, err := reg.Compiled(cfg.Geometry)
	if err != nil {
		return nil, err
	}
	factory, err := reg.SolverFactory(cfg.Solver, cfg.SolverConfig())
	if err != nil {
		return nil, err
	}

	for _, axis := range g.axes {
		known := compiled.Model.Order.Params()
		if axis.Initial {
			known = compiled.Model.StateNames
		}
		if !slices.Contains(known, axis.Name) {
			return nil, dynamo.Invalidf("%s has no %q to sweep (available: %v)", cfg.Geometry, axis.Name, known)
		}
	}

	points := g.Points()
	reqs := make([]sim.Request, len(points))
	for i, p := range points {
		trial := cfg.Clone()
		for _, axis := range g.axes {
			if axis.Initial {
				trial.Initial[axis.Name] = p[axis.Name]
			} else {
				trial.Params[axis.Name] = p[axis.Name]
			}
		}
		if reqs[i], err = experiment.RequestFor(trial, compiled.Equations); err != nil {
			return nil, fmt.Errorf("grid point %v: %w", p, err)
		}
	}

	outcomes, err := sim.NewEnsemble(compiled.Model, factory, g.workers).Run(ctx, reqs, cfg.SolverConfig())
	if err != nil {
		return nil, err
	}

	res := &Result{BestScore: math.Inf(1), Trials: make([]Trial, len(points))}
	for i, o := range outcomes {
		t := Trial{Values: points[i], Score: math.Inf(1), Err: o.Err}
		if o.Err == nil && o.Trajectory != nil && o.Trajectory.Complete {
			t.Complete = true
			t.Score = score(o.Trajectory)
		}
		res.Trials[i] = t

		if t.Score < res.BestScore {
			res.BestScore = t.Score
			res.Best = t.Values
		}
	}
	return res, nil
}
