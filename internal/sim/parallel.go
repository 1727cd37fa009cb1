package sim

import (
	"context"
	"runtime"

	"github.com/san-kum/lagsim/internal/compile"
	"github.com/san-kum/lagsim/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// SolverFactory returns a fresh solver for one run.
type SolverFactory func() (dynamo.Solver, error)

// Outcome pairs a run's trajectory with the error it stopped on, if any.
type Outcome struct {
	Request    Request
	Trajectory *Trajectory
	Err        error
}

// Ensemble runs many requests against one compiled model concurrently.
// The compiled functions are shared; solvers and trajectories are not.
type Ensemble struct {
	model   *compile.Model
	factory SolverFactory
	workers int
}

func NewEnsemble(model *compile.Model, factory SolverFactory, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Ensemble{model: model, factory: factory, workers: workers}
}

// Run integrates every request. Per-run failures are reported in each
// Outcome; the returned error is set only when a solver cannot be built
// or ctx is cancelled.
func (e *Ensemble) Run(ctx context.Context, reqs []Request, cfg dynamo.Config) ([]Outcome, error) {
	out := make([]Outcome, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range reqs {
		g.Go(func() error {
			solver, err := e.factory()
			if err != nil {
				return err
			}
			tr, err := New(e.model, solver).Run(ctx, reqs[i], cfg)
			out[i] = Outcome{Request: reqs[i], Trajectory: tr, Err: err}
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}
