package sim

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/integrators"
)

func TestEnsembleRun(t *testing.T) {
	model, entry, _ := testModel(t, "pendulum")
	grid, _ := dynamo.Linspace(0, 2, 21)

	reqs := make([]Request, 6)
	for i := range reqs {
		reqs[i] = Request{Params: entry.Params, Initial: dynamo.State{0.1 * float64(i+1), 0}, Grid: grid}
	}

	factory := func() (dynamo.Solver, error) { return integrators.New("rk4", dynamo.DefaultConfig()) }
	outcomes, err := NewEnsemble(model, factory, 3).Run(context.Background(), reqs, dynamo.DefaultConfig())
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}

	for i, o := range outcomes {
		if o.Err != nil {
			t.Fatalf("run %d failed: %v", i, o.Err)
		}
		if o.Trajectory.Len() != 21 {
			t.Errorf("run %d: expected 21 records, got %d", i, o.Trajectory.Len())
		}
		if o.Trajectory.States[0][0] != reqs[i].Initial[0] {
			t.Errorf("run %d: outcome out of order", i)
		}
	}

	single, err := New(model, testSolver(t)).Run(context.Background(), reqs[2], dynamo.DefaultConfig())
	if err != nil {
		t.Fatalf("single run failed: %v", err)
	}
	if math.Abs(single.Final()[0]-outcomes[2].Trajectory.Final()[0]) > 1e-15 {
		t.Error("concurrent run differs from sequential run")
	}
}
