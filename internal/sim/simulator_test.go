package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/lagsim/internal/compile"
	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/integrators"
	"github.com/san-kum/lagsim/internal/lagrange"
	"github.com/san-kum/lagsim/internal/physics"
)

func testModel(t *testing.T, name string) (*compile.Model, physics.Entry, dynamo.State) {
	t.Helper()
	entry, err := physics.Lookup(name)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	eq, err := lagrange.Derive(entry.Build())
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	order, err := compile.OrderFor(eq)
	if err != nil {
		t.Fatalf("order failed: %v", err)
	}
	model, err := compile.Compile(eq, order)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	x0, err := eq.StateFrom(entry.Initial)
	if err != nil {
		t.Fatalf("initial state failed: %v", err)
	}
	return model, entry, x0
}

func testSolver(t *testing.T) dynamo.Solver {
	t.Helper()
	solver, err := integrators.New("rk4", dynamo.DefaultConfig())
	if err != nil {
		t.Fatalf("solver failed: %v", err)
	}
	return solver
}

func TestSimulatorRun(t *testing.T) {
	model, entry, x0 := testModel(t, "pendulum")
	grid, _ := dynamo.Linspace(0, 1, 11)

	tr, err := New(model, testSolver(t)).Run(context.Background(),
		Request{Params: entry.Params, Initial: x0, Grid: grid}, dynamo.DefaultConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if tr.Len() != 11 {
		t.Errorf("expected 11 records, got %d", tr.Len())
	}
	if !tr.Complete {
		t.Error("expected a complete trajectory")
	}
	if tr.Steps != 200 {
		t.Errorf("expected 200 solver steps, got %d", tr.Steps)
	}
	if tr.Times[10] != 1 {
		t.Errorf("expected last time 1, got %f", tr.Times[10])
	}
	if drift := tr.EnergyDrift(); drift > 1e-8 {
		t.Errorf("energy drift too large: %e", drift)
	}
}

func TestSimulatorInvalidRequest(t *testing.T) {
	model, entry, x0 := testModel(t, "pendulum")
	sim := New(model, testSolver(t))
	grid, _ := dynamo.Linspace(0, 1, 11)

	tests := []struct {
		name string
		req  Request
	}{
		{"empty grid", Request{Params: entry.Params, Initial: x0, Grid: dynamo.Grid{}}},
		{"non-increasing grid", Request{Params: entry.Params, Initial: x0, Grid: dynamo.Grid{0, 0.5, 0.5}}},
		{"missing parameter", Request{Params: map[string]float64{"m": 1}, Initial: x0, Grid: grid}},
		{"wrong dimension", Request{Params: entry.Params, Initial: dynamo.State{1}, Grid: grid}},
		{"non-finite state", Request{Params: entry.Params, Initial: dynamo.State{math.NaN(), 0}, Grid: grid}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := sim.Run(context.Background(), tt.req, dynamo.DefaultConfig())
			if !errors.Is(err, dynamo.ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration, got %v", err)
			}
			if tr != nil {
				t.Error("invalid requests must not produce a trajectory")
			}
		})
	}
}

func TestSimulatorDivergenceReturnsPartial(t *testing.T) {
	model, _, _ := testModel(t, "oscillator")
	grid, _ := dynamo.Linspace(0, 1, 11)
	params := map[string]float64{"m": 1, "k": 1, "c": -5000}

	tr, err := New(model, testSolver(t)).Run(context.Background(),
		Request{Params: params, Initial: dynamo.State{1, 0}, Grid: grid}, dynamo.DefaultConfig())

	if !errors.Is(err, dynamo.ErrNumericDivergence) {
		t.Fatalf("expected ErrNumericDivergence, got %v", err)
	}
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected *SimulationError, got %T", err)
	}
	if tr == nil || tr.Complete {
		t.Fatal("expected an incomplete partial trajectory")
	}
	if tr.Len() < 1 || tr.Len() >= 11 {
		t.Errorf("unexpected partial length %d", tr.Len())
	}
	for i, s := range tr.States {
		if !s.IsValid() {
			t.Errorf("partial record %d is not finite", i)
		}
	}
}

func TestSimulatorStepBudget(t *testing.T) {
	model, entry, x0 := testModel(t, "pendulum")
	grid, _ := dynamo.Linspace(0, 1, 11)
	cfg := dynamo.DefaultConfig()
	cfg.MaxSteps = 10

	tr, err := New(model, testSolver(t)).Run(context.Background(),
		Request{Params: entry.Params, Initial: x0, Grid: grid}, cfg)
	if !errors.Is(err, dynamo.ErrStepLimit) {
		t.Fatalf("expected ErrStepLimit, got %v", err)
	}
	if tr.Complete || tr.Len() != 1 {
		t.Errorf("expected only the initial record, got %d (complete=%v)", tr.Len(), tr.Complete)
	}
}

func TestSimulatorCancelled(t *testing.T) {
	model, entry, x0 := testModel(t, "pendulum")
	grid, _ := dynamo.Linspace(0, 1, 11)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr, err := New(model, testSolver(t)).Run(ctx, Request{Params: entry.Params, Initial: x0, Grid: grid}, dynamo.DefaultConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if tr.Len() != 1 {
		t.Errorf("expected only the initial record, got %d", tr.Len())
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(x dynamo.State, time float64) {
	t.count++
	t.sum += x[0]
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

type testObserver struct{ times []float64 }

func (o *testObserver) OnRecord(x dynamo.State, t float64) { o.times = append(o.times, t) }

func TestSimulatorMetricsAndObservers(t *testing.T) {
	model, entry, x0 := testModel(t, "pendulum")
	grid, _ := dynamo.Linspace(0, 1, 11)

	sim := New(model, testSolver(t))
	metric := &testMetric{}
	obs := &testObserver{}
	sim.AddMetric(metric)
	sim.AddObserver(obs)

	tr, err := sim.Run(context.Background(), Request{Params: entry.Params, Initial: x0, Grid: grid}, dynamo.DefaultConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := tr.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 11 {
		t.Errorf("expected 11 observations, got %d", metric.count)
	}
	if len(obs.times) != 11 || obs.times[0] != 0 {
		t.Errorf("unexpected observer times %v", obs.times)
	}
}

func TestSystemToleratesOffGridTimes(t *testing.T) {
	model, entry, x0 := testModel(t, "elastic")
	sys, err := NewSystem(model, entry.Params)
	if err != nil {
		t.Fatalf("bind failed: %v", err)
	}

	a := sys.Derive(x0, 0)
	b := sys.Derive(x0, 0.123456)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("derivative depends on time at %d: %f vs %f", i, a[i], b[i])
		}
	}
	if a[0] != x0[1] || a[2] != x0[3] {
		t.Errorf("coordinate derivatives should equal velocities: %v for %v", a, x0)
	}
}
