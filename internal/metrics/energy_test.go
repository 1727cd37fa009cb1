package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/sim"
)

type pendulumEnergy struct{}

func (pendulumEnergy) Energy(x dynamo.State) float64 {
	return 0.5*x[1]*x[1] + 9.81*(1-math.Cos(x[0]))
}

func TestEnergyConservation(t *testing.T) {
	m := NewEnergy(pendulumEnergy{})

	theta := math.Pi / 4
	omega := 0.0

	x := dynamo.State{theta, omega}

	m.Observe(x, 0)
	e1 := m.Value()

	m.Reset()

	expected := 9.81 * (1 - math.Cos(theta))

	m.Observe(x, 0)
	e2 := m.Value()

	if math.Abs(e1-expected) > 1e-6 {
		t.Errorf("expected energy %f, got %f", expected, e1)
	}

	if math.Abs(e2-expected) > 1e-6 {
		t.Errorf("expected energy %f after reset, got %f", expected, e2)
	}
}

func TestEnergyReset(t *testing.T) {
	m := NewEnergy(pendulumEnergy{})

	m.Observe(dynamo.State{1.0, 1.0}, 0)
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(pendulumEnergy{})

	m.Observe(dynamo.State{0, 2}, 0)
	m.Observe(dynamo.State{0, 2.2}, 0.1)
	m.Observe(dynamo.State{0, 1.9}, 0.2)

	want := (0.5*2.2*2.2 - 2) / 2
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected drift %f, got %f", want, m.Value())
	}
}

func TestSettled(t *testing.T) {
	s := NewSettled(0.01)
	if s.Value() != 0 {
		t.Errorf("expected 0 before any record, got %f", s.Value())
	}
	states := []dynamo.State{
		{0.5, 0.2, 1, 0},
		{1.5, 0, 1, 0.005},
		{0.1, -0.009, 2, 0},
		{0, 0, 3, -3},
	}
	for _, x := range states {
		s.Observe(x, 0)
	}
	if got := s.Value(); got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
	s.Reset()
	if s.Value() != 0 {
		t.Error("expected reset to clear samples")
	}
}

type fixedPositions struct{}

func (fixedPositions) Positions(x dynamo.State) []sim.Point {
	return []sim.Point{{X: x[0], Y: 0}, {X: 0, Y: x[0] * 2}}
}

func TestRadialExtent(t *testing.T) {
	r := NewRadialExtent(fixedPositions{})
	r.Observe(dynamo.State{1, 0}, 0)
	r.Observe(dynamo.State{-3, 0}, 1)
	if r.Value() != 6 {
		t.Errorf("expected 6, got %f", r.Value())
	}
	r.Reset()
	if r.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestSummarize(t *testing.T) {
	tr := &sim.Trajectory{
		StateNames: []string{"x", "x_dot"},
		Times:      []float64{0, 1, 2},
		States:     []dynamo.State{{1, 0}, {2, 1}, {3, 2}},
		Positions:  [][]sim.Point{{{X: 1}}, {{X: 2}}, {{X: 3, Y: 4}}},
		Energies:   []float64{1, 1, 1},
		Complete:   true,
	}

	s := Summarize(tr)
	if s.Records != 3 || s.Duration != 2 || !s.Complete {
		t.Errorf("unexpected header %+v", s)
	}
	if len(s.States) != 2 || s.States[0].Mean != 2 || s.States[0].Min != 1 || s.States[0].Max != 3 {
		t.Errorf("unexpected state series %+v", s.States)
	}
	if s.Radius.Max != 5 {
		t.Errorf("expected max radius 5, got %f", s.Radius.Max)
	}
	if s.EnergyDrift != 0 || s.Energy.StdDev != 0 {
		t.Errorf("constant energy should not drift: %+v", s.Energy)
	}
}
