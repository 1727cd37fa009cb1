package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/lagsim/internal/dynamo"
)

type simpleDynamics struct{}

func (s *simpleDynamics) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (s *simpleDynamics) StateDim() int { return 2 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &simpleDynamics{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestSymplecticInterleaved(t *testing.T) {
	dyn := &simpleDynamics{}
	tests := []struct {
		name  string
		integ dynamo.Integrator
	}{
		{"verlet", NewVerlet()},
		{"leapfrog", NewLeapfrog()},
	}

	for _, tt := range tests {
		x := dynamo.State{1.0, 0.0}
		dt := 0.01
		for i := 0; i < 10000; i++ {
			x = tt.integ.Step(dyn, x, float64(i)*dt, dt)
		}
		energy := 0.5 * (x[0]*x[0] + x[1]*x[1])
		if math.Abs(energy-0.5) > 1e-4 {
			t.Errorf("%s: energy drifted to %.6f", tt.name, energy)
		}
	}
}
