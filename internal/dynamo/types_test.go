package dynamo

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestStateInterleave(t *testing.T) {
	s, err := Interleave([]float64{1, 2}, []float64{3, 4})
	if err != nil {
		t.Fatalf("interleave failed: %v", err)
	}
	want := State{1, 3, 2, 4}
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, s)
		}
	}

	q := s.Coordinates()
	v := s.Velocities()
	if q[0] != 1 || q[1] != 2 || v[0] != 3 || v[1] != 4 {
		t.Errorf("split mismatch: q=%v v=%v", q, v)
	}

	if _, err := Interleave([]float64{1}, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestStateIsValid(t *testing.T) {
	tests := []struct {
		state State
		valid bool
	}{
		{State{0, 1, 2}, true},
		{State{math.NaN()}, false},
		{State{1, math.Inf(-1)}, false},
		{State{}, true},
	}
	for _, tt := range tests {
		if got := tt.state.IsValid(); got != tt.valid {
			t.Errorf("IsValid(%v) = %v, want %v", tt.state, got, tt.valid)
		}
	}
}

func TestStateArithmetic(t *testing.T) {
	a := State{1, 2}
	b := State{3, 4}

	if got := a.Add(b); got[0] != 4 || got[1] != 6 {
		t.Errorf("add: got %v", got)
	}
	if got := b.Sub(a); got[0] != 2 || got[1] != 2 {
		t.Errorf("sub: got %v", got)
	}
	if got := a.Scale(2); got[0] != 2 || got[1] != 4 {
		t.Errorf("scale: got %v", got)
	}
	if got := (State{3, 4}).Norm(); math.Abs(got-5) > 1e-12 {
		t.Errorf("norm: got %f", got)
	}

	c := a.Clone()
	c[0] = 99
	if a[0] != 1 {
		t.Error("clone should not alias the original")
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Step: 3, Time: 1.5, Wrapped: ErrNumericDivergence}
	if !errors.Is(err, ErrNumericDivergence) {
		t.Error("simulation error should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "step 3") {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !errors.Is(Invalidf("bad %s", "grid"), ErrInvalidConfiguration) {
		t.Error("Invalidf should wrap ErrInvalidConfiguration")
	}
}
