package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestLinspace(t *testing.T) {
	g, err := Linspace(0, 20, 1000)
	if err != nil {
		t.Fatalf("linspace failed: %v", err)
	}
	if len(g) != 1000 {
		t.Fatalf("expected 1000 points, got %d", len(g))
	}
	if g.Start() != 0 || g.End() != 20 {
		t.Errorf("expected span [0, 20], got [%g, %g]", g.Start(), g.End())
	}
	if err := g.Validate(); err != nil {
		t.Errorf("linspace grid should validate: %v", err)
	}
}

func TestArange(t *testing.T) {
	g, err := Arange(0, 30, 0.01)
	if err != nil {
		t.Fatalf("arange failed: %v", err)
	}
	if len(g) != 3000 {
		t.Errorf("expected 3000 points, got %d", len(g))
	}
	if g.End() >= 30 {
		t.Errorf("arange should exclude horizon, last point %g", g.End())
	}
}

func TestGridInvalid(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (Grid, error)
	}{
		{"empty", func() (Grid, error) { return Linspace(0, 1, 0) }},
		{"negative points", func() (Grid, error) { return Linspace(0, 1, -3) }},
		{"horizon before start", func() (Grid, error) { return Linspace(5, 1, 10) }},
		{"horizon equals start", func() (Grid, error) { return Linspace(1, 1, 10) }},
		{"zero step", func() (Grid, error) { return Arange(0, 1, 0) }},
		{"negative step", func() (Grid, error) { return Arange(0, 1, -0.1) }},
		{"nan start", func() (Grid, error) { return Linspace(math.NaN(), 1, 10) }},
	}

	for _, tt := range tests {
		_, err := tt.fn()
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("%s: expected ErrInvalidConfiguration, got %v", tt.name, err)
		}
	}
}

func TestGridValidate(t *testing.T) {
	tests := []struct {
		name  string
		grid  Grid
		valid bool
	}{
		{"single point", Grid{0}, true},
		{"increasing", Grid{0, 0.5, 1}, true},
		{"empty", Grid{}, false},
		{"repeated", Grid{0, 1, 1}, false},
		{"decreasing", Grid{0, 2, 1}, false},
		{"inf", Grid{0, math.Inf(1)}, false},
	}

	for _, tt := range tests {
		err := tt.grid.Validate()
		if tt.valid && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.valid && !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("%s: expected ErrInvalidConfiguration, got %v", tt.name, err)
		}
	}
}
