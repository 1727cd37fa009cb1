package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/lagsim/internal/config"
	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/experiment"
	"github.com/san-kum/lagsim/internal/logging"
)

func TestGridPoints(t *testing.T) {
	g := NewGridSearch([]Axis{
		{Name: "k", Values: []float64{1, 2, 3}},
		{Name: "theta", Values: []float64{0, 1}, Initial: true},
	}, 2)

	points := g.Points()
	if len(points) != 6 {
		t.Fatalf("expected 6 points, got %d", len(points))
	}
	if points[0]["k"] != 1 || points[0]["theta"] != 0 || points[1]["theta"] != 1 || points[5]["k"] != 3 {
		t.Errorf("unexpected enumeration order %v", points)
	}
}

func TestGridSearchFindsLeastRadius(t *testing.T) {
	cfg := config.GetPreset("elastic", "scenario")
	cfg.Grid = config.GridConfig{Start: 0, Horizon: 2, Points: 50}

	g := NewGridSearch([]Axis{
		{Name: "k", Values: []float64{5, 20, 80}},
	}, 3)

	res, err := g.Search(context.Background(), experiment.NewRegistry(logging.Discard()), cfg, "max_radius")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(res.Trials) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(res.Trials))
	}
	for _, tr := range res.Trials {
		if !tr.Complete || math.IsInf(tr.Score, 0) {
			t.Errorf("k=%.0f: expected a complete scored run, got %+v", tr.Values["k"], tr)
		}
	}
	// the stiffest spring stretches least
	if res.Best["k"] != 80 {
		t.Errorf("expected k=80 to win, got %v (score %f)", res.Best, res.BestScore)
	}
	if cfg.Params["k"] != 10 {
		t.Error("search must not mutate the base configuration")
	}
}

func TestGridSearchErrors(t *testing.T) {
	reg := experiment.NewRegistry(logging.Discard())
	cfg := config.GetPreset("elastic", "scenario")

	if _, err := NewGridSearch([]Axis{{Name: "k", Values: []float64{1}}}, 1).Search(context.Background(), reg, cfg, "nope"); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("unknown objective: expected ErrInvalidConfiguration, got %v", err)
	}
	if _, err := NewGridSearch(nil, 1).Search(context.Background(), reg, cfg, "max_radius"); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("no axes: expected ErrInvalidConfiguration, got %v", err)
	}
	if _, err := NewGridSearch([]Axis{{Name: "zeta", Values: []float64{1}}}, 1).Search(context.Background(), reg, cfg, "max_radius"); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("unknown parameter: expected ErrInvalidConfiguration, got %v", err)
	}
	if _, err := NewGridSearch([]Axis{{Name: "k", Values: []float64{1}, Initial: true}}, 1).Search(context.Background(), reg, cfg, "max_radius"); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("parameter swept as initial value: expected ErrInvalidConfiguration, got %v", err)
	}
}
