package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/lagsim/internal/dynamo"
)

const scenarioYAML = `name: warmup
description: two quick runs
steps:
  - geometry: oscillator
    horizon: 2
    points: 21
    params:
      c: 0
  - geometry: pendulum
    preset: small
    solver: rk45
    horizon: 1
    points: 11
    save_as: small-rk45
  - geometry: nowhere
`

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.Name != "warmup" || len(sc.Steps) != 3 {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	if sc.Steps[1].SaveAs != "small-rk45" {
		t.Errorf("expected save_as small-rk45, got %q", sc.Steps[1].SaveAs)
	}
}

func TestLoadScenarioEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	os.WriteFile(path, []byte("name: empty\n"), 0644)
	if _, err := LoadScenario(path); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestStepConfig(t *testing.T) {
	cfg, err := ScenarioStep{Geometry: "elastic", Points: 50, Params: map[string]float64{"k": 25}}.Config()
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if cfg.Params["k"] != 25 || cfg.Params["m"] != 1 {
		t.Errorf("expected k overridden and m kept, got %v", cfg.Params)
	}
	if cfg.Grid.Points != 50 || cfg.Grid.Step != 0 {
		t.Errorf("expected 50 points, got %+v", cfg.Grid)
	}

	if _, err := (ScenarioStep{Geometry: "elastic", Preset: "nope"}).Config(); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t))
	if err != nil {
		t.Fatal(err)
	}

	results, err := RunScenario(context.Background(), sc, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for i, want := range []int{21, 11} {
		r := results[i]
		if r.Err != nil {
			t.Fatalf("step %d: %v", i+1, r.Err)
		}
		if r.Trajectory.Len() != want || !r.Trajectory.Complete {
			t.Errorf("step %d: expected %d complete records, got %d (complete=%v)", i+1, want, r.Trajectory.Len(), r.Trajectory.Complete)
		}
	}
	if results[1].Config.Solver != "rk45" {
		t.Errorf("expected solver override, got %s", results[1].Config.Solver)
	}
	if !errors.Is(results[2].Err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("expected unknown geometry to fail with ErrInvalidConfiguration, got %v", results[2].Err)
	}
}

func TestRunScenarioCancelled(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{{Geometry: "oscillator"}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := RunScenario(ctx, sc, nil)
	if !errors.Is(err, context.Canceled) || len(results) != 0 {
		t.Errorf("expected cancellation before the first step, got %d results, %v", len(results), err)
	}
}
