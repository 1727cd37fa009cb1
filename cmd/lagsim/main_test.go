package main

import (
	"errors"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/lagsim/internal/dynamo"
)

func TestParseAxis(t *testing.T) {
	tests := []struct {
		arg     string
		name    string
		initial bool
		values  []float64
	}{
		{"k=5,10,20", "k", false, []float64{5, 10, 20}},
		{"init:theta=0.5, 1", "theta", true, []float64{0.5, 1}},
	}
	for _, tt := range tests {
		axis, err := parseAxis(tt.arg)
		if err != nil {
			t.Errorf("%s: %v", tt.arg, err)
			continue
		}
		if axis.Name != tt.name || axis.Initial != tt.initial || len(axis.Values) != len(tt.values) {
			t.Errorf("%s: unexpected axis %+v", tt.arg, axis)
			continue
		}
		for i := range tt.values {
			if axis.Values[i] != tt.values[i] {
				t.Errorf("%s: expected %v, got %v", tt.arg, tt.values, axis.Values)
			}
		}
	}

	for _, bad := range []string{"k", "=1", "k=", "k=1,x"} {
		if _, err := parseAxis(bad); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
			t.Errorf("%q: expected ErrInvalidConfiguration, got %v", bad, err)
		}
	}
}

func TestResolveConfig(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&solverName, "solver", "rk4", "")
	cmd.Flags().IntVar(&points, "points", 1000, "")
	cmd.Flags().StringToStringVar(&paramSets, "param", nil, "")
	t.Cleanup(func() { paramSets, preset, configFile = nil, "", "" })

	if err := cmd.ParseFlags([]string{"--solver", "verlet", "--points", "50", "--param", "k=25"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(cmd, []string{"elastic"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if cfg.Solver != "verlet" || cfg.Grid.Points != 50 || cfg.Params["k"] != 25 {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Params["m"] != 1 {
		t.Errorf("expected catalog m=1, got %v", cfg.Params["m"])
	}

	paramSets = map[string]string{"k": "stiff"}
	if _, err := resolveConfig(cmd, []string{"elastic"}); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}
