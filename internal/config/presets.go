package config

import (
	"math"
	"sort"
)

var Presets = map[string]map[string]*Config{
	"elastic": {
		"scenario": {
			Geometry: "elastic", Solver: "rk4", MaxDt: 0.005, Frames: 500,
			Params:  map[string]float64{"m": 1, "k": 10, "g": 9.81},
			Initial: map[string]float64{"theta": math.Pi / 2, "theta_dot": 1, "r": 1, "r_dot": 7},
			Grid:    GridConfig{Start: 0, Horizon: 20, Points: 1000},
		},
		"equilibrium": {
			Geometry: "elastic", Solver: "rk4", MaxDt: 0.01, Frames: 200,
			Params:  map[string]float64{"m": 1, "k": 10, "g": 9.81},
			Initial: map[string]float64{"theta": math.Pi / 2, "theta_dot": 0, "r": 0.981, "r_dot": 0},
			Grid:    GridConfig{Start: 0, Horizon: 10, Points: 200},
		},
		"swing": {
			Geometry: "elastic", Solver: "dopri", MaxDt: 0.01, Tolerance: 1e-9, Frames: 500,
			Params:  map[string]float64{"m": 1, "k": 40, "g": 9.81},
			Initial: map[string]float64{"theta": 1.0, "theta_dot": 0, "r": 0.3, "r_dot": 0},
			Grid:    GridConfig{Start: 0, Horizon: 30, Points: 1500},
		},
	},
	"pendulum": {
		"small": {
			Geometry: "pendulum", Solver: "rk4", MaxDt: 0.01, Frames: 500,
			Params:  map[string]float64{"m": 1, "g": 9.81, "l": 1},
			Initial: map[string]float64{"theta": 0.2, "theta_dot": 0},
			Grid:    GridConfig{Start: 0, Horizon: 20, Points: 1000},
		},
		"large": {
			Geometry: "pendulum", Solver: "rk4", MaxDt: 0.01, Frames: 500,
			Params:  map[string]float64{"m": 1, "g": 9.81, "l": 1},
			Initial: map[string]float64{"theta": 2.5, "theta_dot": 0},
			Grid:    GridConfig{Start: 0, Horizon: 20, Points: 1000},
		},
		"spinning": {
			Geometry: "pendulum", Solver: "verlet", MaxDt: 0.005, Frames: 500,
			Params:  map[string]float64{"m": 1, "g": 9.81, "l": 1},
			Initial: map[string]float64{"theta": 0.1, "theta_dot": 8},
			Grid:    GridConfig{Start: 0, Horizon: 30, Points: 1500},
		},
	},
	"oscillator": {
		"antidamped": {
			Geometry: "oscillator", Solver: "rk4", MaxDt: 0.01, Frames: 500,
			Params:  map[string]float64{"m": 1, "k": 1, "c": -0.2},
			Initial: map[string]float64{"x": 1, "x_dot": 0},
			Grid:    GridConfig{Start: 0, Horizon: 20, Step: 0.01},
		},
		"damped": {
			Geometry: "oscillator", Solver: "rk45", MaxDt: 0.05, Tolerance: 1e-8, Frames: 500,
			Params:  map[string]float64{"m": 1, "k": 4, "c": 0.4},
			Initial: map[string]float64{"x": 1, "x_dot": 0},
			Grid:    GridConfig{Start: 0, Horizon: 20, Points: 1000},
		},
	},
	"double_pendulum": {
		"gentle": {
			Geometry: "double_pendulum", Solver: "rk4", MaxDt: 0.005, Frames: 500,
			Params:  map[string]float64{"m1": 1, "m2": 1, "l1": 1, "l2": 1, "g": 9.81},
			Initial: map[string]float64{"theta1": 0.3, "theta1_dot": 0, "theta2": 0.3, "theta2_dot": 0},
			Grid:    GridConfig{Start: 0, Horizon: 30, Points: 1500},
		},
		"chaos": {
			Geometry: "double_pendulum", Solver: "rk45", MaxDt: 0.005, Tolerance: 1e-10, Frames: 500,
			Params:  map[string]float64{"m1": 1, "m2": 1, "l1": 1, "l2": 1, "g": 9.81},
			Initial: map[string]float64{"theta1": 3.0, "theta1_dot": 0, "theta2": 3.0, "theta2_dot": 0},
			Grid:    GridConfig{Start: 0, Horizon: 60, Points: 3000},
		},
	},
	"horizontal": {
		"release": {
			Geometry: "horizontal", Solver: "rk4", MaxDt: 0.005, Frames: 300,
			Params:  map[string]float64{"m": 1, "g": 9.81},
			Initial: map[string]float64{"theta": 0, "theta_dot": 0},
			Grid:    GridConfig{Start: 0, Horizon: 10, Points: 600},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(geometry, preset string) *Config {
	geometryPresets, ok := Presets[geometry]
	if !ok {
		return nil
	}
	cfg, ok := geometryPresets[preset]
	if !ok {
		return nil
	}
	out := cfg.Clone()
	if out.Tolerance == 0 {
		out.Tolerance = DefaultTolerance
	}
	out.Tether = DefaultTether()
	return out
}

func ListPresets(geometry string) []string {
	geometryPresets, ok := Presets[geometry]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(geometryPresets))
	for name := range geometryPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Geometries lists the geometries that have presets.
func Geometries() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
