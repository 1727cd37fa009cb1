package metrics

import (
	"math"

	"github.com/san-kum/lagsim/internal/sim"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Series describes one scalar sequence of a trajectory.
type Series struct {
	Name   string  `json:"name"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

func describe(name string, xs []float64) Series {
	if len(xs) == 0 {
		return Series{Name: name}
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return Series{
		Name:   name,
		Min:    floats.Min(xs),
		Max:    floats.Max(xs),
		Mean:   mean,
		StdDev: std,
	}
}

// Summary holds per-coordinate statistics plus energy and radius figures.
type Summary struct {
	Records     int      `json:"records"`
	Duration    float64  `json:"duration"`
	Complete    bool     `json:"complete"`
	Steps       int      `json:"steps"`
	States      []Series `json:"states"`
	Energy      Series   `json:"energy"`
	EnergyDrift float64  `json:"energy_drift"`
	Radius      Series   `json:"radius"`
}

func Summarize(tr *sim.Trajectory) Summary {
	s := Summary{
		Records:     tr.Len(),
		Complete:    tr.Complete,
		Steps:       tr.Steps,
		Energy:      describe("energy", tr.Energies),
		EnergyDrift: tr.EnergyDrift(),
	}
	if tr.Len() > 0 {
		s.Duration = tr.Times[tr.Len()-1] - tr.Times[0]
	}

	column := make([]float64, tr.Len())
	for j, name := range tr.StateNames {
		for i, x := range tr.States {
			column[i] = x[j]
		}
		s.States = append(s.States, describe(name, column))
	}

	radii := make([]float64, 0, tr.Len())
	for _, ps := range tr.Positions {
		r := 0.0
		for _, p := range ps {
			r = math.Max(r, p.Radius())
		}
		radii = append(radii, r)
	}
	s.Radius = describe("radius", radii)

	return s
}
