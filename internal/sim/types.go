package sim

import (
	"math"

	"github.com/san-kum/lagsim/internal/dynamo"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Radius() float64 { return math.Hypot(p.X, p.Y) }

func (p Point) IsValid() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Request is one integration run: parameter values, the interleaved
// initial state and the output grid.
type Request struct {
	Params  map[string]float64
	Initial dynamo.State
	Grid    dynamo.Grid
}

// Record is one output time point of a trajectory.
type Record struct {
	Time        float64
	Coordinates []float64
	Velocities  []float64
	Positions   []Point
}

// Trajectory is the ordered output of a run. It is not mutated after Run
// returns. Complete is false when the run stopped early.
type Trajectory struct {
	Name        string
	Coordinates []string
	StateNames  []string
	Times       []float64
	States      []dynamo.State
	Positions   [][]Point
	Energies    []float64
	Complete    bool
	Steps       int
	Metrics     map[string]float64
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

func (tr *Trajectory) Record(i int) Record {
	return Record{
		Time:        tr.Times[i],
		Coordinates: tr.States[i].Coordinates(),
		Velocities:  tr.States[i].Velocities(),
		Positions:   tr.Positions[i],
	}
}

func (tr *Trajectory) Records() []Record {
	out := make([]Record, tr.Len())
	for i := range out {
		out[i] = tr.Record(i)
	}
	return out
}

// MaxRadius is the largest distance from the origin reached by any body,
// usable as a fixed bound for rendering.
func (tr *Trajectory) MaxRadius() float64 {
	maxR := 0.0
	for _, ps := range tr.Positions {
		for _, p := range ps {
			maxR = math.Max(maxR, p.Radius())
		}
	}
	return maxR
}

// Frames returns up to n evenly spaced record indices, always including
// the first and last records.
func (tr *Trajectory) Frames(n int) []int {
	total := tr.Len()
	if total == 0 || n <= 0 {
		return nil
	}
	if n >= total {
		idx := make([]int, total)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	if n == 1 {
		return []int{0}
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = int(math.Round(float64(i) * float64(total-1) / float64(n-1)))
	}
	return idx
}

// EnergyDrift is the largest deviation of the recorded energy from its
// initial value, relative to the initial value when that is non-zero.
func (tr *Trajectory) EnergyDrift() float64 {
	if len(tr.Energies) == 0 {
		return 0
	}
	e0 := tr.Energies[0]
	drift := 0.0
	for _, e := range tr.Energies {
		drift = math.Max(drift, math.Abs(e-e0))
	}
	if e0 != 0 {
		drift /= math.Abs(e0)
	}
	return drift
}

// Final returns the last recorded state.
func (tr *Trajectory) Final() dynamo.State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}
