package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/lagsim/internal/compile"
	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/sim"
)

// BifurcationPoint represents a stable state for a given parameter value
type BifurcationPoint struct {
	Param  float64
	Values []float64 // distinct values seen after the transient
}

// Sweep describes a single-parameter bifurcation sweep.
type Sweep struct {
	Param      string
	Min, Max   float64
	Steps      int
	StateIndex int
	Dt         float64
	Transient  float64
	Record     float64
}

// BifurcationDiagram rebinds model once per swept value of s.Param and
// records the distinct values of x[s.StateIndex] after the transient.
// params supplies every other parameter.
func BifurcationDiagram(
	model *compile.Model,
	integ dynamo.Integrator,
	params map[string]float64,
	x0 dynamo.State,
	s Sweep,
) ([]BifurcationPoint, error) {
	if _, ok := params[s.Param]; !ok {
		return nil, dynamo.Invalidf("unknown parameter %q", s.Param)
	}
	if !(s.Dt > 0) {
		return nil, dynamo.Invalidf("step must be positive, got %g", s.Dt)
	}
	if s.StateIndex < 0 || s.StateIndex >= len(x0) {
		return nil, dynamo.Invalidf("state index %d out of range for dimension %d", s.StateIndex, len(x0))
	}

	steps := s.Steps
	if steps <= 1 {
		steps = 2
	}
	paramStep := (s.Max - s.Min) / float64(steps-1)

	bound := make(map[string]float64, len(params))
	for k, v := range params {
		bound[k] = v
	}

	results := make([]BifurcationPoint, 0, steps)
	for i := 0; i < steps; i++ {
		param := s.Min + float64(i)*paramStep
		bound[s.Param] = param

		dyn, err := sim.NewSystem(model, bound)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", s.Param, param, err)
		}

		x := x0.Clone()
		t := 0.0

		// let the system settle
		for t < s.Transient {
			x = integ.Step(dyn, x, t, s.Dt)
			t += s.Dt
		}

		values := make([]float64, 0, 100)
		seen := make(map[int]bool)

		for t < s.Transient+s.Record && x.IsValid() {
			x = integ.Step(dyn, x, t, s.Dt)
			t += s.Dt

			val := x[s.StateIndex]
			// Quantize to find distinct values
			key := int(val * 1000)
			if !seen[key] {
				seen[key] = true
				values = append(values, val)
			}
		}

		results = append(results, BifurcationPoint{
			Param:  param,
			Values: values,
		})
	}

	return results, nil
}

// BifurcationToASCII converts bifurcation data to ASCII art
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	foundFirst := false
	for _, p := range data {
		for _, v := range p.Values {
			if !foundFirst {
				minVal, maxVal = v, v
				foundFirst = true
				continue
			}
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if !foundFirst {
		return ""
	}

	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}

		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
