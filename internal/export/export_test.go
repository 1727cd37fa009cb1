package export

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/sim"
	"github.com/san-kum/lagsim/internal/viz"
)

func orbit(n int) *sim.Trajectory {
	tr := &sim.Trajectory{Name: "orbit", StateNames: []string{"theta", "theta_dot"}, Complete: true}
	for i := 0; i < n; i++ {
		th := 2 * math.Pi * float64(i) / float64(n-1)
		tr.Times = append(tr.Times, th)
		tr.States = append(tr.States, dynamo.State{th, 1})
		tr.Positions = append(tr.Positions, []sim.Point{{X: 1.5 * math.Cos(th), Y: 1.5 * math.Sin(th)}})
		tr.Energies = append(tr.Energies, 2)
	}
	return tr
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(7, 7)

	svg := CanvasToSVG(c, 2)
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("expected 2 dots, got %d", got)
	}
	if !strings.Contains(svg, `width="16" height="16"`) {
		t.Error("unexpected dimensions")
	}
	if CanvasToSVG(nil, 1) != "" {
		t.Error("nil canvas should render nothing")
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	svg, err := TrajectoryToSVG(orbit(50), 0, 200, "#00ff88")
	if err != nil {
		t.Fatalf("svg failed: %v", err)
	}
	// max radius 1.5 fills 90% of the half width
	if !strings.Contains(svg, `r="90.0"`) {
		t.Error("expected the max-radius circle")
	}
	if got := strings.Count(svg, " L"); got != 49 {
		t.Errorf("expected 49 path segments, got %d", got)
	}

	if _, err := TrajectoryToSVG(orbit(50), 3, 200, "#fff"); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("bad body: expected ErrInvalidConfiguration, got %v", err)
	}
	if _, err := TrajectoryToSVG(&sim.Trajectory{}, 0, 200, "#fff"); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("empty: expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestPNGPlots(t *testing.T) {
	tr := orbit(100)

	path, err := PathPlot(tr, 0)
	if err != nil {
		t.Fatalf("path plot failed: %v", err)
	}
	if math.Abs(path.X.Min+1.575) > 1e-9 || math.Abs(path.Y.Max-1.575) > 1e-9 {
		t.Errorf("axes should be square around the max radius, got x [%f, %f]", path.X.Min, path.X.Max)
	}

	var buf bytes.Buffer
	if err := WritePNG(&buf, path, 4, 4, 72); err != nil {
		t.Fatalf("png failed: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 288 || b.Dy() != 288 {
		t.Errorf("expected 288x288, got %v", b)
	}

	series, err := SeriesPlot(tr, "theta", "theta_dot")
	if err != nil {
		t.Fatalf("series plot failed: %v", err)
	}
	file := filepath.Join(t.TempDir(), "nested", "series.png")
	if err := SavePNG(file, series, 6, 3, 72); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := SeriesPlot(tr, "phi"); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("unknown state: expected ErrInvalidConfiguration, got %v", err)
	}
	if _, err := EnergyPlot(tr); err != nil {
		t.Errorf("energy plot failed: %v", err)
	}
}
