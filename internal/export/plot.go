package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/sim"
)

var (
	errNoData = dynamo.Invalidf("trajectory needs at least 2 records")

	pathColor   = color.RGBA{R: 0x00, G: 0x77, B: 0xbe, A: 0xff}
	boundsColor = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
)

func errBody(body, n int) error {
	return dynamo.Invalidf("body %d out of range for %d bodies", body, n)
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)
	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	p.X.Padding = vg.Points(10)
	p.Y.Padding = vg.Points(10)
	p.Add(plotter.NewGrid())
}

// PathPlot draws the planar path of one body and the circle of the
// trajectory's maximum radius.
func PathPlot(tr *sim.Trajectory, body int) (*plot.Plot, error) {
	if tr == nil || tr.Len() < 2 {
		return nil, errNoData
	}
	if body < 0 || body >= len(tr.Positions[0]) {
		return nil, errBody(body, len(tr.Positions[0]))
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: body %d path", tr.Name, body)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	stylePlot(p)

	pts := make(plotter.XYs, tr.Len())
	for i, ps := range tr.Positions {
		pts[i].X, pts[i].Y = ps[body].X, ps[body].Y
	}
	path, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	path.LineStyle.Width = vg.Points(1)
	path.LineStyle.Color = pathColor

	r := tr.MaxRadius()
	circle := make(plotter.XYs, 181)
	for i := range circle {
		a := 2 * math.Pi * float64(i) / float64(len(circle)-1)
		circle[i].X, circle[i].Y = r*math.Cos(a), r*math.Sin(a)
	}
	bounds, err := plotter.NewLine(circle)
	if err != nil {
		return nil, err
	}
	bounds.LineStyle.Color = boundsColor
	bounds.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(bounds, path)
	p.Legend.Add("path", path)
	p.Legend.Add(fmt.Sprintf("r = %.3f", r), bounds)

	// square axes so the circle stays round
	lim := 1.05 * r
	p.X.Min, p.X.Max = -lim, lim
	p.Y.Min, p.Y.Max = -lim, lim
	return p, nil
}

// SeriesPlot draws the named state components against time.
func SeriesPlot(tr *sim.Trajectory, names ...string) (*plot.Plot, error) {
	if tr == nil || tr.Len() < 2 {
		return nil, errNoData
	}

	p := plot.New()
	p.Title.Text = tr.Name
	p.X.Label.Text = "time (s)"
	stylePlot(p)

	for n, name := range names {
		idx := -1
		for i, s := range tr.StateNames {
			if s == name {
				idx = i
			}
		}
		if idx < 0 {
			return nil, dynamo.Invalidf("unknown state %q (available: %v)", name, tr.StateNames)
		}

		pts := make(plotter.XYs, tr.Len())
		for i := range pts {
			pts[i].X, pts[i].Y = tr.Times[i], tr.States[i][idx]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = seriesColor(n)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	return p, nil
}

// EnergyPlot draws total energy against time.
func EnergyPlot(tr *sim.Trajectory) (*plot.Plot, error) {
	if tr == nil || len(tr.Energies) < 2 {
		return nil, errNoData
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: energy (drift %.2e)", tr.Name, tr.EnergyDrift())
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "E"
	stylePlot(p)

	pts := make(plotter.XYs, len(tr.Energies))
	for i, e := range tr.Energies {
		pts[i].X, pts[i].Y = tr.Times[i], e
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = pathColor
	p.Add(line)
	return p, nil
}

var palette = []color.Color{
	color.RGBA{R: 0x00, G: 0x77, B: 0xbe, A: 0xff},
	color.RGBA{R: 0xe0, G: 0x4a, B: 0x1f, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

func seriesColor(i int) color.Color { return palette[i%len(palette)] }

// WritePNG renders p at the given size in inches and dpi.
func WritePNG(w io.Writer, p *plot.Plot, widthIn, heightIn float64, dpi int) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

// SavePNG writes p to filename, creating its directory.
func SavePNG(filename string, p *plot.Plot, widthIn, heightIn float64, dpi int) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()
	return WritePNG(f, p, widthIn, heightIn, dpi)
}
