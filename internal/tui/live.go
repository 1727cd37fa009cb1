package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/lagsim/internal/sim"
)

const (
	width       = 70
	height      = 24
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer prints ASCII frames of bodies inside a bounding circle to
// a terminal. Characters are roughly twice as tall as wide, so x is
// stretched by two.
type LiveRenderer struct {
	out       io.Writer
	name      string
	radius    float64
	frameRate int
	lastFrame time.Time
	canvas    [][]rune
	trail     []struct{ x, y int }
	frames    int
}

// NewLiveRenderer draws into out. frameRate <= 0 disables pacing.
func NewLiveRenderer(out io.Writer, name string, radius float64, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	if !(radius > 0) {
		radius = 1
	}
	return &LiveRenderer{
		out:       out,
		name:      name,
		radius:    radius,
		frameRate: frameRate,
		canvas:    canvas,
		trail:     make([]struct{ x, y int }, 0, 50),
	}
}

func (r *LiveRenderer) Frames() int { return r.frames }

// Frame draws bodies chained from the origin and writes the frame. With
// pacing on it sleeps so frames are at least 1/frameRate apart.
func (r *LiveRenderer) Frame(bodies []sim.Point, t float64, status string) {
	if r.frameRate > 0 {
		next := r.lastFrame.Add(time.Second / time.Duration(r.frameRate))
		if wait := time.Until(next); wait > 0 {
			time.Sleep(wait)
		}
		r.lastFrame = time.Now()
	}

	r.clear()
	r.drawCircle()

	ox, oy := r.project(0, 0)
	if len(bodies) > 0 {
		last := bodies[len(bodies)-1]
		bx, by := r.project(last.X, last.Y)
		r.trail = append(r.trail, struct{ x, y int }{bx, by})
		if len(r.trail) > 40 {
			r.trail = r.trail[1:]
		}
	}
	for i, pt := range r.trail {
		if i < len(r.trail)/2 {
			r.set(pt.x, pt.y, '.')
		} else {
			r.set(pt.x, pt.y, 'o')
		}
	}

	px, py := ox, oy
	for _, b := range bodies {
		bx, by := r.project(b.X, b.Y)
		r.line(px, py, bx, by, '|')
		px, py = bx, by
	}
	r.set(ox, oy, '+')
	for _, b := range bodies {
		bx, by := r.project(b.X, b.Y)
		r.set(bx, by, 'O')
	}

	r.render(bodies, t, status)
	r.frames++
}

func (r *LiveRenderer) project(x, y float64) (int, int) {
	scale := float64(height/2-1) / r.radius
	return width/2 + int(math.Round(2*x*scale)), height/2 - int(math.Round(y*scale))
}

func (r *LiveRenderer) drawCircle() {
	for i := 0; i < 120; i++ {
		a := 2 * math.Pi * float64(i) / 120
		x, y := r.project(r.radius*math.Cos(a), r.radius*math.Sin(a))
		r.set(x, y, '·')
	}
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		r.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (r *LiveRenderer) render(bodies []sim.Point, t float64, status string) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs  %s\n", r.name, t, status))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	b.WriteString(" ")
	for i, p := range bodies {
		b.WriteString(fmt.Sprintf(" body%d=(%.2f, %.2f) r=%.2f", i, p.X, p.Y, p.Radius()))
	}
	b.WriteString("\n")

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }

// Replay draws the given frames of tr in order.
func (r *LiveRenderer) Replay(tr *sim.Trajectory, frames []int) {
	for _, i := range frames {
		r.Frame(tr.Positions[i], tr.Times[i], "")
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
