package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/sim"
)

func TestLiveRendererFrame(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, "tether", 2, 0)

	r.Frame([]sim.Point{{X: 0, Y: -2}}, 1.5, "taut")

	out := buf.String()
	for _, want := range []string{"tether", "t=1.50s", "taut", "body0=(0.00, -2.00) r=2.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("frame missing %q", want)
		}
	}

	ox, oy := r.project(0, 0)
	if r.canvas[oy][ox] != '+' {
		t.Errorf("expected the pivot at the center, got %q", r.canvas[oy][ox])
	}
	bx, by := r.project(0, -2)
	if r.canvas[by][bx] != 'O' {
		t.Errorf("expected the body on the bottom of the circle, got %q", r.canvas[by][bx])
	}
	if by != height-1 {
		t.Errorf("a body at the radius should reach the last row, got %d", by)
	}
}

func TestLiveRendererReplay(t *testing.T) {
	tr := &sim.Trajectory{}
	for i := 0; i < 5; i++ {
		tr.Times = append(tr.Times, float64(i))
		tr.States = append(tr.States, dynamo.State{0, 0})
		tr.Positions = append(tr.Positions, []sim.Point{{X: float64(i) / 4, Y: 0}})
	}

	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, "replay", 1, 0)
	r.Replay(tr, tr.Frames(3))

	if r.Frames() != 3 {
		t.Errorf("expected 3 frames, got %d", r.Frames())
	}
	if got := strings.Count(buf.String(), clearScreen); got != 3 {
		t.Errorf("expected 3 screen clears, got %d", got)
	}
}
