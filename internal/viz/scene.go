package viz

import (
	"image"
	"image/color"
	"image/gif"
	"os"

	"github.com/san-kum/lagsim/internal/sim"
)

// Scene draws bodies hanging from the origin as a chain, inside the
// circle of the trajectory's maximum radius.
type Scene struct {
	Radius   float64
	TrailLen int
	trail    []sim.Point
}

func NewScene(radius float64, trailLen int) *Scene {
	return &Scene{Radius: radius, TrailLen: trailLen}
}

func (s *Scene) ResetTrail() { s.trail = s.trail[:0] }

// Draw renders one frame. The trail follows the last body.
func (s *Scene) Draw(c *Canvas, vp Viewport, bodies []sim.Point) {
	c.Clear()
	ox, oy := vp.Map(0, 0)
	c.DrawCircle(ox, oy, vp.Radius(s.Radius))

	if len(bodies) == 0 {
		return
	}

	if s.TrailLen > 0 {
		s.trail = append(s.trail, bodies[len(bodies)-1])
		if len(s.trail) > s.TrailLen {
			s.trail = s.trail[1:]
		}
		for _, p := range s.trail {
			c.Set(vp.Map(p.X, p.Y))
		}
	}

	c.Dot(ox, oy, 0)
	px, py := ox, oy
	for _, b := range bodies {
		bx, by := vp.Map(b.X, b.Y)
		c.DrawLine(px, py, bx, by)
		c.Dot(bx, by, 1)
		px, py = bx, by
	}
}

// SaveGIF writes frames as a looping animation, delay in 1/100 s units.
func SaveGIF(path string, frames []*image.Paletted, delay int) error {
	if len(frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

var gifInk = color.RGBA{0x00, 0xff, 0x88, 0xff}
