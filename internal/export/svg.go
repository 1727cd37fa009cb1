package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/lagsim/internal/sim"
	"github.com/san-kum/lagsim/internal/viz"
)

// CanvasToSVG converts a Braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height))

	dotRadius := scale * 0.4
	for y := 0; y < canvas.Height*4; y++ {
		for x := 0; x < canvas.Width*2; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG draws the path of one body on a square canvas centered
// on the origin, with the circle of the trajectory's maximum radius.
func TrajectoryToSVG(tr *sim.Trajectory, body, size int, strokeColor string) (string, error) {
	if tr == nil || tr.Len() < 2 {
		return "", errNoData
	}
	if body < 0 || body >= len(tr.Positions[0]) {
		return "", errBody(body, len(tr.Positions[0]))
	}

	radius := tr.MaxRadius()
	if radius == 0 {
		radius = 1
	}
	half := float64(size) / 2
	scale := 0.9 * half / radius
	project := func(p sim.Point) (float64, float64) {
		return half + p.X*scale, half - p.Y*scale
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#444466" stroke-dasharray="4 4"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		size, size, size, size, half, half, radius*scale, strokeColor))

	for i, ps := range tr.Positions {
		p := ps[body]
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			break
		}
		x, y := project(p)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	x, y := project(tr.Positions[tr.Len()-1][body])
	sb.WriteString(fmt.Sprintf(`"/>
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#888899"/>
<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>
</svg>`, half, half, x, y, x, y, strokeColor))
	return sb.String(), nil
}
