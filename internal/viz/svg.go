package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/blochsim/internal/bloch"
)

// TransversePath draws the unit circle and the path of one spin in the
// (Mx, My) plane on a canvas of cells x cells/2 characters.
func TransversePath(traj *bloch.Trajectory, spin, cells int) *Canvas {
	c := NewCanvas(cells, max(1, cells/2))
	c.Circle()
	steps, spins := traj.Dims()
	if spin < 0 || spin >= spins {
		return c
	}
	prev := traj.At(0, spin)
	for k := 1; k < steps; k++ {
		m := traj.At(k, spin)
		c.Line(prev.X, prev.Y, m.X, m.Y)
		prev = m
	}
	return c
}

// SVG renders every lit dot of the canvas as a circle, scale pixels apart.
func (c *Canvas) SVG(scale float64) string {
	width := float64(c.Width) * scale * 2
	height := float64(c.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ccff">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			pattern := int(c.Grid[row][col] - brailleBlank)
			if pattern <= 0 {
				continue
			}
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}
