package analysis

import (
	"strings"

	"github.com/san-kum/blochsim/internal/bloch"
)

// Portrait renders the path of one spin in the transverse (Mx, My) plane.
// The plot always spans [-1, 1] on both axes so runs can be compared.
func Portrait(traj *bloch.Trajectory, spin, width, height int) string {
	steps, spins := traj.Dims()
	if spin < 0 || spin >= spins || steps == 0 || width < 2 || height < 2 {
		return ""
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	col := func(x float64) int { return int((x + 1) / 2 * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y+1)/2*float64(height-1)) }

	zeroCol, zeroRow := col(0), row(0)
	for r := 0; r < height; r++ {
		canvas[r][zeroCol] = '│'
	}
	for c := 0; c < width; c++ {
		canvas[zeroRow][c] = '─'
	}
	canvas[zeroRow][zeroCol] = '┼'

	for k := 0; k < steps; k++ {
		m := traj.At(k, spin)
		r, c := row(clamp(m.Y)), col(clamp(m.X))
		canvas[r][c] = '•'
	}

	var sb strings.Builder
	for _, line := range canvas {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}

func clamp(v float64) float64 {
	switch {
	case v < -1:
		return -1
	case v > 1:
		return 1
	}
	return v
}
