package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/pkg/errors"

	"github.com/san-kum/blochsim/internal/bloch"
)

// PlotSpin draws Mx, My and Mz of one spin against step.
func PlotSpin(traj *bloch.Trajectory, spin, width, height int) (string, error) {
	steps, spins := traj.Dims()
	if spin < 0 || spin >= spins {
		return "", errors.Errorf("spin %d out of range [0, %d)", spin, spins)
	}

	mx := make([]float64, steps)
	my := make([]float64, steps)
	mz := make([]float64, steps)
	for k := 0; k < steps; k++ {
		m := traj.At(k, spin)
		mx[k], my[k], mz[k] = m.X, m.Y, m.Z
	}

	return asciigraph.PlotMany([][]float64{mx, my, mz},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(-1),
		asciigraph.UpperBound(1),
		asciigraph.Caption(fmt.Sprintf("spin %d magnetization over %d steps", spin, steps)),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green, asciigraph.Blue),
		asciigraph.SeriesLegends("Mx", "My", "Mz"),
	), nil
}

// PlotSignal draws the magnitude of a complex signal against step.
func PlotSignal(mags []float64, width, height int, caption string) string {
	if len(mags) == 0 {
		return ""
	}
	return asciigraph.Plot(mags,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PlotSpectrum draws a magnitude spectrum; freqs label the caption.
func PlotSpectrum(freqs, mags []float64, width, height int) string {
	if len(mags) == 0 || len(freqs) != len(mags) {
		return ""
	}
	caption := fmt.Sprintf("|S(f)|, %.3f to %.3f kHz", freqs[0], freqs[len(freqs)-1])
	return asciigraph.Plot(mags,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Yellow),
	)
}
