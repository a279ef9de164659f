package sequence

import (
	"math/cmplx"

	"github.com/san-kum/blochsim/internal/bloch"
)

// HardPulse is a constant-amplitude RF pulse followed by free precession.
type HardPulse struct {
	FlipAngle float64 // degrees
	Duration  float64 // ms
	Phase     float64 // degrees, 0 is along x
}

func NewHardPulse() *HardPulse {
	return &HardPulse{FlipAngle: 90, Duration: 0.5, Phase: 0}
}

func (h *HardPulse) Name() string { return "hard" }

func (h *HardPulse) Waveform(steps int, dt float64) Waveform {
	wf := make(Waveform, steps)
	n := pulseSamples(h.Duration, dt, steps)
	if n == 0 {
		return wf
	}
	amp := radians(h.FlipAngle) / (bloch.Gamma * dt * float64(n))
	b1 := cmplx.Rect(amp, radians(h.Phase))
	for k := 0; k < n; k++ {
		wf[k] = b1
	}
	return wf
}

func (h *HardPulse) GetParams() map[string]float64 {
	return map[string]float64{"flip_angle": h.FlipAngle, "duration": h.Duration, "phase": h.Phase}
}

func (h *HardPulse) SetParam(name string, value float64) error {
	switch name {
	case "flip_angle":
		h.FlipAngle = value
	case "duration":
		h.Duration = value
	case "phase":
		h.Phase = value
	default:
		return unknownParam(h.Name(), name)
	}
	return nil
}
