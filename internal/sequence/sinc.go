package sequence

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/blochsim/internal/bloch"
)

// SincPulse is a Hamming-windowed sinc with Lobes zero crossings on each
// side of the main lobe. Its area is scaled to the flip angle.
type SincPulse struct {
	FlipAngle float64 // degrees
	Duration  float64 // ms
	Lobes     float64
}

func NewSincPulse() *SincPulse {
	return &SincPulse{FlipAngle: 90, Duration: 2, Lobes: 3}
}

func (s *SincPulse) Name() string { return "sinc" }

// Envelope returns the unscaled pulse shape sampled at n midpoints.
func (s *SincPulse) Envelope(n int) []float64 {
	env := make([]float64, n)
	for k := range env {
		tau := 2*(float64(k)+0.5)/float64(n) - 1
		x := math.Pi * s.Lobes * tau
		sinc := 1.0
		if x != 0 {
			sinc = math.Sin(x) / x
		}
		env[k] = sinc * (0.54 + 0.46*math.Cos(math.Pi*tau))
	}
	return env
}

func (s *SincPulse) Waveform(steps int, dt float64) Waveform {
	wf := make(Waveform, steps)
	n := pulseSamples(s.Duration, dt, steps)
	if n == 0 {
		return wf
	}
	env := s.Envelope(n)
	area := floats.Sum(env)
	if area == 0 {
		return wf
	}
	floats.Scale(radians(s.FlipAngle)/(bloch.Gamma*dt*area), env)
	for k, v := range env {
		wf[k] = complex(v, 0)
	}
	return wf
}

func (s *SincPulse) GetParams() map[string]float64 {
	return map[string]float64{"flip_angle": s.FlipAngle, "duration": s.Duration, "lobes": s.Lobes}
}

func (s *SincPulse) SetParam(name string, value float64) error {
	switch name {
	case "flip_angle":
		s.FlipAngle = value
	case "duration":
		s.Duration = value
	case "lobes":
		s.Lobes = value
	default:
		return unknownParam(s.Name(), name)
	}
	return nil
}
