package sequence

// FreePrecession applies no RF; spins evolve under off-resonance and
// relaxation only.
type FreePrecession struct{}

func NewFreePrecession() *FreePrecession { return &FreePrecession{} }

func (f *FreePrecession) Name() string { return "fid" }

func (f *FreePrecession) Waveform(steps int, _ float64) Waveform {
	return make(Waveform, steps)
}

func (f *FreePrecession) GetParams() map[string]float64 { return map[string]float64{} }

func (f *FreePrecession) SetParam(name string, _ float64) error {
	return unknownParam(f.Name(), name)
}
