package experiment

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/san-kum/blochsim/internal/sequence"
)

type Registry struct {
	sequences map[string]func() sequence.Sequence
}

func NewRegistry() *Registry {
	r := &Registry{
		sequences: make(map[string]func() sequence.Sequence),
	}

	r.Register("hard", func() sequence.Sequence { return sequence.NewHardPulse() })
	r.Register("sinc", func() sequence.Sequence { return sequence.NewSincPulse() })
	r.Register("fid", func() sequence.Sequence { return sequence.NewFreePrecession() })

	return r
}

// Register adds or replaces a sequence factory.
func (r *Registry) Register(name string, factory func() sequence.Sequence) {
	r.sequences[name] = factory
}

// GetSequence returns a new sequence with params applied over its defaults.
func (r *Registry) GetSequence(name string, params map[string]float64) (sequence.Sequence, error) {
	fn, ok := r.sequences[name]
	if !ok {
		return nil, errors.Errorf("unknown sequence: %s", name)
	}

	seq := fn()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := seq.SetParam(k, params[k]); err != nil {
			return nil, errors.Wrapf(err, "configure %s", name)
		}
	}
	return seq, nil
}

func (r *Registry) ListSequences() []string {
	names := make([]string, 0, len(r.sequences))
	for name := range r.sequences {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
