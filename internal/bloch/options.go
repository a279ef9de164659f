package bloch

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Option configures an Integrator.
type Option func(*Integrator)

// WithLogger sets the logger used for input warnings.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(in *Integrator) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// WithWorkers sets how many goroutines share the spin columns. Values below
// one are treated as one.
func WithWorkers(n int) Option {
	return func(in *Integrator) {
		if n > 0 {
			in.workers = n
		}
	}
}

// WithMinChunk sets the smallest number of spins assigned to a worker.
func WithMinChunk(n int) Option {
	return func(in *Integrator) {
		if n > 0 {
			in.minChunk = n
		}
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
