package experiment

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/config"
	"github.com/san-kum/blochsim/internal/metrics"
	"github.com/san-kum/blochsim/internal/sequence"
)

type Result struct {
	Sequence   sequence.Sequence
	Trajectory *bloch.Trajectory
	Times      []float64
	Metrics    map[string]float64
	Warnings   []error
}

// Experiment turns a scenario config into kernel inputs and runs them.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   logrus.FieldLogger
	metrics  []metrics.Metric
}

func New(cfg *config.Config, registry *Registry, logger logrus.FieldLogger) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Experiment{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
		metrics:  metrics.Defaults(),
	}
}

// AddMetric observes m in addition to the default metrics.
func (e *Experiment) AddMetric(m metrics.Metric) {
	e.metrics = append(e.metrics, m)
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	seq, err := e.registry.GetSequence(e.cfg.Sequence, e.cfg.Params)
	if err != nil {
		return nil, err
	}

	spins := sequence.Spins{
		Count:      e.cfg.Spins.Count,
		Offset:     e.cfg.Spins.Offset,
		OffsetSpan: e.cfg.Spins.OffsetSpan,
		T1:         e.cfg.Spins.T1,
		T2:         e.cfg.Spins.T2,
	}
	bx, by, bz := sequence.Fields(seq.Waveform(e.cfg.Steps, e.cfg.Dt), spins)
	t1, t2 := sequence.Relaxation(spins)
	mi := sequence.Initial(spins.Count, e.cfg.Init.X, e.cfg.Init.Y, e.cfg.Init.Z)
	dt := sequence.Uniform(e.cfg.Steps, e.cfg.Dt)

	log := e.logger.WithFields(logrus.Fields{
		"action":   "experiment_run",
		"sequence": seq.Name(),
		"steps":    e.cfg.Steps,
		"spins":    spins.Count,
	})
	log.Debug("integrating")

	integrator := bloch.New(bloch.WithLogger(e.logger), bloch.WithWorkers(e.cfg.Workers))
	start := time.Now()
	traj, err := integrator.Run(ctx, mi, bx, by, bz, t1, t2, dt)
	if err != nil {
		return nil, errors.Wrapf(err, "integrate %s", seq.Name())
	}

	times := make([]float64, e.cfg.Steps)
	for k := 1; k < len(times); k++ {
		times[k] = times[k-1] + dt[k-1]
	}

	values := metrics.Observe(traj, times, e.metrics...)
	log.WithField("took", time.Since(start)).Info("run complete")

	return &Result{
		Sequence:   seq,
		Trajectory: traj,
		Times:      times,
		Metrics:    values,
		Warnings:   traj.Warnings,
	}, nil
}
