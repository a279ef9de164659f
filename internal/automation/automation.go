package automation

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/blochsim/internal/config"
	"github.com/san-kum/blochsim/internal/experiment"
	"github.com/san-kum/blochsim/internal/storage"
)

// Scenario is a scripted list of runs.
//
//	name: relaxation study
//	runs:
//	  - name: short t2
//	    preset: fid
//	    config:
//	      spins: {t2: 5}
//	  - name: flip 30
//	    config: {sequence: hard, params: {flip_angle: 30}}
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun starts from a preset (or the defaults) and overlays the keys
// given under config.
type ScenarioRun struct {
	Name      string    `yaml:"name"`
	Preset    string    `yaml:"preset"`
	Overrides yaml.Node `yaml:"config"`
}

// ScenarioResult reports one stored run.
type ScenarioResult struct {
	Name    string
	RunID   string
	Metrics map[string]float64
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read scenario %s", path)
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	if len(scenario.Runs) == 0 {
		return nil, errors.New("scenario has no runs")
	}
	return &scenario, nil
}

// Resolve builds the effective config of the run.
func (r *ScenarioRun) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if r.Preset != "" {
		cfg = config.GetPreset(r.Preset)
		if cfg == nil {
			return nil, errors.Errorf("unknown preset: %s", r.Preset)
		}
	}
	if !r.Overrides.IsZero() {
		if err := r.Overrides.Decode(cfg); err != nil {
			return nil, errors.Wrap(err, "decode overrides")
		}
	}
	return cfg, cfg.Validate()
}

// RunScenario executes every run in order, storing each one. Results of the
// runs completed before a failure are returned with the error.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, st *storage.Store, logger logrus.FieldLogger) ([]ScenarioResult, error) {
	results := make([]ScenarioResult, 0, len(scenario.Runs))

	for i := range scenario.Runs {
		run := &scenario.Runs[i]
		name := run.Name
		if name == "" {
			name = run.Preset
		}

		cfg, err := run.Resolve()
		if err != nil {
			return results, errors.Wrapf(err, "run %d (%s)", i+1, name)
		}

		logger.WithFields(logrus.Fields{
			"action":   "scenario_run",
			"scenario": scenario.Name,
			"run":      name,
		}).Infof("running %d/%d", i+1, len(scenario.Runs))

		res, err := experiment.New(cfg, registry, logger).Run(ctx)
		if err != nil {
			return results, errors.Wrapf(err, "run %d (%s)", i+1, name)
		}

		runID, err := Record(st, cfg, res)
		if err != nil {
			return results, errors.Wrapf(err, "store run %d (%s)", i+1, name)
		}
		results = append(results, ScenarioResult{Name: name, RunID: runID, Metrics: res.Metrics})
	}

	return results, nil
}

// Record stores an experiment result together with its config.
func Record(st *storage.Store, cfg *config.Config, res *experiment.Result) (string, error) {
	warnings := make([]string, len(res.Warnings))
	for i, w := range res.Warnings {
		warnings[i] = w.Error()
	}

	return st.Save(storage.RunMetadata{
		Sequence: cfg.Sequence,
		Dt:       cfg.Dt,
		T1:       storage.Millis(cfg.Spins.T1),
		T2:       storage.Millis(cfg.Spins.T2),
		Params:   res.Sequence.GetParams(),
		Metrics:  res.Metrics,
		Warnings: warnings,
	}, res.Trajectory, res.Times)
}
