package automation

import (
	"context"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/san-kum/blochsim/internal/experiment"
	"github.com/san-kum/blochsim/internal/storage"
)

const script = `
name: relaxation study
runs:
  - name: short t2
    preset: fid
    config:
      steps: 50
      spins: {t2: 5}
  - name: flip 30
    config: {sequence: hard, steps: 80, params: {flip_angle: 30}}
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(script))
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(sc.Runs))
	}

	cfg, err := sc.Runs[0].Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sequence != "fid" || cfg.Steps != 50 || cfg.Spins.T2 != 5 {
		t.Errorf("overrides not applied: %s steps=%d t2=%f", cfg.Sequence, cfg.Steps, cfg.Spins.T2)
	}
	if cfg.Spins.T1 != 1000 || cfg.Spins.Offset != 0.2 {
		t.Errorf("expected preset values to survive partial overrides, got t1=%f offset=%f", cfg.Spins.T1, cfg.Spins.Offset)
	}

	cfg, err = sc.Runs[1].Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sequence != "hard" || cfg.Params["flip_angle"] != 30 {
		t.Errorf("overrides not applied: %s %v", cfg.Sequence, cfg.Params)
	}
	if cfg.Dt != 0.01 {
		t.Errorf("expected default dt without a preset, got %f", cfg.Dt)
	}
}

func TestParseScenarioErrors(t *testing.T) {
	if _, err := ParseScenario([]byte("name: empty\n")); err == nil {
		t.Error("expected error for a scenario without runs")
	}

	sc, err := ParseScenario([]byte("runs:\n  - preset: nope\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sc.Runs[0].Resolve(); err == nil || !strings.Contains(err.Error(), "unknown preset") {
		t.Errorf("expected unknown preset error, got %v", err)
	}

	sc, err = ParseScenario([]byte("runs:\n  - config: {steps: 1}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sc.Runs[0].Resolve(); err == nil {
		t.Error("expected validation error for one step")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(script))
	if err != nil {
		t.Fatal(err)
	}

	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	logger, hook := logtest.NewNullLogger()

	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), st, logger)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "short t2" {
		t.Errorf("expected first run %q, got %q", "short t2", results[0].Name)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 stored runs, got %d", len(runs))
	}

	meta, err := st.Load(results[1].RunID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Sequence != "hard" || meta.Params["flip_angle"] != 30 || meta.Steps != 80 {
		t.Errorf("unexpected stored run: %s steps=%d %v", meta.Sequence, meta.Steps, meta.Params)
	}

	var scenarioLogs int
	for _, e := range hook.AllEntries() {
		if e.Data["action"] == "scenario_run" {
			scenarioLogs++
		}
	}
	if scenarioLogs != 2 {
		t.Errorf("expected 2 scenario_run entries, got %d", scenarioLogs)
	}
}

func TestRunScenarioStopsOnFailure(t *testing.T) {
	sc, err := ParseScenario([]byte("runs:\n  - preset: ninety\n    config: {steps: 10}\n  - config: {sequence: spin-echo}\n"))
	if err != nil {
		t.Fatal(err)
	}

	logger, _ := logtest.NewNullLogger()
	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), storage.New(t.TempDir()), logger)
	if err == nil {
		t.Error("expected error from the unknown sequence")
	}
	if len(results) != 1 {
		t.Errorf("expected 1 completed run, got %d", len(results))
	}
}
