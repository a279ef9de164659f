package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/sequence"
)

func sampleTrajectory(t *testing.T) (*bloch.Trajectory, []float64) {
	t.Helper()
	const steps, dt = 8, 0.05
	spins := sequence.Spins{Count: 3, OffsetSpan: 2, T1: 100, T2: 10}
	hard := sequence.NewHardPulse()
	bx, by, bz := sequence.Fields(hard.Waveform(steps, dt), spins)
	t1, t2 := sequence.Relaxation(spins)
	traj, err := bloch.Integrate(sequence.Equilibrium(3), bx, by, bz, t1, t2, sequence.Uniform(steps, dt))
	if err != nil {
		t.Fatalf("integrate: %v", err)
	}
	times := make([]float64, steps)
	for i := range times {
		times[i] = float64(i) * dt
	}
	return traj, times
}

func TestSaveAndLoad(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	traj, times := sampleTrajectory(t)
	id, err := store.Save(RunMetadata{
		Sequence: "hard",
		Dt:       0.05,
		T1:       100,
		T2:       10,
		Metrics:  map[string]float64{"transverse_signal": 0.5},
	}, traj, times)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(id, "hard_") || len(id) != len("hard_")+8 {
		t.Errorf("unexpected run id %q", id)
	}

	meta, err := store.Load(id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.Steps != 8 || meta.Spins != 3 {
		t.Errorf("expected 8x3, got %dx%d", meta.Steps, meta.Spins)
	}
	if meta.Metrics["transverse_signal"] != 0.5 {
		t.Errorf("metrics not preserved: %v", meta.Metrics)
	}

	got, gotTimes, err := store.LoadTrajectory(id)
	if err != nil {
		t.Fatalf("load trajectory: %v", err)
	}
	steps, spins := got.Dims()
	if steps != 8 || spins != 3 {
		t.Fatalf("expected 8x3 trajectory, got %dx%d", steps, spins)
	}
	for k := 0; k < steps; k++ {
		if gotTimes[k] != times[k] {
			t.Errorf("time %d: expected %f, got %f", k, times[k], gotTimes[k])
		}
		for j := 0; j < spins; j++ {
			want, have := traj.At(k, j), got.At(k, j)
			if math.Abs(want.X-have.X)+math.Abs(want.Y-have.Y)+math.Abs(want.Z-have.Z) > 0 {
				t.Errorf("step %d spin %d: expected %v, got %v", k, j, want, have)
			}
		}
	}
}

func TestSaveRejectsTimesMismatch(t *testing.T) {
	store := New(t.TempDir())
	traj, times := sampleTrajectory(t)

	if _, err := store.Save(RunMetadata{Sequence: "hard"}, traj, times[:2]); err == nil {
		t.Error("expected error for short times")
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	traj, times := sampleTrajectory(t)

	for _, seq := range []string{"hard", "fid"} {
		if _, err := store.Save(RunMetadata{Sequence: seq}, traj, times); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Timestamp.Before(runs[1].Timestamp) {
		t.Error("expected newest run first")
	}
}

func TestListMissingDir(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestInfiniteRelaxationRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	traj, times := sampleTrajectory(t)

	id, err := store.Save(RunMetadata{Sequence: "fid", T1: Millis(math.Inf(1)), T2: 20}, traj, times)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	meta, err := store.Load(id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !math.IsInf(float64(meta.T1), 1) || meta.T2 != 20 {
		t.Errorf("expected t1=inf t2=20, got %v %v", meta.T1, meta.T2)
	}
}

func TestLoadUnknownRun(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Load("nope"); err == nil {
		t.Error("expected error for unknown run")
	}
	if _, _, err := store.LoadTrajectory("nope"); err == nil {
		t.Error("expected error for unknown trajectory")
	}
}

func TestExport(t *testing.T) {
	store := New(t.TempDir())
	traj, times := sampleTrajectory(t)

	id, err := store.Save(RunMetadata{Sequence: "hard", T1: 100, T2: 10}, traj, times)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := store.Export(&buf, id); err != nil {
		t.Fatalf("export: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if data.ID != id || data.Sequence != "hard" {
		t.Errorf("unexpected metadata: %+v", data.RunMetadata)
	}
	if len(data.Mz) != 8 || len(data.Mz[0]) != 3 {
		t.Fatalf("expected 8x3 mz, got %dx%d", len(data.Mz), len(data.Mz[0]))
	}
	if data.Mz[0][0] != 1 {
		t.Errorf("expected equilibrium first row, got %f", data.Mz[0][0])
	}
}
