package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/blochsim/internal/bloch"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return errors.Wrap(os.MkdirAll(s.baseDir, 0755), "create data dir")
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Sequence  string             `json:"sequence"`
	Timestamp time.Time          `json:"timestamp"`
	Steps     int                `json:"steps"`
	Spins     int                `json:"spins"`
	Dt        float64            `json:"dt"`
	T1        Millis             `json:"t1"`
	T2        Millis             `json:"t2"`
	Params    map[string]float64 `json:"params,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
	Warnings  []string           `json:"warnings,omitempty"`
}

// Millis is a duration in milliseconds that may be infinite, as relaxation
// times often are. Infinity is stored as the string "inf".
type Millis float64

func (m Millis) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(m), 1) {
		return []byte(`"inf"`), nil
	}
	return json.Marshal(float64(m))
}

func (m *Millis) UnmarshalJSON(data []byte) error {
	if string(data) == `"inf"` {
		*m = Millis(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Millis(v)
	return nil
}

func newRunID(sequence string) string {
	return fmt.Sprintf("%s_%s", sequence, uuid.NewString()[:8])
}

// Save writes meta and the trajectory into a fresh run directory and returns
// its id. meta.ID, Timestamp, Steps and Spins are filled in by Save.
func (s *Store) Save(meta RunMetadata, traj *bloch.Trajectory, times []float64) (string, error) {
	steps, spins := traj.Dims()
	if len(times) != steps {
		return "", errors.Errorf("times has %d entries, trajectory has %d steps", len(times), steps)
	}

	meta.ID = newRunID(meta.Sequence)
	meta.Timestamp = time.Now()
	meta.Steps = steps
	meta.Spins = spins

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", errors.Wrapf(err, "create run dir %s", runDir)
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), traj, times); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create metadata")
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(meta), "encode metadata")
}

func writeTrajectory(path string, traj *bloch.Trajectory, times []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create trajectory")
	}
	defer f.Close()

	steps, spins := traj.Dims()
	w := csv.NewWriter(f)

	header := make([]string, 0, 1+3*spins)
	header = append(header, "time")
	for j := 0; j < spins; j++ {
		header = append(header, fmt.Sprintf("mx%d", j), fmt.Sprintf("my%d", j), fmt.Sprintf("mz%d", j))
	}
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}

	row := make([]string, len(header))
	for k := 0; k < steps; k++ {
		row[0] = format(times[k])
		for j := 0; j < spins; j++ {
			m := traj.At(k, j)
			row[1+3*j] = format(m.X)
			row[2+3*j] = format(m.Y)
			row[3+3*j] = format(m.Z)
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "write step %d", k)
		}
	}

	w.Flush()
	return errors.Wrap(w.Error(), "flush trajectory")
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the metadata of every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, errors.Wrap(err, "read data dir")
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, errors.Wrapf(err, "read run %s", runID)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "decode run %s", runID)
	}
	return &meta, nil
}

// LoadTrajectory reads back the trajectory and sample times of a run.
func (s *Store) LoadTrajectory(runID string) (*bloch.Trajectory, []float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open trajectory of %s", runID)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read trajectory of %s", runID)
	}
	if len(records) == 0 || (len(records[0])-1)%3 != 0 {
		return nil, nil, errors.Errorf("malformed trajectory header in %s", runID)
	}

	steps := len(records) - 1
	spins := (len(records[0]) - 1) / 3
	if steps == 0 || spins == 0 {
		return nil, nil, errors.Errorf("empty trajectory in %s", runID)
	}

	traj := &bloch.Trajectory{
		Mx: mat.NewDense(steps, spins, nil),
		My: mat.NewDense(steps, spins, nil),
		Mz: mat.NewDense(steps, spins, nil),
	}
	times := make([]float64, steps)

	for k, record := range records[1:] {
		vals := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "parse step %d of %s", k, runID)
			}
			vals[i] = v
		}
		times[k] = vals[0]
		for j := 0; j < spins; j++ {
			traj.Mx.Set(k, j, vals[1+3*j])
			traj.My.Set(k, j, vals[2+3*j])
			traj.Mz.Set(k, j, vals[3+3*j])
		}
	}
	return traj, times, nil
}
