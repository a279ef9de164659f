package storage

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/san-kum/blochsim/internal/bloch"
)

// ExportData is a self-contained JSON rendition of a run. Magnetization
// arrays are indexed [step][spin].
type ExportData struct {
	RunMetadata
	Times []float64   `json:"times"`
	Mx    [][]float64 `json:"mx"`
	My    [][]float64 `json:"my"`
	Mz    [][]float64 `json:"mz"`
}

func NewExportData(meta RunMetadata, traj *bloch.Trajectory, times []float64) *ExportData {
	steps, spins := traj.Dims()
	data := &ExportData{
		RunMetadata: meta,
		Times:       times,
		Mx:          make([][]float64, steps),
		My:          make([][]float64, steps),
		Mz:          make([][]float64, steps),
	}
	for k := 0; k < steps; k++ {
		data.Mx[k] = make([]float64, spins)
		data.My[k] = make([]float64, spins)
		data.Mz[k] = make([]float64, spins)
		for j := 0; j < spins; j++ {
			m := traj.At(k, j)
			data.Mx[k][j], data.My[k][j], data.Mz[k][j] = m.X, m.Y, m.Z
		}
	}
	return data
}

// Export writes a stored run as indented JSON.
func (s *Store) Export(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	traj, times, err := s.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrapf(enc.Encode(NewExportData(*meta, traj, times)), "export %s", runID)
}
