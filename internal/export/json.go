package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/crystalsim/internal/sim"
	"github.com/san-kum/crystalsim/internal/storage"
)

type ExportData struct {
	Run    storage.RunMetadata `json:"run"`
	Strain []float64           `json:"strain"`
	Stress []float64           `json:"stress"`
}

func NewExportData(meta storage.RunMetadata, traj sim.Trajectory) ExportData {
	return ExportData{
		Run:    meta,
		Strain: traj.Strains(),
		Stress: traj.Stresses(),
	}
}

func WriteJSON(w io.Writer, meta storage.RunMetadata, traj sim.Trajectory) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, traj))
}

func ExportJSON(path string, meta storage.RunMetadata, traj sim.Trajectory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, traj)
}
