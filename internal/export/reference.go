package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/crystalsim/internal/sim"
)

// Column names of the finite-element reference curve.
const (
	StrainColumn = "strain_xx"
	StressColumn = "stress_xx"
)

// ReadReference parses a CSV with a header row, locating the strain and
// stress columns by name. Other columns are ignored.
func ReadReference(r io.Reader) (sim.Trajectory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reference: empty input")
		}
		return nil, fmt.Errorf("reference: read header: %w", err)
	}

	strainIdx, stressIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case StrainColumn:
			strainIdx = i
		case StressColumn:
			stressIdx = i
		}
	}
	if strainIdx < 0 {
		return nil, fmt.Errorf("reference: missing column %q", StrainColumn)
	}
	if stressIdx < 0 {
		return nil, fmt.Errorf("reference: missing column %q", StressColumn)
	}

	traj := make(sim.Trajectory, 0)
	for {
		record, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("reference: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if strainIdx >= len(record) || stressIdx >= len(record) {
			return nil, fmt.Errorf("reference: line %d: expected at least %d fields, got %d",
				line, max(strainIdx, stressIdx)+1, len(record))
		}
		strain, err := strconv.ParseFloat(strings.TrimSpace(record[strainIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("reference: line %d: %s: %w", line, StrainColumn, err)
		}
		stress, err := strconv.ParseFloat(strings.TrimSpace(record[stressIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("reference: line %d: %s: %w", line, StressColumn, err)
		}
		traj = append(traj, sim.Point{Strain: strain, Stress: stress})
	}

	return traj, nil
}

func LoadReference(path string) (sim.Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	traj, err := ReadReference(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return traj, nil
}
