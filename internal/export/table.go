package export

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/crystalsim/internal/sim"
)

// TableFormat is the per-column format of the stress-strain table.
const TableFormat = "%10.5f"

// WriteTable writes one "strain,stress" line per point, each column
// fixed-point with five decimals in a ten character field.
func WriteTable(w io.Writer, traj sim.Trajectory) error {
	bw := bufio.NewWriter(w)
	for _, p := range traj {
		if _, err := fmt.Fprintf(bw, TableFormat+","+TableFormat+"\n", p.Strain, p.Stress); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func SaveTable(path string, traj sim.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTable(f, traj); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
