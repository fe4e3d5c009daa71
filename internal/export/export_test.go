package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/crystalsim/internal/sim"
	"github.com/san-kum/crystalsim/internal/storage"
)

func TestWriteTable(t *testing.T) {
	traj := sim.Trajectory{
		{Strain: 0, Stress: 0},
		{Strain: 1e-6, Stress: 0.0760862},
		{Strain: 0.5, Stress: 123.456789},
		{Strain: 0.25, Stress: -4.2},
	}

	var buf bytes.Buffer
	if err := WriteTable(&buf, traj); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := "   0.00000,   0.00000\n" +
		"   0.00000,   0.07609\n" +
		"   0.50000, 123.45679\n" +
		"   0.25000,  -4.20000\n"
	if buf.String() != want {
		t.Errorf("unexpected table:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestSaveTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one-d-data.dat")
	traj := sim.Trajectory{{Strain: 0, Stress: 0}, {Strain: 1e-6, Stress: 0.076}}

	if err := SaveTable(path, traj); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 2 {
		t.Errorf("expected 2 lines, got %d", lines)
	}

	if err := SaveTable(filepath.Join(t.TempDir(), "missing", "x.dat"), traj); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestReadReference(t *testing.T) {
	input := "time, stress_xx, strain_xx\n" +
		"0, 0, 0\n" +
		"1, 10.5, 0.001\n" +
		"2, 20.25, 0.002\n"

	traj, err := ReadReference(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := sim.Trajectory{{Strain: 0, Stress: 0}, {Strain: 0.001, Stress: 10.5}, {Strain: 0.002, Stress: 20.25}}
	if len(traj) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(traj))
	}
	for i := range want {
		if traj[i] != want[i] {
			t.Errorf("point %d: got %+v, want %+v", i, traj[i], want[i])
		}
	}
}

func TestReadReferenceErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"empty", "", "empty"},
		{"missing strain", "stress_xx\n1\n", "strain_xx"},
		{"missing stress", "strain_xx\n1\n", "stress_xx"},
		{"bad value", "strain_xx,stress_xx\n0,0\n0.1,abc\n", "line 3"},
		{"short row", "strain_xx,stress_xx\n0,0\n0.1\n", "line 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadReference(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadReference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.csv")
	if err := os.WriteFile(path, []byte("strain_xx,stress_xx\n0,0\n0.1,5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	traj, err := LoadReference(path)
	if err != nil || len(traj) != 2 {
		t.Fatalf("expected 2 points, got %v, %v", traj, err)
	}

	if _, err := LoadReference(filepath.Join(t.TempDir(), "none.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteJSON(t *testing.T) {
	meta := storage.RunMetadata{
		ID:          "100_deadbeef",
		Orientation: "100",
		Timestamp:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Metrics:     map[string]float64{"peak_stress": 40},
	}
	traj := sim.Trajectory{{Strain: 0, Stress: 0}, {Strain: 1e-6, Stress: 0.07}}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, meta, traj); err != nil {
		t.Fatalf("write: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Run.ID != meta.ID || got.Run.Metrics["peak_stress"] != 40 {
		t.Errorf("metadata lost: %+v", got.Run)
	}
	if len(got.Strain) != 2 || got.Stress[1] != 0.07 {
		t.Errorf("trajectory lost: %v %v", got.Strain, got.Stress)
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	long := make(sim.Trajectory, 5001)
	for i := range long {
		long[i] = sim.Point{Strain: float64(i) * 1e-4, Stress: float64(i)}
	}

	svg := TrajectoryToSVG([]Series{
		{Name: "100", Color: "#00ff00", Points: long},
		{Name: "reference <fe>", Color: "#ff8800", Points: sim.Trajectory{{Strain: 0, Stress: 0}, {Strain: 0.5, Stress: 4000}}},
	}, 800, 600)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not an svg document")
	}
	if strings.Count(svg, "<path") != 3 {
		t.Errorf("expected axes and two curves, got %d paths", strings.Count(svg, "<path"))
	}
	for _, s := range []string{"Stress-Strain Curve", "Strain XX", "Stress XX", "reference &lt;fe&gt;"} {
		if !strings.Contains(svg, s) {
			t.Errorf("svg missing %q", s)
		}
	}
	if vertices := strings.Count(svg, " L"); vertices > 2*svgMaxPaths+10 {
		t.Errorf("curve not thinned: %d vertices", vertices)
	}
}

func TestTrajectoryToSVG_TooShort(t *testing.T) {
	if svg := TrajectoryToSVG([]Series{{Points: sim.Trajectory{{Strain: 0, Stress: 0}}}}, 100, 100); svg != "" {
		t.Error("expected empty output for a single point")
	}
}
