package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/crystalsim/internal/config"
	"github.com/san-kum/crystalsim/internal/crystal"
	"github.com/san-kum/crystalsim/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	historyFile    = "history.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID              string             `json:"id"`
	Orientation     string             `json:"orientation"`
	Timestamp       time.Time          `json:"timestamp"`
	StrainRate      float64            `json:"strain_rate"`
	StrainIncrement float64            `json:"strain_increment"`
	Timestep        float64            `json:"timestep"`
	TargetStrain    float64            `json:"target_strain"`
	TemperatureC    float64            `json:"temperature_c"`
	Steps           int                `json:"steps"`
	Points          int                `json:"points"`
	Metrics         map[string]float64 `json:"metrics"`
	Error           string             `json:"error,omitempty"`
}

// Save writes one run directory. runErr is recorded for partial runs so the
// trajectory up to the failing step is still kept.
func (s *Store) Save(cfg *config.Config, result *sim.Result, runErr error) (string, error) {
	runID := fmt.Sprintf("%s_%s", cfg.Orientation, uuid.New().String()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	sc := cfg.SimConfig()
	meta := RunMetadata{
		ID:              runID,
		Orientation:     cfg.Orientation,
		Timestamp:       time.Now(),
		StrainRate:      cfg.Loading.StrainRate,
		StrainIncrement: sc.StrainIncrement,
		Timestep:        sc.Timestep,
		TargetStrain:    sc.TargetStrain,
		TemperatureC:    cfg.Material.TemperatureC,
		Steps:           result.StepsTaken,
		Points:          len(result.Trajectory),
		Metrics:         result.Metrics,
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), result.Trajectory); err != nil {
		return "", err
	}
	if len(result.History) > 0 {
		if err := writeHistory(filepath.Join(runDir, historyFile), result.History); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeTrajectory(path string, traj sim.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"strain", "stress"}); err != nil {
		return err
	}
	for _, p := range traj {
		if err := w.Write([]string{formatFloat(p.Strain), formatFloat(p.Stress)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

var historyHeader = []string{
	"strain", "stress", "shear", "resolved", "rho_e", "rho_s",
	"shear_rate", "threshold", "branch",
}

func writeHistory(path string, history []crystal.State) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(historyHeader); err != nil {
		return err
	}
	for _, x := range history {
		row := []string{
			formatFloat(x.Strain),
			formatFloat(x.Stress),
			formatFloat(x.Shear),
			formatFloat(x.Resolved),
			formatFloat(x.RhoE),
			formatFloat(x.RhoS),
			formatFloat(x.ShearRate),
			formatFloat(x.Threshold),
			x.Branch.String(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
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
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) (sim.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 2
	r.ReuseRecord = true

	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("run %s: read header: %w", runID, err)
	}

	traj := make(sim.Trajectory, 0)
	for {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("run %s: %w", runID, err)
		}

		strain, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("run %s: strain: %w", runID, err)
		}
		stress, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("run %s: stress: %w", runID, err)
		}
		traj = append(traj, sim.Point{Strain: strain, Stress: stress})
	}

	return traj, nil
}
