package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/crystalsim/internal/config"
	"github.com/san-kum/crystalsim/internal/experiment"
	"github.com/san-kum/crystalsim/internal/logging"
	"github.com/san-kum/crystalsim/internal/sim"
)

// Scenario sweeps a base configuration over orientations, temperatures and
// strain rates. An empty axis keeps the base value.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Preset      string        `yaml:"preset,omitempty"`
	Base        config.Config `yaml:"base"`
	Sweep       Sweep         `yaml:"sweep"`
	Jobs        int           `yaml:"jobs,omitempty"`
}

type Sweep struct {
	Orientations  []string  `yaml:"orientations"`
	TemperaturesC []float64 `yaml:"temperatures_c"`
	StrainRates   []float64 `yaml:"strain_rates"`
}

// LoadScenario reads a scenario file. The base config starts from the named
// preset, or the defaults, so the file only lists what differs.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var probe struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	base := config.DefaultConfig()
	if probe.Preset != "" {
		if base = config.GetPreset(probe.Preset); base == nil {
			return nil, fmt.Errorf("%s: unknown preset %q", path, probe.Preset)
		}
	}

	scenario := Scenario{Base: *base}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if scenario.Name == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &scenario, nil
}

// Run is one concrete configuration produced by a sweep or batch.
type Run struct {
	Name   string
	Config *config.Config
}

// Expand returns the cartesian product of the sweep axes.
func (s *Scenario) Expand() []Run {
	orientations := s.Sweep.Orientations
	if len(orientations) == 0 {
		orientations = []string{s.Base.Orientation}
	}
	temps := s.Sweep.TemperaturesC
	if len(temps) == 0 {
		temps = []float64{s.Base.Material.TemperatureC}
	}
	rates := s.Sweep.StrainRates
	if len(rates) == 0 {
		rates = []float64{s.Base.Loading.StrainRate}
	}

	runs := make([]Run, 0, len(orientations)*len(temps)*len(rates))
	for _, o := range orientations {
		for _, temp := range temps {
			for _, rate := range rates {
				cfg := s.Base.Clone()
				cfg.Orientation = o
				cfg.Material.TemperatureC = temp
				cfg.Loading.StrainRate = rate
				runs = append(runs, Run{
					Name:   runName(s.Name, o, temp, rate),
					Config: cfg,
				})
			}
		}
	}
	return runs
}

func runName(scenario, orientation string, tempC, rate float64) string {
	return fmt.Sprintf("%s/%s/%sC/%s",
		scenario, orientation,
		strconv.FormatFloat(tempC, 'g', -1, 64),
		strconv.FormatFloat(rate, 'g', -1, 64))
}

// ExpandGlob resolves config file patterns, including ** for recursive
// matches, into a sorted list without duplicates.
func ExpandGlob(patterns ...string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// LoadBatch loads each config file as one run named after its path.
// CRYSTALSIM_* variables override every file.
func LoadBatch(paths []string) ([]Run, error) {
	runs := make([]Run, 0, len(paths))
	for _, p := range paths {
		cfg, err := config.Load(p)
		if err != nil {
			return nil, err
		}
		if err := config.ApplyEnv(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		runs = append(runs, Run{Name: p, Config: cfg})
	}
	return runs, nil
}

// Outcome is the result of one run. Err holds configuration and integration
// errors; Result may hold a partial trajectory when Err is set.
type Outcome struct {
	Run      Run
	Result   *sim.Result
	Err      error
	Duration time.Duration
}

// Runner executes runs with bounded parallelism. Each run integrates
// sequentially in its own goroutine.
type Runner struct {
	Registry *experiment.Registry
	Logger   *slog.Logger
	Jobs     int

	// Observer, when set, supplies a per-run step observer.
	Observer func(Run) sim.Observer

	// OnDone is called once per finished run. Calls are serialized.
	OnDone func(Outcome)
}

// RunAll executes every run and returns the outcomes in input order. A
// failing run does not stop the others; only ctx cancellation does.
func (r *Runner) RunAll(ctx context.Context, runs []Run) ([]Outcome, error) {
	jobs := r.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	log := r.Logger
	if log == nil {
		log = logging.Noop()
	}
	registry := r.Registry
	if registry == nil {
		registry = experiment.NewRegistry()
	}

	outcomes := make([]Outcome, len(runs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, run := range runs {
		i, run := i, run
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = Outcome{Run: run, Err: err}
				return err
			}

			start := time.Now()
			out := Outcome{Run: run}

			exp, err := experiment.New(run.Config, registry)
			if err == nil {
				if r.Observer != nil {
					if obs := r.Observer(run); obs != nil {
						exp.Simulator().AddObserver(obs)
					}
				}
				out.Result, err = exp.Run(gctx)
			}
			out.Err = err
			out.Duration = time.Since(start)
			outcomes[i] = out

			if err != nil {
				log.Warn("run failed", "run", run.Name, "error", err)
			} else {
				log.Info("run completed", "run", run.Name,
					"steps", out.Result.StepsTaken, "duration", out.Duration)
			}

			if r.OnDone != nil {
				mu.Lock()
				r.OnDone(out)
				mu.Unlock()
			}

			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		})
	}

	err := g.Wait()
	return outcomes, err
}

// Summary counts the outcomes that completed without error.
func Summary(outcomes []Outcome) (ok int, failed int) {
	for _, o := range outcomes {
		if o.Err == nil && o.Result != nil {
			ok++
		} else {
			failed++
		}
	}
	return
}
