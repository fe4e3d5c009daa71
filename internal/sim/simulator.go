package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/crystalsim/internal/crystal"
)

// snapTolerance is the relative distance within which target/Δε is treated as
// an exact integer.
const snapTolerance = 1e-9

// MaxSteps bounds the number of increments a single run may take. The
// reference loading needs about 5e5.
const MaxSteps = 100_000_000

type Simulator struct {
	params    *crystal.Parameters
	metrics   []Metric
	observers []Observer
}

func New(params *crystal.Parameters) *Simulator {
	return &Simulator{
		params:    params,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Params() *crystal.Parameters { return s.params }

// StepCount is the number of fixed increments after which the strain first
// exceeds target: floor(target/Δε)+1. The last step may overshoot the target.
func StepCount(target, increment float64) int {
	ratio := target / increment
	n := math.Floor(ratio)
	if r := math.Round(ratio); math.Abs(ratio-r) <= snapTolerance*math.Max(1, ratio) {
		n = r
	}
	return int(n) + 1
}

// Run integrates from x0 until the target strain is passed. On error the
// partial result is returned together with a *StepError or ctx.Err().
func (s *Simulator) Run(ctx context.Context, x0 crystal.State, cfg Config) (*Result, error) {
	st, err := s.Start(x0, cfg)
	if err != nil {
		return nil, err
	}

	for !st.Done() {
		select {
		case <-ctx.Done():
			return st.Result(), ctx.Err()
		default:
		}

		if _, err := st.Advance(1); err != nil {
			return st.Result(), err
		}
	}

	return st.Result(), nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if !(cfg.StrainIncrement > 0) {
		return fmt.Errorf("strain increment must be positive, got %g", cfg.StrainIncrement)
	}
	if !(cfg.Timestep > 0) {
		return fmt.Errorf("timestep must be positive, got %g", cfg.Timestep)
	}
	if !(cfg.TargetStrain > 0) {
		return fmt.Errorf("target strain must be positive, got %g", cfg.TargetStrain)
	}
	if cfg.HistoryStride < 0 {
		return fmt.Errorf("history stride must not be negative, got %d", cfg.HistoryStride)
	}
	if ratio := cfg.TargetStrain / cfg.StrainIncrement; !(ratio < MaxSteps) {
		return fmt.Errorf("target strain %g needs more than %d increments of %g", cfg.TargetStrain, MaxSteps, cfg.StrainIncrement)
	}
	return nil
}
