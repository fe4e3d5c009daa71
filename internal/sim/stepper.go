package sim

import (
	"github.com/san-kum/crystalsim/internal/crystal"
)

// Stepper advances a run incrementally so callers such as the live view can
// interleave rendering with integration.
type Stepper struct {
	sim   *Simulator
	cfg   Config
	x     crystal.State
	step  int
	total int
	res   *Result
	err   error
}

// Start validates cfg, resets metrics and records the initial point.
func (s *Simulator) Start(x0 crystal.State, cfg Config) (*Stepper, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	total := StepCount(cfg.TargetStrain, cfg.StrainIncrement)
	res := &Result{
		Trajectory: make(Trajectory, 0, total+1),
		Metrics:    make(map[string]float64),
	}
	if cfg.HistoryStride > 0 {
		res.History = make([]crystal.State, 0, total/cfg.HistoryStride+2)
		res.History = append(res.History, x0)
	}
	res.Trajectory = append(res.Trajectory, Point{Strain: x0.Strain, Stress: x0.Stress})

	for _, m := range s.metrics {
		m.Reset()
	}

	return &Stepper{sim: s, cfg: cfg, x: x0, total: total, res: res}, nil
}

// Advance takes up to n steps and returns how many were taken. After an error
// the stepper stays stopped and keeps returning that error.
func (st *Stepper) Advance(n int) (int, error) {
	if st.err != nil {
		return 0, st.err
	}

	taken := 0
	for taken < n && st.step < st.total {
		next, err := crystal.Step(st.sim.params, st.x, st.cfg.StrainIncrement, st.cfg.Timestep)
		if err != nil {
			st.err = &StepError{Step: st.step + 1, Strain: st.x.Strain + st.cfg.StrainIncrement, Err: err}
			return taken, st.err
		}

		st.x = next
		st.step++
		taken++

		st.res.Trajectory = append(st.res.Trajectory, Point{Strain: next.Strain, Stress: next.Stress})
		if st.cfg.HistoryStride > 0 && (st.step%st.cfg.HistoryStride == 0 || st.step == st.total) {
			st.res.History = append(st.res.History, next)
		}

		for _, m := range st.sim.metrics {
			m.Observe(next)
		}
		for _, obs := range st.sim.observers {
			obs.OnStep(next)
		}
	}
	return taken, nil
}

func (st *Stepper) Done() bool { return st.err != nil || st.step >= st.total }

func (st *Stepper) Err() error { return st.err }

func (st *Stepper) State() crystal.State { return st.x }

func (st *Stepper) Step() int { return st.step }

func (st *Stepper) Total() int { return st.total }

func (st *Stepper) Progress() float64 {
	if st.total == 0 {
		return 1
	}
	return float64(st.step) / float64(st.total)
}

// Result returns the accumulated result with current metric values.
func (st *Stepper) Result() *Result {
	st.res.Final = st.x
	st.res.StepsTaken = st.step
	for _, m := range st.sim.metrics {
		st.res.Metrics[m.Name()] = m.Value()
	}
	return st.res
}
