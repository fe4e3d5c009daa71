package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/crystalsim/internal/config"
	"github.com/san-kum/crystalsim/internal/crystal"
	"github.com/san-kum/crystalsim/internal/sim"
)

// Experiment binds one validated config to a simulator with its metrics.
type Experiment struct {
	cfg       *config.Config
	params    *crystal.Parameters
	simulator *sim.Simulator
}

func New(cfg *config.Config, registry *Registry) (*Experiment, error) {
	params, err := cfg.Parameters()
	if err != nil {
		return nil, err
	}
	if registry == nil {
		registry = NewRegistry()
	}
	ms, err := registry.Metrics(cfg.Metrics, params)
	if err != nil {
		return nil, err
	}

	s := sim.New(params)
	for _, m := range ms {
		s.AddMetric(m)
	}

	return &Experiment{
		cfg:       cfg.Clone(),
		params:    params,
		simulator: s,
	}, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.InitialState(), e.cfg.SimConfig())
}

// Start begins a chunked run for interactive callers.
func (e *Experiment) Start() (*sim.Stepper, error) {
	return e.simulator.Start(e.cfg.InitialState(), e.cfg.SimConfig())
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Params() *crystal.Parameters { return e.params }
