package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/crystalsim/internal/crystal"
	"github.com/san-kum/crystalsim/internal/sim"
)

// Run outcomes used as the "outcome" label.
const (
	OutcomeOK            = "ok"
	OutcomeDomain        = "domain_error"
	OutcomeSlipLimit     = "slip_limit"
	OutcomeNonFinite     = "non_finite"
	OutcomeConfiguration = "configuration_error"
	OutcomeCanceled      = "canceled"
	OutcomeError         = "error"
)

// RunCollector bundles the Prometheus metrics of integration runs.
type RunCollector struct {
	gatherer prometheus.Gatherer

	Steps        *prometheus.CounterVec
	Runs         *prometheus.CounterVec
	RunDurations *prometheus.HistogramVec
	PeakStress   *prometheus.GaugeVec
}

// NewRunCollector registers the run metrics against reg, defaulting to the
// global Prometheus registry when nil.
func NewRunCollector(reg prometheus.Registerer) (*RunCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	steps, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crystalsim_steps_total",
		Help: "Total number of constitutive update steps, labeled by orientation.",
	}, []string{"orientation"}), "crystalsim_steps_total")
	if err != nil {
		return nil, err
	}

	runs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crystalsim_runs_total",
		Help: "Total number of integration runs, labeled by orientation and outcome.",
	}, []string{"orientation", "outcome"}), "crystalsim_runs_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crystalsim_run_duration_seconds",
		Help:    "Wall-clock duration of integration runs in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"orientation"}), "crystalsim_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	peak, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crystalsim_peak_stress_mpa",
		Help: "Peak axial stress of the most recent run, in MPa.",
	}, []string{"orientation"}), "crystalsim_peak_stress_mpa")
	if err != nil {
		return nil, err
	}

	return &RunCollector{
		gatherer:     gatherer,
		Steps:        steps,
		Runs:         runs,
		RunDurations: durations,
		PeakStress:   peak,
	}, nil
}

type stepCounter struct {
	c prometheus.Counter
}

func (s stepCounter) OnStep(crystal.State) { s.c.Inc() }

// StepObserver returns a sim.Observer counting steps for orientation.
func (c *RunCollector) StepObserver(orientation string) sim.Observer {
	return stepCounter{c: c.Steps.WithLabelValues(orientation)}
}

// ObserveRun records the outcome, duration and, if a trajectory exists, the
// peak stress of one run.
func (c *RunCollector) ObserveRun(orientation string, result *sim.Result, err error, d time.Duration) {
	if c == nil {
		return
	}
	c.Runs.WithLabelValues(orientation, Outcome(err)).Inc()
	c.RunDurations.WithLabelValues(orientation).Observe(d.Seconds())

	if result == nil || len(result.Trajectory) == 0 {
		return
	}
	peak := result.Trajectory[0].Stress
	for _, p := range result.Trajectory[1:] {
		if p.Stress > peak {
			peak = p.Stress
		}
	}
	c.PeakStress.WithLabelValues(orientation).Set(peak)
}

// Outcome classifies a run error for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, crystal.ErrDomain):
		return OutcomeDomain
	case errors.Is(err, crystal.ErrSlipIncrementExceeded):
		return OutcomeSlipLimit
	case errors.Is(err, crystal.ErrNonFiniteState):
		return OutcomeNonFinite
	case errors.Is(err, crystal.ErrConfiguration):
		return OutcomeConfiguration
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *RunCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the current metrics in the text exposition format,
// for node_exporter's textfile collector after batch jobs.
func (c *RunCollector) WriteTextfile(path string) error {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
