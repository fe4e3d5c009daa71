package sim

import (
	"fmt"

	"github.com/san-kum/crystalsim/internal/crystal"
)

type Metric interface {
	Name() string
	Observe(x crystal.State)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x crystal.State)
}

// Config is the strain-controlled loading program.
type Config struct {
	StrainIncrement float64 // Δε = applied strain rate × timestep
	Timestep        float64 // h
	TargetStrain    float64

	// HistoryStride records every n-th full state into Result.History;
	// zero disables the history.
	HistoryStride int
}

// Loading builds a Config from an applied strain rate.
func Loading(strainRate, timestep, target float64) Config {
	return Config{
		StrainIncrement: strainRate * timestep,
		Timestep:        timestep,
		TargetStrain:    target,
	}
}

func DefaultConfig() Config {
	return Loading(1e-3, 0.001, 0.5)
}

// Point is one (strain, stress) sample.
type Point struct {
	Strain float64
	Stress float64
}

// Trajectory is the append-only stress-strain record of a run.
type Trajectory []Point

// Strains returns the strain column.
func (t Trajectory) Strains() []float64 {
	out := make([]float64, len(t))
	for i, p := range t {
		out[i] = p.Strain
	}
	return out
}

// Stresses returns the stress column.
func (t Trajectory) Stresses() []float64 {
	out := make([]float64, len(t))
	for i, p := range t {
		out[i] = p.Stress
	}
	return out
}

type Result struct {
	Trajectory Trajectory
	History    []crystal.State
	Final      crystal.State
	Metrics    map[string]float64
	StepsTaken int
}

// StepError wraps the error that stopped a run with the step it occurred on.
type StepError struct {
	Step   int
	Strain float64
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (strain=%.6g): %v", e.Step, e.Strain, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
