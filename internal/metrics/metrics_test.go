package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/crystalsim/internal/crystal"
)

func TestPeakStress(t *testing.T) {
	m := NewPeakStress()

	for _, s := range []float64{-5, 10, 30, 25} {
		m.Observe(crystal.State{Stress: s})
	}
	if m.Value() != 30 {
		t.Errorf("expected peak 30, got %f", m.Value())
	}

	m.Reset()
	m.Observe(crystal.State{Stress: -2})
	if m.Value() != -2 {
		t.Errorf("expected peak -2 after reset, got %f", m.Value())
	}
}

func TestOffsetYield(t *testing.T) {
	m := NewOffsetYield(1000, 0.002)

	if m.found || m.Value() != 0 {
		t.Errorf("expected no yield before observations, got %f", m.Value())
	}

	// elastic up to 0.003, then flat at 3.0
	for _, eps := range []float64{0.001, 0.002, 0.003, 0.004, 0.005, 0.006} {
		s := math.Min(1000*eps, 3.0)
		m.Observe(crystal.State{Strain: eps, Stress: s})
	}
	// 3.0 <= 1000*(0.005-0.002) first holds at 0.005
	if !m.found || m.Value() != 3.0 {
		t.Errorf("expected yield 3.0, got %f", m.Value())
	}

	m.Reset()
	if m.found || m.Value() != 0 {
		t.Error("expected no yield after reset")
	}
}

func TestPlasticFraction(t *testing.T) {
	m := NewPlasticFraction()
	if m.Value() != 0 {
		t.Errorf("expected 0 with no samples, got %f", m.Value())
	}

	m.Observe(crystal.State{Branch: crystal.BranchSubThreshold})
	m.Observe(crystal.State{Branch: crystal.BranchAboveThreshold})
	m.Observe(crystal.State{Branch: crystal.BranchAboveThreshold})
	m.Observe(crystal.State{Branch: crystal.BranchAboveThreshold})

	if math.Abs(m.Value()-0.75) > 1e-12 {
		t.Errorf("expected 0.75, got %f", m.Value())
	}
}

func TestFinalValues(t *testing.T) {
	d := NewFinalDensity()
	g := NewPlasticShear()

	for _, x := range []crystal.State{
		{RhoE: 1, RhoS: 2, Shear: 0.1},
		{RhoE: 3, RhoS: 4, Shear: 0.2},
	} {
		d.Observe(x)
		g.Observe(x)
	}

	if d.Value() != 7 {
		t.Errorf("expected final density 7, got %f", d.Value())
	}
	if g.Value() != 0.2 {
		t.Errorf("expected final shear 0.2, got %f", g.Value())
	}
}

func TestYieldStrain(t *testing.T) {
	m := NewYieldStrain()

	m.Observe(crystal.State{Strain: 1e-6, Branch: crystal.BranchSubThreshold})
	if m.Value() != 0 {
		t.Errorf("expected 0 before yield, got %v", m.Value())
	}
	m.Observe(crystal.State{Strain: 2e-6, Branch: crystal.BranchAboveThreshold})
	m.Observe(crystal.State{Strain: 3e-6, Branch: crystal.BranchAboveThreshold})
	if m.Value() != 2e-6 {
		t.Errorf("expected yield strain 2e-6, got %v", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %v", m.Value())
	}
}
