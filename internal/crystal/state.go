package crystal

import "math"

// Branch identifies which side of the threshold stress the last step used.
type Branch int

const (
	BranchNone Branch = iota
	BranchSubThreshold
	BranchAboveThreshold
)

func (b Branch) String() string {
	switch b {
	case BranchSubThreshold:
		return "sub-threshold"
	case BranchAboveThreshold:
		return "above-threshold"
	default:
		return "none"
	}
}

// DefaultInitialDensity is the initial edge and screw density of the
// reference run, in 1/mm².
const DefaultInitialDensity = 2.2e6

// State is the evolving state of one material point.
type State struct {
	Strain   float64 // ε
	Stress   float64 // s
	Shear    float64 // γ, accumulated plastic shear
	Resolved float64 // τ, resolved shear stress
	RhoE     float64 // ρe, mobile (edge) density
	RhoS     float64 // ρs, statistically stored (screw) density

	// RhoE0 and RhoS0 are the initial densities; they stay fixed for the
	// whole run and enter both aggregate density sums.
	RhoE0 float64
	RhoS0 float64

	// Diagnostics of the step that produced this state.
	ShearRate float64
	Threshold float64
	Branch    Branch
}

// NewState returns the unloaded state with the given initial densities.
func NewState(rhoE0, rhoS0 float64) State {
	return State{
		RhoE:  rhoE0,
		RhoS:  rhoS0,
		RhoE0: rhoE0,
		RhoS0: rhoS0,
	}
}

// TotalDensity is ρe+ρs.
func (s State) TotalDensity() float64 {
	return s.RhoE + s.RhoS
}

func (s State) initialDensity() float64 {
	return s.RhoE0 + s.RhoS0
}

// IsFinite reports whether every evolving variable is finite.
func (s State) IsFinite() bool {
	for _, v := range []float64{s.Strain, s.Stress, s.Shear, s.Resolved, s.RhoE, s.RhoS, s.ShearRate} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
