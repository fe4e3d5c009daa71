package crystal

import (
	"fmt"
	"math"
)

// Step advances x by one explicit Euler increment of total strain dEps over
// timestep h. It does not modify x or p; on error the returned state is x.
func Step(p *Parameters, x State, dEps, h float64) (State, error) {
	g := p.Geometry

	st := p.Threshold(x)
	rate, branch, err := p.FlowRate(x.Resolved, st)
	if err != nil {
		return x, err
	}

	slip := math.Abs(rate) * h
	if p.MaxSlipIncrement > 0 && slip > p.MaxSlipIncrement {
		return x, &SlipIncrementError{Increment: slip, Limit: p.MaxSlipIncrement}
	}

	sqrtT := math.Sqrt(p.HardeningDensity(x))
	absRate := math.Abs(rate)
	rhoEDot := p.Ce / p.Burgers * (p.Ke*sqrtT - 2*p.De*x.RhoE) * absRate
	rhoSDot := p.Cs / p.Burgers * (p.Ks*sqrtT - x.RhoS*(math.Pi*p.Ds*p.Ds*p.Ks*sqrtT+2*p.Ds)) * absRate

	dSig := p.E * (dEps - float64(g.Slips)*rate*h*g.Schmid)

	next := x
	next.Strain += dEps
	next.Shear += rate * h
	next.Resolved += dSig * g.Schmid
	next.Stress += dSig
	next.RhoE += h * rhoEDot
	next.RhoS += h * rhoSDot
	next.ShearRate = rate
	next.Threshold = st
	next.Branch = branch

	if !next.IsFinite() {
		return x, fmt.Errorf("strain %.6g: %w", next.Strain, ErrNonFiniteState)
	}
	return next, nil
}
