package crystal

import "math"

// ThresholdDensity is the aggregate density rho_st entering the pass stress.
func (p *Parameters) ThresholdDensity(x State) float64 {
	g := p.Geometry
	return g.ThresholdCurrent*x.TotalDensity() + g.ThresholdInitial*x.initialDensity()
}

// HardeningDensity is the aggregate density rhoT entering the evolution laws.
func (p *Parameters) HardeningDensity(x State) float64 {
	g := p.Geometry
	return g.HardeningCurrent*x.TotalDensity() + g.HardeningInitial*x.initialDensity()
}

// Threshold is the pass stress ST = λ·μ·b·sqrt(rho_st).
func (p *Parameters) Threshold(x State) float64 {
	return p.Lambda * p.ShearModulus * p.Burgers * math.Sqrt(p.ThresholdDensity(x))
}

// FlowRate evaluates the thermally activated flow rule for resolved shear
// stress tau against threshold st.
//
// Below the threshold the rate is the constant gdot0·exp(-f0/Rθ). Above it the
// double-exponent law applies; both branches agree at |tau| = st. A ratio
// (|tau|-st)/tau0 above one has no real-valued result and returns a
// *DomainError. tau = 0 yields a zero rate.
func (p *Parameters) FlowRate(tau, st float64) (float64, Branch, error) {
	a := p.ActivationRatio()
	excess := math.Abs(tau) - st
	if excess < 0 {
		return p.Gdot0 * math.Exp(-a) * sign(tau), BranchSubThreshold, nil
	}

	ratio := excess / p.Tau0
	if ratio > 1 {
		return 0, BranchAboveThreshold, &DomainError{Resolved: tau, Threshold: st, Ratio: ratio}
	}
	base := 1 - math.Pow(ratio, p.P)
	return p.Gdot0 * math.Exp(-a*math.Pow(base, p.Q)) * sign(tau), BranchAboveThreshold, nil
}

// sign returns -1, 0 or 1; sign(0) is 0 so an unloaded crystal does not slip.
func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
