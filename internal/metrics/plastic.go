package metrics

import "github.com/san-kum/crystalsim/internal/crystal"

// PlasticFraction is the share of steps taken on the above-threshold branch.
type PlasticFraction struct {
	name    string
	above   int
	samples int
}

func NewPlasticFraction() *PlasticFraction {
	return &PlasticFraction{name: "plastic_fraction"}
}

func (p *PlasticFraction) Name() string {
	return p.name
}

func (p *PlasticFraction) Observe(x crystal.State) {
	p.samples++
	if x.Branch == crystal.BranchAboveThreshold {
		p.above++
	}
}

func (p *PlasticFraction) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return float64(p.above) / float64(p.samples)
}

func (p *PlasticFraction) Reset() {
	p.above = 0
	p.samples = 0
}

// YieldStrain is the strain of the first above-threshold step, zero if the
// run stayed below threshold.
type YieldStrain struct {
	name   string
	strain float64
	found  bool
}

func NewYieldStrain() *YieldStrain {
	return &YieldStrain{name: "yield_strain"}
}

func (y *YieldStrain) Name() string { return y.name }

func (y *YieldStrain) Observe(x crystal.State) {
	if !y.found && x.Branch == crystal.BranchAboveThreshold {
		y.strain = x.Strain
		y.found = true
	}
}

func (y *YieldStrain) Value() float64 { return y.strain }

func (y *YieldStrain) Reset() {
	y.strain = 0
	y.found = false
}
