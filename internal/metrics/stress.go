package metrics

import "github.com/san-kum/crystalsim/internal/crystal"

type PeakStress struct {
	name    string
	peak    float64
	samples int
}

func NewPeakStress() *PeakStress {
	return &PeakStress{name: "peak_stress"}
}

func (p *PeakStress) Name() string { return p.name }

func (p *PeakStress) Observe(x crystal.State) {
	if p.samples == 0 || x.Stress > p.peak {
		p.peak = x.Stress
	}
	p.samples++
}

func (p *PeakStress) Value() float64 { return p.peak }

func (p *PeakStress) Reset() {
	p.peak = 0
	p.samples = 0
}

// OffsetYield records the stress where the curve first falls below the
// elastic line shifted by the offset strain (0.2% proof stress by default).
type OffsetYield struct {
	name    string
	modulus float64
	offset  float64
	yield   float64
	found   bool
}

func NewOffsetYield(modulus, offset float64) *OffsetYield {
	return &OffsetYield{
		name:    "offset_yield_stress",
		modulus: modulus,
		offset:  offset,
	}
}

func (o *OffsetYield) Name() string { return o.name }

func (o *OffsetYield) Observe(x crystal.State) {
	if o.found || x.Strain <= o.offset {
		return
	}
	if x.Stress <= o.modulus*(x.Strain-o.offset) {
		o.yield = x.Stress
		o.found = true
	}
}

// Value is zero until the offset line has been crossed.
func (o *OffsetYield) Value() float64 { return o.yield }

func (o *OffsetYield) Reset() {
	o.yield = 0
	o.found = false
}
