package metrics

import "github.com/san-kum/crystalsim/internal/crystal"

type FinalDensity struct {
	name  string
	value float64
}

func NewFinalDensity() *FinalDensity {
	return &FinalDensity{name: "final_total_density"}
}

func (f *FinalDensity) Name() string { return f.name }

func (f *FinalDensity) Observe(x crystal.State) { f.value = x.TotalDensity() }

func (f *FinalDensity) Value() float64 { return f.value }

func (f *FinalDensity) Reset() { f.value = 0 }

type PlasticShear struct {
	name  string
	value float64
}

func NewPlasticShear() *PlasticShear {
	return &PlasticShear{name: "final_plastic_shear"}
}

func (p *PlasticShear) Name() string { return p.name }

func (p *PlasticShear) Observe(x crystal.State) { p.value = x.Shear }

func (p *PlasticShear) Value() float64 { return p.value }

func (p *PlasticShear) Reset() { p.value = 0 }
