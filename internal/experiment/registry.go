package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/crystalsim/internal/crystal"
	"github.com/san-kum/crystalsim/internal/metrics"
	"github.com/san-kum/crystalsim/internal/sim"
)

// ProofStrain is the offset used by the offset_yield_stress metric.
const ProofStrain = 0.002

type Registry struct {
	metrics map[string]func(p *crystal.Parameters) sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(p *crystal.Parameters) sim.Metric),
	}

	r.metrics["peak_stress"] = func(*crystal.Parameters) sim.Metric { return metrics.NewPeakStress() }
	r.metrics["yield_strain"] = func(*crystal.Parameters) sim.Metric { return metrics.NewYieldStrain() }
	r.metrics["final_total_density"] = func(*crystal.Parameters) sim.Metric { return metrics.NewFinalDensity() }
	r.metrics["plastic_fraction"] = func(*crystal.Parameters) sim.Metric { return metrics.NewPlasticFraction() }
	r.metrics["final_plastic_shear"] = func(*crystal.Parameters) sim.Metric { return metrics.NewPlasticShear() }
	r.metrics["offset_yield_stress"] = func(p *crystal.Parameters) sim.Metric {
		return metrics.NewOffsetYield(p.E, ProofStrain)
	}

	return r
}

func (r *Registry) GetMetric(name string, p *crystal.Parameters) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(p), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Metrics builds the named metrics, or every registered metric when names is
// empty.
func (r *Registry) Metrics(names []string, p *crystal.Parameters) ([]sim.Metric, error) {
	if len(names) == 0 {
		names = r.ListMetrics()
	}
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		m, err := r.GetMetric(name, p)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
