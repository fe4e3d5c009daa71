package optim

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/crystalsim/internal/config"
	"github.com/san-kum/crystalsim/internal/experiment"
	"github.com/san-kum/crystalsim/internal/plot"
	"github.com/san-kum/crystalsim/internal/sim"
)

// setters maps a fit parameter name to the config field it drives.
var setters = map[string]func(*config.Config, float64){
	"tau0":          func(c *config.Config, v float64) { c.Material.Tau0 = v },
	"lambda":        func(c *config.Config, v float64) { c.Material.Lambda = v },
	"f0":            func(c *config.Config, v float64) { c.Material.F0 = v },
	"gdot0":         func(c *config.Config, v float64) { c.Material.Gdot0 = v },
	"p":             func(c *config.Config, v float64) { c.Material.P = v },
	"q":             func(c *config.Config, v float64) { c.Material.Q = v },
	"ce":            func(c *config.Config, v float64) { c.Material.Ce = v },
	"cs":            func(c *config.Config, v float64) { c.Material.Cs = v },
	"de":            func(c *config.Config, v float64) { c.Material.De = v },
	"ds":            func(c *config.Config, v float64) { c.Material.Ds = v },
	"ke_b":          func(c *config.Config, v float64) { c.Material.KeB = v },
	"shear_modulus": func(c *config.Config, v float64) { c.Material.ShearModulus = v },
	"temperature_c": func(c *config.Config, v float64) { c.Material.TemperatureC = v },
	"rho0":          func(c *config.Config, v float64) { c.Initial.RhoE, c.Initial.RhoS = v, v },
}

func FitParameters() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply returns a copy of base with the named parameters set.
func Apply(base *config.Config, params map[string]float64) (*config.Config, error) {
	cfg := base.Clone()
	for name, v := range params {
		set, ok := setters[name]
		if !ok {
			return nil, fmt.Errorf("unknown fit parameter: %s", name)
		}
		set(cfg, v)
	}
	return cfg, nil
}

// ParseRange reads "name=lo:hi:n" or "name=v1,v2,...".
func ParseRange(s string) (string, []float64, error) {
	name, rng, ok := strings.Cut(s, "=")
	if !ok || name == "" || rng == "" {
		return "", nil, fmt.Errorf("bad range %q: want name=lo:hi:n or name=v1,v2", s)
	}
	if _, known := setters[name]; !known {
		return "", nil, fmt.Errorf("unknown fit parameter: %s (available: %v)", name, FitParameters())
	}

	if parts := strings.Split(rng, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return "", nil, fmt.Errorf("bad range %q", s)
		}
		return name, Linspace(lo, hi, n), nil
	}

	var values []float64
	for _, f := range strings.Split(rng, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad value in %q: %w", s, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

// CurveRMSE is the root mean square stress difference between the simulated
// curve and the reference, taken at the reference strains that fall inside
// the simulated strain range. It is NaN when the curves do not overlap.
func CurveRMSE(simulated, reference sim.Trajectory) float64 {
	at := plot.Resample(simulated, reference.Strains())
	sum, n := 0.0, 0
	for i, s := range at {
		if math.IsNaN(s) {
			continue
		}
		d := s - reference[i].Stress
		sum += d * d
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return math.Sqrt(sum / float64(n))
}

// FitObjective runs base with each grid point applied and scores the curve
// against reference.
func FitObjective(base *config.Config, reference sim.Trajectory, registry *experiment.Registry) Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg, err := Apply(base, params)
		if err != nil {
			return math.NaN(), err
		}
		exp, err := experiment.New(cfg, registry)
		if err != nil {
			return math.NaN(), err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return math.NaN(), err
		}
		return CurveRMSE(result.Trajectory, reference), nil
	}
}
