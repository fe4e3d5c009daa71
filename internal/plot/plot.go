// Package plot renders stress-strain curves in the terminal.
package plot

import (
	"math"
	"sort"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/crystalsim/internal/sim"
)

const Caption = "Stress-Strain Curve"

type Options struct {
	Width  int
	Height int
}

func DefaultOptions() Options {
	return Options{Width: 80, Height: 15}
}

// Overlay resamples the simulated curve and, if given, the reference curve
// onto a shared strain grid and plots them together. Grid points outside a
// curve's strain range are left as gaps.
func Overlay(simulated, reference sim.Trajectory, opts Options) string {
	if opts.Width <= 1 {
		opts.Width = DefaultOptions().Width
	}
	if opts.Height <= 0 {
		opts.Height = DefaultOptions().Height
	}
	if len(simulated) == 0 && len(reference) == 0 {
		return ""
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, t := range []sim.Trajectory{simulated, reference} {
		for _, p := range t {
			lo = math.Min(lo, p.Strain)
			hi = math.Max(hi, p.Strain)
		}
	}
	grid := Grid(lo, hi, opts.Width)

	graphOpts := []asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(Caption),
	}

	if len(reference) == 0 {
		return asciigraph.Plot(Resample(simulated, grid), graphOpts...)
	}
	if len(simulated) == 0 {
		return asciigraph.Plot(Resample(reference, grid), graphOpts...)
	}

	graphOpts = append(graphOpts,
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Yellow),
		asciigraph.SeriesLegends("simulated", "reference"),
	)
	return asciigraph.PlotMany([][]float64{
		Resample(simulated, grid),
		Resample(reference, grid),
	}, graphOpts...)
}

// Grid returns n evenly spaced strains from lo to hi inclusive.
func Grid(lo, hi float64, n int) []float64 {
	if n < 2 || hi <= lo {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Resample linearly interpolates the stress of t at each grid strain. Strains
// outside t's range map to NaN.
func Resample(t sim.Trajectory, grid []float64) []float64 {
	pts := t
	if !sort.SliceIsSorted(pts, func(i, j int) bool { return pts[i].Strain < pts[j].Strain }) {
		pts = append(sim.Trajectory(nil), t...)
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Strain < pts[j].Strain })
	}

	out := make([]float64, len(grid))
	for i, x := range grid {
		out[i] = interpolate(pts, x)
	}
	return out
}

func interpolate(pts sim.Trajectory, x float64) float64 {
	n := len(pts)
	if n == 0 || x < pts[0].Strain || x > pts[n-1].Strain {
		return math.NaN()
	}
	j := sort.Search(n, func(k int) bool { return pts[k].Strain >= x })
	if pts[j].Strain == x || j == 0 {
		return pts[j].Stress
	}
	a, b := pts[j-1], pts[j]
	f := (x - a.Strain) / (b.Strain - a.Strain)
	return a.Stress + f*(b.Stress-a.Stress)
}
