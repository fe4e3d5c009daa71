package crystal

import (
	"math"
	"sort"
	"strings"
)

// Orientation is the loading direction of the single crystal.
type Orientation string

const (
	Orient100 Orientation = "100"
	Orient110 Orientation = "110"
	Orient111 Orientation = "111"
)

// Self and latent hardening weights of the interaction matrix.
const (
	selfHardening   = 1.3
	latentHardening = 1.5
)

// Geometry is the orientation-dependent slip geometry and the weights of the
// two aggregate density sums:
//
//	rho_st = ThresholdCurrent*(ρe+ρs) + ThresholdInitial*(ρe_ini+ρs_ini)
//	rhoT   = HardeningCurrent*(ρe+ρs) + HardeningInitial*(ρe_ini+ρs_ini)
type Geometry struct {
	Slips  int
	Schmid float64

	ThresholdCurrent float64
	ThresholdInitial float64

	HardeningCurrent float64
	HardeningInitial float64
}

var geometries = map[Orientation]Geometry{
	Orient100: {
		Slips:            8,
		Schmid:           1 / math.Sqrt(6),
		ThresholdCurrent: selfHardening + latentHardening*7,
		ThresholdInitial: 4 * latentHardening,
		HardeningCurrent: 8,
		HardeningInitial: 4,
	},
	Orient110: {
		Slips:            4,
		Schmid:           1 / math.Sqrt(6),
		ThresholdCurrent: selfHardening + latentHardening*3,
		ThresholdInitial: 8 * latentHardening,
		HardeningCurrent: 4,
		HardeningInitial: 8,
	},
	Orient111: {
		Slips:            6,
		Schmid:           2 / (3 * math.Sqrt(6)),
		ThresholdCurrent: selfHardening + latentHardening*5,
		ThresholdInitial: 6 * latentHardening,
		HardeningCurrent: 6,
		HardeningInitial: 6,
	},
}

func unsupportedOrientation() string {
	names := make([]string, 0, len(geometries))
	for _, o := range Orientations() {
		names = append(names, string(o))
	}
	return "must be one of " + strings.Join(names, ", ")
}

// ParseOrientation accepts exactly "100", "110" or "111".
func ParseOrientation(s string) (Orientation, error) {
	o := Orientation(s)
	if _, ok := geometries[o]; !ok {
		return "", &ConfigurationError{Field: "orientation", Value: s, Reason: unsupportedOrientation()}
	}
	return o, nil
}

// Geometry returns the slip geometry for o.
func (o Orientation) Geometry() (Geometry, error) {
	g, ok := geometries[o]
	if !ok {
		return Geometry{}, &ConfigurationError{Field: "orientation", Value: string(o), Reason: unsupportedOrientation()}
	}
	return g, nil
}

func (o Orientation) String() string { return string(o) }

// Orientations lists the supported orientations in ascending order.
func Orientations() []Orientation {
	out := make([]Orientation, 0, len(geometries))
	for o := range geometries {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
