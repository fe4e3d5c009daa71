package crystal

import "math"

// CelsiusOffset converts the configured temperature to the absolute scale used
// by the flow rule.
const CelsiusOffset = 273.0

// Material holds the constants of the single-slip crystal model. Units follow
// the MPa/mm system of the finite-element input decks.
type Material struct {
	C11 float64
	C12 float64
	C44 float64

	ShearModulus float64
	Tau0         float64
	Lambda       float64
	Burgers      float64

	Ce  float64
	Cs  float64
	De  float64
	Ds  float64
	KeB float64

	Gdot0 float64
	F0    float64
	R     float64
	Theta float64
	P     float64
	Q     float64
}

// DefaultMaterial returns the calibrated constants of the reference run.
func DefaultMaterial() Material {
	return Material{
		C11:          188997,
		C12:          135312,
		C44:          90191,
		ShearModulus: 90191,
		Tau0:         127,
		Lambda:       0.3,
		Burgers:      0.257e-6,
		Ce:           0.5,
		Cs:           0.5,
		De:           1.9e-6,
		Ds:           2.8e-6,
		KeB:          52000,
		Gdot0:        1.0e6,
		F0:           286000,
		R:            8.314,
		Theta:        22 + CelsiusOffset,
		P:            0.3,
		Q:            1.3,
	}
}

// Parameters is the immutable input of Step. Build it with NewParameters.
type Parameters struct {
	Material

	Orientation Orientation
	Geometry    Geometry

	// E and Nu are the uniaxial modulus and effective Poisson ratio derived
	// from the cubic elastic constants.
	E  float64
	Nu float64

	Ke float64
	Ks float64

	// MaxSlipIncrement bounds |γ̇|·h per step; zero disables the check.
	MaxSlipIncrement float64
}

// NewParameters validates m and derives the elastic and hardening constants
// for orientation o.
func NewParameters(m Material, o Orientation) (*Parameters, error) {
	g, err := o.Geometry()
	if err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}

	nu := 1 / (1 + m.C11/m.C12)
	e := m.C11 * (1 - 3*nu*nu - 2*nu*nu*nu) / (1 - nu*nu)

	return &Parameters{
		Material:    m,
		Orientation: o,
		Geometry:    g,
		E:           e,
		Nu:          nu,
		Ke:          m.KeB * m.Burgers,
		Ks:          2 * m.KeB * m.Burgers,
	}, nil
}

// WithMaxSlipIncrement returns a copy of p with the slip increment guard set.
func (p *Parameters) WithMaxSlipIncrement(limit float64) *Parameters {
	c := *p
	c.MaxSlipIncrement = limit
	return &c
}

// ActivationRatio is f0/(R·θ), the exponent scale of the flow rule.
func (p *Parameters) ActivationRatio() float64 {
	return p.F0 / (p.R * p.Theta)
}

func (m Material) validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"C11", m.C11},
		{"C12", m.C12},
		{"shear modulus", m.ShearModulus},
		{"tau0", m.Tau0},
		{"lambda", m.Lambda},
		{"burgers vector", m.Burgers},
		{"gdot0", m.Gdot0},
		{"gas constant", m.R},
		{"temperature", m.Theta},
		{"p", m.P},
		{"q", m.Q},
	}
	for _, f := range positive {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return &ConfigurationError{Field: f.name, Value: f.value, Reason: "must be positive and finite"}
		}
	}
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"Ce", m.Ce},
		{"Cs", m.Cs},
		{"de", m.De},
		{"ds", m.Ds},
		{"ke_b", m.KeB},
		{"f0", m.F0},
	}
	for _, f := range nonNegative {
		if !(f.value >= 0) || math.IsInf(f.value, 0) {
			return &ConfigurationError{Field: f.name, Value: f.value, Reason: "must be non-negative and finite"}
		}
	}
	return nil
}
