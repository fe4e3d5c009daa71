package config

import (
	"fmt"
	"math"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/crystalsim/internal/crystal"
	"github.com/san-kum/crystalsim/internal/sim"
)

// EnvPrefix is prepended to every environment override, e.g.
// CRYSTALSIM_ORIENTATION or CRYSTALSIM_TEMPERATURE_C.
const EnvPrefix = "CRYSTALSIM_"

const (
	DefaultOrientation  = "100"
	DefaultTemperatureC = 22.0
	DefaultStrainRate   = 1e-3
	DefaultTimestep     = 0.001
	DefaultTargetStrain = 0.5
	DefaultRanks        = 16
)

type Config struct {
	Orientation      string         `yaml:"orientation" env:"ORIENTATION"`
	Material         MaterialConfig `yaml:"material"`
	Loading          LoadingConfig  `yaml:"loading"`
	Initial          InitialConfig  `yaml:"initial"`
	MaxSlipIncrement float64        `yaml:"max_slip_increment" env:"MAX_SLIP_INCREMENT"`
	HistoryStride    int            `yaml:"history_stride" env:"HISTORY_STRIDE"`
	Metrics          []string       `yaml:"metrics,omitempty" env:"METRICS" envSeparator:","`
	Output           OutputConfig   `yaml:"output"`
	Solver           SolverConfig   `yaml:"solver"`
}

type MaterialConfig struct {
	C11          float64 `yaml:"c11" env:"C11"`
	C12          float64 `yaml:"c12" env:"C12"`
	C44          float64 `yaml:"c44" env:"C44"`
	ShearModulus float64 `yaml:"shear_modulus" env:"SHEAR_MODULUS"`
	Tau0         float64 `yaml:"tau0" env:"TAU0"`
	Lambda       float64 `yaml:"lambda" env:"LAMBDA"`
	Burgers      float64 `yaml:"burgers" env:"BURGERS"`
	Ce           float64 `yaml:"ce" env:"CE"`
	Cs           float64 `yaml:"cs" env:"CS"`
	De           float64 `yaml:"de" env:"DE"`
	Ds           float64 `yaml:"ds" env:"DS"`
	KeB          float64 `yaml:"ke_b" env:"KE_B"`
	Gdot0        float64 `yaml:"gdot0" env:"GDOT0"`
	F0           float64 `yaml:"f0" env:"F0"`
	R            float64 `yaml:"gas_constant" env:"GAS_CONSTANT"`
	TemperatureC float64 `yaml:"temperature_c" env:"TEMPERATURE_C"`
	P            float64 `yaml:"p" env:"P"`
	Q            float64 `yaml:"q" env:"Q"`
}

type LoadingConfig struct {
	StrainRate   float64 `yaml:"strain_rate" env:"STRAIN_RATE"`
	Timestep     float64 `yaml:"timestep" env:"TIMESTEP"`
	TargetStrain float64 `yaml:"target_strain" env:"TARGET_STRAIN"`
}

type InitialConfig struct {
	RhoE float64 `yaml:"rho_e" env:"RHO_E"`
	RhoS float64 `yaml:"rho_s" env:"RHO_S"`
}

type OutputConfig struct {
	Table     string `yaml:"table,omitempty" env:"OUTPUT_TABLE"`
	Reference string `yaml:"reference,omitempty" env:"REFERENCE"`
}

// SolverConfig describes the external finite-element run started by `launch`.
type SolverConfig struct {
	MPIExec   string `yaml:"mpiexec" env:"MPIEXEC"`
	Ranks     int    `yaml:"ranks" env:"RANKS"`
	App       string `yaml:"app" env:"APP"`
	Method    string `yaml:"method" env:"METHOD"`
	BinDir    string `yaml:"bin_dir" env:"BIN_DIR"`
	InputFile string `yaml:"input_file,omitempty" env:"INPUT_FILE"`
	LogFile   string `yaml:"log_file" env:"LOG_FILE"`
}

func DefaultConfig() *Config {
	m := crystal.DefaultMaterial()
	return &Config{
		Orientation: DefaultOrientation,
		Material: MaterialConfig{
			C11:          m.C11,
			C12:          m.C12,
			C44:          m.C44,
			ShearModulus: m.ShearModulus,
			Tau0:         m.Tau0,
			Lambda:       m.Lambda,
			Burgers:      m.Burgers,
			Ce:           m.Ce,
			Cs:           m.Cs,
			De:           m.De,
			Ds:           m.Ds,
			KeB:          m.KeB,
			Gdot0:        m.Gdot0,
			F0:           m.F0,
			R:            m.R,
			TemperatureC: DefaultTemperatureC,
			P:            m.P,
			Q:            m.Q,
		},
		Loading: LoadingConfig{
			StrainRate:   DefaultStrainRate,
			Timestep:     DefaultTimestep,
			TargetStrain: DefaultTargetStrain,
		},
		Initial: InitialConfig{
			RhoE: crystal.DefaultInitialDensity,
			RhoS: crystal.DefaultInitialDensity,
		},
		Output: OutputConfig{
			Table: "one-d-data.dat",
		},
		Solver: SolverConfig{
			MPIExec: "mpiexec",
			Ranks:   DefaultRanks,
			App:     "cdf_update",
			Method:  "opt",
			BinDir:  "../..",
			LogFile: "record.log",
		},
	}
}

// Load reads a YAML file on top of the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto reads a YAML file on top of a copy of base.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overlays CRYSTALSIM_* variables that are set; unset variables
// leave the current value alone.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Clone() *Config {
	cp := *c
	if c.Metrics != nil {
		cp.Metrics = append([]string(nil), c.Metrics...)
	}
	return &cp
}

// Validate checks everything that can be checked without building the
// parameters; material constants are validated by crystal.NewParameters.
func (c *Config) Validate() error {
	if _, err := crystal.ParseOrientation(c.Orientation); err != nil {
		return err
	}
	checks := []struct {
		field string
		value float64
	}{
		{"strain rate", c.Loading.StrainRate},
		{"timestep", c.Loading.Timestep},
		{"target strain", c.Loading.TargetStrain},
		{"initial edge density", c.Initial.RhoE},
		{"initial screw density", c.Initial.RhoS},
	}
	for _, ch := range checks {
		if !(ch.value > 0) || math.IsInf(ch.value, 0) {
			return &crystal.ConfigurationError{Field: ch.field, Value: ch.value, Reason: "must be positive and finite"}
		}
	}
	if ratio := c.Loading.TargetStrain / (c.Loading.StrainRate * c.Loading.Timestep); !(ratio < sim.MaxSteps) {
		return &crystal.ConfigurationError{Field: "target strain", Value: c.Loading.TargetStrain, Reason: fmt.Sprintf("needs more than %d increments", sim.MaxSteps)}
	}
	if c.Material.TemperatureC+crystal.CelsiusOffset <= 0 {
		return &crystal.ConfigurationError{Field: "temperature", Value: c.Material.TemperatureC, Reason: "must be above absolute zero"}
	}
	if c.MaxSlipIncrement < 0 {
		return &crystal.ConfigurationError{Field: "max slip increment", Value: c.MaxSlipIncrement, Reason: "must not be negative"}
	}
	if c.HistoryStride < 0 {
		return &crystal.ConfigurationError{Field: "history stride", Value: c.HistoryStride, Reason: "must not be negative"}
	}
	return nil
}

func (m MaterialConfig) Material() crystal.Material {
	return crystal.Material{
		C11:          m.C11,
		C12:          m.C12,
		C44:          m.C44,
		ShearModulus: m.ShearModulus,
		Tau0:         m.Tau0,
		Lambda:       m.Lambda,
		Burgers:      m.Burgers,
		Ce:           m.Ce,
		Cs:           m.Cs,
		De:           m.De,
		Ds:           m.Ds,
		KeB:          m.KeB,
		Gdot0:        m.Gdot0,
		F0:           m.F0,
		R:            m.R,
		Theta:        m.TemperatureC + crystal.CelsiusOffset,
		P:            m.P,
		Q:            m.Q,
	}
}

// Parameters validates c and builds the immutable integrator parameters.
func (c *Config) Parameters() (*crystal.Parameters, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	o, err := crystal.ParseOrientation(c.Orientation)
	if err != nil {
		return nil, err
	}
	p, err := crystal.NewParameters(c.Material.Material(), o)
	if err != nil {
		return nil, err
	}
	if c.MaxSlipIncrement > 0 {
		p = p.WithMaxSlipIncrement(c.MaxSlipIncrement)
	}
	return p, nil
}

func (c *Config) SimConfig() sim.Config {
	cfg := sim.Loading(c.Loading.StrainRate, c.Loading.Timestep, c.Loading.TargetStrain)
	cfg.HistoryStride = c.HistoryStride
	return cfg
}

func (c *Config) InitialState() crystal.State {
	return crystal.NewState(c.Initial.RhoE, c.Initial.RhoS)
}
