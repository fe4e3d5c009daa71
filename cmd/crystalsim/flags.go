package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/crystalsim/internal/config"
)

// runFlags are the configuration flags shared by run, live, watch and config.
type runFlags struct {
	configFile  string
	preset      string
	orientation string
	temperature float64
	strainRate  float64
	timestep    float64
	target      float64
	maxSlip     float64
	stride      int
	metrics     []string
	output      string
	reference   string
}

func (f *runFlags) register(cmd *cobra.Command) {
	d := config.DefaultConfig()
	fl := cmd.Flags()
	fl.StringVar(&f.configFile, "config", "", "config file path (yaml)")
	fl.StringVar(&f.preset, "preset", "", "start from a named preset")
	fl.StringVar(&f.orientation, "orientation", d.Orientation, "crystal orientation (100, 110, 111)")
	fl.Float64Var(&f.temperature, "temperature", d.Material.TemperatureC, "temperature in degrees Celsius")
	fl.Float64Var(&f.strainRate, "strain-rate", d.Loading.StrainRate, "applied strain rate")
	fl.Float64Var(&f.timestep, "timestep", d.Loading.Timestep, "integration timestep")
	fl.Float64Var(&f.target, "target", d.Loading.TargetStrain, "target strain")
	fl.Float64Var(&f.maxSlip, "max-slip", 0, "maximum slip increment per step (0 disables)")
	fl.IntVar(&f.stride, "history-stride", 0, "record every n-th full state (0 disables)")
	fl.StringSliceVar(&f.metrics, "metrics", nil, "metrics to compute (default all)")
	fl.StringVar(&f.output, "output", d.Output.Table, "stress-strain table path (empty disables)")
	fl.StringVar(&f.reference, "reference", "", "reference curve CSV (strain_xx, stress_xx)")
}

// resolve builds the effective config: defaults, then preset, then config
// file, then CRYSTALSIM_* environment, then flags set on the command line.
func (f *runFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if f.preset != "" {
		cfg = config.GetPreset(f.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets())
		}
	}

	if f.configFile != "" {
		loaded, err := config.LoadOnto(f.configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("orientation") {
		cfg.Orientation = f.orientation
	}
	if changed("temperature") {
		cfg.Material.TemperatureC = f.temperature
	}
	if changed("strain-rate") {
		cfg.Loading.StrainRate = f.strainRate
	}
	if changed("timestep") {
		cfg.Loading.Timestep = f.timestep
	}
	if changed("target") {
		cfg.Loading.TargetStrain = f.target
	}
	if changed("max-slip") {
		cfg.MaxSlipIncrement = f.maxSlip
	}
	if changed("history-stride") {
		cfg.HistoryStride = f.stride
	}
	if changed("metrics") {
		cfg.Metrics = f.metrics
	}
	if changed("output") {
		cfg.Output.Table = f.output
	}
	if changed("reference") {
		cfg.Output.Reference = f.reference
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
