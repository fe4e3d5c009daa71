package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/crystalsim/internal/crystal"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Orientation != "100" {
		t.Errorf("expected orientation 100, got %s", cfg.Orientation)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	p, err := cfg.Parameters()
	if err != nil {
		t.Fatalf("parameters: %v", err)
	}
	if p.Theta != 295 {
		t.Errorf("expected theta 295 K, got %v", p.Theta)
	}
	if p.MaxSlipIncrement != 0 {
		t.Errorf("expected slip guard disabled, got %v", p.MaxSlipIncrement)
	}

	sc := cfg.SimConfig()
	if sc.StrainIncrement != 1e-6 || sc.Timestep != 0.001 || sc.TargetStrain != 0.5 {
		t.Errorf("unexpected loading %+v", sc)
	}

	x0 := cfg.InitialState()
	if x0.RhoE != 2.2e6 || x0.RhoS != 2.2e6 || x0.RhoE0 != 2.2e6 {
		t.Errorf("unexpected initial state %+v", x0)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Orientation = "111"
	cfg.Material.TemperatureC = 100
	cfg.Metrics = []string{"peak_stress"}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Orientation != "111" || loaded.Material.TemperatureC != 100 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
	if len(loaded.Metrics) != 1 || loaded.Metrics[0] != "peak_stress" {
		t.Errorf("metrics not preserved: %v", loaded.Metrics)
	}
	if loaded.Material.Burgers != cfg.Material.Burgers {
		t.Errorf("burgers changed: %v vs %v", loaded.Material.Burgers, cfg.Material.Burgers)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "orientation: \"110\"\nloading:\n  target_strain: 0.01\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Orientation != "110" || cfg.Loading.TargetStrain != 0.01 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Loading.StrainRate != DefaultStrainRate || cfg.Material.Tau0 != 127 {
		t.Errorf("defaults not kept: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("orientation: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CRYSTALSIM_ORIENTATION", "111")
	t.Setenv("CRYSTALSIM_TEMPERATURE_C", "150")
	t.Setenv("CRYSTALSIM_TARGET_STRAIN", "0.02")
	t.Setenv("CRYSTALSIM_METRICS", "peak_stress,yield_strain")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("apply env: %v", err)
	}

	if cfg.Orientation != "111" {
		t.Errorf("expected orientation 111, got %s", cfg.Orientation)
	}
	if cfg.Material.TemperatureC != 150 {
		t.Errorf("expected 150 C, got %v", cfg.Material.TemperatureC)
	}
	if cfg.Loading.TargetStrain != 0.02 {
		t.Errorf("expected target 0.02, got %v", cfg.Loading.TargetStrain)
	}
	if len(cfg.Metrics) != 2 {
		t.Errorf("expected 2 metrics, got %v", cfg.Metrics)
	}
	if cfg.Material.Tau0 != 127 {
		t.Errorf("unset variable changed tau0 to %v", cfg.Material.Tau0)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv("CRYSTALSIM_TIMESTEP", "fast")

	if err := ApplyEnv(DefaultConfig()); err == nil {
		t.Error("expected error for unparsable timestep")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"orientation", func(c *Config) { c.Orientation = "123" }},
		{"strain rate", func(c *Config) { c.Loading.StrainRate = 0 }},
		{"timestep", func(c *Config) { c.Loading.Timestep = -0.001 }},
		{"target", func(c *Config) { c.Loading.TargetStrain = 0 }},
		{"density", func(c *Config) { c.Initial.RhoE = 0 }},
		{"temperature", func(c *Config) { c.Material.TemperatureC = -300 }},
		{"slip limit", func(c *Config) { c.MaxSlipIncrement = -1 }},
		{"stride", func(c *Config) { c.HistoryStride = -1 }},
		{"step bound", func(c *Config) { c.Loading.StrainRate = 1e-10; c.Loading.Timestep = 1e-10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, crystal.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
			if _, err := cfg.Parameters(); err == nil {
				t.Error("Parameters accepted invalid config")
			}
		})
	}
}

func TestParametersSlipLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSlipIncrement = 1e-3

	p, err := cfg.Parameters()
	if err != nil {
		t.Fatalf("parameters: %v", err)
	}
	if p.MaxSlipIncrement != 1e-3 {
		t.Errorf("expected slip limit 1e-3, got %v", p.MaxSlipIncrement)
	}
}

func TestClone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Metrics = []string{"peak_stress"}

	cp := cfg.Clone()
	cp.Metrics[0] = "yield_strain"
	cp.Orientation = "110"

	if cfg.Metrics[0] != "peak_stress" || cfg.Orientation != "100" {
		t.Error("clone shares state with original")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("cold-100")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Material.TemperatureC != -73 {
		t.Errorf("expected -73 C, got %v", cfg.Material.TemperatureC)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset invalid: %v", err)
	}

	// presets must not leak into each other or the defaults
	if GetPreset("reference-100").Material.TemperatureC != DefaultTemperatureC {
		t.Error("preset mutated shared defaults")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
	for _, name := range presets {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestLoadOntoPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "over.yaml")
	if err := os.WriteFile(path, []byte("loading:\n  target_strain: 0.2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("hot-100")
	cfg, err := LoadOnto(path, base)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Material.TemperatureC != 300 || cfg.Loading.TargetStrain != 0.2 {
		t.Errorf("expected preset temperature and file target, got %+v", cfg)
	}
	if base.Loading.TargetStrain != DefaultTargetStrain {
		t.Error("LoadOnto mutated its base")
	}
}
