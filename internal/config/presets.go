package config

import "sort"

// Presets are named variations of the default run. Each entry only touches
// the fields it changes.
var Presets = map[string]func(*Config){
	"reference-100": func(c *Config) { c.Orientation = "100" },
	"reference-110": func(c *Config) { c.Orientation = "110" },
	"reference-111": func(c *Config) { c.Orientation = "111" },
	"cold-100": func(c *Config) {
		c.Orientation = "100"
		c.Material.TemperatureC = -73
	},
	"hot-100": func(c *Config) {
		c.Orientation = "100"
		c.Material.TemperatureC = 300
	},
	"fast-110": func(c *Config) {
		c.Orientation = "110"
		c.Loading.StrainRate = 1e-2
		c.Loading.Timestep = 1e-4
	},
	"short-111": func(c *Config) {
		c.Orientation = "111"
		c.Loading.TargetStrain = 0.05
		c.HistoryStride = 100
	},
}

// GetPreset returns a fresh config for name, or nil if there is none.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
