package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/crystalsim/internal/config"
	"github.com/san-kum/crystalsim/internal/crystal"
)

func shortConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Loading.TargetStrain = 0.002
	return cfg
}

func TestRegistryMetrics(t *testing.T) {
	r := NewRegistry()
	p, err := config.DefaultConfig().Parameters()
	if err != nil {
		t.Fatal(err)
	}

	all, err := r.Metrics(nil, p)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if len(all) != len(r.ListMetrics()) {
		t.Errorf("expected %d metrics, got %d", len(r.ListMetrics()), len(all))
	}

	if _, err := r.GetMetric("energy", p); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestExperimentRun(t *testing.T) {
	cfg := shortConfig()
	cfg.Metrics = []string{"peak_stress", "yield_strain"}

	exp, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(result.Trajectory) != 2002 {
		t.Errorf("expected 2002 points, got %d", len(result.Trajectory))
	}
	if len(result.Metrics) != 2 {
		t.Errorf("expected 2 metrics, got %v", result.Metrics)
	}
	if result.Metrics["peak_stress"] <= 0 {
		t.Errorf("expected positive peak stress, got %v", result.Metrics["peak_stress"])
	}
}

func TestExperimentInvalidConfig(t *testing.T) {
	cfg := shortConfig()
	cfg.Orientation = "210"

	if _, err := New(cfg, nil); !errors.Is(err, crystal.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}

	cfg = shortConfig()
	cfg.Metrics = []string{"energy"}
	if _, err := New(cfg, nil); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestExperimentKeepsConfigCopy(t *testing.T) {
	cfg := shortConfig()
	exp, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Loading.TargetStrain = 10

	if exp.Config().Loading.TargetStrain != 0.002 {
		t.Error("experiment observed caller mutation")
	}
}
