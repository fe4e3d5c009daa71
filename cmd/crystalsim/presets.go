package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/crystalsim/internal/config"
	"github.com/san-kum/crystalsim/internal/experiment"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list presets and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-14s orientation %s, %gC, rate %g, target %g\n",
					name, p.Orientation, p.Material.TemperatureC, p.Loading.StrainRate, p.Loading.TargetStrain)
			}
			fmt.Println("metrics:")
			for _, name := range experiment.NewRegistry().ListMetrics() {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	var (
		flags runFlags
		out   string
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			if out != "" {
				return saveConfig(out, cfg)
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

func saveConfig(path string, cfg *config.Config) error {
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	logger.Info("config written", "path", path)
	return nil
}
