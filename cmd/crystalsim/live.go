package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/crystalsim/internal/experiment"
	"github.com/san-kum/crystalsim/internal/tui"
)

func newLiveCmd() *cobra.Command {
	var (
		flags    runFlags
		perFrame int
		noSave   bool
	)
	cmd := &cobra.Command{
		Use:   "live",
		Short: "integrate with a live terminal view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			exp, err := experiment.New(cfg, nil)
			if err != nil {
				return err
			}
			exp.Simulator().AddObserver(collector.StepObserver(cfg.Orientation))

			title := fmt.Sprintf("crystalsim %s at %g C", cfg.Orientation, cfg.Material.TemperatureC)
			m, err := tui.NewModel(title, exp.Start, perFrame)
			if err != nil {
				return err
			}

			start := time.Now()
			final, err := tea.NewProgram(m).Run()
			if err != nil {
				return err
			}
			fm := final.(tui.Model)
			result := fm.Result()
			collector.ObserveRun(cfg.Orientation, result, fm.Err(), time.Since(start))

			if len(result.Trajectory) == 0 {
				return fm.Err()
			}
			if err := saveOutputs(cfg, result, fm.Err(), !noSave); err != nil {
				return err
			}
			return fm.Err()
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&perFrame, "steps-per-frame", 2000, "integration steps per frame")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run in the data directory")
	return cmd
}
