package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/crystalsim/internal/config"
	"github.com/san-kum/crystalsim/internal/experiment"
	"github.com/san-kum/crystalsim/internal/export"
	"github.com/san-kum/crystalsim/internal/plot"
	"github.com/san-kum/crystalsim/internal/sim"
	"github.com/san-kum/crystalsim/internal/storage"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(22)
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
)

func newRunCmd() *cobra.Command {
	var (
		flags  runFlags
		noSave bool
		doPlot bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "integrate one loading history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			result, runErr := runOnce(ctx, cfg, !noSave)
			if result != nil && doPlot {
				if err := printPlot(result.Trajectory, cfg.Output.Reference); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run in the data directory")
	cmd.Flags().BoolVar(&doPlot, "plot", false, "plot the curve, with the reference if given")
	return cmd
}

// runOnce integrates cfg, writes the outputs it names and prints a summary.
// A failed integration still writes the partial trajectory.
func runOnce(ctx context.Context, cfg *config.Config, save bool) (*sim.Result, error) {
	exp, err := experiment.New(cfg, nil)
	if err != nil {
		return nil, err
	}
	exp.Simulator().AddObserver(collector.StepObserver(cfg.Orientation))

	logger.Info("starting run", "orientation", cfg.Orientation,
		"temperature_c", cfg.Material.TemperatureC,
		"strain_rate", cfg.Loading.StrainRate,
		"target", cfg.Loading.TargetStrain)

	start := time.Now()
	result, runErr := exp.Run(ctx)
	elapsed := time.Since(start)
	collector.ObserveRun(cfg.Orientation, result, runErr, elapsed)

	if result == nil {
		return nil, runErr
	}

	if err := saveOutputs(cfg, result, runErr, save); err != nil {
		return result, errors.Join(runErr, err)
	}
	printSummary(cfg, result, runErr, elapsed)
	return result, runErr
}

func saveOutputs(cfg *config.Config, result *sim.Result, runErr error, save bool) error {
	if cfg.Output.Table != "" && len(result.Trajectory) > 0 {
		if err := export.SaveTable(cfg.Output.Table, result.Trajectory); err != nil {
			return fmt.Errorf("write table: %w", err)
		}
		logger.Info("table written", "path", cfg.Output.Table, "points", len(result.Trajectory))
	}
	if !save {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(cfg, result, runErr)
	if err != nil {
		return fmt.Errorf("store run: %w", err)
	}
	logger.Info("run stored", "id", id, "dir", st.Dir())
	return nil
}

func printSummary(cfg *config.Config, result *sim.Result, runErr error, elapsed time.Duration) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("orientation %s at %g C", cfg.Orientation, cfg.Material.TemperatureC)))
	row := func(k string, v any) {
		fmt.Println(keyStyle.Render(k) + fmt.Sprint(v))
	}
	row("steps", result.StepsTaken)
	row("points", len(result.Trajectory))
	row("elapsed", elapsed.Round(time.Millisecond))
	if n := len(result.Trajectory); n > 0 {
		last := result.Trajectory[n-1]
		row("final strain", fmt.Sprintf("%.6f", last.Strain))
		row("final stress", fmt.Sprintf("%.4f", last.Stress))
	}

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row(name, fmt.Sprintf("%.6g", result.Metrics[name]))
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("stopped: "+runErr.Error()))
	}
}

func printPlot(traj sim.Trajectory, referencePath string) error {
	var ref sim.Trajectory
	if referencePath != "" {
		var err error
		if ref, err = export.LoadReference(referencePath); err != nil {
			return err
		}
	}
	fmt.Println()
	fmt.Println(plot.Overlay(traj, ref, plot.DefaultOptions()))
	return nil
}
