package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/crystalsim/internal/automation"
	"github.com/san-kum/crystalsim/internal/sim"
	"github.com/san-kum/crystalsim/internal/storage"
)

func newBatchCmd() *cobra.Command {
	var (
		jobs   int
		noSave bool
	)
	cmd := &cobra.Command{
		Use:   "batch [pattern...]",
		Short: "run every config file matching the patterns (** allowed)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := automation.ExpandGlob(args...)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no config files match %v", args)
			}
			runs, err := automation.LoadBatch(files)
			if err != nil {
				return err
			}
			return runBatch(runs, jobs, !noSave)
		},
	}
	cmd.Flags().IntVar(&jobs, "jobs", 0, "parallel runs (default number of CPUs)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store runs in the data directory")
	return cmd
}

func newSweepCmd() *cobra.Command {
	var (
		jobs   int
		noSave bool
	)
	cmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "run a scenario over orientations, temperatures and strain rates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("jobs") && scenario.Jobs > 0 {
				jobs = scenario.Jobs
			}
			runs := scenario.Expand()
			logger.Info("sweep expanded", "scenario", scenario.Name, "runs", len(runs))
			return runBatch(runs, jobs, !noSave)
		},
	}
	cmd.Flags().IntVar(&jobs, "jobs", 0, "parallel runs (default number of CPUs)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store runs in the data directory")
	return cmd
}

func runBatch(runs []automation.Run, jobs int, save bool) error {
	ctx, cancel := signalContext()
	defer cancel()

	st := storage.New(dataDir)
	if save {
		if err := st.Init(); err != nil {
			return err
		}
	}

	runner := &automation.Runner{
		Logger: logger,
		Jobs:   jobs,
		Observer: func(r automation.Run) sim.Observer {
			return collector.StepObserver(r.Config.Orientation)
		},
		OnDone: func(o automation.Outcome) {
			collector.ObserveRun(o.Run.Config.Orientation, o.Result, o.Err, o.Duration)
			if !save || o.Result == nil {
				return
			}
			id, err := st.Save(o.Run.Config, o.Result, o.Err)
			if err != nil {
				logger.Error("store run", "run", o.Run.Name, "error", err)
				return
			}
			logger.Debug("run stored", "run", o.Run.Name, "id", id)
		},
	}

	start := time.Now()
	outcomes, err := runner.RunAll(ctx, runs)
	ok, failed := automation.Summary(outcomes)
	fmt.Printf("%d runs in %v: %d ok, %d failed\n", len(outcomes), time.Since(start).Round(time.Millisecond), ok, failed)
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Printf("  %s: %v\n", o.Run.Name, o.Err)
		}
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(outcomes))
	}
	return nil
}
