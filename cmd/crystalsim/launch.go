package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/crystalsim/internal/config"
	"github.com/san-kum/crystalsim/internal/launcher"
)

func newLaunchCmd() *cobra.Command {
	var (
		configFile string
		job        launcher.Job
		background bool
	)
	cmd := &cobra.Command{
		Use:   "launch [input]",
		Short: "start the finite-element solver under mpiexec",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if configFile != "" {
				var err error
				if cfg, err = config.Load(configFile); err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
			}
			if err := config.ApplyEnv(cfg); err != nil {
				return err
			}

			j := jobFromConfig(cfg.Solver)
			changed := cmd.Flags().Changed
			if changed("mpiexec") {
				j.MPIExec = job.MPIExec
			}
			if changed("ranks") {
				j.Ranks = job.Ranks
			}
			if changed("app") {
				j.App = job.App
			}
			if changed("method") {
				j.Method = job.Method
			}
			if changed("bin-dir") {
				j.BinDir = job.BinDir
			}
			if changed("log") {
				j.LogFile = job.LogFile
			}
			j.WorkDir = job.WorkDir
			if len(args) == 1 {
				j.InputFile = args[0]
			}

			if background {
				p, err := launcher.Start(context.Background(), j)
				if err != nil {
					return err
				}
				logger.Info("solver started", "pid", p.PID(), "binary", j.Binary(), "log", j.LogFile)
				fmt.Printf("started pid %d, output in %s\n", p.PID(), j.LogFile)
				return nil
			}

			ctx, cancel := signalContext()
			defer cancel()
			logger.Info("solver running", "binary", j.Binary(), "ranks", j.Ranks, "input", j.InputFile, "log", j.LogFile)
			start := time.Now()
			if err := launcher.Run(ctx, j); err != nil {
				return err
			}
			logger.Info("solver finished", "elapsed", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	d := config.DefaultConfig().Solver
	fl := cmd.Flags()
	fl.StringVar(&configFile, "config", "", "config file with a solver section")
	fl.StringVar(&job.MPIExec, "mpiexec", d.MPIExec, "MPI launcher")
	fl.IntVar(&job.Ranks, "ranks", d.Ranks, "number of MPI ranks")
	fl.StringVar(&job.App, "app", d.App, "solver application name")
	fl.StringVar(&job.Method, "method", d.Method, "build method (opt, dbg)")
	fl.StringVar(&job.BinDir, "bin-dir", d.BinDir, "directory holding the solver binary")
	fl.StringVar(&job.LogFile, "log", d.LogFile, "solver output log")
	fl.StringVar(&job.WorkDir, "workdir", "", "working directory for the solver")
	fl.BoolVar(&background, "background", false, "start the solver and return immediately")
	return cmd
}

func jobFromConfig(s config.SolverConfig) launcher.Job {
	return launcher.Job{
		MPIExec:   s.MPIExec,
		Ranks:     s.Ranks,
		App:       s.App,
		Method:    s.Method,
		BinDir:    s.BinDir,
		InputFile: s.InputFile,
		LogFile:   s.LogFile,
	}
}
