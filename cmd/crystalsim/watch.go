package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/crystalsim/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		flags       runFlags
		debounce    time.Duration
		metricsAddr string
		noSave      bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "re-run whenever the config file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.configFile == "" {
				return errors.New("watch needs --config")
			}
			ctx, cancel := signalContext()
			defer cancel()

			if metricsAddr != "" {
				srv := &http.Server{Addr: metricsAddr, Handler: collector.Handler(), ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("metrics server failed", "addr", metricsAddr, "error", err)
					}
				}()
				defer srv.Close()
				logger.Info("serving metrics", "addr", metricsAddr)
			}

			rerun := func(ctx context.Context, path string) {
				cfg, err := flags.resolve(cmd)
				if err != nil {
					logger.Error("invalid config", "path", path, "error", err)
					return
				}
				if _, err := runOnce(ctx, cfg, !noSave); err != nil {
					logger.Error("run failed", "path", path, "error", err)
				}
			}

			w, err := watch.New(watch.Config{
				Path:     flags.configFile,
				Debounce: debounce,
				OnChange: rerun,
				Logger:   logger,
			})
			if err != nil {
				return err
			}

			rerun(ctx, flags.configFile)
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before re-running")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store runs in the data directory")
	return cmd
}
