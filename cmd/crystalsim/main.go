package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/crystalsim/internal/logging"
	"github.com/san-kum/crystalsim/internal/observability"
)

var (
	dataDir     string
	logLevel    string
	logFormat   string
	metricsFile string

	logger    *slog.Logger
	collector *observability.RunCollector
)

// main registers the commands and exits with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "crystalsim",
		Short:         "single-slip crystal plasticity integrator",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = logging.New(logging.Config{Level: logLevel, Format: logFormat})
			var err error
			collector, err = observability.NewRunCollector(prometheus.NewRegistry())
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if metricsFile == "" {
				return nil
			}
			return collector.WriteTextfile(metricsFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".crystalsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", envOr("LOG_FORMAT", "text"), "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this file on exit")

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newWatchCmd(),
		newBatchCmd(),
		newSweepCmd(),
		newFitCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportCmd(),
		newExportJSONCmd(),
		newExportSVGCmd(),
		newPresetsCmd(),
		newConfigCmd(),
		newLaunchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
