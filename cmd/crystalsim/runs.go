package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/crystalsim/internal/export"
	"github.com/san-kum/crystalsim/internal/sim"
	"github.com/san-kum/crystalsim/internal/storage"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tORIENT\tTIME\tTEMP\tRATE\tTARGET\tPOINTS\tSTATUS")
			for _, run := range runs {
				status := "ok"
				if run.Error != "" {
					status = "failed"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%gC\t%g\t%g\t%d\t%s\n",
					run.ID,
					run.Orientation,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.TemperatureC,
					run.StrainRate,
					run.TargetStrain,
					run.Points,
					status,
				)
			}
			return w.Flush()
		},
	}
}

// loadRun reads the metadata and trajectory of a stored run.
func loadRun(id string) (*storage.RunMetadata, sim.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, err
	}
	traj, err := st.LoadTrajectory(id)
	if err != nil {
		return nil, nil, err
	}
	if len(traj) == 0 {
		return nil, nil, fmt.Errorf("run %s has no data", id)
	}
	return meta, traj, nil
}

func newPlotCmd() *cobra.Command {
	var reference string
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored stress-strain curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, traj, err := loadRun(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("orientation: %s\n", meta.Orientation)
			fmt.Printf("points: %d\n", len(traj))
			return printPlot(traj, reference)
		},
	}
	cmd.Flags().StringVar(&reference, "reference", "", "reference curve CSV (strain_xx, stress_xx)")
	return cmd
}

// outputWriter opens path, or stdout when path is empty.
func outputWriter(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "write a stored run as a fixed-width strain,stress table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, traj, err := loadRun(args[0])
			if err != nil {
				return err
			}
			w, closeFn, err := outputWriter(out)
			if err != nil {
				return err
			}
			if err := export.WriteTable(w, traj); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newExportJSONCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and curve to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, traj, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if out != "" {
				return export.ExportJSON(out, *meta, traj)
			}
			return export.WriteJSON(os.Stdout, *meta, traj)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newExportSVGCmd() *cobra.Command {
	var (
		out       string
		width     int
		height    int
		reference string
	)
	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a stored run, and optionally a reference, to SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, traj, err := loadRun(args[0])
			if err != nil {
				return err
			}
			series := []export.Series{{Name: meta.ID, Color: "#00aa66", Points: traj}}
			if reference != "" {
				ref, err := export.LoadReference(reference)
				if err != nil {
					return err
				}
				series = append(series, export.Series{Name: "reference", Color: "#dd8800", Points: ref})
			}

			svg := export.TrajectoryToSVG(series, width, height)
			if svg == "" {
				return fmt.Errorf("run %s: not enough points to draw", meta.ID)
			}
			w, closeFn, err := outputWriter(out)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(w, svg); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&width, "width", 800, "image width")
	cmd.Flags().IntVar(&height, "height", 500, "image height")
	cmd.Flags().StringVar(&reference, "reference", "", "reference curve CSV (strain_xx, stress_xx)")
	return cmd
}
