package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/crystalsim/internal/experiment"
	"github.com/san-kum/crystalsim/internal/export"
	"github.com/san-kum/crystalsim/internal/optim"
)

func newFitCmd() *cobra.Command {
	var (
		flags  runFlags
		ranges []string
		top    int
		out    string
	)
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "grid-search material parameters against a reference curve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			if cfg.Output.Reference == "" {
				return errors.New("fit needs --reference")
			}
			if len(ranges) == 0 {
				return fmt.Errorf("fit needs at least one --param (available: %v)", optim.FitParameters())
			}
			ref, err := export.LoadReference(cfg.Output.Reference)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(ranges))
			values := make([][]float64, 0, len(ranges))
			for _, r := range ranges {
				name, v, err := optim.ParseRange(r)
				if err != nil {
					return err
				}
				names = append(names, name)
				values = append(values, v)
			}
			g, err := optim.NewGridSearch(names, values)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()
			logger.Info("fitting", "params", names, "points", g.Size(), "reference", cfg.Output.Reference)

			best, score, evals, err := g.Search(ctx, optim.FitObjective(cfg, ref, experiment.NewRegistry()))
			printEvaluations(names, evals, top)
			if err != nil {
				return err
			}
			fmt.Printf("\nbest rmse %.6g at %v\n", score, best)

			if out != "" {
				fitted, err := optim.Apply(cfg, best)
				if err != nil {
					return err
				}
				fitted.Output.Reference = ""
				return saveConfig(out, fitted)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringArrayVar(&ranges, "param", nil, "parameter range, name=lo:hi:n or name=v1,v2 (repeatable)")
	cmd.Flags().IntVar(&top, "top", 10, "number of best grid points to print")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the fitted config to this file")
	return cmd
}

func printEvaluations(names []string, evals []optim.Evaluation, top int) {
	sorted := append([]optim.Evaluation(nil), evals...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	if top > 0 && len(sorted) > top {
		sorted = sorted[:top]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, n := range names {
		fmt.Fprintf(w, "%s\t", n)
	}
	fmt.Fprintln(w, "RMSE")
	for _, e := range sorted {
		for _, n := range names {
			fmt.Fprintf(w, "%g\t", e.Params[n])
		}
		if e.Err != nil {
			fmt.Fprintf(w, "failed: %v\n", e.Err)
		} else {
			fmt.Fprintf(w, "%.6g\n", e.Score)
		}
	}
	w.Flush()
}

// less orders scored points first, by score.
func less(a, b optim.Evaluation) bool {
	aok := a.Err == nil && !math.IsNaN(a.Score)
	bok := b.Err == nil && !math.IsNaN(b.Score)
	if aok != bok {
		return aok
	}
	return aok && a.Score < b.Score
}
