package main

import (
	"github.com/spf13/cobra"

	"github.com/nopper/wikibench/internal/bench"
	"github.com/nopper/wikibench/internal/config"
)

func newReportCmd(g *globals) *cobra.Command {
	opts := config.DefaultReportOptions()

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Score cached answers and print one table per experiment",
		Long: `Report compares the cached answers of every annotator with the gold
datasets and prints micro (μP, μR, μF1) and macro (P, R, F1) scores.

With --best, predictions are filtered by the named score. A fixed
--threshold is applied as given; otherwise the threshold maximizing
--optimize is searched on a grid of 129 points between 0 and 1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}

			format, err := bench.ParseFormat(opts.TableFormat)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			reporter, err := bench.NewReporter(opts, out, g.logger, g.workers)
			if err != nil {
				return err
			}

			tables, err := reporter.Report(cfg)
			if err != nil {
				return err
			}
			for _, t := range tables {
				if err := bench.Render(out, t, format); err != nil {
					return err
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.Strong, "strong", "s", opts.Strong, "Use strong mention match")
	f.StringVarP(&opts.Best, "best", "b", opts.Best, "Threshold predictions on this score (confidence or coherence)")
	f.Float64Var(&opts.Threshold, "threshold", opts.Threshold, "Fixed threshold, requires --best")
	f.StringVar(&opts.Optimize, "optimize", opts.Optimize, "Statistic maximized by the threshold search")
	f.StringVar(&opts.TableFormat, "tablefmt", opts.TableFormat, "Table format: simple, plain, markdown, rounded or ascii")
	f.BoolVar(&opts.Recap, "recap", opts.Recap, "Print a summary line for each document")
	f.BoolVar(&opts.Detailed, "detailed", opts.Detailed, "Print every classified mention of each document")
	f.StringVar(&opts.Slice, "slice", opts.Slice, "Only score gold instances start:end")
	return cmd
}
