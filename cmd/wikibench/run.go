package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nopper/wikibench"
	"github.com/nopper/wikibench/internal/annotator"
	"github.com/nopper/wikibench/internal/config"
	"github.com/nopper/wikibench/internal/dataset"
	"github.com/nopper/wikibench/mention"
)

func newRunCmd(g *globals) *cobra.Command {
	var slice string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Annotate every dataset with every annotator and cache the answers",
		Long: `Run sends each instance of each configured dataset to each configured
annotator, for every experiment, and saves the answers under
<experiment file>/<dataset>/<annotator alias>. Instances already answered
are skipped, so an interrupted run can be resumed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			start, end, err := config.ParseSlice(slice)
			if err != nil {
				return err
			}

			runner := annotator.NewRunner(g.logger)
			for _, d := range cfg.Datasets {
				ds, err := dataset.Open(d.File)
				if err != nil {
					return err
				}
				ds = ds.Slice(start, end)
				ds.Name = d.Name

				for _, exp := range cfg.Experiments {
					task, err := exp.Task()
					if err != nil {
						return err
					}
					for _, a := range cfg.Annotators {
						dir := filepath.Join(exp.File, d.Name, a.Alias)
						if err := g.runAnnotator(cmd.Context(), runner, task, a, ds, dir); err != nil {
							return fmt.Errorf("%s on %s for %s: %w", a.Alias, d.Name, exp.Name, err)
						}
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&slice, "slice", "s", "", "Only run instances start:end of each dataset")
	return cmd
}

func (g *globals) runAnnotator(ctx context.Context, runner *annotator.Runner, task wikibench.Task, a config.Annotator, ds *mention.Dataset, dir string) error {
	g.logger.Info("running",
		zap.Stringer("task", task),
		zap.String("dataset", ds.Name),
		zap.String("annotator", a.Alias),
	)

	pool, err := annotator.NewPool(g.workers, func() (annotator.Annotator, error) {
		return annotator.New(a.Name, a.Configuration, g.logger)
	})
	if err != nil {
		return err
	}
	defer func() { _ = pool.Close() }()

	stats, err := runner.Run(ctx, task, pool, ds, dir)
	if err != nil {
		return err
	}

	g.logger.Info("cached answers",
		zap.String("annotator", a.Alias),
		zap.Int("processed", stats.Processed),
		zap.Int("cached", stats.Cached),
		zap.Int("failed", stats.Failed),
	)
	return nil
}
