package annotator

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nopper/wikibench"
	"github.com/nopper/wikibench/internal/dataset"
	"github.com/nopper/wikibench/mention"
)

// Stats summarizes one run.
type Stats struct {
	Processed int
	Cached    int
	Failed    int
}

// Runner annotates the instances of a dataset that have no cached output
// yet and saves the answers as they arrive.
type Runner struct {
	logger *zap.Logger
}

// NewRunner creates a Runner logging to logger.
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger}
}

// Run sends every pending instance of ds to an annotator of pool for task
// and writes the answers under dir. Instances are processed by up to
// pool.Size() workers. An annotator error is logged and the instance is left
// pending for the next run. Run stops starting new instances once ctx is
// done and returns the context error.
func (r *Runner) Run(ctx context.Context, task wikibench.Task, pool *Pool, ds *mention.Dataset, dir string) (Stats, error) {
	pending := lo.Filter(ds.Instances, func(in *mention.Instance, _ int) bool {
		return !dataset.HasBeenProcessed(dir, in.ID)
	})
	stats := Stats{Cached: len(ds.Instances) - len(pending)}

	log := r.logger.With(zap.Stringer("task", task), zap.String("dataset", ds.Name), zap.String("directory", dir))
	log.Info("running annotator", zap.Int("pending", len(pending)), zap.Int("cached", stats.Cached))

	var processed, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pool.Size())

	for _, in := range pending {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			a, err := pool.Acquire(gctx)
			if err != nil {
				return err
			}
			defer pool.Release(a)

			mentions, err := Do(gctx, a, task, in)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				log.Error("processing instance", zap.Int("instance", in.ID), zap.Error(err))
				return nil
			}

			if err := dataset.SaveMentions(dir, in.ID, mentions); err != nil {
				return fmt.Errorf("instance %d: %w", in.ID, err)
			}
			processed.Add(1)
			log.Debug("instance annotated", zap.Int("instance", in.ID), zap.Int("mentions", len(mentions)))
			return nil
		})
	}

	err := g.Wait()
	stats.Processed = int(processed.Load())
	stats.Failed = int(failed.Load())

	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return stats, err
	}

	log.Info("annotator done",
		zap.Int("processed", stats.Processed),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}
