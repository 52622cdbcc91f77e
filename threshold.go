package wikibench

import (
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nopper/wikibench/mention"
)

// thresholdSteps is the resolution of the threshold grid.
const thresholdSteps = 128

// Thresholds returns the sweep grid {i/128 : i = 0..128}, ascending.
func Thresholds() []float64 {
	grid := make([]float64, thresholdSteps+1)
	for i := range grid {
		grid[i] = float64(i) / thresholdSteps
	}
	return grid
}

// FilterByScore keeps, in every instance, the mentions whose selected score
// is at least threshold. The returned instances are new; the mentions are
// shared with the input.
func FilterByScore(instances []*mention.Instance, s mention.Score, threshold float64) []*mention.Instance {
	return lo.Map(instances, func(in *mention.Instance, _ int) *mention.Instance {
		if in == nil {
			return nil
		}
		return in.WithMentions(lo.Filter(in.Mentions, func(m *mention.Mention, _ int) bool {
			return m.Score(s) >= threshold
		}))
	})
}

// cloneMentions deep-copies every mention so that concurrent comparisons
// do not race on MismatchTitle.
func cloneMentions(instances []*mention.Instance) []*mention.Instance {
	return lo.Map(instances, func(in *mention.Instance, _ int) *mention.Instance {
		if in == nil {
			return nil
		}
		return in.WithMentions(lo.Map(in.Mentions, func(m *mention.Mention, _ int) *mention.Mention {
			return m.Clone()
		}))
	})
}

// SweepPoint is the outcome of evaluating one threshold.
type SweepPoint struct {
	Threshold float64
	Value     float64
	Metrics   *Metrics
}

// Sweep evaluates every threshold of the grid, filtering predictions on
// score s and reading statistic stat. Points are returned in ascending
// threshold order regardless of the order workers finish in.
func (e *Evaluator) Sweep(gold, predicted []*mention.Instance, s mention.Score, stat Statistic) ([]SweepPoint, error) {
	if _, err := ParseStatistic(string(stat)); err != nil {
		return nil, err
	}

	grid := Thresholds()
	points := make([]SweepPoint, len(grid))

	var g errgroup.Group
	g.SetLimit(e.workers)

	for i, threshold := range grid {
		g.Go(func() error {
			filtered := cloneMentions(FilterByScore(predicted, s, threshold))
			m, err := e.evaluate(gold, filtered, nil)
			if err != nil {
				return fmt.Errorf("threshold %.4f: %w", threshold, err)
			}
			points[i] = SweepPoint{Threshold: threshold, Value: m.Value(stat), Metrics: m}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

// BestPoint scans points in order and keeps the last one whose value is at
// least the best seen so far, starting from threshold 0 with value 0. On
// ties the later, higher threshold wins.
func BestPoint(points []SweepPoint) SweepPoint {
	var best SweepPoint
	for _, p := range points {
		if p.Value >= best.Value {
			best = p
		}
	}
	return best
}

// FindBestThreshold sweeps the grid and returns the threshold maximizing
// stat together with the predictions filtered at that threshold.
func (e *Evaluator) FindBestThreshold(gold, predicted []*mention.Instance, s mention.Score, stat Statistic) (float64, []*mention.Instance, error) {
	points, err := e.Sweep(gold, predicted, s, stat)
	if err != nil {
		return 0, nil, err
	}

	best := BestPoint(points)
	e.logger.Info("best threshold",
		zap.Stringer("score", s),
		zap.String("statistic", string(stat)),
		zap.Float64("threshold", best.Threshold),
		zap.Float64("value", best.Value),
	)

	return best.Threshold, FilterByScore(predicted, s, best.Threshold), nil
}
