package wikibench

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nopper/wikibench/mention"
)

// InstanceResult is the classification of one gold instance.
type InstanceResult struct {
	ID     int
	Result *Result
}

// Evaluator scores aligned gold and predicted instances under one policy.
// It holds no per-run state and is safe for concurrent use as long as the
// observer is.
type Evaluator struct {
	policy   Policy
	logger   *zap.Logger
	workers  int
	observer Observer
}

// New creates an Evaluator for policy p.
func New(p Policy, opts ...Option) *Evaluator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Evaluator{
		policy:   p,
		logger:   cfg.logger,
		workers:  cfg.workers,
		observer: cfg.observer,
	}
}

// Policy returns the matching policy.
func (e *Evaluator) Policy() Policy {
	return e.policy
}

// Evaluate compares every gold instance with the predicted instance at the
// same position and pools the counts into a fresh Metrics.
//
// Predicted instances must carry the same IDs in the same order. A shorter
// predicted slice is allowed: the remaining gold instances count all their
// mentions as false negatives. A longer one, or a differing ID, fails with
// ErrMisalignedInstances.
func (e *Evaluator) Evaluate(gold, predicted []*mention.Instance) (*Metrics, error) {
	return e.evaluate(gold, predicted, e.observer)
}

// EvaluateAt filters predictions on score s at threshold t, then evaluates.
func (e *Evaluator) EvaluateAt(gold, predicted []*mention.Instance, s mention.Score, t float64) (*Metrics, error) {
	return e.Evaluate(gold, FilterByScore(predicted, s, t))
}

func (e *Evaluator) evaluate(gold, predicted []*mention.Instance, observe Observer) (*Metrics, error) {
	if len(predicted) > len(gold) {
		return nil, fmt.Errorf("%w: %d predicted instances for %d gold instances",
			ErrMisalignedInstances, len(predicted), len(gold))
	}

	m := NewMetrics()

	for i, g := range gold {
		if i >= len(predicted) || predicted[i] == nil {
			e.logger.Debug("no prediction for instance", zap.Int("instance", g.ID))
			m.Push(Counts{FN: len(g.Mentions)})
			continue
		}

		p := predicted[i]
		if p.ID != g.ID {
			return nil, fmt.Errorf("%w: position %d holds gold instance %d and predicted instance %d",
				ErrMisalignedInstances, i, g.ID, p.ID)
		}

		r, err := Compare(g.Mentions, p.Mentions, e.policy)
		if err != nil {
			return nil, fmt.Errorf("instance %d: %w", g.ID, err)
		}
		if observe != nil {
			observe(InstanceResult{ID: g.ID, Result: r})
		}
		m.Push(r.Counts())
	}

	return m, nil
}
