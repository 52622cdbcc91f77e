package wikibench

import (
	"runtime"

	"go.uber.org/zap"
)

// Option configures an Evaluator.
type Option func(*config)

// Observer receives the classification of every instance scored by
// Evaluator.Evaluate. It is not called during threshold sweeps.
type Observer func(InstanceResult)

type config struct {
	logger   *zap.Logger
	workers  int
	observer Observer
}

func defaultConfig() config {
	return config{
		logger:  zap.NewNop(),
		workers: runtime.NumCPU(),
	}
}

// WithLogger sets the logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithWorkers sets how many thresholds a sweep evaluates in parallel
// (default: runtime.NumCPU()).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithObserver registers a callback for per-instance results.
func WithObserver(o Observer) Option {
	return func(c *config) {
		c.observer = o
	}
}
