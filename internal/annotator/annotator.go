// Package annotator runs entity annotators over datasets and caches their
// output in the TSV results layout read by the reporting pipeline.
package annotator

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/nopper/wikibench"
	"github.com/nopper/wikibench/mention"
)

// Sentinel errors.
var (
	ErrUnknownKind = errors.New("annotator: unknown kind")
	ErrUnsupported = errors.New("annotator: unsupported task")
	ErrPoolClosed  = errors.New("annotator: pool is closed")
)

// Annotator finds entity mentions in a document.
//
// Spot returns spans only. Annotate returns spans and entities.
// Disambiguate assigns entities to the spans already present in the
// instance.
type Annotator interface {
	Spot(ctx context.Context, in *mention.Instance) ([]*mention.Mention, error)
	Annotate(ctx context.Context, in *mention.Instance) ([]*mention.Mention, error)
	Disambiguate(ctx context.Context, in *mention.Instance) ([]*mention.Mention, error)
}

// Factory builds an annotator from its configuration entries.
type Factory func(conf map[string]string, logger *zap.Logger) (Annotator, error)

var factories = map[string]Factory{
	"oracle": newOracle,
	"replay": newReplay,
}

// Kinds returns the registered annotator kinds, sorted.
func Kinds() []string {
	kinds := lo.Keys(factories)
	slices.Sort(kinds)
	return kinds
}

// New builds an annotator of the given kind.
func New(kind string, conf map[string]string, logger *zap.Logger) (Annotator, error) {
	factory, ok := factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownKind, kind, Kinds())
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	a, err := factory(conf, logger.With(zap.String("annotator", kind)))
	if err != nil {
		return nil, fmt.Errorf("creating %s annotator: %w", kind, err)
	}
	return a, nil
}

// Do calls the method of a matching task.
func Do(ctx context.Context, a Annotator, task wikibench.Task, in *mention.Instance) ([]*mention.Mention, error) {
	switch task {
	case wikibench.TaskSpot:
		return a.Spot(ctx, in)
	case wikibench.TaskAnnotate:
		return a.Annotate(ctx, in)
	case wikibench.TaskDisambiguate:
		return a.Disambiguate(ctx, in)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, task)
}
