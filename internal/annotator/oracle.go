package annotator

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/nopper/wikibench/mention"
)

// oracle answers with the mentions already attached to the instance, which
// for a gold dataset is the reference annotation. It bounds what a report
// can show and exercises the pipeline end to end.
//
// The "drop" configuration entry, when set to n > 0, omits every n-th
// mention.
type oracle struct {
	drop   int
	logger *zap.Logger
}

func newOracle(conf map[string]string, logger *zap.Logger) (Annotator, error) {
	o := &oracle{logger: logger}
	if v, ok := conf["drop"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("drop: invalid value %q", v)
		}
		o.drop = n
	}
	return o, nil
}

func (o *oracle) answer(in *mention.Instance) []*mention.Mention {
	kept := lo.Filter(in.Mentions, func(_ *mention.Mention, i int) bool {
		return o.drop == 0 || (i+1)%o.drop != 0
	})
	o.logger.Debug("oracle answer",
		zap.Int("instance", in.ID),
		zap.Int("mentions", len(kept)),
		zap.Int("dropped", len(in.Mentions)-len(kept)),
	)
	return lo.Map(kept, func(m *mention.Mention, _ int) *mention.Mention {
		c := m.Clone()
		c.MismatchTitle = ""
		return c
	})
}

func (o *oracle) Spot(ctx context.Context, in *mention.Instance) ([]*mention.Mention, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return lo.Map(o.answer(in), func(m *mention.Mention, _ int) *mention.Mention {
		m.EntityID = mention.NoEntity
		m.Title = ""
		return m
	}), nil
}

func (o *oracle) Annotate(ctx context.Context, in *mention.Instance) ([]*mention.Mention, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return o.answer(in), nil
}

func (o *oracle) Disambiguate(ctx context.Context, in *mention.Instance) ([]*mention.Mention, error) {
	return o.Annotate(ctx, in)
}
