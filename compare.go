package wikibench

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/nopper/wikibench/mention"
)

// bucket is an insertion-ordered set of mentions keyed by pointer.
type bucket struct {
	seen  map[*mention.Mention]struct{}
	items []*mention.Mention
}

func newBucket() *bucket {
	return &bucket{seen: make(map[*mention.Mention]struct{})}
}

func (b *bucket) add(m *mention.Mention) {
	if _, ok := b.seen[m]; ok {
		return
	}
	b.seen[m] = struct{}{}
	b.items = append(b.items, m)
}

func (b *bucket) has(m *mention.Mention) bool {
	_, ok := b.seen[m]
	return ok
}

// without returns the items not present in other.
func (b *bucket) without(other *bucket) []*mention.Mention {
	return lo.Filter(b.items, func(m *mention.Mention, _ int) bool {
		return !other.has(m)
	})
}

// Compare classifies the predicted mentions of one document against its gold
// mentions under policy p.
//
// Gold mentions with no valid prediction are missing. A prediction is
// correct when it validates against any matched gold mention; it is an error
// when it matched exactly one gold mention and failed validation (its
// MismatchTitle is set to that gold title); otherwise it is excess, unless it
// matched nothing and p.CountExcess is false, in which case it is ignored.
//
// Compare fails with ErrInvariantViolation if the buckets disagree with the
// counts tallied while filling them, for instance when one pointer appears
// twice in the same input slice.
func Compare(gold, predicted []*mention.Mention, p Policy) (*Result, error) {
	valid := p.validator()

	correct := newBucket()
	errs := newBucket()
	missing := newBucket()
	excess := newBucket()

	// Number of gold mentions each prediction matched but failed to validate.
	mismatches := make(map[*mention.Mention]int)

	var tp, fp, fn int

	for _, g := range gold {
		candidates := lo.Filter(predicted, func(m *mention.Mention, _ int) bool {
			return p.related(m.Span, g.Span)
		})
		slices.SortStableFunc(candidates, byStartLen)

		found := false
		for _, c := range candidates {
			if valid(c, g) {
				found = true
			} else {
				mismatches[c]++
			}
		}

		if found {
			tp++
		} else {
			fn++
			missing.add(g)
		}
	}

	for _, m := range predicted {
		candidates := lo.Filter(gold, func(g *mention.Mention, _ int) bool {
			return p.related(m.Span, g.Span)
		})
		slices.SortStableFunc(candidates, byStartEnd)

		found := false
		for _, g := range candidates {
			if valid(m, g) {
				found = true
				correct.add(m)
			}
		}
		if found {
			continue
		}

		if mismatches[m] == 1 && len(candidates) > 0 {
			m.MismatchTitle = candidates[0].Title
			errs.add(m)
		}

		if len(candidates) > 0 || p.CountExcess {
			fp++
			excess.add(m)
		}
	}

	r := &Result{
		Correct: sortMentions(correct.items),
		Error:   sortMentions(errs.items),
		Missing: sortMentions(missing.items),
		Excess:  sortMentions(excess.without(errs)),
		counts:  Counts{TP: tp, FP: fp, FN: fn},
	}

	if got := len(r.Error) + len(r.Excess); got != fp {
		return nil, fmt.Errorf("%w: %d error + %d excess mentions for %d false positives",
			ErrInvariantViolation, len(r.Error), len(r.Excess), fp)
	}
	if len(r.Missing) != fn {
		return nil, fmt.Errorf("%w: %d missing mentions for %d false negatives",
			ErrInvariantViolation, len(r.Missing), fn)
	}

	return r, nil
}

func byStartLen(a, b *mention.Mention) int {
	return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.Len(), b.Len()))
}

func byStartEnd(a, b *mention.Mention) int {
	return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
}

// sortMentions orders by span, then by entity, so that bucket contents do not
// depend on the order of the inputs.
func sortMentions(ms []*mention.Mention) []*mention.Mention {
	slices.SortStableFunc(ms, func(a, b *mention.Mention) int {
		return cmp.Or(
			byStartEnd(a, b),
			cmp.Compare(a.EntityID, b.EntityID),
			cmp.Compare(a.Title, b.Title),
			cmp.Compare(a.Spot, b.Spot),
		)
	})
	return ms
}
