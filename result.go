package wikibench

import (
	"fmt"
	"io"
	"slices"

	"github.com/samber/lo"

	"github.com/nopper/wikibench/mention"
)

// Result is the classification of one document.
//
// Correct, Error and Excess hold predicted mentions, Missing holds gold
// mentions. Each slice is sorted by (Start, End).
type Result struct {
	Correct []*mention.Mention
	Error   []*mention.Mention
	Missing []*mention.Mention
	Excess  []*mention.Mention

	// counts tallied from the gold side while matching
	counts Counts
}

// Counts returns the confusion counts pushed into a Metrics accumulator.
//
// TP counts gold mentions with at least one valid prediction, so TP+FN is
// always the number of gold mentions. Under weak matching one prediction may
// validate several gold mentions, making TP larger than len(Correct).
func (r *Result) Counts() Counts {
	return r.counts
}

// TP returns the number of correct predictions.
func (r *Result) TP() int { return len(r.Correct) }

// FP returns the number of wrong or excess predictions.
func (r *Result) FP() int { return len(r.Error) + len(r.Excess) }

// FN returns the number of missing gold mentions.
func (r *Result) FN() int { return len(r.Missing) }

// Total returns TP + FN.
func (r *Result) Total() int { return r.TP() + r.FN() }

func (r *Result) bucketCounts() Counts {
	return Counts{TP: r.TP(), FP: r.FP(), FN: r.FN()}
}

// Precision is computed on the bucket sizes.
func (r *Result) Precision() float64 { return r.bucketCounts().Precision() }

// Recall is computed on the bucket sizes.
func (r *Result) Recall() float64 { return r.bucketCounts().Recall() }

// F1 is computed on the bucket sizes.
func (r *Result) F1() float64 { return r.bucketCounts().F1() }

// Recoverable counts missing gold mentions whose entity was predicted
// correctly somewhere else in the document. With strict set, the spot text
// must match as well.
func (r *Result) Recoverable(strict bool) int {
	return lo.CountBy(r.Missing, func(m *mention.Mention) bool {
		if strict {
			return r.recoveredBySpot(m)
		}
		return r.recoveredByEntity(m)
	})
}

func (r *Result) recoveredByEntity(m *mention.Mention) bool {
	return lo.ContainsBy(r.Correct, func(c *mention.Mention) bool {
		return c.EntityID == m.EntityID
	})
}

func (r *Result) recoveredBySpot(m *mention.Mention) bool {
	return lo.ContainsBy(r.Correct, func(c *mention.Mention) bool {
		return c.EntityID == m.EntityID && c.Spot == m.Spot
	})
}

// CorrectAvg returns the mean coherence of correct predictions.
func (r *Result) CorrectAvg() float64 { return meanCoherence(r.Correct) }

// ErrorAvg returns the mean coherence of mismatched predictions.
func (r *Result) ErrorAvg() float64 { return meanCoherence(r.Error) }

// ExcessAvg returns the mean coherence of excess predictions.
func (r *Result) ExcessAvg() float64 { return meanCoherence(r.Excess) }

func meanCoherence(ms []*mention.Mention) float64 {
	if len(ms) == 0 {
		return 0
	}
	return lo.SumBy(ms, func(m *mention.Mention) float64 { return m.Coherence }) / float64(len(ms))
}

// Summary returns a one-line recap of the document.
func (r *Result) Summary() string {
	return fmt.Sprintf("TOT: %3d TP: %3d FN: %3d FP: %3d P: %.3f R: %.3f F1: %.3f CorrectAvg: %f ErrorAvg: %f ExcessAvg: %f",
		r.Total(), r.TP(), r.FN(), r.FP(),
		r.Precision(), r.Recall(), r.F1(),
		r.CorrectAvg(), r.ErrorAvg(), r.ExcessAvg())
}

// Record labels.
const (
	LabelOK          = "ok"
	LabelError       = "error"
	LabelMissing     = "missing"
	LabelEasyRecover = "easy-recover"
	LabelHardRecover = "hard-recover"
	LabelExcess      = "excess"
)

// Record is one line of a detailed report.
type Record struct {
	Label   string
	Mention *mention.Mention
}

// Title returns the title shown for the record; errors show "got!=want".
func (rec Record) Title() string {
	if rec.Label == LabelError {
		return rec.Mention.Title + "!=" + rec.Mention.MismatchTitle
	}
	return rec.Mention.Title
}

// Records labels every classified mention and orders them by span.
// Missing mentions are relabelled easy-recover when a correct prediction has
// the same entity and spot, or hard-recover when only the entity matches.
func (r *Result) Records() []Record {
	label := func(lbl string) func(*mention.Mention, int) Record {
		return func(m *mention.Mention, _ int) Record { return Record{Label: lbl, Mention: m} }
	}

	records := lo.Map(r.Correct, label(LabelOK))
	records = append(records, lo.Map(r.Error, label(LabelError))...)
	for _, m := range r.Missing {
		lbl := LabelMissing
		switch {
		case r.recoveredBySpot(m):
			lbl = LabelEasyRecover
		case r.recoveredByEntity(m):
			lbl = LabelHardRecover
		}
		records = append(records, Record{Label: lbl, Mention: m})
	}
	records = append(records, lo.Map(r.Excess, label(LabelExcess))...)

	slices.SortStableFunc(records, func(a, b Record) int {
		return byStartEnd(a.Mention, b.Mention)
	})
	return records
}

// WriteReport writes a tab-separated audit of the document: one line per
// record followed by a SUM line with tp, fn, fp, precision, recall and F1.
func (r *Result) WriteReport(w io.Writer, doc string) error {
	for _, rec := range r.Records() {
		m := rec.Mention
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\t%.3f\t%.3f\n",
			doc, rec.Label, m.Start, m.End, m.EntityID,
			rec.Title(), m.Spot, m.Confidence, m.Coherence); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	if _, err := fmt.Fprintf(w, "%s\tSUM\t%d\t%d\t%d\t%.3f\t%.3f\t%.3f\n",
		doc, r.TP(), r.FN(), r.FP(), r.Precision(), r.Recall(), r.F1()); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
