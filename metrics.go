package wikibench

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// Counts is a confusion table. TN is never produced by matching; it is
// carried for callers that supply it.
type Counts struct {
	TP int
	FP int
	FN int
	TN int
}

// Add returns the element-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		TP: c.TP + o.TP,
		FP: c.FP + o.FP,
		FN: c.FN + o.FN,
		TN: c.TN + o.TN,
	}
}

// Total returns the number of gold items, TP + FN.
func (c Counts) Total() int {
	return c.TP + c.FN
}

// Precision returns TP/(TP+FP), or 0 when nothing was predicted.
func (c Counts) Precision() float64 {
	if c.TP+c.FP == 0 {
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FP)
}

// Recall returns TP/(TP+FN), or 0 when there was nothing to find.
func (c Counts) Recall() float64 {
	if c.TP+c.FN == 0 {
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FN)
}

// F1 returns the harmonic mean of precision and recall, or 0 when both are 0.
func (c Counts) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Metrics accumulates counts over many documents.
//
// The embedded Counts hold the pooled totals, so Precision, Recall and F1
// are micro averages. The Macro methods average the per-document values.
type Metrics struct {
	Counts

	docs []Counts
}

// NewMetrics returns an empty accumulator.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Push adds the counts of one document.
func (m *Metrics) Push(c Counts) {
	m.Counts = m.Counts.Add(c)
	m.docs = append(m.docs, c)
}

// Len returns the number of documents pushed.
func (m *Metrics) Len() int {
	return len(m.docs)
}

// HasMacro reports whether any per-document counts were pushed.
func (m *Metrics) HasMacro() bool {
	return len(m.docs) > 0
}

// Documents returns a copy of the per-document counts in push order.
func (m *Metrics) Documents() []Counts {
	return slices.Clone(m.docs)
}

// Clone returns a deep copy.
func (m *Metrics) Clone() *Metrics {
	return &Metrics{Counts: m.Counts, docs: slices.Clone(m.docs)}
}

// MacroPrecision is the mean per-document precision.
func (m *Metrics) MacroPrecision() float64 {
	return m.macro(Counts.Precision)
}

// MacroRecall is the mean per-document recall.
func (m *Metrics) MacroRecall() float64 {
	return m.macro(Counts.Recall)
}

// MacroF1 is the mean per-document F1.
func (m *Metrics) MacroF1() float64 {
	return m.macro(Counts.F1)
}

// macro averages f over documents. Documents without any mention score 0
// and still count in the denominator.
func (m *Metrics) macro(f func(Counts) float64) float64 {
	if len(m.docs) == 0 {
		return 0
	}
	return lo.SumBy(m.docs, f) / float64(len(m.docs))
}

// Value returns the named statistic. Unknown statistics yield 0; use
// ParseStatistic to validate names first.
func (m *Metrics) Value(s Statistic) float64 {
	switch s {
	case StatPrecision:
		return m.Precision()
	case StatRecall:
		return m.Recall()
	case StatF1:
		return m.F1()
	case StatMacroPrecision:
		return m.MacroPrecision()
	case StatMacroRecall:
		return m.MacroRecall()
	case StatMacroF1:
		return m.MacroF1()
	}
	return 0
}

// Summary returns the counts and the micro (and, when available, macro)
// scores on one line.
func (m *Metrics) Summary() string {
	s := fmt.Sprintf("[TOT: %d TP: %d TN: %d FP: %d FN: %d] [micro P: %.3f R: %.3f F1: %.3f]",
		m.Total(), m.TP, m.TN, m.FP, m.FN,
		m.Precision(), m.Recall(), m.F1())
	if m.HasMacro() {
		s += fmt.Sprintf(" [macro P: %.3f R: %.3f F1: %.3f]",
			m.MacroPrecision(), m.MacroRecall(), m.MacroF1())
	}
	return s
}

// Statistic names a score computed by Metrics.
type Statistic string

// Statistics understood by Metrics.Value.
const (
	StatPrecision      Statistic = "precision"
	StatRecall         Statistic = "recall"
	StatF1             Statistic = "f1"
	StatMacroPrecision Statistic = "macro_precision"
	StatMacroRecall    Statistic = "macro_recall"
	StatMacroF1        Statistic = "macro_f1"
)

// ParseStatistic validates a statistic name.
func ParseStatistic(name string) (Statistic, error) {
	s := Statistic(name)
	switch s {
	case StatPrecision, StatRecall, StatF1,
		StatMacroPrecision, StatMacroRecall, StatMacroF1:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatistic, name)
}
