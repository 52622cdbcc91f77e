// Package mention defines the data shared by datasets, annotators and the
// scoring engine: spans, entity mentions, document instances and datasets.
package mention

import (
	"errors"
	"fmt"
)

// Sentinel errors for malformed mention data.
var (
	// ErrInvalidSpan indicates a span whose end precedes its start.
	ErrInvalidSpan = errors.New("mention: span end before start")

	// ErrUnknownScore indicates an unrecognized confidence attribute name.
	ErrUnknownScore = errors.New("mention: unknown score attribute")
)

// Span is a half-open character range [Start, End).
type Span struct {
	Start int
	End   int
}

// NewSpan returns the span [start, end).
func NewSpan(start, end int) (Span, error) {
	if end < start {
		return Span{}, fmt.Errorf("%w: [%d, %d)", ErrInvalidSpan, start, end)
	}
	return Span{Start: start, End: end}, nil
}

// Len returns the number of characters covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlap returns the number of characters shared by s and o.
func (s Span) Overlap(o Span) int {
	return max(0, min(s.End, o.End)-max(s.Start, o.Start))
}

// Overlaps reports whether s and o share at least one character.
func (s Span) Overlaps(o Span) bool {
	return s.Overlap(o) > 0
}

// Matches reports whether s and o cover exactly the same range.
func (s Span) Matches(o Span) bool {
	return s.Start == o.Start && s.End == o.End
}

// Contains reports whether o lies entirely inside s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d, %d)", s.Start, s.End)
}
