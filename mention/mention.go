package mention

import (
	"fmt"
	"slices"
	"strings"
)

// NoEntity is the EntityID of a mention that does not resolve to an entity.
const NoEntity = -1

// Mention is a span of text labelled with an entity.
//
// Mentions are compared by pointer identity: the scoring engine partitions
// the very same *Mention values it receives.
type Mention struct {
	Span

	// Spot is the surface text covered by the mention. Some annotators
	// leave it empty.
	Spot string

	// EntityID identifies the referenced entity, NoEntity when undetermined.
	EntityID int

	// Title is the canonical name of the entity; empty means unknown.
	Title string

	// Candidates lists entity ids the spot may resolve to.
	Candidates []int

	// Confidence is the disambiguation score.
	Confidence float64

	// Coherence is the ranking/coherence score.
	Coherence float64

	// MismatchTitle is written by the matcher when the mention hit a gold
	// span but named a different entity: it holds the gold title.
	MismatchTitle string
}

// New returns a mention with both scores set to 1.
func New(spot string, start, end int, title string, entityID int) *Mention {
	return &Mention{
		Span:       Span{Start: start, End: end},
		Spot:       spot,
		EntityID:   entityID,
		Title:      title,
		Confidence: 1,
		Coherence:  1,
	}
}

// Validate checks the fields a collaborator must get right.
func (m *Mention) Validate() error {
	if m.End < m.Start {
		return fmt.Errorf("%w: %q at [%d, %d)", ErrInvalidSpan, m.Spot, m.Start, m.End)
	}
	return nil
}

// HasCandidate reports whether id is one of the mention's candidate entities.
func (m *Mention) HasCandidate(id int) bool {
	return slices.Contains(m.Candidates, id)
}

// Score returns the confidence value selected by s.
func (m *Mention) Score(s Score) float64 {
	if s == Coherence {
		return m.Coherence
	}
	return m.Confidence
}

// Clone returns a copy that does not share the Candidates slice.
func (m *Mention) Clone() *Mention {
	c := *m
	c.Candidates = slices.Clone(m.Candidates)
	return &c
}

func (m *Mention) String() string {
	return fmt.Sprintf("Mention(spot=%s, start=%d, end=%d, title=%s, wid=%d, score1=%.3f, score2=%.3f)",
		m.Spot, m.Start, m.End, m.Title, m.EntityID, m.Confidence, m.Coherence)
}

// Score selects one of the two confidence values carried by a mention.
type Score int

const (
	// Confidence selects Mention.Confidence.
	Confidence Score = iota
	// Coherence selects Mention.Coherence.
	Coherence
)

// ParseScore maps an attribute name to a Score.
func ParseScore(name string) (Score, error) {
	switch strings.ToLower(name) {
	case "confidence", "primary", "score1":
		return Confidence, nil
	case "coherence", "secondary", "score2":
		return Coherence, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScore, name)
}

func (s Score) String() string {
	if s == Coherence {
		return "coherence"
	}
	return "confidence"
}
