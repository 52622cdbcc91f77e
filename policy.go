package wikibench

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nopper/wikibench/mention"
)

// Validator decides whether a predicted mention is an acceptable answer for
// a gold mention whose span it matched.
type Validator func(predicted, gold *mention.Mention) bool

// AnyEntity accepts every span match.
func AnyEntity(_, _ *mention.Mention) bool {
	return true
}

// SameEntity accepts a prediction naming the gold entity, by id or by title.
// Two undetermined entities (NoEntity, empty title) name the same entity.
func SameEntity(predicted, gold *mention.Mention) bool {
	return predicted.EntityID == gold.EntityID || predicted.Title == gold.Title
}

// Policy is a complete matching configuration for Compare.
type Policy struct {
	Name string

	// Valid checks entity identity once spans matched. Nil means AnyEntity.
	Valid Validator

	// Strong requires identical spans; otherwise any overlap matches.
	Strong bool

	// CountExcess counts predictions overlapping no gold mention as false
	// positives. Disambiguation ignores them.
	CountExcess bool
}

// related reports whether two spans are matched under the policy. A weak
// match also accepts identical empty spans so that it stays a superset of
// the strong match.
func (p Policy) related(a, b mention.Span) bool {
	if p.Strong {
		return a.Matches(b)
	}
	return a.Overlaps(b) || a.Matches(b)
}

func (p Policy) validator() Validator {
	if p.Valid == nil {
		return AnyEntity
	}
	return p.Valid
}

func (p Policy) String() string {
	return p.Name
}

// Named policies.
var (
	SpotWeak           = Policy{Name: "spot-weak", Valid: AnyEntity, Strong: false, CountExcess: true}
	SpotStrong         = Policy{Name: "spot-strong", Valid: AnyEntity, Strong: true, CountExcess: true}
	AnnotateWeak       = Policy{Name: "annotate-weak", Valid: SameEntity, Strong: false, CountExcess: true}
	AnnotateStrong     = Policy{Name: "annotate-strong", Valid: SameEntity, Strong: true, CountExcess: true}
	DisambiguateWeak   = Policy{Name: "disambiguate-weak", Valid: SameEntity, Strong: false, CountExcess: false}
	DisambiguateStrong = Policy{Name: "disambiguate-strong", Valid: SameEntity, Strong: true, CountExcess: false}
)

var policies = []Policy{
	SpotWeak, SpotStrong,
	AnnotateWeak, AnnotateStrong,
	DisambiguateWeak, DisambiguateStrong,
}

// Policies returns the named policies.
func Policies() []Policy {
	return slices.Clone(policies)
}

// PolicyByName looks up a named policy such as "annotate-strong".
func PolicyByName(name string) (Policy, error) {
	for _, p := range policies {
		if p.Name == name {
			return p, nil
		}
	}
	return Policy{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

// Task is the experiment family an annotator is evaluated on.
type Task int

const (
	// TaskSpot evaluates span detection only.
	TaskSpot Task = iota
	// TaskAnnotate evaluates spans and entities (sa2w).
	TaskAnnotate
	// TaskDisambiguate evaluates entities on given spans (d2w).
	TaskDisambiguate
)

// ParseTask maps a task name to a Task. The legacy experiment names sa2w and
// d2w are accepted.
func ParseTask(name string) (Task, error) {
	switch strings.ToLower(name) {
	case "spot":
		return TaskSpot, nil
	case "annotate", "sa2w":
		return TaskAnnotate, nil
	case "disambiguate", "d2w":
		return TaskDisambiguate, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTask, name)
}

// Policy returns the weak or strong policy of the task.
func (t Task) Policy(strong bool) Policy {
	switch t {
	case TaskAnnotate:
		if strong {
			return AnnotateStrong
		}
		return AnnotateWeak
	case TaskDisambiguate:
		if strong {
			return DisambiguateStrong
		}
		return DisambiguateWeak
	default:
		if strong {
			return SpotStrong
		}
		return SpotWeak
	}
}

func (t Task) String() string {
	switch t {
	case TaskAnnotate:
		return "annotate"
	case TaskDisambiguate:
		return "disambiguate"
	default:
		return "spot"
	}
}
