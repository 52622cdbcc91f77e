package wikibench

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrInvariantViolation indicates the matcher produced buckets that
	// disagree with its own tallies. This is a bug, never a data problem
	// to be corrected.
	ErrInvariantViolation = errors.New("wikibench: classification invariant violated")

	// ErrMisalignedInstances indicates gold and predicted instances do not
	// line up by position and ID.
	ErrMisalignedInstances = errors.New("wikibench: gold and predicted instances are misaligned")

	// ErrUnknownPolicy indicates an unrecognized matching policy name.
	ErrUnknownPolicy = errors.New("wikibench: unknown matching policy")

	// ErrUnknownTask indicates an unrecognized experiment task name.
	ErrUnknownTask = errors.New("wikibench: unknown task")

	// ErrUnknownStatistic indicates an unrecognized statistic name.
	ErrUnknownStatistic = errors.New("wikibench: unknown statistic")
)
