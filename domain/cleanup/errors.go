package cleanup

import "errors"

var (
	// ErrToolUnavailable is returned by size helpers when the tool backing a
	// target is not installed. Targets translate it to Bytes(0) / success.
	ErrToolUnavailable = errors.New("tool not installed")

	// ErrDuplicateTarget is returned when two targets share a name
	ErrDuplicateTarget = errors.New("duplicate target name")
)

// ErrInterrupted is returned when the operator aborts a run
var ErrInterrupted = errors.New("run interrupted")
