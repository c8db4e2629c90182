package cleanup

// OutcomeKind tags the variant held by an Outcome
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomePartialFailure
	OutcomeSkipped
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomePartialFailure:
		return "partial-failure"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Skip reasons used by the orchestrator
const (
	SkipEmpty    = "empty"
	SkipDeclined = "declined"
	SkipDryRun   = "dry run"
)

// Outcome is the result of executing (or not executing) one target's cleanup
type Outcome struct {
	Kind   OutcomeKind
	Detail string
}

// Success returns a successful outcome
func Success() Outcome {
	return Outcome{Kind: OutcomeSuccess}
}

// PartialFailure returns an outcome for a cleanup that reported errors
func PartialFailure(detail string) Outcome {
	return Outcome{Kind: OutcomePartialFailure, Detail: detail}
}

// Skipped returns an outcome for a cleanup that was not executed
func Skipped(reason string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Detail: reason}
}

// Succeeded reports whether the cleanup ran without observed errors
func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeSuccess
}
