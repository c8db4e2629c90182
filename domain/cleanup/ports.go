package cleanup

import "context"

// Phase is a stage of a cleanup run. Phases only move forward.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseMeasuring
	PhaseReporting
	PhaseExecuting
	PhaseSummarizing
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseMeasuring:
		return "measuring"
	case PhaseReporting:
		return "reporting"
	case PhaseExecuting:
		return "executing"
	case PhaseSummarizing:
		return "summarizing"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Confirmer asks the operator a yes/no question.
// This is a port that can be implemented by different infrastructure adapters
type Confirmer interface {
	// Confirm returns true only for an explicit affirmative answer. An
	// operator interrupt is reported as ErrInterrupted.
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Presenter renders run progress for the operator. Calls come from a single
// goroutine, except Measured which may be called concurrently.
type Presenter interface {
	PhaseStarted(p Phase)
	Measured(t Target, size SizeResult)
	ShowReport(r Report)
	TargetStarted(t Target, size SizeResult)
	TargetFinished(e Entry)
	ShowSummary(s *RunSummary)
}
