package cleanup

import "time"

// Entry records what happened to one target during a run
type Entry struct {
	Name        string
	Description string
	Size        SizeResult
	Outcome     Outcome
	FreedBytes  int64
}

// RunSummary aggregates the pre-measured sizes and execution outcomes of a run
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Entries    []Entry
	FreedBytes int64
}

// NewRunSummary creates an empty summary for the given run
func NewRunSummary(runID string, startedAt time.Time) *RunSummary {
	return &RunSummary{
		RunID:     runID,
		StartedAt: startedAt,
	}
}

// Record appends the outcome for a target. Only a successful cleanup of a
// target measured as Bytes(n>0) adds to the freed total, and the amount is
// the pre-measured size.
func (s *RunSummary) Record(t Target, size SizeResult, outcome Outcome) Entry {
	entry := Entry{
		Name:        t.Name(),
		Description: t.Description(),
		Size:        size,
		Outcome:     outcome,
	}

	if n, ok := size.Countable(); ok && n > 0 && outcome.Succeeded() {
		entry.FreedBytes = n
		s.FreedBytes += n
	}

	s.Entries = append(s.Entries, entry)
	return entry
}

// EstimatedBytes is the sum of every countable pre-measured size
func (s *RunSummary) EstimatedBytes() int64 {
	sizes := make([]SizeResult, len(s.Entries))
	for i, e := range s.Entries {
		sizes[i] = e.Size
	}
	return SumCountable(sizes...)
}

// Count returns how many entries ended with the given outcome kind
func (s *RunSummary) Count(kind OutcomeKind) int {
	n := 0
	for _, e := range s.Entries {
		if e.Outcome.Kind == kind {
			n++
		}
	}
	return n
}

// Entry looks up the entry for a target by name
func (s *RunSummary) Entry(name string) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Duration is the wall time between start and finish
func (s *RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
