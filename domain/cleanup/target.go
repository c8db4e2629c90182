package cleanup

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// SizeFunc measures what a target would free. It must not modify the filesystem.
type SizeFunc func(ctx context.Context) (SizeResult, error)

// CleanFunc deletes a target's data. A nil error means no errors were observed.
type CleanFunc func(ctx context.Context) error

// Target is one addressable cleanup unit.
// This is a port that can be implemented by different infrastructure adapters
type Target interface {
	Name() string
	Description() string
	// Measure computes and stores the current size. It never fails; faults
	// are reported as an Unmeasured result.
	Measure(ctx context.Context) SizeResult
	// Clean deletes the target's data. It never fails; faults are reported
	// as a PartialFailure outcome.
	Clean(ctx context.Context) Outcome
	// LastSize returns the result of the most recent Measure call
	LastSize() SizeResult
}

// Task implements Target from a size function and a clean function
type Task struct {
	name        string
	description string
	sizeFn      SizeFunc
	cleanFn     CleanFunc

	mu   sync.Mutex
	last SizeResult
}

// NewTask creates a task. A nil sizeFn always measures Bytes(0) and a nil
// cleanFn is a no-op. Functions may return ErrToolUnavailable to signal that
// there is nothing to do.
func NewTask(name, description string, sizeFn SizeFunc, cleanFn CleanFunc) *Task {
	return &Task{
		name:        name,
		description: description,
		sizeFn:      sizeFn,
		cleanFn:     cleanFn,
		last:        Unmeasured("not measured yet"),
	}
}

func (t *Task) Name() string        { return t.name }
func (t *Task) Description() string { return t.description }

// Measure implements Target
func (t *Task) Measure(ctx context.Context) (result SizeResult) {
	defer func() {
		if r := recover(); r != nil {
			result = Unmeasured(fmt.Sprintf("size check panicked: %v", r))
		}
		t.store(result)
	}()

	if t.sizeFn == nil {
		return Bytes(0)
	}

	size, err := t.sizeFn(ctx)
	if errors.Is(err, ErrToolUnavailable) {
		return Bytes(0)
	}
	if err != nil {
		return Unmeasured(fmt.Sprintf("size check failed: %v", err))
	}
	return size
}

// Clean implements Target
func (t *Task) Clean(ctx context.Context) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = PartialFailure(fmt.Sprintf("cleanup panicked: %v", r))
		}
	}()

	if t.cleanFn == nil {
		return Success()
	}

	if err := t.cleanFn(ctx); err != nil && !errors.Is(err, ErrToolUnavailable) {
		return PartialFailure(err.Error())
	}
	return Success()
}

// LastSize implements Target
func (t *Task) LastSize() SizeResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

func (t *Task) store(result SizeResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = result
}

// Ensure Task implements Target
var _ Target = (*Task)(nil)
