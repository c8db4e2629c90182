package cleanup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"disk-sweep/domain/cleanup"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrPhaseOrder is returned when an operation would move a run backwards
var ErrPhaseOrder = errors.New("run phase cannot move backwards")

// Service orchestrates one cleanup run: measure every target, report,
// then confirm and clean each target in catalog order, then summarize.
type Service struct {
	confirmer   cleanup.Confirmer
	presenter   cleanup.Presenter
	log         logrus.FieldLogger
	now         func() time.Time
	runID       string
	dryRun      bool
	assumeYes   bool
	concurrency int

	phase   cleanup.Phase
	summary *cleanup.RunSummary
}

// Option is a functional option for configuring Service
type Option func(*Service)

// WithDryRun skips every deletion, recording Skipped("dry run") instead
func WithDryRun(dryRun bool) Option {
	return func(s *Service) {
		s.dryRun = dryRun
	}
}

// WithAssumeYes answers every confirmation affirmatively without asking
func WithAssumeYes(yes bool) Option {
	return func(s *Service) {
		s.assumeYes = yes
	}
}

// WithMeasureConcurrency bounds how many targets are measured at once
func WithMeasureConcurrency(n int) Option {
	return func(s *Service) {
		s.concurrency = n
	}
}

// WithRunID sets the identifier attached to the summary and log lines
func WithRunID(id string) Option {
	return func(s *Service) {
		s.runID = id
	}
}

// WithLogger sets the durable log sink
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithClock replaces time.Now (for testing)
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new cleanup orchestrator for a single run
func NewService(confirmer cleanup.Confirmer, presenter cleanup.Presenter, opts ...Option) *Service {
	s := &Service{
		confirmer:   confirmer,
		presenter:   presenter,
		now:         time.Now,
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.presenter == nil {
		s.presenter = nopPresenter{}
	}
	if s.log == nil {
		log := logrus.New()
		log.SetOutput(io.Discard)
		s.log = log
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	s.log = s.log.WithField("run_id", s.runID)
	s.summary = cleanup.NewRunSummary(s.runID, s.now())

	return s
}

// RunID returns the identifier of this run
func (s *Service) RunID() string {
	return s.runID
}

// Phase returns the current phase
func (s *Service) Phase() cleanup.Phase {
	return s.phase
}

// advance moves the run forward to p. Staying in the same phase is allowed.
func (s *Service) advance(p cleanup.Phase) error {
	if p < s.phase {
		return fmt.Errorf("%w: %s after %s", ErrPhaseOrder, p, s.phase)
	}
	if p == s.phase {
		return nil
	}

	s.phase = p
	s.log.WithField("phase", p.String()).Debug("Phase started")
	s.presenter.PhaseStarted(p)
	return nil
}

// MeasureAll measures every target and returns the results in catalog
// order. It returns ErrInterrupted if ctx is cancelled; targets not yet
// measured keep their previous size.
func (s *Service) MeasureAll(ctx context.Context, targets []cleanup.Target) ([]cleanup.SizeResult, error) {
	if err := s.advance(cleanup.PhaseMeasuring); err != nil {
		return nil, err
	}

	results := make([]cleanup.SizeResult, len(targets))
	measure := func(ctx context.Context, i int) {
		t := targets[i]
		start := s.now()
		results[i] = t.Measure(ctx)
		s.log.WithFields(logrus.Fields{
			"target":   t.Name(),
			"size":     cleanup.FormatSize(results[i]),
			"kind":     results[i].Kind.String(),
			"duration": s.now().Sub(start).String(),
		}).Info("Measured target")
		s.presenter.Measured(t, results[i])
	}

	if s.concurrency <= 1 {
		for i := range targets {
			if ctx.Err() != nil {
				return results, cleanup.ErrInterrupted
			}
			measure(ctx, i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.concurrency)
		for i := range targets {
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				measure(gctx, i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return results, cleanup.ErrInterrupted
		}
	}

	if ctx.Err() != nil {
		return results, cleanup.ErrInterrupted
	}
	return results, nil
}

// Report builds and presents the overview of every target's last size
func (s *Service) Report(targets []cleanup.Target) (cleanup.Report, error) {
	if err := s.advance(cleanup.PhaseReporting); err != nil {
		return cleanup.Report{}, err
	}

	r := cleanup.NewReport(targets)
	s.log.WithFields(logrus.Fields{
		"targets":   len(r.Rows),
		"estimated": cleanup.FormatBytes(r.Total),
	}).Info("Cleanup overview")
	s.presenter.ShowReport(r)
	return r, nil
}

// ConfirmAndExecute decides and applies the outcome for one target using
// its last measured size. An empty target is skipped without asking. Only
// an explicit affirmative cleans. An operator interrupt returns
// ErrInterrupted and records nothing.
func (s *Service) ConfirmAndExecute(ctx context.Context, t cleanup.Target) (cleanup.Outcome, error) {
	if err := s.advance(cleanup.PhaseExecuting); err != nil {
		return cleanup.Outcome{}, err
	}
	if ctx.Err() != nil {
		return cleanup.Outcome{}, cleanup.ErrInterrupted
	}

	size := t.LastSize()
	log := s.log.WithFields(logrus.Fields{
		"target": t.Name(),
		"size":   cleanup.FormatSize(size),
	})
	s.presenter.TargetStarted(t, size)

	outcome, err := s.decide(ctx, t, size, log)
	if err != nil {
		log.Warn("Run interrupted at confirmation")
		return cleanup.Outcome{}, err
	}

	if outcome.Kind == cleanup.OutcomeSuccess {
		log.Info("Cleaning target")
		outcome = t.Clean(ctx)
	}

	entry := s.summary.Record(t, size, outcome)
	fields := logrus.Fields{"outcome": outcome.Kind.String(), "freed": cleanup.FormatBytes(entry.FreedBytes)}
	if outcome.Detail != "" {
		fields["detail"] = outcome.Detail
	}
	if outcome.Kind == cleanup.OutcomePartialFailure {
		log.WithFields(fields).Warn("Some errors occurred while cleaning")
	} else {
		log.WithFields(fields).Info("Target finished")
	}
	s.presenter.TargetFinished(entry)

	return outcome, nil
}

// decide returns Success when the target should be cleaned, or the
// Skipped outcome explaining why not.
func (s *Service) decide(ctx context.Context, t cleanup.Target, size cleanup.SizeResult, log logrus.FieldLogger) (cleanup.Outcome, error) {
	switch {
	case size.IsEmpty():
		return cleanup.Skipped(cleanup.SkipEmpty), nil
	case s.dryRun:
		return cleanup.Skipped(cleanup.SkipDryRun), nil
	case s.assumeYes:
		return cleanup.Success(), nil
	}

	ok, err := s.confirmer.Confirm(ctx, cleanup.ConfirmPrompt(t))
	if err != nil {
		if errors.Is(err, cleanup.ErrInterrupted) || errors.Is(err, context.Canceled) {
			return cleanup.Outcome{}, cleanup.ErrInterrupted
		}
		log.WithError(err).Warn("Confirmation failed, treating as declined")
		return cleanup.Skipped(cleanup.SkipDeclined), nil
	}
	if !ok {
		return cleanup.Skipped(cleanup.SkipDeclined), nil
	}
	return cleanup.Success(), nil
}

// Summarize finishes the run and returns its summary. It is safe to call
// more than once.
func (s *Service) Summarize() *cleanup.RunSummary {
	if s.phase == cleanup.PhaseDone {
		return s.summary
	}

	_ = s.advance(cleanup.PhaseSummarizing)
	s.summary.FinishedAt = s.now()

	s.log.WithFields(logrus.Fields{
		"freed":    cleanup.FormatBytes(s.summary.FreedBytes),
		"success":  s.summary.Count(cleanup.OutcomeSuccess),
		"partial":  s.summary.Count(cleanup.OutcomePartialFailure),
		"skipped":  s.summary.Count(cleanup.OutcomeSkipped),
		"duration": s.summary.Duration().String(),
	}).Info("Cleanup summary")
	s.presenter.ShowSummary(s.summary)

	_ = s.advance(cleanup.PhaseDone)
	return s.summary
}

// Run drives the whole lifecycle. Per-target faults never stop the run; an
// interrupt stops it early, and the summary so far is still returned along
// with ErrInterrupted.
func (s *Service) Run(ctx context.Context, targets []cleanup.Target) (*cleanup.RunSummary, error) {
	if s.phase != cleanup.PhaseInit {
		return nil, fmt.Errorf("%w: run already started", ErrPhaseOrder)
	}
	s.log.WithFields(logrus.Fields{
		"targets": len(targets),
		"dry_run": s.dryRun,
	}).Info("Cleanup run started")

	if _, err := s.MeasureAll(ctx, targets); err != nil {
		return s.Summarize(), err
	}

	if _, err := s.Report(targets); err != nil {
		return s.Summarize(), err
	}

	for _, t := range targets {
		if _, err := s.ConfirmAndExecute(ctx, t); err != nil {
			return s.Summarize(), err
		}
	}

	return s.Summarize(), nil
}

// nopPresenter discards all presentation events
type nopPresenter struct{}

func (nopPresenter) PhaseStarted(cleanup.Phase) {}
func (nopPresenter) Measured(cleanup.Target, cleanup.SizeResult) {}
func (nopPresenter) ShowReport(cleanup.Report) {}
func (nopPresenter) TargetStarted(cleanup.Target, cleanup.SizeResult) {}
func (nopPresenter) TargetFinished(cleanup.Entry) {}
func (nopPresenter) ShowSummary(*cleanup.RunSummary) {}

var _ cleanup.Presenter = nopPresenter{}
