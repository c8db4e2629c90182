//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	appcleanup "disk-sweep/application/cleanup"
	"disk-sweep/domain/cleanup"
	"disk-sweep/infrastructure/catalog"
	"disk-sweep/infrastructure/config"
	"disk-sweep/infrastructure/filesystem"
	"disk-sweep/infrastructure/logging"

	"github.com/cucumber/godog"
)

// scriptedConfirmer answers prompts from a table of free-text answers
type scriptedConfirmer struct {
	answers    map[string]string
	interrupts map[string]bool
	asked      []string
}

func (s *scriptedConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	s.asked = append(s.asked, prompt)
	if s.interrupts[prompt] {
		return false, cleanup.ErrInterrupted
	}
	return cleanup.IsAffirmative(s.answers[prompt]), nil
}

// cleanupContext holds test state for cleanup run scenarios
type cleanupContext struct {
	home      string
	runner    *toolRunner
	cfg       *config.Config
	confirmer *scriptedConfirmer
	targets   []cleanup.Target
	cleaned   map[string]int
	dirs      map[string]string
	measured  []cleanup.SizeResult
	summary   *cleanup.RunSummary
	err       error
}

// SharedCleanupContext is reset before each scenario via Before hook
var SharedCleanupContext *cleanupContext

func getCleanupContext() *cleanupContext {
	return SharedCleanupContext
}

func InitializeCleanupScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		home, err := os.MkdirTemp("", "disk-sweep-home-")
		if err != nil {
			return c, err
		}
		SharedCleanupContext = &cleanupContext{
			home:   home,
			runner: newToolRunner(),
			cfg:    config.Default(),
			confirmer: &scriptedConfirmer{
				answers:    map[string]string{},
				interrupts: map[string]bool{},
			},
			cleaned: map[string]int{},
			dirs:    map[string]string{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedCleanupContext != nil {
			os.RemoveAll(SharedCleanupContext.home)
		}
		SharedCleanupContext = nil
		return c, nil
	})

	ctx.Step(`^a target "([^"]*)" measuring (\d+) bytes$`, aTargetMeasuringBytes)
	ctx.Step(`^a target "([^"]*)" that is access denied$`, aTargetThatIsAccessDenied)
	ctx.Step(`^the "([^"]*)" tool is not installed$`, theToolIsNotInstalled)
	ctx.Step(`^the catalog target "([^"]*)"$`, theCatalogTarget)
	ctx.Step(`^a directory target "([^"]*)" containing no files$`, aDirectoryTargetContainingNoFiles)
	ctx.Step(`^a directory target "([^"]*)" containing files of (\d+) and (\d+) bytes$`, aDirectoryTargetContainingFiles)
	ctx.Step(`^the operator answers "([^"]*)" for "([^"]*)"$`, theOperatorAnswersFor)
	ctx.Step(`^the operator interrupts at "([^"]*)"$`, theOperatorInterruptsAt)
	ctx.Step(`^I run the cleanup$`, iRunTheCleanup)
	ctx.Step(`^I measure "([^"]*)" twice$`, iMeasureTwice)
	ctx.Step(`^the operator should have been asked about "([^"]*)"$`, theOperatorShouldHaveBeenAskedAbout)
	ctx.Step(`^the operator should not have been asked anything$`, theOperatorShouldNotHaveBeenAskedAnything)
	ctx.Step(`^target "([^"]*)" should end with "([^"]*)"$`, targetShouldEndWith)
	ctx.Step(`^target "([^"]*)" should be skipped as "([^"]*)"$`, targetShouldBeSkippedAs)
	ctx.Step(`^target "([^"]*)" should not have been cleaned$`, targetShouldNotHaveBeenCleaned)
	ctx.Step(`^cleaning "([^"]*)" directly should succeed$`, cleaningDirectlyShouldSucceed)
	ctx.Step(`^the directory of "([^"]*)" should be gone$`, theDirectoryShouldBeGone)
	ctx.Step(`^the total freed should be (\d+) bytes$`, theTotalFreedShouldBe)
	ctx.Step(`^both measurements should be (\d+) bytes$`, bothMeasurementsShouldBe)
	ctx.Step(`^the run should report an interrupt$`, theRunShouldReportAnInterrupt)
	ctx.Step(`^the summary should list only "([^"]*)"$`, theSummaryShouldListOnly)
}

func (c *cleanupContext) addFixed(name string, size cleanup.SizeResult) {
	c.targets = append(c.targets, cleanup.NewTask(name, name+" data",
		func(ctx context.Context) (cleanup.SizeResult, error) { return size, nil },
		func(ctx context.Context) error {
			c.cleaned[name]++
			return nil
		}))
}

func (c *cleanupContext) buildCatalog() ([]cleanup.Target, error) {
	return catalog.Build(c.cfg, catalog.Env{
		Home:    c.home,
		Runner:  c.runner,
		Probe:   filesystem.NewProbe(c.runner),
		Remover: filesystem.NewRemover(nil),
		Log:     logging.Discard(),
	})
}

func (c *cleanupContext) find(name string) (cleanup.Target, error) {
	for _, t := range c.targets {
		if t.Name() == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("no target named %q in this scenario", name)
}

func (c *cleanupContext) entry(name string) (cleanup.Entry, error) {
	if c.summary == nil {
		return cleanup.Entry{}, fmt.Errorf("the cleanup has not run")
	}
	e, ok := c.summary.Entry(name)
	if !ok {
		return cleanup.Entry{}, fmt.Errorf("summary has no entry for %q", name)
	}
	return e, nil
}

func aTargetMeasuringBytes(name string, n int64) error {
	getCleanupContext().addFixed(name, cleanup.Bytes(n))
	return nil
}

func aTargetThatIsAccessDenied(name string) error {
	getCleanupContext().addFixed(name, cleanup.AccessDenied())
	return nil
}

func theToolIsNotInstalled(tool string) error {
	delete(getCleanupContext().runner.installed, tool)
	return nil
}

func theCatalogTarget(name string) error {
	c := getCleanupContext()
	all, err := c.buildCatalog()
	if err != nil {
		return err
	}
	for _, t := range all {
		if t.Name() == name {
			c.targets = append(c.targets, t)
			return nil
		}
	}
	return fmt.Errorf("catalog has no target %q", name)
}

func addDirectoryTarget(name string, sizes ...int) error {
	c := getCleanupContext()
	dir := filepath.Join(c.home, "dirs", name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for i, size := range sizes {
		path := filepath.Join(dir, fmt.Sprintf("file-%d", i))
		if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
			return err
		}
	}
	c.dirs[name] = dir

	c.cfg.Targets.Custom = append(c.cfg.Targets.Custom, config.CustomTarget{
		Name:  name,
		Paths: []string{dir},
		Mode:  config.ModeRemove,
	})
	return theCatalogTarget(name)
}

func aDirectoryTargetContainingNoFiles(name string) error {
	return addDirectoryTarget(name)
}

func aDirectoryTargetContainingFiles(name string, a, b int) error {
	return addDirectoryTarget(name, a, b)
}

func theOperatorAnswersFor(answer, name string) error {
	getCleanupContext().confirmer.answers["Clean "+name+"?"] = answer
	return nil
}

func theOperatorInterruptsAt(name string) error {
	getCleanupContext().confirmer.interrupts["Clean "+name+"?"] = true
	return nil
}

func iRunTheCleanup() error {
	c := getCleanupContext()
	svc := appcleanup.NewService(c.confirmer, nil, appcleanup.WithLogger(logging.Discard()))
	c.summary, c.err = svc.Run(context.Background(), c.targets)
	return nil
}

func iMeasureTwice(name string) error {
	c := getCleanupContext()
	t, err := c.find(name)
	if err != nil {
		return err
	}
	c.measured = []cleanup.SizeResult{t.Measure(context.Background()), t.Measure(context.Background())}
	return nil
}

func theOperatorShouldHaveBeenAskedAbout(name string) error {
	want := "Clean " + name + "?"
	for _, p := range getCleanupContext().confirmer.asked {
		if p == want {
			return nil
		}
	}
	return fmt.Errorf("operator was never asked %q", want)
}

func theOperatorShouldNotHaveBeenAskedAnything() error {
	if asked := getCleanupContext().confirmer.asked; len(asked) > 0 {
		return fmt.Errorf("expected no prompts, got %v", asked)
	}
	return nil
}

func targetShouldEndWith(name, kind string) error {
	e, err := getCleanupContext().entry(name)
	if err != nil {
		return err
	}
	if e.Outcome.Kind.String() != kind {
		return fmt.Errorf("target %q ended with %s (%s), want %s", name, e.Outcome.Kind, e.Outcome.Detail, kind)
	}
	return nil
}

func targetShouldBeSkippedAs(name, reason string) error {
	e, err := getCleanupContext().entry(name)
	if err != nil {
		return err
	}
	if e.Outcome != cleanup.Skipped(reason) {
		return fmt.Errorf("target %q ended with %s %q, want skipped %q", name, e.Outcome.Kind, e.Outcome.Detail, reason)
	}
	if e.FreedBytes != 0 {
		return fmt.Errorf("skipped target %q contributed %d bytes", name, e.FreedBytes)
	}
	return nil
}

func targetShouldNotHaveBeenCleaned(name string) error {
	if n := getCleanupContext().cleaned[name]; n != 0 {
		return fmt.Errorf("target %q was cleaned %d times", name, n)
	}
	return nil
}

func cleaningDirectlyShouldSucceed(name string) error {
	c := getCleanupContext()
	t, err := c.find(name)
	if err != nil {
		return err
	}
	if out := t.Clean(context.Background()); out.Kind != cleanup.OutcomeSuccess {
		return fmt.Errorf("Clean() = %s %q, want success", out.Kind, out.Detail)
	}
	return nil
}

func theDirectoryShouldBeGone(name string) error {
	dir, ok := getCleanupContext().dirs[name]
	if !ok {
		return fmt.Errorf("no directory target %q", name)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		return fmt.Errorf("expected %s to be removed (stat err: %v)", dir, err)
	}
	return nil
}

func theTotalFreedShouldBe(n int64) error {
	c := getCleanupContext()
	if c.summary == nil {
		return fmt.Errorf("the cleanup has not run")
	}
	if c.summary.FreedBytes != n {
		return fmt.Errorf("freed %d bytes, want %d", c.summary.FreedBytes, n)
	}
	return nil
}

func bothMeasurementsShouldBe(n int64) error {
	m := getCleanupContext().measured
	if len(m) != 2 {
		return fmt.Errorf("expected two measurements, got %d", len(m))
	}
	want := cleanup.Bytes(n)
	if m[0] != want || m[1] != want {
		return fmt.Errorf("measurements = %+v, %+v; want %+v twice", m[0], m[1], want)
	}
	return nil
}

func theRunShouldReportAnInterrupt() error {
	if err := getCleanupContext().err; !errors.Is(err, cleanup.ErrInterrupted) {
		return fmt.Errorf("run error = %v, want ErrInterrupted", err)
	}
	return nil
}

func theSummaryShouldListOnly(name string) error {
	c := getCleanupContext()
	if c.summary == nil {
		return fmt.Errorf("no summary returned")
	}
	if len(c.summary.Entries) != 1 || c.summary.Entries[0].Name != name {
		return fmt.Errorf("summary entries = %+v, want only %q", c.summary.Entries, name)
	}
	return nil
}
