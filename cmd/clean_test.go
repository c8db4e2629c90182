package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"disk-sweep/domain/cleanup"
	"disk-sweep/infrastructure/catalog"
	"disk-sweep/infrastructure/disk"
	"disk-sweep/infrastructure/logging"
	"disk-sweep/infrastructure/terminal"
)

// mockUsage returns successive snapshots
type mockUsage struct {
	snapshots []disk.Usage
	err       error
	calls     int
}

func (m *mockUsage) Snapshot(ctx context.Context, path string) (disk.Usage, error) {
	if m.err != nil {
		return disk.Usage{}, m.err
	}
	u := m.snapshots[m.calls%len(m.snapshots)]
	m.calls++
	return u, nil
}

// answerConfirmer answers every prompt the same way
type answerConfirmer struct {
	answer  bool
	prompts []string
}

func (c *answerConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	c.prompts = append(c.prompts, prompt)
	return c.answer, nil
}

func sized(name string, size cleanup.SizeResult, cleaned *[]string) cleanup.Target {
	return cleanup.NewTask(name, "Clean "+name,
		func(ctx context.Context) (cleanup.SizeResult, error) { return size, nil },
		func(ctx context.Context) error {
			*cleaned = append(*cleaned, name)
			return nil
		})
}

func TestRunCleanWithDependencies(t *testing.T) {
	var cleaned []string
	targets := []cleanup.Target{
		sized("NPM Cache", cleanup.Bytes(2*1024*1024), &cleaned),
		sized("Trash", cleanup.Bytes(0), &cleaned),
		sized("Pip Cache", cleanup.Bytes(1024), &cleaned),
	}

	var out bytes.Buffer
	confirmer := &answerConfirmer{answer: true}
	usage := &mockUsage{snapshots: []disk.Usage{{Total: 100, Free: 10}, {Total: 100, Free: 20}}}

	summary, err := RunCleanWithDependencies(context.Background(),
		CleanOptions{LogFile: "/tmp/disk_sweep.log", RunID: "run-42"},
		targets, confirmer, terminal.NewPresenter(&out), usage, logging.Discard())
	if err != nil {
		t.Fatalf("RunCleanWithDependencies() error = %v", err)
	}

	if summary.RunID != "run-42" {
		t.Errorf("RunID = %q", summary.RunID)
	}
	if summary.FreedBytes != 2*1024*1024+1024 {
		t.Errorf("FreedBytes = %d", summary.FreedBytes)
	}
	if strings.Join(cleaned, ",") != "NPM Cache,Pip Cache" {
		t.Errorf("cleaned = %v", cleaned)
	}
	if len(confirmer.prompts) != 2 {
		t.Errorf("prompts = %v, want 2 (empty target skipped)", confirmer.prompts)
	}
	if usage.calls != 2 {
		t.Errorf("usage snapshots = %d, want before and after", usage.calls)
	}

	output := out.String()
	for _, want := range []string{"Current Disk Usage", "Cleanup Overview", "Skipping Trash (Empty)", "Total space freed", "Final Disk Usage", "Log file: /tmp/disk_sweep.log"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRunCleanOnlyAndDryRun(t *testing.T) {
	var cleaned []string
	targets := []cleanup.Target{
		sized("NPM Cache", cleanup.Bytes(10), &cleaned),
		sized("Pip Cache", cleanup.Bytes(20), &cleaned),
	}

	var out bytes.Buffer
	summary, err := RunCleanWithDependencies(context.Background(),
		CleanOptions{Only: []string{"pip"}, DryRun: true},
		targets, &answerConfirmer{answer: true}, terminal.NewPresenter(&out),
		&mockUsage{err: errors.New("no statfs")}, logging.Discard())
	if err != nil {
		t.Fatalf("RunCleanWithDependencies() error = %v", err)
	}

	if len(summary.Entries) != 1 || summary.Entries[0].Name != "Pip Cache" {
		t.Fatalf("entries = %+v", summary.Entries)
	}
	if summary.Entries[0].Outcome != cleanup.Skipped(cleanup.SkipDryRun) || len(cleaned) != 0 {
		t.Errorf("dry run cleaned %v, outcome %+v", cleaned, summary.Entries[0].Outcome)
	}
	if strings.Contains(out.String(), "Current Disk Usage") {
		t.Error("disk usage should be omitted when unavailable")
	}
}

func TestRunCleanUnknownTarget(t *testing.T) {
	_, err := RunCleanWithDependencies(context.Background(),
		CleanOptions{Only: []string{"gradle"}}, nil, &answerConfirmer{},
		terminal.NewPresenter(&bytes.Buffer{}), &mockUsage{err: errors.New("x")}, logging.Discard())
	if !errors.Is(err, catalog.ErrTargetNotFound) {
		t.Errorf("error = %v, want ErrTargetNotFound", err)
	}
}

func TestRunCleanInterruptedStillSummarizes(t *testing.T) {
	var cleaned []string
	ctx, cancel := context.WithCancel(context.Background())
	targets := []cleanup.Target{
		sized("A", cleanup.Bytes(10), &cleaned),
		sized("B", cleanup.Bytes(20), &cleaned),
	}
	confirmer := confirmerFunc(func(ctx context.Context, prompt string) (bool, error) {
		cancel()
		return true, nil
	})

	var out bytes.Buffer
	usage := &mockUsage{snapshots: []disk.Usage{{Total: 1, Free: 1}}}
	summary, err := RunCleanWithDependencies(ctx, CleanOptions{}, targets, confirmer,
		terminal.NewPresenter(&out), usage, logging.Discard())

	if !errors.Is(err, cleanup.ErrInterrupted) {
		t.Fatalf("error = %v, want ErrInterrupted", err)
	}
	if summary == nil || len(summary.Entries) != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if !strings.Contains(out.String(), "Cleanup interrupted by user") || !strings.Contains(out.String(), "Final Disk Usage") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

type confirmerFunc func(ctx context.Context, prompt string) (bool, error)

func (f confirmerFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

func TestRunScanWithDependencies(t *testing.T) {
	var cleaned []string
	targets := []cleanup.Target{
		sized("A", cleanup.Bytes(10), &cleaned),
		sized("B", cleanup.Bytes(30), &cleaned),
	}

	report, err := RunScanWithDependencies(context.Background(), targets, nil, 2,
		terminal.NewPresenter(&bytes.Buffer{}), logging.Discard())
	if err != nil {
		t.Fatalf("RunScanWithDependencies() error = %v", err)
	}
	if report.Total != 40 || report.Rows[1].Rank != 1 {
		t.Errorf("report = %+v", report)
	}
	if len(cleaned) != 0 {
		t.Error("scan must not clean")
	}
}

func TestRunTargetsWithDependencies(t *testing.T) {
	var out bytes.Buffer
	targets := []cleanup.Target{cleanup.NewTask("Trash", "Empty Trash (~/.Trash)", nil, nil)}

	if err := RunTargetsWithDependencies(targets, []string{"Docker"}, &out); err != nil {
		t.Fatalf("RunTargetsWithDependencies() error = %v", err)
	}
	if !strings.Contains(out.String(), "Empty Trash (~/.Trash)") || !strings.Contains(out.String(), "Disabled: Docker") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

