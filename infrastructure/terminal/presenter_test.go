package terminal

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"disk-sweep/domain/cleanup"
	"disk-sweep/infrastructure/disk"
)

func measured(name string, size cleanup.SizeResult) cleanup.Target {
	task := cleanup.NewTask(name, "Clean "+name, func(ctx context.Context) (cleanup.SizeResult, error) {
		return size, nil
	}, nil)
	task.Measure(context.Background())
	return task
}

func TestShowReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPresenter(&buf)

	p.ShowReport(cleanup.NewReport([]cleanup.Target{
		measured("Trash", cleanup.Bytes(0)),
		measured("NPM Cache", cleanup.Bytes(2*1024*1024)),
		measured("User Logs", cleanup.AccessDenied()),
		measured("Docker", cleanup.Unmeasured("reported by docker system df")),
	}))

	out := buf.String()
	for _, want := range []string{
		"Trash...................................",
		"Empty (0 B)",
		"2.00 MB  #1",
		"Access Denied",
		"Unknown",
		"Total estimated cleanup",
		"Largest: NPM Cache (2.00 MB)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("expected no ANSI escapes when writing to a buffer")
	}
}

func TestTargetFinishedMessages(t *testing.T) {
	tests := []struct {
		outcome cleanup.Outcome
		want    string
	}{
		{cleanup.Success(), "✓ Successfully cleaned Trash"},
		{cleanup.PartialFailure("1 of 2 entries could not be removed"), "⚠ Some errors occurred while cleaning Trash: 1 of 2"},
		{cleanup.Skipped(cleanup.SkipEmpty), "Skipping Trash (Empty)"},
		{cleanup.Skipped(cleanup.SkipDeclined), "ℹ Skipped Trash"},
		{cleanup.Skipped(cleanup.SkipDryRun), "Would clean Trash (dry run)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var buf bytes.Buffer
			NewPresenter(&buf).TargetFinished(cleanup.Entry{Name: "Trash", Outcome: tt.outcome})
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q missing %q", buf.String(), tt.want)
			}
		})
	}
}

func TestShowSummary(t *testing.T) {
	var buf bytes.Buffer
	s := cleanup.NewRunSummary("run-1", time.Now())
	s.Record(measured("A", cleanup.Bytes(1024)), cleanup.Bytes(1024), cleanup.Success())
	s.Record(measured("B", cleanup.Bytes(10)), cleanup.Bytes(10), cleanup.PartialFailure("locked"))

	NewPresenter(&buf).ShowSummary(s)

	out := buf.String()
	if !strings.Contains(out, "Total space freed: 1.00 KB") {
		t.Errorf("missing freed total:\n%s", out)
	}
	if !strings.Contains(out, "1 cleaned, 1 with errors, 0 skipped") || !strings.Contains(out, "B: locked") {
		t.Errorf("missing counts or failure detail:\n%s", out)
	}
}

func TestShowDiskUsage(t *testing.T) {
	var buf bytes.Buffer
	NewPresenter(&buf).ShowDiskUsage("Current Disk Usage", disk.Usage{
		Total: 1024 * 1024 * 1024, Used: 512 * 1024 * 1024, Free: 512 * 1024 * 1024, UsedPercent: 50,
	})

	out := buf.String()
	for _, want := range []string{"Current Disk Usage", "Total:     1.00 GB", "Used:      512.00 MB (50%)", "Available: 512.00 MB"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCenter(t *testing.T) {
	if got := center("ab", 6); got != "  ab  " {
		t.Errorf("center() = %q", got)
	}
	if got := center("toolong", 3); got != "toolong" {
		t.Errorf("center() = %q", got)
	}
}
