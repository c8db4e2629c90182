package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"disk-sweep/domain/cleanup"
	"disk-sweep/infrastructure/disk"

	"github.com/charmbracelet/lipgloss"
)

const (
	ruleWidth = 70
	nameWidth = 40
	sizeWidth = 15
)

var (
	clrBlue   = lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#60a5fa"}
	clrCyan   = lipgloss.AdaptiveColor{Light: "#0891b2", Dark: "#22d3ee"}
	clrGreen  = lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"}
	clrYellow = lipgloss.AdaptiveColor{Light: "#ca8a04", Dark: "#facc15"}
	clrRed    = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
	clrMuted  = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
)

// Presenter renders run progress as styled text lines.
// Colors are dropped automatically when out is not a terminal.
type Presenter struct {
	out io.Writer
	mu  sync.Mutex

	header  lipgloss.Style
	bold    lipgloss.Style
	info    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

// NewPresenter creates a presenter writing to out
func NewPresenter(out io.Writer) *Presenter {
	r := lipgloss.NewRenderer(out)
	return &Presenter{
		out:     out,
		header:  r.NewStyle().Bold(true).Foreground(clrBlue),
		bold:    r.NewStyle().Bold(true),
		info:    r.NewStyle().Foreground(clrCyan),
		success: r.NewStyle().Foreground(clrGreen),
		warning: r.NewStyle().Foreground(clrYellow),
		failure: r.NewStyle().Foreground(clrRed),
		muted:   r.NewStyle().Foreground(clrMuted),
	}
}

func (p *Presenter) println(s string) {
	fmt.Fprintln(p.out, s)
}

// Header prints a centered title between rules
func (p *Presenter) Header(text string) {
	rule := p.header.Render(strings.Repeat("=", ruleWidth))
	p.println("")
	p.println(rule)
	p.println(p.header.Render(center(text, ruleWidth)))
	p.println(rule)
	p.println("")
}

// Info prints an informational line
func (p *Presenter) Info(text string) {
	p.println(p.info.Render("ℹ " + text))
}

// Success prints a success line
func (p *Presenter) Success(text string) {
	p.println(p.success.Render("✓ " + text))
}

// Warning prints a warning line
func (p *Presenter) Warning(text string) {
	p.println(p.warning.Render("⚠ " + text))
}

// Error prints an error line
func (p *Presenter) Error(text string) {
	p.println(p.failure.Render("✗ " + text))
}

// Banner prints the run start information
func (p *Presenter) Banner(title string, started time.Time, logFile string) {
	p.Header(title)
	p.Info("Started at: " + started.Format("2006-01-02 15:04:05"))
	if logFile != "" {
		p.Info("Log file: " + logFile)
	}
}

// ShowDiskUsage prints a disk usage block
func (p *Presenter) ShowDiskUsage(title string, u disk.Usage) {
	p.Header(title)
	p.println(fmt.Sprintf("  Total:     %s", cleanup.FormatBytes(int64(u.Total))))
	p.println(fmt.Sprintf("  Used:      %s (%.0f%%)", cleanup.FormatBytes(int64(u.Used)), u.UsedPercent))
	p.println(fmt.Sprintf("  Available: %s", cleanup.FormatBytes(int64(u.Free))))
}

// PhaseStarted implements cleanup.Presenter
func (p *Presenter) PhaseStarted(ph cleanup.Phase) {
	switch ph {
	case cleanup.PhaseMeasuring:
		p.Header("Analyzing cleanup opportunities...")
	case cleanup.PhaseReporting:
		p.Header("Cleanup Overview")
	case cleanup.PhaseExecuting:
		p.Header("Cleanup Actions")
	case cleanup.PhaseSummarizing:
		p.Header("Cleanup Summary")
	}
}

// Measured implements cleanup.Presenter. Safe for concurrent use.
func (p *Presenter) Measured(t cleanup.Target, size cleanup.SizeResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Info(fmt.Sprintf("Checked %s: %s", t.Name(), cleanup.FormatSize(size)))
}

// ShowReport implements cleanup.Presenter
func (p *Presenter) ShowReport(r cleanup.Report) {
	for _, row := range r.Rows {
		rank := ""
		if row.Rank > 0 {
			rank = p.muted.Render(fmt.Sprintf("  #%d", row.Rank))
		}
		p.println(fmt.Sprintf("  %s %*s%s", dotted(row.Name, nameWidth), sizeWidth, cleanup.FormatSize(row.Size), rank))
	}
	p.println("")
	p.println(p.bold.Render(fmt.Sprintf("  %s %*s", dotted("Total estimated cleanup", nameWidth), sizeWidth, cleanup.FormatBytes(r.Total))))
	if top, ok := r.Largest(); ok {
		p.println(p.muted.Render(fmt.Sprintf("  Largest: %s (%s)", top.Name, cleanup.FormatSize(top.Size))))
	}
}

// TargetStarted implements cleanup.Presenter
func (p *Presenter) TargetStarted(t cleanup.Target, size cleanup.SizeResult) {
	p.println("")
	p.println(p.bold.Render(t.Name()))
	p.println("  " + t.Description())
	p.println("  Size: " + cleanup.FormatSize(size))
}

// TargetFinished implements cleanup.Presenter
func (p *Presenter) TargetFinished(e cleanup.Entry) {
	switch e.Outcome.Kind {
	case cleanup.OutcomeSuccess:
		p.Success("Successfully cleaned " + e.Name)
	case cleanup.OutcomePartialFailure:
		p.Warning(fmt.Sprintf("Some errors occurred while cleaning %s: %s", e.Name, e.Outcome.Detail))
	case cleanup.OutcomeSkipped:
		switch e.Outcome.Detail {
		case cleanup.SkipEmpty:
			p.Info(fmt.Sprintf("Skipping %s (Empty)", e.Name))
		case cleanup.SkipDryRun:
			p.Info(fmt.Sprintf("Would clean %s (dry run)", e.Name))
		default:
			p.Info("Skipped " + e.Name)
		}
	}
}

// ShowSummary implements cleanup.Presenter
func (p *Presenter) ShowSummary(s *cleanup.RunSummary) {
	p.Success("Total space freed: " + cleanup.FormatBytes(s.FreedBytes))
	p.println(p.muted.Render(fmt.Sprintf("  %d cleaned, %d with errors, %d skipped",
		s.Count(cleanup.OutcomeSuccess),
		s.Count(cleanup.OutcomePartialFailure),
		s.Count(cleanup.OutcomeSkipped))))
	for _, e := range s.Entries {
		if e.Outcome.Kind == cleanup.OutcomePartialFailure {
			p.Warning(fmt.Sprintf("%s: %s", e.Name, e.Outcome.Detail))
		}
	}
}

// dotted pads name with dots to width
func dotted(name string, width int) string {
	if n := lipgloss.Width(name); n < width {
		return name + strings.Repeat(".", width-n)
	}
	return name
}

func center(text string, width int) string {
	n := lipgloss.Width(text)
	if n >= width {
		return text
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", width-n-left)
}

var _ cleanup.Presenter = (*Presenter)(nil)
