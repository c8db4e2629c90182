package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"disk-sweep/domain/cleanup"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/mattn/go-isatty"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library.
// Ctrl-C while prompting is reported as cleanup.ErrInterrupted.
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", surveyError(err)
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, surveyError(err)
	}
	return result, nil
}

func surveyError(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return cleanup.ErrInterrupted
	}
	return err
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

// PromptConfirmer asks cleanup questions through a Prompter. The answer is
// free text so that anything but an explicit yes declines; survey.Confirm
// would re-ask on unrecognized input instead.
type PromptConfirmer struct {
	prompter Prompter
}

// NewPromptConfirmer creates a confirmer backed by prompter
func NewPromptConfirmer(prompter Prompter) *PromptConfirmer {
	return &PromptConfirmer{prompter: prompter}
}

// Confirm implements cleanup.Confirmer
func (c *PromptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if ctx.Err() != nil {
		return false, cleanup.ErrInterrupted
	}
	answer, err := c.prompter.Input(prompt+" (y/n)", "")
	if err != nil {
		return false, err
	}
	return cleanup.IsAffirmative(answer), nil
}

// LineConfirmer reads answers line by line, for when stdin is not a terminal
type LineConfirmer struct {
	lines <-chan string
	out   io.Writer
}

// NewLineConfirmer creates a confirmer reading from in and prompting on out
func NewLineConfirmer(in io.Reader, out io.Writer) *LineConfirmer {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return &LineConfirmer{lines: lines, out: out}
}

// Confirm implements cleanup.Confirmer. End of input declines.
func (c *LineConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprintf(c.out, "%s (y/n): ", prompt)

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return false, cleanup.ErrInterrupted
	case line, ok := <-c.lines:
		if !ok {
			fmt.Fprintln(c.out)
			return false, io.EOF
		}
		return cleanup.IsAffirmative(line), nil
	}
}

// DefaultConfirmer picks the survey prompt for an interactive terminal and
// plain line reading otherwise.
func DefaultConfirmer(in *os.File, out io.Writer) cleanup.Confirmer {
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		return NewPromptConfirmer(DefaultPrompter)
	}
	return NewLineConfirmer(in, out)
}

var (
	_ cleanup.Confirmer = (*PromptConfirmer)(nil)
	_ cleanup.Confirmer = (*LineConfirmer)(nil)
)
