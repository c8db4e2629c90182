package command

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Run waits for output pipes after the process is
// killed, since grandchildren may hold them open.
const waitDelay = 2 * time.Second

// Result is the classified outcome of one external command
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	// TimedOut is set when the command was killed because its timeout elapsed
	TimedOut bool
	// NotFound is set when the executable could not be located
	NotFound bool
	// Err holds any start/wait error not covered by the flags above
	Err error
}

// OK reports whether the command ran to completion with exit status 0
func (r Result) OK() bool {
	return !r.TimedOut && !r.NotFound && r.Err == nil && r.ExitCode == 0
}

// Runner defines the interface for running external commands.
// This allows mocking exec.Command in tests
type Runner interface {
	// Run executes name with args, killing it after timeout (0 means no
	// timeout). It never returns an error for a missing tool; the outcome is
	// classified in the Result.
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) Result
	// LookPath reports whether name is an executable on PATH
	LookPath(name string) (string, bool)
}

// ExecRunner is the production implementation using os/exec
type ExecRunner struct {
	// Env, when non-nil, replaces the environment of started commands
	Env []string
}

// NewExecRunner creates a runner that inherits the process environment
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements Runner
func (r *ExecRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) Result {
	path, ok := r.LookPath(name)
	if !ok {
		return Result{ExitCode: -1, NotFound: true}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	if r.Env != nil {
		cmd.Env = r.Env
	}

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.ExitCode = -1
		res.TimedOut = true
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	case errors.Is(err, exec.ErrNotFound):
		res.ExitCode = -1
		res.NotFound = true
	default:
		res.ExitCode = -1
		res.Err = err
	}

	return res
}

// LookPath implements Runner
func (r *ExecRunner) LookPath(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}

// FirstLine returns the first non-blank line of s, trimmed
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// Ensure ExecRunner implements Runner
var _ Runner = (*ExecRunner)(nil)
