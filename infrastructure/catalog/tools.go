package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"disk-sweep/domain/cleanup"
	"disk-sweep/infrastructure/command"

	"github.com/sirupsen/logrus"
)

// ErrCommandFailed is returned when a cleanup command exits non-zero
var ErrCommandFailed = errors.New("command failed")

// toolDir asks a tool where its cache lives. It returns ErrToolUnavailable
// when the tool is not installed and fallback when the tool gives no answer.
func (b *builder) toolDir(ctx context.Context, fallback, name string, args ...string) (string, error) {
	if _, ok := b.env.Runner.LookPath(name); !ok {
		return "", cleanup.ErrToolUnavailable
	}

	res := b.env.Runner.Run(ctx, b.lookupTimeout, name, args...)
	if res.OK() {
		if dir := command.FirstLine(res.Stdout); dir != "" {
			return dir, nil
		}
	}

	b.env.Log.WithFields(logrus.Fields{
		"command":  name + " " + strings.Join(args, " "),
		"exit":     res.ExitCode,
		"timedout": res.TimedOut,
	}).Debug("Cache directory lookup failed, using fallback")
	return fallback, nil
}

// measureTool returns a SizeFunc sizing the directory reported by a tool.
// When the tool reports nothing and fallback is empty the size is Bytes(0).
func (b *builder) measureTool(fallback, name string, args ...string) cleanup.SizeFunc {
	return b.measureToolSub("", fallback, name, args...)
}

// measureToolSub is measureTool for a subdirectory of the reported path
func (b *builder) measureToolSub(sub, fallback, name string, args ...string) cleanup.SizeFunc {
	return func(ctx context.Context) (cleanup.SizeResult, error) {
		dir, err := b.toolDir(ctx, fallback, name, args...)
		if err != nil {
			return cleanup.SizeResult{}, err
		}
		if dir == "" {
			return cleanup.Bytes(0), nil
		}
		if sub != "" {
			dir = filepath.Join(dir, sub)
		}
		return b.env.Probe.Measure(ctx, dir), nil
	}
}

// runTool executes a cleanup command with the command timeout
func (b *builder) runTool(ctx context.Context, name string, args ...string) error {
	cmdline := strings.TrimSpace(name + " " + strings.Join(args, " "))
	log := b.env.Log.WithField("command", cmdline)
	log.Info("Running command")

	res := b.env.Runner.Run(ctx, b.commandTimeout, name, args...)
	switch {
	case res.NotFound:
		return cleanup.ErrToolUnavailable
	case res.TimedOut:
		log.Error("Command timed out")
		return fmt.Errorf("%s timed out after %s", cmdline, b.commandTimeout)
	case res.Err != nil:
		log.WithError(res.Err).Error("Command could not run")
		return fmt.Errorf("%s: %w", cmdline, res.Err)
	case res.ExitCode != 0:
		log.WithFields(logrus.Fields{
			"exit":   res.ExitCode,
			"stdout": res.Stdout,
			"stderr": res.Stderr,
		}).Error("Command failed")
		detail := command.FirstLine(res.Stderr)
		if detail == "" {
			detail = fmt.Sprintf("exit status %d", res.ExitCode)
		}
		return fmt.Errorf("%w: %s: %s", ErrCommandFailed, cmdline, detail)
	}
	return nil
}

// cleanTool returns a CleanFunc running each command in turn. A missing tool
// is a no-op; every command runs even if an earlier one failed.
func (b *builder) cleanTool(commands ...[]string) cleanup.CleanFunc {
	return func(ctx context.Context) error {
		var errs []error
		for _, c := range commands {
			if err := b.runTool(ctx, c[0], c[1:]...); err != nil {
				if errors.Is(err, cleanup.ErrToolUnavailable) {
					return err
				}
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
