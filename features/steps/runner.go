//go:build integration

package steps

import (
	"context"
	"time"

	"disk-sweep/infrastructure/command"
)

// toolRunner reports only the listed tools as installed and succeeds every
// command run through them. du is never installed, so sizes come from the
// directory walk.
type toolRunner struct {
	installed map[string]bool
	ran       [][]string
}

func newToolRunner() *toolRunner {
	return &toolRunner{installed: map[string]bool{}}
}

func (r *toolRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) command.Result {
	r.ran = append(r.ran, append([]string{name}, args...))
	if !r.installed[name] {
		return command.Result{ExitCode: -1, NotFound: true}
	}
	return command.Result{}
}

func (r *toolRunner) LookPath(name string) (string, bool) {
	return "/usr/local/bin/" + name, r.installed[name]
}
